package api

import (
	"encoding/json"

	"go-portfolio/internal/service"
	"go-portfolio/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct{ d Dependencies }

func NewUserHandler(d Dependencies) *UserHandler { return &UserHandler{d: d} }

type saveUserReq struct {
	Email       json.RawMessage `json:"email"`
	Age         json.RawMessage `json:"age"`
	Designation json.RawMessage `json:"designation"`
	Experience  json.RawMessage `json:"experience"`
}

func (r saveUserReq) params() (p service.CreateUserParams, err error) {
	if p.Email, err = optString("email", r.Email); err != nil {
		return
	}
	if p.Age, err = optInt("age", r.Age); err != nil {
		return
	}
	if p.Designation, err = optString("designation", r.Designation); err != nil {
		return
	}
	p.Experience, err = optString("experience", r.Experience)
	return
}

// Save POST /api/v1/users/save
func (h *UserHandler) Save(c *gin.Context) {
	var req saveUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, err)
		return
	}
	p, err := req.params()
	if err != nil {
		response.Fail(c, err)
		return
	}
	if _, err := h.d.User.Create(c.Request.Context(), p); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, "User saved successfully!")
}

// List GET /api/v1/users
func (h *UserHandler) List(c *gin.Context) {
	list, err := h.d.User.List(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.JSON(c, list)
}

// Delete DELETE /api/v1/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	if err := h.d.User.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, "User deleted")
}
