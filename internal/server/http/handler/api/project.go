package api

import (
	"encoding/json"

	"go-portfolio/internal/service"
	"go-portfolio/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProjectHandler struct{ d Dependencies }

func NewProjectHandler(d Dependencies) *ProjectHandler { return &ProjectHandler{d: d} }

type addProjectReq struct {
	Name        json.RawMessage `json:"name"`
	URL         json.RawMessage `json:"url"`
	Description json.RawMessage `json:"description"`
}

func (h *ProjectHandler) List(c *gin.Context) {
	list, err := h.d.Project.List(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.JSON(c, list)
}

func (h *ProjectHandler) Add(c *gin.Context) {
	var req addProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, err)
		return
	}
	var (
		p   service.CreateProjectParams
		err error
	)
	if p.Name, err = optString("name", req.Name); err != nil {
		response.Fail(c, err)
		return
	}
	if p.URL, err = optString("url", req.URL); err != nil {
		response.Fail(c, err)
		return
	}
	if p.Description, err = optString("description", req.Description); err != nil {
		response.Fail(c, err)
		return
	}
	if _, err := h.d.Project.Create(c.Request.Context(), p); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, "Project added")
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	if err := h.d.Project.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, "Project deleted")
}
