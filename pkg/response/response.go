package response

import (
	"net/http"

	"go-portfolio/internal/util/retcode"

	"github.com/gin-gonic/gin"
)

// Status 写操作成功时的统一返回体
type Status struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type ErrorBody struct {
	Error string `json:"error"`
}

// JSON 直接输出任意数据（列表接口返回裸数组）
func JSON(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func Success(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, Status{Message: msg, Status: "success"})
}

// Fail 按错误分类映射 HTTP 状态码，错误文本原样返回
func Fail(c *gin.Context, err error) {
	kind := retcode.KindOf(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(kind.HTTPStatus(), ErrorBody{Error: err.Error()})
}
