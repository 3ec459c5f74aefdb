package api

import (
	"net/http"

	"go-portfolio/internal/logging"
	"go-portfolio/internal/service"
	"go-portfolio/internal/util/retcode"
	"go-portfolio/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const imageField = "image"

type ImageHandler struct{ d Dependencies }

func NewImageHandler(d Dependencies) *ImageHandler { return &ImageHandler{d: d} }

// Upload POST /api/v1/upload，multipart 字段 image
func (h *ImageHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile(imageField)
	if err != nil {
		// filename="" 的 part 会被 multipart 当作普通字段
		if form := c.Request.MultipartForm; form != nil {
			if _, ok := form.Value[imageField]; ok {
				response.Fail(c, retcode.New(retcode.EmptyFilename, "No selected file"))
				return
			}
		}
		response.Fail(c, retcode.New(retcode.MissingFile, "No file part"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Fail(c, retcode.Storage(err))
		return
	}
	defer f.Close()

	name, err := h.d.Image.Upload(c.Request.Context(), service.UploadParams{
		Filename:    fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	logging.FromContext(c.Request.Context()).Info("image_uploaded", zap.String("filename", name), zap.Int64("size", fh.Size))
	c.JSON(http.StatusOK, gin.H{"message": "File uploaded successfully", "filename": name})
}

// List GET /api/v1/images
func (h *ImageHandler) List(c *gin.Context) {
	names, err := h.d.Image.List(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.JSON(c, names)
}

// Serve GET /uploads/:filename 原样返回文件内容
func (h *ImageHandler) Serve(c *gin.Context) {
	obj, err := h.d.Image.Open(c.Request.Context(), c.Param("filename"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	defer obj.Body.Close()
	c.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, obj.Body, nil)
}
