package handlers

import (
	"errors"
	"net/http"

	"campusfeed/internal/services"

	"github.com/gin-gonic/gin"
)

// UploadHandler 文件上传（PDF、图片）
type UploadHandler struct {
	store services.Storage
}

func NewUploadHandler(store services.Storage) *UploadHandler {
	return &UploadHandler{store: store}
}

// Upload 处理上传请求 (POST /api/admin/uploads/:bucket)
func (h *UploadHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxUploadSize+1<<20)

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, http.StatusRequestEntityTooLarge, "File is larger than 20 MB.")
			return
		}
		fail(c, http.StatusBadRequest, "Please choose a file to upload.")
		return
	}
	defer file.Close()

	result, err := services.Upload(c.Request.Context(), h.store, c.Param("bucket"), file)
	if err != nil {
		handleError(c, err)
		return
	}
	created(c, result)
}
