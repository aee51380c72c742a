package v1

import (
	"io"
	"net/http"

	"placement-backend/internal/delivery/http/response"
	"placement-backend/internal/domain"
	"placement-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// maxUploadBytes bounds the multipart body; per-kind limits are enforced by the use case.
const maxUploadBytes = 12 << 20

type UploadHandler struct {
	uploadUC domain.UploadUsecase
}

func NewUploadHandler(protected *gin.RouterGroup, uploadUC domain.UploadUsecase, limiter gin.HandlerFunc) {
	handler := &UploadHandler{uploadUC: uploadUC}
	protected.POST("/uploads", limiter, handler.Upload)
}

// Upload godoc
// @Summary      Upload a file
// @Description  Resumes must be PDFs of 1 to 5 pages (max 5MB). Photos and logos are downscaled to 800px and stored as JPEG.
// @Tags         uploads
// @Accept       multipart/form-data
// @Produce      json
// @Param        kind  query     string  true  "resume, photo or logo"
// @Param        file  formData  file    true  "File to upload"
// @Success      201   {object}  response.Response{data=domain.UploadResult}
// @Failure      400   {object}  response.Response
// @Failure      503   {object}  response.Response
// @Router       /uploads [post]
// @Security     BearerAuth
func (h *UploadHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	file, err := c.FormFile("file")
	if err != nil {
		c.Error(apperror.BadRequest("No file uploaded"))
		return
	}
	src, err := file.Open()
	if err != nil {
		c.Error(apperror.BadRequest("Failed to open file"))
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		c.Error(apperror.BadRequest("Failed to read file"))
		return
	}

	result, err := h.uploadUC.Upload(c.Request.Context(), actorOf(c), c.Query("kind"), file.Filename, data)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "File uploaded", result)
}
