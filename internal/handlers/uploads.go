package handlers

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"creditsync-backend/internal/apperrors"
	"creditsync-backend/internal/middleware"
	"creditsync-backend/internal/models"
	"creditsync-backend/internal/services"
)

type UploadsHandler struct {
	upload        *services.UploadService
	maxFileSize   int64
	maxBatchFiles int
}

func NewUploadsHandler(upload *services.UploadService, maxFileSize int64, maxBatchFiles int) *UploadsHandler {
	return &UploadsHandler{
		upload:        upload,
		maxFileSize:   maxFileSize,
		maxBatchFiles: maxBatchFiles,
	}
}

// Upload godoc
// @Summary     Submit one content unit for a material item
// @Description Accepts either a multipart "file" part or a "text_content" form field
// @Tags        uploads
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Order ID (UUID)"
// @Param       item_id path string true "Material item ID (UUID)"
// @Param       file formData file false "Binary content"
// @Param       text_content formData string false "Text content"
// @Success     201 {object} models.Response
// @Failure     400 {object} models.Response
// @Failure     403 {object} models.Response
// @Failure     404 {object} models.Response
// @Router      /orders/{id}/items/{item_id}/upload [post]
func (h *UploadsHandler) Upload(c *gin.Context) {
	orderID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := uuidParam(c, "item_id")
	if !ok {
		return
	}

	unit, err := readContentUnit(c, h.maxFileSize)
	if err != nil {
		respondError(c, err)
		return
	}

	p := middleware.PrincipalFrom(c)
	file, err := h.upload.Submit(c.Request.Context(), orderID, itemID, *p, unit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "content submitted", models.NewFileView(file))
}

// UploadBatch godoc
// @Summary     Submit several files for a material item in one request
// @Description Each file is validated and persisted independently; the result lists successes and failures side by side
// @Tags        uploads
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Order ID (UUID)"
// @Param       item_id path string true "Material item ID (UUID)"
// @Param       files formData file true "Binary contents"
// @Success     201 {object} models.Response
// @Failure     400 {object} models.Response
// @Router      /orders/{id}/items/{item_id}/upload/batch [post]
func (h *UploadsHandler) UploadBatch(c *gin.Context) {
	orderID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := uuidParam(c, "item_id")
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		respondBindError(c, err)
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		respondError(c, apperrors.ValidationFailed("no files in request"))
		return
	}
	if len(headers) > h.maxBatchFiles {
		respondError(c, apperrors.ValidationFailed(
			fmt.Sprintf("batch exceeds the %d file limit", h.maxBatchFiles)))
		return
	}

	units := make([]services.ContentUnit, 0, len(headers))
	for _, header := range headers {
		unit, err := readFileUnit(header, h.maxFileSize)
		if err != nil {
			respondError(c, err)
			return
		}
		units = append(units, unit)
	}

	p := middleware.PrincipalFrom(c)
	result, err := h.upload.SubmitBatch(c.Request.Context(), orderID, itemID, *p, units)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "batch processed", result)
}

// GetFile godoc
// @Summary     Get one uploaded file's record
// @Tags        uploads
// @Produce     json
// @Security    Bearer
// @Param       id path string true "File ID (UUID)"
// @Success     200 {object} models.Response
// @Failure     403 {object} models.Response
// @Failure     404 {object} models.Response
// @Router      /files/{id} [get]
func (h *UploadsHandler) GetFile(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	p := middleware.PrincipalFrom(c)
	file, err := h.upload.GetFileInfo(c.Request.Context(), id, *p)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", models.NewFileView(file))
}

// DeleteFile godoc
// @Summary     Delete an uploaded file
// @Description Removes the stored blob and thumbnail along with the record. Rejected once the order is completed
// @Tags        uploads
// @Produce     json
// @Security    Bearer
// @Param       id path string true "File ID (UUID)"
// @Success     200 {object} models.Response
// @Failure     400 {object} models.Response
// @Failure     403 {object} models.Response
// @Failure     404 {object} models.Response
// @Router      /files/{id} [delete]
func (h *UploadsHandler) DeleteFile(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	p := middleware.PrincipalFrom(c)
	if err := h.upload.DeleteFile(c.Request.Context(), id, *p); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "file deleted", nil)
}

// readContentUnit extracts one content unit from the request: a "file"
// part when present, otherwise the "text_content" field.
func readContentUnit(c *gin.Context, maxFileSize int64) (services.ContentUnit, error) {
	header, err := c.FormFile("file")
	if err == nil {
		return readFileUnit(header, maxFileSize)
	}
	if text := c.PostForm("text_content"); text != "" {
		return services.ContentUnit{TextContent: text}, nil
	}
	return services.ContentUnit{}, apperrors.ValidationFailed("request carries neither a file nor text content")
}

func readFileUnit(header *multipart.FileHeader, maxFileSize int64) (services.ContentUnit, error) {
	if header.Size > maxFileSize {
		return services.ContentUnit{}, apperrors.ValidationFailed(
			fmt.Sprintf("%s exceeds the %d byte size limit", header.Filename, maxFileSize))
	}
	f, err := header.Open()
	if err != nil {
		return services.ContentUnit{}, apperrors.Upstream("failed to read upload", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return services.ContentUnit{}, apperrors.Upstream("failed to read upload", err)
	}
	return services.ContentUnit{
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Data:     data,
	}, nil
}
