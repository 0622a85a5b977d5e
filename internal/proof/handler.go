package proof

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/apotheka-systems/botendienst/pkg/common"
)

// Handler handles HTTP requests for proof of delivery
type Handler struct {
	service *Service
}

// NewHandler creates a new proof handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// UploadPhoto uploads a delivery photo
// POST /api/v1/stops/:id/photos (multipart field "file")
func (h *Handler) UploadPhoto(c *gin.Context) {
	stopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid stop ID")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "missing file")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "failed to read file")
		return
	}
	defer file.Close()

	artifact, err := h.service.UploadPhoto(c.Request.Context(), stopID, file,
		fileHeader.Size, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		common.RespondError(c, err, "failed to upload photo")
		return
	}

	common.CreatedResponse(c, artifact)
}

// UploadSignature uploads a recipient signature image
// POST /api/v1/stops/:id/signature (multipart fields "file", "signed_by")
func (h *Handler) UploadSignature(c *gin.Context) {
	stopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid stop ID")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "missing file")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "failed to read file")
		return
	}
	defer file.Close()

	var signedBy *string
	if v := c.PostForm("signed_by"); v != "" {
		signedBy = &v
	}

	artifact, err := h.service.UploadSignature(c.Request.Context(), stopID, signedBy, file,
		fileHeader.Size, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		common.RespondError(c, err, "failed to upload signature")
		return
	}

	common.CreatedResponse(c, artifact)
}

// ListArtifacts lists a stop's proof artifacts
// GET /api/v1/stops/:id/proof
func (h *Handler) ListArtifacts(c *gin.Context) {
	stopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid stop ID")
		return
	}

	artifacts, err := h.service.ListArtifacts(c.Request.Context(), stopID)
	if err != nil {
		common.RespondError(c, err, "failed to list artifacts")
		return
	}

	common.SuccessResponse(c, artifacts)
}

// DeleteArtifact removes a proof artifact
// DELETE /api/v1/proof/:id
func (h *Handler) DeleteArtifact(c *gin.Context) {
	artifactID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid artifact ID")
		return
	}

	if err := h.service.DeleteArtifact(c.Request.Context(), artifactID); err != nil {
		common.RespondError(c, err, "failed to delete artifact")
		return
	}

	common.SuccessResponse(c, gin.H{"deleted": true})
}
