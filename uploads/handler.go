package uploads

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/user/inkwell-go/apperror"
	"github.com/user/inkwell-go/auth"
	"github.com/user/inkwell-go/validation"
)

// CoverUploadRequest is the body of POST /api/uploads/cover.
type CoverUploadRequest struct {
	ContentType string `json:"content_type" validate:"required"`
	Size        int64  `json:"size" validate:"required,gt=0"`
}

// CoverUploadResponse tells the browser how to upload the image.
type CoverUploadResponse struct {
	UploadURL string            `json:"upload_url"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
	Key       string            `json:"key"`
	PublicURL string            `json:"public_url"`
	ExpiresAt time.Time         `json:"expires_at"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/uploads/cover", h.presignCover)
}

// presignCover godoc
// @Summary Presign a cover image upload
// @Description Signed-in users only. Images up to 4 MiB.
// @Tags Uploads
// @Accept json
// @Produce json
// @Param body body uploads.CoverUploadRequest true "Image metadata"
// @Success 200 {object} uploads.CoverUploadResponse
// @Failure 400 {object} apperror.ErrorResponse "Not an image or too large"
// @Failure 502 {object} apperror.ErrorResponse "Storage unavailable"
// @Router /api/uploads/cover [post]
func (h *Handler) presignCover(w http.ResponseWriter, r *http.Request) {
	var req CoverUploadRequest
	if err := validation.DecodeJSON(w, r, &req); err != nil {
		apperror.WriteError(w, r, err)
		return
	}
	res, err := h.service.PresignCover(r.Context(), auth.SessionFromContext(r.Context()), req)
	if err != nil {
		apperror.WriteError(w, r, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, res)
}
