// Package uploads hands out presigned URLs so browsers can upload post
// cover images straight to object storage.
package uploads

import (
	"context"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/user/inkwell-go/apperror"
	"github.com/user/inkwell-go/auth"
	"github.com/user/inkwell-go/config"
	"github.com/user/inkwell-go/logging"
	"github.com/user/inkwell-go/validation"
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/avif": ".avif",
}

// Service validates cover uploads and signs them.
type Service struct {
	presigner Presigner
	cfg       *config.UploadConfig
	log       logging.Logger
	now       func() time.Time
}

func NewService(presigner Presigner, cfg *config.UploadConfig, log logging.Logger) *Service {
	return &Service{presigner: presigner, cfg: cfg, log: log.With("component", "uploads"), now: time.Now}
}

// PresignCover accepts image/* content up to the configured size and returns
// where to PUT it and the URL it will be served from.
func (s *Service) PresignCover(ctx context.Context, session *auth.Claims, req CoverUploadRequest) (*CoverUploadResponse, error) {
	if err := auth.RequireSession(session); err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	mediaType, _, err := mime.ParseMediaType(req.ContentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return nil, apperror.NewValidationError("invalid input data",
			map[string]string{"content_type": "only image uploads are allowed"})
	}
	if req.Size > s.cfg.MaxImageBytes {
		return nil, apperror.NewValidationError("invalid input data",
			map[string]string{"size": fmt.Sprintf("image must be at most %d bytes", s.cfg.MaxImageBytes)})
	}

	key := fmt.Sprintf("covers/%s/%s%s", session.UserID, uuid.NewString(), imageExtensions[mediaType])
	signed, err := s.presigner.PresignPut(ctx, key, mediaType, req.Size, s.cfg.URLExpiry)
	if err != nil {
		return nil, apperror.NewExternalServiceError("failed to prepare upload", err)
	}

	headers := make(map[string]string, len(signed.Headers))
	for name := range signed.Headers {
		headers[name] = signed.Headers.Get(name)
	}

	s.log.Info(ctx, "cover upload presigned", "user_id", session.UserID, "key", key, "size", req.Size)
	return &CoverUploadResponse{
		UploadURL: signed.URL,
		Method:    signed.Method,
		Headers:   headers,
		Key:       key,
		PublicURL: s.publicURL(key),
		ExpiresAt: s.now().Add(s.cfg.URLExpiry),
	}, nil
}

func (s *Service) publicURL(key string) string {
	if base := strings.TrimSuffix(s.cfg.PublicBaseURL, "/"); base != "" {
		return base + "/" + key
	}
	if s.cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.cfg.Endpoint, "/"), s.cfg.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}
