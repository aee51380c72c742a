package usecase

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"placement-backend/internal/domain"
	"placement-backend/pkg/antivirus"
	"placement-backend/pkg/apperror"
	"placement-backend/pkg/imageutil"
	"placement-backend/pkg/logger"
	"placement-backend/pkg/pdfcheck"
	"placement-backend/pkg/storage"
)

const (
	maxImageUploadBytes = 10 * 1024 * 1024
	imageMaxDimension   = 800
	imageJPEGQuality    = 80
)

type uploadUsecase struct {
	store    storage.ObjectStore
	scanner  antivirus.Scanner
	activity domain.ActivityRecorder
}

// NewUploadUsecase accepts a nil store; uploads then answer 503.
// A nil scanner skips virus scanning.
func NewUploadUsecase(store storage.ObjectStore, scanner antivirus.Scanner, activity domain.ActivityRecorder) domain.UploadUsecase {
	return &uploadUsecase{store: store, scanner: scanner, activity: activity}
}

func (u *uploadUsecase) Upload(ctx context.Context, actor domain.Actor, kind, filename string, data []byte) (*domain.UploadResult, error) {
	if u.store == nil {
		return nil, apperror.Unavailable("File storage is not configured")
	}
	if len(data) == 0 {
		return nil, apperror.BadRequest("File is empty")
	}

	var (
		body        []byte
		contentType string
		ext         string
		pages       int
	)
	switch kind {
	case domain.UploadResume:
		if !actor.IsStudent() && !actor.IsAdmin() {
			return nil, apperror.Forbidden("Only students can upload resumes")
		}
		if strings.ToLower(filepath.Ext(filename)) != ".pdf" || !storage.MatchesMagicBytes(filename, data) {
			return nil, apperror.BadRequest("Resume must be a PDF file")
		}
		res := pdfcheck.Validate(data, pdfcheck.ResumeLimits)
		if !res.Valid {
			return nil, apperror.BadRequest(res.Error)
		}
		body, contentType, ext, pages = data, "application/pdf", ".pdf", res.PageCount

	case domain.UploadPhoto, domain.UploadLogo:
		if kind == domain.UploadLogo && !actor.IsRecruiter() && !actor.IsAdmin() {
			return nil, apperror.Forbidden("Only recruiters can upload company logos")
		}
		if len(data) > maxImageUploadBytes {
			return nil, apperror.BadRequest("Image exceeds maximum allowed size of 10MB")
		}
		if !storage.IsImageMIME(http.DetectContentType(data)) {
			return nil, apperror.BadRequest("Image must be a JPEG, PNG or GIF file")
		}
		compressed, err := imageutil.CompressToJPEG(data, imageMaxDimension, imageJPEGQuality)
		if errors.Is(err, imageutil.ErrImageTooLarge) {
			return nil, apperror.BadRequest("Image dimensions are too large")
		}
		if err != nil {
			return nil, apperror.BadRequest("Image could not be decoded")
		}
		body, contentType, ext = compressed, "image/jpeg", ".jpg"

	default:
		return nil, apperror.BadRequest("kind must be one of resume, photo, logo")
	}

	if u.scanner != nil {
		// scan the original bytes, not the re-encoded image
		res := u.scanner.Scan(ctx, data)
		if res.Err != nil {
			logger.Log.Error("virus scan failed", "kind", kind, "error", res.Err)
			return nil, apperror.Unavailable("File scanning is temporarily unavailable")
		}
		if res.Infected {
			logger.Log.Warn("infected upload rejected", "kind", kind, "threat", res.ThreatName, "user_id", actor.ID)
			return nil, apperror.BadRequest("File failed security scan")
		}
	}

	key := storage.ObjectKey(kind, filename, ext)
	url, err := u.store.Put(ctx, key, contentType, body)
	if err != nil {
		if errors.Is(err, storage.ErrNotConfigured) {
			return nil, apperror.Unavailable("File storage is not configured")
		}
		logger.Log.Error("upload failed", "kind", kind, "key", key, "error", err)
		return nil, apperror.New(http.StatusBadGateway, "Failed to store file", err)
	}

	recordActivity(ctx, u.activity, actor, "upload", "file", key, map[string]any{"kind": kind, "size": len(body)})
	return &domain.UploadResult{URL: url, Key: key, ContentType: contentType, Size: len(body), Pages: pages}, nil
}
