package domain

import "context"

const (
	UploadResume = "resume"
	UploadPhoto  = "photo"
	UploadLogo   = "logo"
)

type UploadResult struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	Pages       int    `json:"pages,omitempty"`
}

type UploadUsecase interface {
	Upload(ctx context.Context, actor Actor, kind, filename string, data []byte) (*UploadResult, error)
}

// HealthReport is served by GET /v1/health.
type HealthReport struct {
	Status string            `json:"status"` // healthy, degraded, down
	Checks map[string]string `json:"checks"`
}

type HealthUsecase interface {
	Check(ctx context.Context) *HealthReport
}
