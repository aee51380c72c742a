package v1

import (
	"time"

	"placement-backend/config"
	"placement-backend/internal/delivery/http/middleware"
	"placement-backend/internal/domain"
	"placement-backend/internal/realtime"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	ProfileUC      domain.ProfileUsecase
	StudentUC      domain.StudentUsecase
	CompanyUC      domain.CompanyUsecase
	JobUC          domain.JobUsecase
	ApplicationUC  domain.ApplicationUsecase
	DriveUC        domain.DriveUsecase
	AttendanceUC   domain.AttendanceUsecase
	SettingsUC     domain.SettingsUsecase
	NotificationUC domain.NotificationUsecase
	ActivityUC     domain.ActivityUsecase
	AnalyticsUC    domain.AnalyticsUsecase
	ReportUC       domain.ReportUsecase
	UploadUC       domain.UploadUsecase
	HealthUC       domain.HealthUsecase

	Verifier middleware.TokenVerifier
	Presence domain.PresenceTracker
	Hub      *realtime.Hub
	// Redis is optional; rate limits fall back to process memory when nil
	Redis  *goredis.Client
	Config *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	cfg := deps.Config
	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimitMiddleware(middleware.GlobalRateLimitConfig(cfg.RateLimitGlobalThreshold, window), deps.Redis))

	v1 := r.Group("/v1")

	NewHealthHandler(v1, deps.HealthUC)

	if cfg.EnableSwagger {
		v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Verifier, deps.ProfileUC, deps.Presence))
	protected.Use(middleware.CSRFMiddleware(cfg.SecureCookies))
	protected.Use(middleware.MaintenanceMiddleware(deps.SettingsUC))
	{
		NewAuthHandler(protected, deps.ProfileUC)
		NewStudentHandler(protected, deps.StudentUC)
		NewCompanyHandler(protected, deps.CompanyUC)
		NewJobHandler(protected, deps.JobUC)
		NewApplicationHandler(protected, deps.ApplicationUC)
		NewDriveHandler(protected, deps.DriveUC)
		NewAttendanceHandler(protected, deps.AttendanceUC)
		NewSettingsHandler(protected, deps.SettingsUC)
		NewNotificationHandler(protected, deps.NotificationUC)
		NewRealtimeHandler(protected, deps.Hub, deps.Presence)
		NewUploadHandler(protected, deps.UploadUC,
			middleware.RateLimitMiddleware(middleware.UploadRateLimitConfig(cfg.RateLimitUploadThreshold, window), deps.Redis))

		admin := protected.Group("/admin", middleware.RequireRole(domain.RoleAdmin))
		NewAdminHandler(admin, deps.AnalyticsUC, deps.ActivityUC, deps.ReportUC, deps.NotificationUC)
	}

	return r
}
