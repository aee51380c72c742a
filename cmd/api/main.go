package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"placement-backend/config"
	_ "placement-backend/docs" // Important for Swagger
	v1 "placement-backend/internal/delivery/http/v1"
	"placement-backend/internal/domain"
	"placement-backend/internal/realtime"
	"placement-backend/internal/repository/postgres"
	"placement-backend/internal/scheduler"
	"placement-backend/internal/usecase"
	"placement-backend/pkg/antivirus"
	"placement-backend/pkg/auth"
	"placement-backend/pkg/cache"
	"placement-backend/pkg/database"
	"placement-backend/pkg/email"
	"placement-backend/pkg/logger"
	"placement-backend/pkg/redis"
	"placement-backend/pkg/storage"
	"placement-backend/pkg/validation"
)

// @title           Placement Portal API
// @version         1.0
// @description     Backend for the college placement portal.
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting placement backend", "port", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl, database.DefaultPoolConfig())
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Optional Redis: shared cache, presence, rate limits and cross-instance realtime
	var kv cache.Cache = cache.NewMemoryCache()
	var presence domain.PresenceTracker = realtime.NewMemoryPresence(cfg.ActiveUserWindow)
	hub := realtime.NewHub(realtime.DefaultBuffer)
	var events domain.EventPublisher = hub

	if cfg.RedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, using in-process fallbacks", "error", err)
		}
	}
	redisClient := redis.Client()
	if redisClient != nil {
		kv = cache.NewRedisCache(redisClient)
		presence = realtime.NewRedisPresence(redisClient, cfg.ActiveUserWindow)

		bridge := realtime.NewRedisBridge(hub, redisClient)
		events = bridge
		go func() {
			if err := bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Log.Error("Realtime bridge stopped", "error", err)
			}
		}()
		logger.Log.Info("Redis connected", "origin", bridge.Origin())
	}
	defer redis.Close()

	// 5. Optional object storage
	var objectStore storage.ObjectStore
	var storagePinger usecase.Pinger
	if cfg.StorageConfigured() {
		s3Store, err := storage.NewS3Store(ctx, storage.S3Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			PublicBaseURL:   cfg.S3PublicBaseURL,
		})
		if err != nil {
			logger.Log.Warn("Object storage unavailable - uploads disabled", "error", err)
		} else {
			objectStore, storagePinger = s3Store, s3Store
		}
	} else {
		logger.Log.Warn("Object storage not configured - uploads disabled")
	}

	// 6. Setup Email Service
	emailService := email.NewEmailService(cfg)
	if !emailService.IsConfigured() {
		logger.Log.Warn("Email service not fully configured - notification emails disabled")
	}

	// 7. Setup Repositories
	profileRepo := postgres.NewProfileRepository(dbPool)
	studentRepo := postgres.NewStudentRepository(dbPool)
	companyRepo := postgres.NewCompanyRepository(dbPool)
	jobRepo := postgres.NewJobRepository(dbPool)
	applicationRepo := postgres.NewApplicationRepository(dbPool)
	driveRepo := postgres.NewDriveRepository(dbPool)
	attendanceRepo := postgres.NewAttendanceRepository(dbPool)
	settingsRepo := postgres.NewSettingsRepository(dbPool)
	notificationRepo := postgres.NewNotificationRepository(dbPool)
	activityRepo := postgres.NewActivityRepository(dbPool)
	analyticsRepo := postgres.NewAnalyticsRepository(dbPool)

	// 8. Setup UseCases
	validate := validation.New()
	activityUC := usecase.NewActivityUsecase(activityRepo)
	analyticsUC := usecase.NewAnalyticsUsecase(analyticsRepo, applicationRepo, profileRepo, studentRepo, attendanceRepo, presence, kv, cfg.StatsCacheTTL)
	events = usecase.NewInvalidatingPublisher(events, analyticsUC)
	notificationUC := usecase.NewNotificationUsecase(notificationRepo, profileRepo, settingsRepo, emailService, activityUC, events)
	profileUC := usecase.NewProfileUsecase(profileRepo, activityUC)
	studentUC := usecase.NewStudentUsecase(studentRepo, validate, activityUC, events)
	companyUC := usecase.NewCompanyUsecase(companyRepo, validate, activityUC, events)
	jobUC := usecase.NewJobUsecase(jobRepo, companyRepo, validate, activityUC, events)
	applicationUC := usecase.NewApplicationUsecase(applicationRepo, jobRepo, studentRepo, companyRepo, settingsRepo, notificationUC, activityUC, events)
	driveUC := usecase.NewDriveUsecase(driveRepo, studentRepo, companyRepo, notificationUC, kv, validate, activityUC, events)
	attendanceUC := usecase.NewAttendanceUsecase(attendanceRepo, driveRepo, studentRepo, companyRepo, events)
	settingsUC := usecase.NewSettingsUsecase(settingsRepo, kv, validate, activityUC, events)
	reportUC := usecase.NewReportUsecase(studentRepo)
	var scanner antivirus.Scanner
	if cfg.ClamAVAddress != "" {
		scanner = antivirus.NewClamAV(cfg.ClamAVAddress, cfg.ClamAVTimeout)
	}
	uploadUC := usecase.NewUploadUsecase(objectStore, scanner, activityUC)

	optional := map[string]usecase.Pinger{"storage": storagePinger}
	if scanner != nil {
		optional["antivirus"] = scanner
	}
	if cfg.RedisURL != "" {
		optional["redis"] = usecase.PingFunc(redis.HealthCheck)
	}
	healthUC := usecase.NewHealthUsecase(dbPool, optional)

	// 9. Setup Auth (HS256 secret and/or RS256 through JWKS)
	var jwksProvider *auth.Provider
	if cfg.SupabaseUrl != "" {
		jwksProvider = auth.NewProvider(cfg.SupabaseUrl + "/auth/v1/.well-known/jwks.json")
	}
	verifier := auth.NewVerifier(cfg.SupabaseJWTSecret, jwksProvider)

	// 10. Scheduler
	sched := scheduler.New(cfg.SchedulerJobTimeout)
	if err := sched.Register(scheduler.PlacementJobs(scheduler.Services{
		Attendance:     attendanceUC,
		Presence:       presence,
		Notifications:  notificationUC,
		Drives:         driveUC,
		Jobs:           jobUC,
		Events:         events,
		AttendanceSpec: cfg.AttendanceRefreshSpec,
	})); err != nil {
		logger.Log.Error("Invalid scheduler configuration", "error", err)
		os.Exit(1)
	}
	sched.Start()

	// 11. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		ProfileUC:      profileUC,
		StudentUC:      studentUC,
		CompanyUC:      companyUC,
		JobUC:          jobUC,
		ApplicationUC:  applicationUC,
		DriveUC:        driveUC,
		AttendanceUC:   attendanceUC,
		SettingsUC:     settingsUC,
		NotificationUC: notificationUC,
		ActivityUC:     activityUC,
		AnalyticsUC:    analyticsUC,
		ReportUC:       reportUC,
		UploadUC:       uploadUC,
		HealthUC:       healthUC,
		Verifier:       verifier,
		Presence:       presence,
		Hub:            hub,
		Redis:          redisClient,
		Config:         cfg,
	})

	// 12. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
			stop()
		}
	}()

	// Graceful Shutdown
	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}
	sched.Stop()

	logger.Log.Info("Server exiting", "realtime_subscribers", hub.Count())
}
