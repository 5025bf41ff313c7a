package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/opencampus/academ-api/api/swagger"
	"github.com/opencampus/academ-api/internal/handler"
	"github.com/opencampus/academ-api/internal/middleware"
	"github.com/opencampus/academ-api/internal/repository"
	"github.com/opencampus/academ-api/internal/service"
	"github.com/opencampus/academ-api/pkg/cache"
	"github.com/opencampus/academ-api/pkg/config"
	"github.com/opencampus/academ-api/pkg/database"
	"github.com/opencampus/academ-api/pkg/logger"
	corsmiddleware "github.com/opencampus/academ-api/pkg/middleware/cors"
	reqidmiddleware "github.com/opencampus/academ-api/pkg/middleware/requestid"
)

// @title Academ API
// @version 1.0.0
// @description Role-based academic records platform
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, roster cache disabled", "error", err)
		redisClient = nil
	}

	accountRepo := repository.NewAccountRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	instructorRepo := repository.NewInstructorRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	rosterRepo := repository.NewRosterRepository(db)

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	rosterSvc := service.NewRosterService(rosterRepo, redisClient, metricsSvc, service.RosterOptions{
		CacheEnabled:  cfg.Roster.CacheEnabled,
		CacheTTL:      cfg.Roster.CacheTTL,
		ExportEnabled: cfg.Roster.ExportEnabled,
	}, logr)

	authSvc := service.NewAuthService(accountRepo, studentRepo, instructorRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	identitySvc := service.NewIdentityService(accountRepo, studentRepo, instructorRepo, validate, logr)
	catalogSvc := service.NewCatalogService(courseRepo, sectionRepo, instructorRepo, rosterSvc, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, studentRepo, courseRepo, sectionRepo, rosterSvc, validate, logr)
	courseworkSvc := service.NewCourseworkService(assignmentRepo, submissionRepo, sectionRepo, validate, logr)
	lessonSvc := service.NewLessonService(lessonRepo, sectionRepo, validate, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Register(r, cfg.APIPrefix, handler.Services{
		Auth:       authSvc,
		Identity:   identitySvc,
		Catalog:    catalogSvc,
		Enrollment: enrollmentSvc,
		Coursework: courseworkSvc,
		Lessons:    lessonSvc,
		Rosters:    rosterSvc,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
