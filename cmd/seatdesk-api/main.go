package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/readhall/seatdesk-api/api/swagger"
	"github.com/readhall/seatdesk-api/internal/handler"
	"github.com/readhall/seatdesk-api/internal/middleware"
	"github.com/readhall/seatdesk-api/internal/models"
	"github.com/readhall/seatdesk-api/internal/repository"
	"github.com/readhall/seatdesk-api/internal/service"
	"github.com/readhall/seatdesk-api/pkg/cache"
	"github.com/readhall/seatdesk-api/pkg/config"
	"github.com/readhall/seatdesk-api/pkg/database"
	"github.com/readhall/seatdesk-api/pkg/logger"
	corsmiddleware "github.com/readhall/seatdesk-api/pkg/middleware/cors"
	reqidmiddleware "github.com/readhall/seatdesk-api/pkg/middleware/requestid"
)

// @title SeatDesk API
// @version 1.0.0
// @description Library seat allocation and booking lifecycle service
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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	cacheRepo := repository.NewCacheRepository(nil, logr)
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	defer cacheRepo.Close()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled)
	tokenSvc := service.NewTokenService(cfg.JWT.Secret)

	seatRepo := repository.NewSeatRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	auditSvc := service.NewAuditService(auditRepo, cfg.Audit, logr)
	auditSvc.Start(context.Background())
	defer auditSvc.Stop()

	seatSvc := service.NewSeatService(seatRepo, bookingRepo, cacheSvc, auditSvc, metricsSvc, validate, logr, cfg.Booking.ReservedLookahead)
	shiftSvc := service.NewShiftService(shiftRepo, bookingRepo, cacheSvc, auditSvc, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, auditSvc, validate, logr)
	bookingSvc := service.NewBookingService(bookingRepo, seatRepo, studentRepo, shiftRepo, auditSvc, cacheSvc, metricsSvc, validate, logr, cfg.Booking)

	seatHandler := handler.NewSeatHandler(seatSvc, bookingSvc)
	shiftHandler := handler.NewShiftHandler(shiftSvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	auditHandler := handler.NewAuditHandler(auditSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// Catalog reads work without a token; every mutation authenticates.
	auth := middleware.JWT(tokenSvc)
	optional := middleware.OptionalJWT(tokenSvc)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleStaff)
	admin := middleware.RequireRoles(models.RoleAdmin)

	seats := api.Group("/seats")
	{
		seats.GET("", optional, seatHandler.List)
		seats.GET("/summary", optional, seatHandler.Summary)
		seats.GET("/:id", optional, seatHandler.Get)
		seats.GET("/:id/bookings", optional, seatHandler.ListBookings)
		seats.POST("", auth, admin, seatHandler.Create)
		seats.PUT("/:id", auth, admin, seatHandler.Update)
		seats.PUT("/:id/maintenance", auth, staff, seatHandler.SetMaintenance)
		seats.POST("/:id/reserve", auth, bookingHandler.Reserve)
	}

	bookings := api.Group("/bookings")
	bookings.Use(auth)
	{
		bookings.GET("", staff, bookingHandler.List)
		bookings.POST("/:id/cancel", bookingHandler.Cancel)
		bookings.POST("/:id/release", bookingHandler.Release)
	}

	shifts := api.Group("/shifts")
	{
		shifts.GET("", optional, shiftHandler.List)
		shifts.GET("/:id", optional, shiftHandler.Get)
		shifts.POST("", auth, admin, shiftHandler.Create)
		shifts.PUT("/:id", auth, admin, shiftHandler.Update)
		shifts.DELETE("/:id", auth, admin, shiftHandler.Delete)
	}

	students := api.Group("/students")
	students.Use(auth)
	{
		students.GET("", staff, studentHandler.List)
		students.GET("/:id", middleware.RBAC(string(models.RoleAdmin), string(models.RoleStaff), "SELF"), studentHandler.Get)
		students.POST("", staff, studentHandler.Register)
		students.PUT("/:id", staff, studentHandler.Update)
	}

	api.GET("/audit", auth, admin, auditHandler.Trail)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
