package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"activity-planner/internal/auth"
	"activity-planner/internal/config"
	"activity-planner/internal/db"
	"activity-planner/internal/handlers"
	"activity-planner/internal/middleware"
	"activity-planner/internal/observability"
	"activity-planner/internal/rabbitmq"
	"activity-planner/internal/repositories"
	"activity-planner/internal/telemetry"
	"activity-planner/internal/ws"
)

const uploadDir = "./uploads"

func main() {
	cfg := config.Load()

	database, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	shutdownTracer, err := observability.InitTracer(context.Background(), cfg.OTLPEndpoint, "activity-planner", cfg.Environment)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer shutdownTracer(context.Background())

	if publisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange); err != nil {
		log.Printf("ws event publishing disabled: %v", err)
	} else {
		observability.SetPublisher(publisher)
		defer publisher.Close()
	}

	auditPublisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer auditPublisher.Close()
	log.Printf("audit publisher mode=%s", rabbitmq.PublisherMode(auditPublisher))
	audit := telemetry.NewAuditEmitter(auditPublisher, cfg.AuditRouting, "activity-planner", cfg.Environment)

	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		log.Fatalf("failed to create upload dir: %v", err)
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, 7*24*time.Hour)

	activityRepo := repositories.NewActivityRepo(database)
	commentRepo := repositories.NewCommentRepo(database)
	profileRepo := repositories.NewProfileRepo(database)

	hub := ws.NewHub()

	activityHandler := handlers.NewActivityHandler(activityRepo, commentRepo, audit)
	profileHandler := handlers.NewProfileHandler(profileRepo, audit, uploadDir)
	userHandler := handlers.NewUserHandler(profileRepo, tokens)
	activityWS := ws.NewActivityWebSocketHandler(hub, activityRepo, commentRepo, tokens)

	router := gin.Default()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("activity-planner"))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(tokens)

	router.POST("/users/register", userHandler.Register)
	router.POST("/users/login", userHandler.Login)
	router.GET("/users/me", authMiddleware, userHandler.CurrentUser)

	router.GET("/activities", authMiddleware, activityHandler.ListActivities)
	router.POST("/activities", authMiddleware, activityHandler.CreateActivity)
	router.GET("/activities/:activity_id", authMiddleware, activityHandler.GetActivity)
	router.PUT("/activities/:activity_id", authMiddleware, activityHandler.UpdateActivity)
	router.DELETE("/activities/:activity_id", authMiddleware, activityHandler.DeleteActivity)
	router.POST("/activities/:activity_id/attend", authMiddleware, activityHandler.Attend)
	router.DELETE("/activities/:activity_id/attend", authMiddleware, activityHandler.Unattend)

	router.GET("/profiles/:username", authMiddleware, profileHandler.GetProfile)
	router.PUT("/profile", authMiddleware, profileHandler.UpdateBio)
	router.POST("/photos", authMiddleware, profileHandler.UploadPhoto)
	router.POST("/photos/:photo_id/setmain", authMiddleware, profileHandler.SetMainPhoto)
	router.DELETE("/photos/:photo_id", authMiddleware, profileHandler.DeletePhoto)

	router.GET("/ws/activities/:activity_id", activityWS.Handle)

	router.Static("/uploads", uploadDir)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterDebugRoutes(router, audit, cfg.Debug)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
