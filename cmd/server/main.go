package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Akhand0ps/Live-Attendance-System/internal/config"
	"github.com/Akhand0ps/Live-Attendance-System/internal/database"
	"github.com/Akhand0ps/Live-Attendance-System/internal/handlers"
	"github.com/Akhand0ps/Live-Attendance-System/internal/httpmiddleware"
	"github.com/Akhand0ps/Live-Attendance-System/internal/log"
	"github.com/Akhand0ps/Live-Attendance-System/internal/models"
	"github.com/Akhand0ps/Live-Attendance-System/internal/routes"
	"github.com/Akhand0ps/Live-Attendance-System/internal/session"
	"github.com/Akhand0ps/Live-Attendance-System/internal/store"
	"github.com/Akhand0ps/Live-Attendance-System/internal/utils"
	ws "github.com/Akhand0ps/Live-Attendance-System/internal/websocket"
)

func main() {
	// No .env in containers, environment comes from the runtime.
	_ = godotenv.Load()

	cfg := config.Load()
	log.Init(cfg.Env)
	defer log.Sync()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.ConnectDB(cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Logger.Fatal("failed connecting to database", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		cancel()
		log.Logger.Fatal("failed creating indexes", zap.Error(err))
	}
	cancel()

	users := store.NewMongoUserStore(db)
	classes := store.NewMongoClassStore(db)
	attendance := store.NewMongoAttendanceStore(db)

	coordinator := session.NewCoordinator(store.SessionBackend{
		Classes:    classes,
		Attendance: attendance,
	}, cfg.SessionTTL)

	hub := ws.NewHub(coordinator, classes, func(token string) (string, models.Role, error) {
		claims, err := utils.ValidateToken(token, cfg.JWTSecret)
		if err != nil {
			return "", "", err
		}
		return claims.UserID, claims.Role, nil
	})

	authHandler := handlers.NewAuthHandler(users, cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	classHandler := handlers.NewClassHandler(users, classes)
	attendanceHandler := handlers.NewAttendanceHandler(classes, attendance, coordinator)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/health", "/metrics"},
	}))
	r.Use(httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"success": true,
			"data": gin.H{
				"status": "Server is running",
			},
		})
	})

	routes.AuthRoutes(r, authHandler, cfg.JWTSecret)
	routes.ClassRoutes(r, classHandler, cfg.JWTSecret)
	routes.AttendanceRoutes(r, attendanceHandler, cfg.JWTSecret)
	r.GET("/ws", hub.Handle)

	if cfg.Env != "production" && cfg.Env != "prod" {
		routes.DebugRoutes(r, coordinator)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Logger.Info("server running", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Logger.Info("shutting down server")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Logger.Error("forced shutdown", zap.Error(err))
	}
	log.Logger.Info("server exited")
}
