package handler

import (
	"context"
	"net/http"
	"time"

	"railway-reservation/internal/service"
	"railway-reservation/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthCheck 回報下游（資料庫、Redis）是否可用
type HealthCheck func(ctx context.Context) error

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func NewRouter(svc service.ReservationService, allowedOrigins []string, checks map[string]HealthCheck) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.Use(cors.New(corsConfig(allowedOrigins)))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	r.GET("/healthz", func(c *gin.Context) {
		status := gin.H{}
		healthy := true
		for name, check := range checks {
			if err := check(c.Request.Context()); err != nil {
				healthy = false
				status[name] = err.Error()
				continue
			}
			status[name] = "ok"
		}
		code := http.StatusOK
		if !healthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, Response{Success: healthy, Message: "health check", Data: status})
	})

	NewTicketHandler(svc).RegisterRoutes(r)
	return r
}

func requestLogger() gin.HandlerFunc {
	log := logger.WithComponent("handler")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
