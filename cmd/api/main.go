package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"daycare/internal/auth"
	"daycare/internal/config"
	"daycare/internal/daycare"
	"daycare/internal/httpmiddleware"
	"daycare/internal/queue"
	"daycare/internal/report"
	"daycare/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Printf("warning: db not reachable: %v", err)
	}
	defer func() {
		if db != nil {
			_ = db.Close()
		}
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "daycare:reports")
	}

	docs := store.NewDocuments(db.Client)
	ctx := context.Background()
	if err := docs.EnsureSchema(ctx); err != nil {
		log.Printf("warning: schema setup failed: %v", err)
	}

	svc := daycare.NewService(docs)
	svc.Refresh(ctx)

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db != nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	r.POST("/v1/devices/register", func(c *gin.Context) {
		var req struct {
			DeviceID string `json:"device_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := registerDevice(c.Request.Context(), docs, req.DeviceID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "device registration failed"})
			return
		}

		tokens, err := auth.Issue(req.DeviceID, "device", cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL, cfg.RefreshTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
			return
		}

		if err := redisClient.SaveRefreshToken(c.Request.Context(), req.DeviceID, tokens.RefreshToken, tokens.RefreshExp); err != nil {
			log.Printf("save refresh token failed: %v", err)
		}

		c.JSON(http.StatusCreated, gin.H{
			"access_token":  tokens.AccessToken,
			"refresh_token": tokens.RefreshToken,
			"expires_at":    tokens.AccessExp.Unix(),
		})
	})

	r.POST("/v1/devices/refresh", func(c *gin.Context) {
		var req struct {
			RefreshToken string `json:"refresh_token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		deviceID, err := redisClient.RefreshTokenDevice(c.Request.Context(), req.RefreshToken)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token lookup failed"})
			return
		}
		if deviceID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown refresh token"})
			return
		}

		// Rotation: the presented token is revoked before the new pair
		// is issued, so a stolen token works at most once.
		if err := redisClient.RevokeRefreshToken(c.Request.Context(), req.RefreshToken); err != nil {
			log.Printf("revoke refresh token failed: %v", err)
		}

		tokens, err := auth.Issue(deviceID, "device", cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL, cfg.RefreshTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
			return
		}
		if err := redisClient.SaveRefreshToken(c.Request.Context(), deviceID, tokens.RefreshToken, tokens.RefreshExp); err != nil {
			log.Printf("save refresh token failed: %v", err)
		}

		c.JSON(http.StatusOK, gin.H{
			"access_token":  tokens.AccessToken,
			"refresh_token": tokens.RefreshToken,
			"expires_at":    tokens.AccessExp.Unix(),
		})
	})

	authGroup := r.Group("/v1", auth.DeviceAuth(cfg.JWTSigningKey, cfg.JWTIssuer))

	authGroup.GET("/roster", func(c *gin.Context) {
		if err := svc.LoadRoster(c.Request.Context()); err != nil {
			log.Printf("load roster failed: %v", err)
		}
		c.JSON(http.StatusOK, gin.H{"children": svc.Roster()})
	})

	authGroup.GET("/overview", func(c *gin.Context) {
		svc.Refresh(c.Request.Context())
		svc.EnsureAutoAbsent(c.Request.Context())
		c.JSON(http.StatusOK, svc.Overview())
	})

	authGroup.GET("/config", func(c *gin.Context) {
		if err := svc.LoadConfig(c.Request.Context()); err != nil {
			log.Printf("load config failed: %v", err)
		}
		weekly, defaults := svc.Config()
		c.JSON(http.StatusOK, gin.H{
			"theme":             weekly,
			"themeOfTheDay":     defaults.Themes,
			"commonParentsNote": defaults.CommonParentsNote,
		})
	})

	authGroup.POST("/attendance", func(c *gin.Context) {
		var req struct {
			Child  string `json:"child" binding:"required"`
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		res, err := svc.MarkAttendance(c.Request.Context(), req.Child, req.Status)
		if err != nil {
			if !res.Local {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			// Local cache intentionally keeps the mark; the caller
			// sees the persistence gap in the result.
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "result": res})
			return
		}
		c.JSON(http.StatusOK, gin.H{"result": res})
	})

	authGroup.POST("/attendance/:child/out", func(c *gin.Context) {
		outTime, err := svc.MarkOutTime(c.Request.Context(), c.Param("child"))
		if err != nil {
			if err == daycare.ErrReportNotFull {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"outTime": outTime})
	})

	authGroup.GET("/reports/form", func(c *gin.Context) {
		child := c.Query("child")
		svc.Refresh(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"form":     svc.FormFor(child),
			"eligible": svc.EligibleChildren(child),
		})
	})

	authGroup.POST("/reports", func(c *gin.Context) {
		var req struct {
			Form   report.FormState `json:"form"`
			Status string           `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Status != string(report.StatusPartial) && req.Status != string(report.StatusFull) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be partial or full"})
			return
		}

		id, err := svc.SaveReport(c.Request.Context(), req.Form, report.Status(req.Status))
		if err != nil {
			if err == report.ErrNoChildSelected {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}

		// Submitted reports go to the notification worker.
		if req.Status == string(report.StatusFull) {
			if err := q.Publish(ctx, queue.Message{Type: "report", Body: []byte(id)}); err != nil {
				log.Printf("queue publish failed: %v", err)
			}
		}

		c.JSON(http.StatusOK, gin.H{"id": id, "status": req.Status})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

// registerDevice records a classroom tablet; re-registration is a no-op.
func registerDevice(ctx context.Context, docs *store.Documents, deviceID string) error {
	existing, err := docs.ListAll(ctx, daycare.CollectionDevices)
	if err != nil {
		return err
	}
	for _, d := range existing {
		if id, _ := d.Fields["deviceId"].(string); id == deviceID {
			return nil
		}
	}
	_, err = docs.CreateDocument(ctx, daycare.CollectionDevices, map[string]any{
		"deviceId":     deviceID,
		"registeredAt": time.Now(),
	})
	return err
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
