package main

import (
	"context"   // Shutdown deadline
	"errors"    // Server close detection
	"net/http"  // HTTP server
	"os"        // Signals
	"os/signal" // Signal notification
	"syscall"   // SIGTERM
	"time"      // Timeouts

	"yield_wallet/internal/api"             // HTTP handlers
	"yield_wallet/internal/catalog"         // Plan catalog
	"yield_wallet/internal/config"          // Configuration
	"yield_wallet/internal/db"              // MySQL connection and schema
	"yield_wallet/internal/jobs"            // Background jobs
	"yield_wallet/internal/ledger"          // Ledger service
	"yield_wallet/internal/middleware"      // Rate limiter
	"yield_wallet/internal/store"           // Store contract
	"yield_wallet/internal/store/filestore" // JSON file backend
	"yield_wallet/internal/store/gormstore" // MySQL backend

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// openStore picks the backend once, at start-up
func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.StoreDriver == config.DriverMySQL {
		gdb, err := db.Open(cfg)
		if err != nil {
			return nil, err
		}
		// Keep the schema in step with the models
		if err := db.Migrate(gdb); err != nil {
			return nil, err
		}
		return gormstore.New(gdb), nil
	}
	return filestore.Open(cfg.DataFile)
}

// Main function to set up and run the server
func main() {
	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{}) // Machine readable logs in production
	}

	st, err := openStore(cfg)
	if err != nil {
		logrus.Fatalf("failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer st.Close()
	logrus.WithField("driver", cfg.StoreDriver).Info("Store ready")

	plans, err := catalog.LoadOrDefault(cfg.PlansFile)
	if err != nil {
		logrus.Fatalf("failed to load plans: %v", err)
	}

	// Setup Redis client, caching is disabled without an address
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		defer redisClient.Close()
		// Test Redis connection
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
	}

	svc := ledger.NewService(st, plans, ledger.Options{
		SignupBonus:    cfg.SignupBonus,
		ReferralReward: cfg.ReferralReward,
		MinDeposit:     cfg.MinDeposit,
		MinWithdrawal:  cfg.MinWithdrawal,
	})

	// Seed the admin account
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if _, err := svc.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logrus.Fatalf("failed to seed admin: %v", err)
		}
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	scheduler, err := jobs.New(svc, limiter, cfg.ReconcileCron)
	if err != nil {
		logrus.Fatalf("invalid reconcile schedule %q: %v", cfg.ReconcileCron, err)
	}
	scheduler.Start()

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}
	api.Register(r, api.Deps{
		Ledger:    svc,
		Redis:     redisClient,
		Limiter:   limiter,
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
		CacheTTL:  cfg.CacheTTL,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logrus.Info("Server running on " + cfg.AppPort) // Log server start
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server error: %v", err)
		}
	}()

	// Wait for a termination signal, then drain
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithField("error", err.Error()).Error("Server shutdown failed")
	}
	scheduler.Stop(ctx)
}
