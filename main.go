package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/culturequest/culturequest/backend/go-services/handlers"
	"github.com/culturequest/culturequest/backend/go-services/internal/config"
	"github.com/culturequest/culturequest/backend/go-services/internal/content"
	"github.com/culturequest/culturequest/backend/go-services/internal/contributors"
	"github.com/culturequest/culturequest/backend/go-services/internal/database"
	"github.com/culturequest/culturequest/backend/go-services/internal/leaderboard"
	"github.com/culturequest/culturequest/backend/go-services/internal/learners"
	"github.com/culturequest/culturequest/backend/go-services/internal/moderation"
	"github.com/culturequest/culturequest/backend/go-services/internal/oidc"
	"github.com/culturequest/culturequest/backend/go-services/internal/storage"
	"github.com/culturequest/culturequest/backend/go-services/internal/tokens"
	"github.com/culturequest/culturequest/backend/go-services/internal/topics"
	"github.com/culturequest/culturequest/backend/go-services/pkg/logger"
	"github.com/culturequest/culturequest/backend/go-services/pkg/metrics"
	"github.com/culturequest/culturequest/backend/go-services/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: keycloak=%v mongo=%v redis=%v", cfg.Keycloak.URL != "", cfg.MongoDB.URI != "", cfg.Redis.Host != "")

	r := gin.New()

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple — production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// Global middlewares: logging + recovery
	r.Use(gin.Logger(), gin.Recovery())

	// Connect to Redis early so the rate-limiter and leaderboard can use it
	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			rdb = nil
		} else {
			logger.Infof("Connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	// Optional global rate limiter (per-user when authenticated, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// Basic health endpoint
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// Keycloak OIDC verifier for moderator endpoints, with HS256 and insecure fallbacks
	ctx := context.Background()
	var verifier middleware.Verifier
	if cfg.Keycloak.URL != "" && cfg.Keycloak.ClientID != "" && cfg.Keycloak.Realm != "" {
		issuer := strings.TrimRight(cfg.Keycloak.URL, "/") + "/realms/" + cfg.Keycloak.Realm
		ver, err := oidc.NewVerifier(ctx, issuer, cfg.Keycloak.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			verifier = ver
		}
	}
	if verifier == nil && cfg.JWT.Secret != "" {
		verifier = tokens.NewHMACVerifier(cfg.JWT.Secret)
		logger.Infof("using HS256 token verifier for moderator endpoints")
	}
	if verifier == nil {
		val := strings.ToLower(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN")))
		if val == "true" {
			logger.Warn("enabling insecure token verifier (integration mode)")
			verifier = oidc.NewInsecureVerifier()
		}
	}
	var moderatorMW []gin.HandlerFunc
	if verifier != nil {
		moderatorMW = []gin.HandlerFunc{middleware.AuthMiddleware(verifier), middleware.RequireRole("moderator")}
	} else {
		logger.Warnf("no token verifier configured; manual moderation endpoints are unprotected")
	}

	// MongoDB-backed repositories, with in-memory fallbacks for dev runs.
	// Retry/backoff when connecting to MongoDB to tolerate startup races.
	var client *mongo.Client
	if cfg.MongoDB.URI != "" {
		const maxAttempts = 5
		backoff := time.Second
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			client, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if errConn != nil {
			logger.Warnf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
			client = nil
		} else {
			defer func() { _ = client.Disconnect(ctx) }()
		}
	}

	var (
		contentRepo     content.Repository
		resultRepo      moderation.Repository
		contributorRepo contributors.Repository
		topicRepo       topics.Repository
		learnerRepo     learners.Repository
	)
	if client != nil {
		db := client.Database(cfg.MongoDB.Database)
		contentRepo = content.NewMongoRepository(db.Collection("contents"))
		resultRepo = moderation.NewMongoRepository(db.Collection("moderation_results"))
		contributorRepo = contributors.NewMongoRepository(db.Collection("contributors"))
		topicRepo = topics.NewMongoRepository(db.Collection("topics"))
		learnerRepo = learners.NewMongoRepository(db.Collection("learners"))
		logger.Infof("Using MongoDB-backed repositories (db=%s)", cfg.MongoDB.Database)
	} else {
		contentRepo = content.NewMemoryRepository()
		resultRepo = moderation.NewMemoryRepository()
		contributorRepo = contributors.NewMemoryRepository()
		topicRepo = topics.NewMemoryRepository()
		learnerRepo = learners.NewMemoryRepository()
		logger.Warnf("MongoDB unavailable; using in-memory repositories (data is not persisted)")
	}

	classifier := moderation.NewChatClassifier(moderation.GatewayConfig{
		BaseURL: cfg.Moderation.BaseURL,
		APIKey:  cfg.Moderation.APIKey,
		Model:   cfg.Moderation.Model,
		Timeout: cfg.Moderation.Timeout,
	})
	moderationSvc := moderation.NewService(contentRepo, resultRepo, contributorRepo, topicRepo, classifier)

	var board *leaderboard.Service
	if rdb != nil {
		board = leaderboard.NewService(rdb, learnerRepo)
	} else {
		logger.Warnf("leaderboard disabled: Redis is not available")
	}

	// Optional MinIO media store for lesson videos
	var media *storage.MediaStore
	if os.Getenv("MINIO_ENDPOINT") != "" {
		media, err = storage.NewMediaStore(storage.LoadMinIOConfig())
		if err != nil {
			logger.Warnf("media store unavailable: %v", err)
			media = nil
		}
	}

	// readiness endpoint — return 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		deps["mongo"] = client != nil
		if cfg.MongoDB.URI != "" && client == nil {
			ready = false
		}

		deps["redis"] = rdb != nil
		if cfg.Redis.Host != "" && rdb == nil {
			ready = false
		}

		// OIDC readiness: if Keycloak URL was configured we expect a verifier
		if cfg.Keycloak.URL != "" {
			deps["oidc"] = verifier != nil
			if verifier == nil {
				ready = false
			}
		} else {
			deps["oidc"] = true
		}

		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": fmt.Sprintf("%s", time.Since(startTime))})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": fmt.Sprintf("%s", time.Since(startTime))})
	})

	api := r.Group("/api")
	handlers.NewContentHandler(moderationSvc, media).Register(api, moderatorMW...)
	handlers.NewCatalogHandler(contributorRepo, topicRepo, learnerRepo, board).Register(api)
	if board != nil {
		handlers.NewLeaderboardHandler(board).Register(api)
	}
	handlers.RegisterSwagger(r)

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Config summary: keycloak=%v mongo=%v redis=%v jwt_secret_set=%v", cfg.Keycloak.URL != "", client != nil, rdb != nil, cfg.JWT.Secret != "")
	logger.Infof("Starting moderation service on %s", addr)
	// run server in goroutine and keep process alive — defensive: prevents
	// the container from exiting silently if r.Run ever returns.
	go func() {
		if err := r.Run(addr); err != nil {
			logger.Fatalf("server failed: %v", err)
		}
	}()
	select {}
}
