package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/culturequest/culturequest/backend/go-services/handlers"
	"github.com/culturequest/culturequest/backend/go-services/internal/content"
	"github.com/culturequest/culturequest/backend/go-services/internal/contributors"
	"github.com/culturequest/culturequest/backend/go-services/internal/database"
	"github.com/culturequest/culturequest/backend/go-services/internal/learners"
	"github.com/culturequest/culturequest/backend/go-services/internal/moderation"
	"github.com/culturequest/culturequest/backend/go-services/internal/topics"
)

// Standalone moderation service: just the submission pipeline without the
// leaderboard, media or auth surfaces. Useful for local pipeline testing.
func main() {
	port := os.Getenv("MODERATION_SERVICE_PORT")
	if port == "" {
		port = "5010"
	}

	r := gin.New()
	r.Use(gin.Recovery())

	var (
		contentRepo     content.Repository
		resultRepo      moderation.Repository
		contributorRepo contributors.Repository
		topicRepo       topics.Repository
	)

	// Prefer Mongo-backed repositories when MONGODB_URI is provided.
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI != "" {
		client, err := database.ConnectMongo(context.Background(), mongoURI, 10*time.Second)
		if err != nil {
			log.Printf("warning: cannot connect to MongoDB (%v) — using memory-backed repos", err)
		} else {
			db := client.Database(os.Getenv("MONGODB_DATABASE"))
			contentRepo = content.NewMongoRepository(db.Collection("contents"))
			resultRepo = moderation.NewMongoRepository(db.Collection("moderation_results"))
			contributorRepo = contributors.NewMongoRepository(db.Collection("contributors"))
			topicRepo = topics.NewMongoRepository(db.Collection("topics"))
		}
	}
	if contentRepo == nil {
		contentRepo = content.NewMemoryRepository()
		resultRepo = moderation.NewMemoryRepository()
		contributorRepo = contributors.NewMemoryRepository()
		topicRepo = topics.NewMemoryRepository()
	}

	var classifier moderation.Classifier
	if os.Getenv("MODERATION_API_KEY") != "" {
		classifier = moderation.NewChatClassifier(moderation.GatewayConfig{
			BaseURL: os.Getenv("MODERATION_BASE_URL"),
			APIKey:  os.Getenv("MODERATION_API_KEY"),
			Model:   os.Getenv("MODERATION_MODEL"),
		})
	} else {
		// no gateway configured: every submission lands in manual review
		log.Printf("warning: MODERATION_API_KEY not set — all submissions will need manual review")
		classifier = moderation.ClassifierFunc(func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("classification gateway not configured")
		})
	}

	svc := moderation.NewService(contentRepo, resultRepo, contributorRepo, topicRepo, classifier)

	api := r.Group("/api")
	handlers.NewContentHandler(svc, nil).Register(api)
	handlers.NewCatalogHandler(contributorRepo, topicRepo, learners.NewMemoryRepository(), nil).Register(api)

	log.Printf("moderation service listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
