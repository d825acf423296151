package moderation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrResultNotFound = errors.New("moderation result not found")
	// ErrDuplicateResult means a result already exists for the content.
	// The pipeline screens exactly once per submission; a second write is
	// rejected rather than upserted.
	ErrDuplicateResult = errors.New("moderation result already exists for content")
)

// Repository persists screening results, at most one per content id.
type Repository interface {
	Save(ctx context.Context, res *Result) error
	FindByContentID(ctx context.Context, contentID string) (*Result, error)
}

// MongoRepository implements Repository over a Mongo collection with a
// unique index on contentId as the concurrency backstop: when two screenings
// race, one insert wins and the other fails with ErrDuplicateResult.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "contentId", Value: 1}}, Options: options.Index().SetUnique(true)}
	col.Indexes().CreateOne(context.Background(), idx)
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Save(ctx context.Context, res *Result) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if res.ScreenedAt.IsZero() {
		res.ScreenedAt = time.Now().UTC()
	}
	if _, err := r.col.InsertOne(ctx, res); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateResult
		}
		return err
	}
	return nil
}

func (r *MongoRepository) FindByContentID(ctx context.Context, contentID string) (*Result, error) {
	var res Result
	if err := r.col.FindOne(ctx, bson.M{"contentId": contentID}).Decode(&res); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrResultNotFound
		}
		return nil, err
	}
	return &res, nil
}

// MemoryRepository is the in-memory Repository used by unit tests and the
// standalone moderation service.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*Result // keyed by contentID
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[string]*Result)}
}

func (r *MemoryRepository) Save(ctx context.Context, res *Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.store[res.ContentID]; exists {
		return ErrDuplicateResult
	}
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if res.ScreenedAt.IsZero() {
		res.ScreenedAt = time.Now().UTC()
	}
	cp := *res
	r.store[res.ContentID] = &cp
	return nil
}

func (r *MemoryRepository) FindByContentID(ctx context.Context, contentID string) (*Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.store[contentID]
	if !ok {
		return nil, ErrResultNotFound
	}
	cp := *res
	return &cp, nil
}
