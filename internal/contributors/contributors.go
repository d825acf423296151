package contributors

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrNotFound = errors.New("contributor not found")

// Contributor authors lesson content. The moderation pipeline only needs the
// existence lookup; the rest is read-side catalog data.
type Contributor struct {
	ID        string    `bson:"id" json:"id"`
	Email     string    `bson:"email" json:"email"`
	FullName  string    `bson:"fullName" json:"fullName"`
	Bio       string    `bson:"bio,omitempty" json:"bio,omitempty"`
	IsActive  bool      `bson:"isActive" json:"isActive"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Repository provides contributor persistence operations.
type Repository interface {
	Create(ctx context.Context, c *Contributor) error
	GetByID(ctx context.Context, id string) (*Contributor, error)
	List(ctx context.Context) ([]*Contributor, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, c *Contributor) error {
	now := time.Now().UTC()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, c)
	return err
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*Contributor, error) {
	var c Contributor
	if err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *MongoRepository) List(ctx context.Context) ([]*Contributor, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*Contributor{}
	for cur.Next(ctx) {
		var c Contributor
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, cur.Err()
}

// MemoryRepository backs tests and the standalone moderation service.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*Contributor
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[string]*Contributor)}
}

func (r *MemoryRepository) Create(ctx context.Context, c *Contributor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	cp := *c
	r.store[c.ID] = &cp
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*Contributor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]*Contributor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Contributor, 0, len(r.store))
	for _, c := range r.store {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}
