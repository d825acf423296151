package learners

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

var ErrNotFound = errors.New("learner not found")

// Learner plays lessons and earns XP; XP feeds the leaderboard ranking.
type Learner struct {
	ID        string    `bson:"id" json:"id"`
	Username  string    `bson:"username" json:"username"`
	TotalXP   int       `bson:"totalXp" json:"totalXp"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Repository provides learner persistence operations.
type Repository interface {
	Upsert(ctx context.Context, l *Learner) (*Learner, error)
	GetByID(ctx context.Context, id string) (*Learner, error)
	List(ctx context.Context) ([]*Learner, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Upsert(ctx context.Context, l *Learner) (*Learner, error) {
	now := time.Now().UTC()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now

	filter := bson.M{"id": l.ID}
	update := bson.M{"$set": bson.M{
		"username":  l.Username,
		"totalXp":   l.TotalXP,
		"updatedAt": l.UpdatedAt,
		"createdAt": l.CreatedAt,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var updated Learner
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return l, nil
		}
		return nil, err
	}
	return &updated, nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*Learner, error) {
	var l Learner
	if err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&l); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *MongoRepository) List(ctx context.Context) ([]*Learner, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*Learner{}
	for cur.Next(ctx) {
		var l Learner
		if err := cur.Decode(&l); err != nil {
			return nil, err
		}
		out = append(out, &l)
	}
	return out, cur.Err()
}

type MemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*Learner
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[string]*Learner)}
}

func (r *MemoryRepository) Upsert(ctx context.Context, l *Learner) (*Learner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
	cp := *l
	r.store[l.ID] = &cp
	out := cp
	return &out, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*Learner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]*Learner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Learner, 0, len(r.store))
	for _, l := range r.store {
		cp := *l
		out = append(out, &cp)
	}
	return out, nil
}
