package content

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound = errors.New("content not found")
	// ErrInvalidState is returned for a status transition attempted outside
	// the one state that allows it (manual approve/reject requires
	// PENDING_REVIEW; both auto verdict transitions start there too).
	ErrInvalidState = errors.New("content is not in a state that allows this transition")
)

// Repository provides content persistence operations.
type Repository interface {
	Create(ctx context.Context, c *Content) error
	GetByID(ctx context.Context, id string) (*Content, error)
	// UpdateStatus performs the read-check-write as one atomic operation:
	// the status is changed to `to` only when the stored status equals
	// `from`. When no document matches, ErrNotFound is returned; callers
	// that need to distinguish a missing document from a wrong state do a
	// follow-up GetByID.
	UpdateStatus(ctx context.Context, id string, from, to Status) (*Content, error)
	SetVideoKey(ctx context.Context, id, key string) error
	ListByStatus(ctx context.Context, s Status) ([]*Content, error)
	ListByContributor(ctx context.Context, contributorID string) ([]*Content, error)
	ListByTopic(ctx context.Context, topicID string) ([]*Content, error)
	SearchTitle(ctx context.Context, keyword string) ([]*Content, error)
}

// MongoRepository implements Repository over a Mongo collection.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	// unique index on "id"; lookups and conditional updates key on it
	idx := mongo.IndexModel{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)}
	col.Indexes().CreateOne(context.Background(), idx)
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, c *Content) error {
	now := time.Now().UTC()
	if c.SubmittedAt.IsZero() {
		c.SubmittedAt = now
	}
	c.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, c)
	return err
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*Content, error) {
	var c Content
	if err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *MongoRepository) UpdateStatus(ctx context.Context, id string, from, to Status) (*Content, error) {
	filter := bson.M{"id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c Content
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *MongoRepository) SetVideoKey(ctx context.Context, id, key string) error {
	update := bson.M{"$set": bson.M{"videoKey": key, "updatedAt": time.Now().UTC()}}
	res, err := r.col.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) ListByStatus(ctx context.Context, s Status) ([]*Content, error) {
	return r.list(ctx, bson.M{"status": s})
}

func (r *MongoRepository) ListByContributor(ctx context.Context, contributorID string) ([]*Content, error) {
	return r.list(ctx, bson.M{"contributorId": contributorID})
}

func (r *MongoRepository) ListByTopic(ctx context.Context, topicID string) ([]*Content, error) {
	return r.list(ctx, bson.M{"topicId": topicID})
}

func (r *MongoRepository) SearchTitle(ctx context.Context, keyword string) ([]*Content, error) {
	return r.list(ctx, bson.M{"title": bson.M{"$regex": keyword, "$options": "i"}})
}

func (r *MongoRepository) list(ctx context.Context, filter bson.M) ([]*Content, error) {
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*Content{}
	for cur.Next(ctx) {
		var c Content
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, cur.Err()
}
