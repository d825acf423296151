package content

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository used by unit tests and by the
// standalone moderation service when no MongoDB is configured.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*Content
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[string]*Content)}
}

func (r *MemoryRepository) Create(ctx context.Context, c *Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if c.SubmittedAt.IsZero() {
		c.SubmittedAt = now
	}
	c.UpdatedAt = now
	cp := *c
	r.store[c.ID] = &cp
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *MemoryRepository) UpdateStatus(ctx context.Context, id string, from, to Status) (*Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.store[id]
	if !ok || c.Status != from {
		// mirror the Mongo filter semantics: a state mismatch is a miss
		return nil, ErrNotFound
	}
	c.Status = to
	c.UpdatedAt = time.Now().UTC()
	cp := *c
	return &cp, nil
}

func (r *MemoryRepository) SetVideoKey(ctx context.Context, id, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.store[id]
	if !ok {
		return ErrNotFound
	}
	c.VideoKey = key
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryRepository) ListByStatus(ctx context.Context, s Status) ([]*Content, error) {
	return r.filter(func(c *Content) bool { return c.Status == s })
}

func (r *MemoryRepository) ListByContributor(ctx context.Context, contributorID string) ([]*Content, error) {
	return r.filter(func(c *Content) bool { return c.ContributorID == contributorID })
}

func (r *MemoryRepository) ListByTopic(ctx context.Context, topicID string) ([]*Content, error) {
	return r.filter(func(c *Content) bool { return c.TopicID == topicID })
}

func (r *MemoryRepository) SearchTitle(ctx context.Context, keyword string) ([]*Content, error) {
	kw := strings.ToLower(keyword)
	return r.filter(func(c *Content) bool { return strings.Contains(strings.ToLower(c.Title), kw) })
}

func (r *MemoryRepository) filter(keep func(*Content) bool) ([]*Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*Content{}
	for _, c := range r.store {
		if keep(c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}
