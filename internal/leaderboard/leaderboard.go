package leaderboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/culturequest/culturequest/backend/go-services/internal/learners"
	"github.com/redis/go-redis/v9"
)

const (
	key      = "leaderboard:xp"
	maxLimit = 100
)

var ErrNotRanked = errors.New("learner not on the leaderboard")

// Entry is one sorted leaderboard row.
type Entry struct {
	LearnerID string `json:"learnerId"`
	Username  string `json:"username"`
	XP        int    `json:"xp"`
	Rank      int64  `json:"rank"`
}

// Service is a thin wrapper over a Redis sorted set keyed by learner id with
// XP as score. Usernames are resolved from the learner store on read.
type Service struct {
	rdb      *redis.Client
	learners learners.Repository
}

func NewService(rdb *redis.Client, repo learners.Repository) *Service {
	return &Service{rdb: rdb, learners: repo}
}

// UpsertScore writes (or refreshes) a learner's XP on the board. Called on
// learner creation and on every XP change.
func (s *Service) UpsertScore(ctx context.Context, l *learners.Learner) error {
	if l == nil || l.ID == "" {
		return nil
	}
	return s.rdb.ZAdd(ctx, key, redis.Z{Member: l.ID, Score: normalizeXP(l.TotalXP)}).Err()
}

// Remove drops a learner from the board.
func (s *Service) Remove(ctx context.Context, learnerID string) error {
	if learnerID == "" {
		return nil
	}
	return s.rdb.ZRem(ctx, key, learnerID).Err()
}

// Top returns the highest-XP entries, best first. Limit is clamped to 1..100.
// Learners on the board but missing from the store are skipped.
func (s *Service) Top(ctx context.Context, limit int) ([]*Entry, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	zs, err := s.rdb.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard range: %w", err)
	}

	out := []*Entry{}
	for i, z := range zs {
		id, ok := z.Member.(string)
		if !ok {
			continue
		}
		l, err := s.learners.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, learners.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, &Entry{
			LearnerID: id,
			Username:  l.Username,
			XP:        int(z.Score),
			Rank:      int64(i) + 1,
		})
	}
	return out, nil
}

// Rank returns a single learner's entry. The score is re-upserted from the
// store first so a learner dropped from Redis (eviction, rebuild gap) heals
// on read.
func (s *Service) Rank(ctx context.Context, learnerID string) (*Entry, error) {
	l, err := s.learners.GetByID(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	if err := s.UpsertScore(ctx, l); err != nil {
		return nil, err
	}

	rank, err := s.rdb.ZRevRank(ctx, key, learnerID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotRanked
		}
		return nil, fmt.Errorf("leaderboard rank: %w", err)
	}
	return &Entry{
		LearnerID: l.ID,
		Username:  l.Username,
		XP:        int(normalizeXP(l.TotalXP)),
		Rank:      rank + 1,
	}, nil
}

// Rebuild repopulates the sorted set from the learner store.
func (s *Service) Rebuild(ctx context.Context) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("leaderboard clear: %w", err)
	}
	all, err := s.learners.List(ctx)
	if err != nil {
		return err
	}
	for _, l := range all {
		if err := s.UpsertScore(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

func normalizeXP(xp int) float64 {
	if xp < 0 {
		return 0
	}
	return float64(xp)
}
