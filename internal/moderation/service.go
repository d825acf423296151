package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/culturequest/culturequest/backend/go-services/internal/content"
	"github.com/culturequest/culturequest/backend/go-services/internal/contributors"
	"github.com/culturequest/culturequest/backend/go-services/internal/topics"
	"github.com/culturequest/culturequest/backend/go-services/pkg/logger"
	"github.com/culturequest/culturequest/backend/go-services/pkg/metrics"
	"github.com/google/uuid"
)

var (
	ErrEmptyTitle = errors.New("title must not be empty")
	ErrEmptyBody  = errors.New("body must not be empty")
)

// Service orchestrates the submission workflow: persist the content, screen
// it through the classification gateway, record the verdict, and apply the
// resulting status transition. It also guards the manual review actions.
type Service struct {
	contents     content.Repository
	results      Repository
	contributors contributors.Repository
	topics       topics.Repository
	classifier   Classifier
}

func NewService(contents content.Repository, results Repository, ctr contributors.Repository, top topics.Repository, classifier Classifier) *Service {
	return &Service{contents: contents, results: results, contributors: ctr, topics: top, classifier: classifier}
}

// Submit persists a contributor's lesson as PENDING_REVIEW and screens it
// before returning. The returned content always reflects the post-screening
// status; callers never observe the pre-screening PENDING_REVIEW snapshot.
//
// Content creation and the verdict write are separate persistence steps on
// purpose: no store operation spans the classifier's network round trip.
func (s *Service) Submit(ctx context.Context, contributorID, topicID, title, body string) (*content.Content, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrEmptyTitle
	}
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyBody
	}
	if _, err := s.contributors.GetByID(ctx, contributorID); err != nil {
		return nil, err
	}
	topic, err := s.topics.GetByID(ctx, topicID)
	if err != nil {
		return nil, err
	}

	c := &content.Content{
		ID:            uuid.NewString(),
		ContributorID: contributorID,
		TopicID:       topicID,
		Title:         title,
		Body:          body,
		Status:        content.StatusPendingReview,
	}
	if err := s.contents.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}

	// Screening must reach a per-content outcome even if the submitter's
	// request is cancelled mid-flight, so it runs on a detached context.
	// The gateway client applies its own timeout.
	if err := s.screen(context.WithoutCancel(ctx), c, topic.Name); err != nil {
		return nil, err
	}

	return s.contents.GetByID(ctx, c.ID)
}

// screen calls the classifier and records exactly one Result for c. Gateway
// and parse failures are absorbed into the fallback verdict; only persistence
// failures are returned (the content then stays PENDING_REVIEW with no
// verdict, which reads as "awaiting screening" rather than NEEDS_REVIEW).
func (s *Service) screen(ctx context.Context, c *content.Content, topicName string) error {
	var res *Result
	raw, err := s.classifier.Classify(ctx, buildPrompt(topicName, c.Title, c.Body))
	if err == nil {
		res, err = parseClassification(c.ID, raw)
	}
	if err != nil {
		logger.Warnf("screening fell back to manual review for content %s: %v", c.ID, err)
		metrics.GatewayFallbacks.Inc()
		res = fallbackResult(c.ID, err)
	}

	if err := s.results.Save(ctx, res); err != nil {
		if errors.Is(err, ErrDuplicateResult) {
			// a concurrent screening won the insert race; its verdict stands
			logger.Warnf("content %s was already screened, discarding duplicate verdict", c.ID)
			return nil
		}
		return fmt.Errorf("save moderation result: %w", err)
	}
	metrics.ScreeningsTotal.WithLabelValues(string(res.Verdict)).Inc()

	// Only decisive verdicts move the status; NEEDS_REVIEW stays PENDING_REVIEW.
	switch res.Verdict {
	case VerdictApproved:
		_, err = s.contents.UpdateStatus(ctx, c.ID, content.StatusPendingReview, content.StatusApproved)
	case VerdictRejected:
		_, err = s.contents.UpdateStatus(ctx, c.ID, content.StatusPendingReview, content.StatusRejected)
	default:
		return nil
	}
	if err != nil && !errors.Is(err, content.ErrNotFound) {
		return fmt.Errorf("apply verdict %s to content %s: %w", res.Verdict, c.ID, err)
	}
	return nil
}

// ApproveManually promotes PENDING_REVIEW content to APPROVED. The check and
// the write are one atomic store operation; content in any other state gets
// ErrInvalidState and auto-decided content cannot be reversed here.
func (s *Service) ApproveManually(ctx context.Context, contentID string) (*content.Content, error) {
	return s.transitionManually(ctx, contentID, content.StatusApproved)
}

// RejectManually is symmetric to ApproveManually with target REJECTED.
func (s *Service) RejectManually(ctx context.Context, contentID string) (*content.Content, error) {
	return s.transitionManually(ctx, contentID, content.StatusRejected)
}

func (s *Service) transitionManually(ctx context.Context, contentID string, to content.Status) (*content.Content, error) {
	c, err := s.contents.UpdateStatus(ctx, contentID, content.StatusPendingReview, to)
	if errors.Is(err, content.ErrNotFound) {
		// distinguish missing content from content in the wrong state
		if _, gerr := s.contents.GetByID(ctx, contentID); gerr == nil {
			return nil, content.ErrInvalidState
		}
		return nil, content.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetContent returns a content item by id.
func (s *Service) GetContent(ctx context.Context, contentID string) (*content.Content, error) {
	return s.contents.GetByID(ctx, contentID)
}

// GetResult returns the persisted verdict for a content item.
// ErrResultNotFound means the content is still awaiting screening.
func (s *Service) GetResult(ctx context.Context, contentID string) (*Result, error) {
	return s.results.FindByContentID(ctx, contentID)
}

// Queue lists all content awaiting a moderator (PENDING_REVIEW).
func (s *Service) Queue(ctx context.Context) ([]*content.Content, error) {
	return s.contents.ListByStatus(ctx, content.StatusPendingReview)
}

// ListByContributor returns a contributor's own submissions.
func (s *Service) ListByContributor(ctx context.Context, contributorID string) ([]*content.Content, error) {
	return s.contents.ListByContributor(ctx, contributorID)
}

// ListByTopic returns all content under a topic.
func (s *Service) ListByTopic(ctx context.Context, topicID string) ([]*content.Content, error) {
	if _, err := s.topics.GetByID(ctx, topicID); err != nil {
		return nil, err
	}
	return s.contents.ListByTopic(ctx, topicID)
}

// SearchTitle performs a case-insensitive title keyword search.
func (s *Service) SearchTitle(ctx context.Context, keyword string) ([]*content.Content, error) {
	return s.contents.SearchTitle(ctx, keyword)
}

// SetVideoKey attaches an uploaded media object key to a content item.
func (s *Service) SetVideoKey(ctx context.Context, contentID, key string) error {
	return s.contents.SetVideoKey(ctx, contentID, key)
}
