package moderation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/culturequest/culturequest/backend/go-services/internal/content"
	"github.com/culturequest/culturequest/backend/go-services/internal/contributors"
	"github.com/culturequest/culturequest/backend/go-services/internal/topics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      *Service
	contents *content.MemoryRepository
	results  *MemoryRepository
	ctrID    string
	topicID  string
}

func newFixture(t *testing.T, classifier Classifier) *fixture {
	t.Helper()
	ctx := context.Background()

	contents := content.NewMemoryRepository()
	results := NewMemoryRepository()
	ctr := contributors.NewMemoryRepository()
	top := topics.NewMemoryRepository()

	cb := &contributors.Contributor{FullName: "Ana", Email: "ana@example.com", IsActive: true}
	require.NoError(t, ctr.Create(ctx, cb))
	tp := &topics.Topic{Name: "Brainrot"}
	require.NoError(t, top.Create(ctx, tp))

	return &fixture{
		svc:      NewService(contents, results, ctr, top, classifier),
		contents: contents,
		results:  results,
		ctrID:    cb.ID,
		topicID:  tp.ID,
	}
}

func answer(score int, relevant, appropriate bool, verdict, reasoning string) string {
	return fmt.Sprintf(`{"quality_score": %d, "is_relevant": %t, "is_appropriate": %t, "verdict": %q, "reasoning": %q}`,
		score, relevant, appropriate, verdict, reasoning)
}

func TestSubmit_AutoApproved(t *testing.T) {
	f := newFixture(t, ClassifierFunc(func(ctx context.Context, prompt string) (string, error) {
		return answer(9, true, true, "APPROVED", "great lesson"), nil
	}))

	c, err := f.svc.Submit(context.Background(), f.ctrID, f.topicID, "Rizz 101", "lesson text")
	require.NoError(t, err)
	assert.Equal(t, content.StatusApproved, c.Status)

	res, err := f.svc.GetResult(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, VerdictApproved, res.Verdict)
	assert.Equal(t, 9, res.QualityScore)
}

func TestSubmit_AutoRejected(t *testing.T) {
	f := newFixture(t, ClassifierFunc(func(ctx context.Context, prompt string) (string, error) {
		return answer(2, true, false, "REJECTED", "inappropriate"), nil
	}))

	c, err := f.svc.Submit(context.Background(), f.ctrID, f.topicID, "bad", "bad text")
	require.NoError(t, err)
	assert.Equal(t, content.StatusRejected, c.Status)

	res, err := f.svc.GetResult(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, VerdictRejected, res.Verdict)
}

func TestSubmit_NeedsReviewLeavesPending(t *testing.T) {
	f := newFixture(t, ClassifierFunc(func(ctx context.Context, prompt string) (string, error) {
		return answer(6, true, true, "NEEDS_REVIEW", "borderline"), nil
	}))

	c, err := f.svc.Submit(context.Background(), f.ctrID, f.topicID, "meh", "meh text")
	require.NoError(t, err)
	assert.Equal(t, content.StatusPendingReview, c.Status)

	res, err := f.svc.GetResult(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, VerdictNeedsReview, res.Verdict)
}

func TestSubmit_GatewayErrorFallsBack(t *testing.T) {
	f := newFixture(t, ClassifierFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("connection reset")
	}))

	c, err := f.svc.Submit(context.Background(), f.ctrID, f.topicID, "t", "b")
	require.NoError(t, err, "gateway failures must not surface to the submitter")
	assert.Equal(t, content.StatusPendingReview, c.Status)

	res, err := f.svc.GetResult(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, VerdictNeedsReview, res.Verdict)
	assert.Equal(t, 5, res.QualityScore)
	assert.True(t, res.IsRelevant)
	assert.True(t, res.IsAppropriate)
	assert.Contains(t, res.Reasoning, "parsing failed")
}

func TestSubmit_MalformedAnswerFallsBack(t *testing.T) {
	f := newFixture(t, ClassifierFunc(func(ctx context.Context, prompt string) (string, error) {
		return "sure! the lesson is great", nil
	}))

	c, err := f.svc.Submit(context.Background(), f.ctrID, f.topicID, "t", "b")
	require.NoError(t, err)
	assert.Equal(t, content.StatusPendingReview, c.Status)

	res, err := f.svc.GetResult(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, VerdictNeedsReview, res.Verdict)
	assert.Contains(t, res.Reasoning, "parsing failed")
}

func TestSubmit_FencedAnswerApproves(t *testing.T) {
	f := newFixture(t, ClassifierFunc(func(ctx context.Context, prompt string) (string, error) {
		return "```json\n" + answer(8, true, true, "APPROVED", "good") + "\n```", nil
	}))

	c, err := f.svc.Submit(context.Background(), f.ctrID, f.topicID, "t", "b")
	require.NoError(t, err)
	assert.Equal(t, content.StatusApproved, c.Status)
}

func TestSubmit_Validation(t *testing.T) {
	f := newFixture(t, ClassifierFunc(func(ctx context.Context, prompt string) (string, error) {
		t.Fatal("classifier must not be called for invalid input")
		return "", nil
	}))
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, f.ctrID, f.topicID, "  ", "b")
	require.ErrorIs(t, err, ErrEmptyTitle)
	_, err = f.svc.Submit(ctx, f.ctrID, f.topicID, "t", "")
	require.ErrorIs(t, err, ErrEmptyBody)
	_, err = f.svc.Submit(ctx, "ghost", f.topicID, "t", "b")
	require.ErrorIs(t, err, contributors.ErrNotFound)
	_, err = f.svc.Submit(ctx, f.ctrID, "ghost", "t", "b")
	require.ErrorIs(t, err, topics.ErrNotFound)

	// no partial state: nothing was persisted
	all, err := f.contents.ListByStatus(ctx, content.StatusPendingReview)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSubmit_CancelledCallerStillScreens(t *testing.T) {
	f := newFixture(t, ClassifierFunc(func(ctx context.Context, prompt string) (string, error) {
		require.NoError(t, ctx.Err(), "screening context must survive caller cancellation")
		return answer(9, true, true, "APPROVED", "ok"), nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// the memory stores ignore ctx, so Submit proceeds end to end; the
	// assertion above is what matters: the classifier sees a live context.
	c, err := f.svc.Submit(ctx, f.ctrID, f.topicID, "t", "b")
	require.NoError(t, err)
	assert.Equal(t, content.StatusApproved, c.Status)
}

func TestScreen_DuplicateVerdictDiscarded(t *testing.T) {
	f := newFixture(t, ClassifierFunc(func(ctx context.Context, prompt string) (string, error) {
		return answer(9, true, true, "APPROVED", "ok"), nil
	}))
	ctx := context.Background()

	c, err := f.svc.Submit(ctx, f.ctrID, f.topicID, "t", "b")
	require.NoError(t, err)

	// a second screening of the same content must not insert a second row
	err = f.svc.screen(ctx, c, "Brainrot")
	require.NoError(t, err)

	res, err := f.results.FindByContentID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, VerdictApproved, res.Verdict)
}

func TestManualApprove(t *testing.T) {
	f := newFixture(t, ClassifierFunc(func(ctx context.Context, prompt string) (string, error) {
		return answer(6, true, true, "NEEDS_REVIEW", "borderline"), nil
	}))
	ctx := context.Background()

	c, err := f.svc.Submit(ctx, f.ctrID, f.topicID, "t", "b")
	require.NoError(t, err)
	require.Equal(t, content.StatusPendingReview, c.Status)

	approved, err := f.svc.ApproveManually(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, content.StatusApproved, approved.Status)

	// approving again is a conflict, not a no-op
	_, err = f.svc.ApproveManually(ctx, c.ID)
	require.ErrorIs(t, err, content.ErrInvalidState)

	_, err = f.svc.ApproveManually(ctx, "missing")
	require.ErrorIs(t, err, content.ErrNotFound)
}

func TestManualRejectGuards(t *testing.T) {
	f := newFixture(t, ClassifierFunc(func(ctx context.Context, prompt string) (string, error) {
		return answer(9, true, true, "APPROVED", "ok"), nil
	}))
	ctx := context.Background()

	c, err := f.svc.Submit(ctx, f.ctrID, f.topicID, "t", "b")
	require.NoError(t, err)
	require.Equal(t, content.StatusApproved, c.Status)

	// an auto-approved decision is terminal for this endpoint
	_, err = f.svc.RejectManually(ctx, c.ID)
	require.ErrorIs(t, err, content.ErrInvalidState)

	got, err := f.svc.GetContent(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, content.StatusApproved, got.Status)
}

func TestConcurrentSubmissionsAreIndependent(t *testing.T) {
	f := newFixture(t, ClassifierFunc(func(ctx context.Context, prompt string) (string, error) {
		return answer(9, true, true, "APPROVED", "ok"), nil
	}))
	ctx := context.Background()

	const n = 8
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := f.svc.Submit(ctx, f.ctrID, f.topicID, fmt.Sprintf("lesson %d", i), "body")
			assert.NoError(t, err)
			if c != nil {
				ids[i] = c.ID
			}
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, id := range ids {
		require.NotEmpty(t, id)
		require.False(t, seen[id], "content ids must be unique")
		seen[id] = true
		res, err := f.results.FindByContentID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, VerdictApproved, res.Verdict)
	}
}

func TestGetResult_AwaitingScreeningIsDistinguishable(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	// content created outside the pipeline, never screened
	c := &content.Content{Title: "t", Body: "b", Status: content.StatusPendingReview}
	require.NoError(t, f.contents.Create(ctx, c))

	_, err := f.svc.GetResult(ctx, c.ID)
	require.ErrorIs(t, err, ErrResultNotFound)
}

func TestQueueAndCatalogReads(t *testing.T) {
	f := newFixture(t, ClassifierFunc(func(ctx context.Context, prompt string) (string, error) {
		return answer(6, true, true, "NEEDS_REVIEW", "borderline"), nil
	}))
	ctx := context.Background()

	c1, err := f.svc.Submit(ctx, f.ctrID, f.topicID, "Skibidi Basics", "b")
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, f.ctrID, f.topicID, "Advanced Aura", "b")
	require.NoError(t, err)

	queue, err := f.svc.Queue(ctx)
	require.NoError(t, err)
	assert.Len(t, queue, 2)

	mine, err := f.svc.ListByContributor(ctx, f.ctrID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	byTopic, err := f.svc.ListByTopic(ctx, f.topicID)
	require.NoError(t, err)
	assert.Len(t, byTopic, 2)

	_, err = f.svc.ListByTopic(ctx, "ghost")
	require.ErrorIs(t, err, topics.ErrNotFound)

	found, err := f.svc.SearchTitle(ctx, "skibidi")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, c1.ID, found[0].ID)
}
