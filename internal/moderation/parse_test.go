package moderation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodAnswer = `{"quality_score": 9, "is_relevant": true, "is_appropriate": true, "verdict": "APPROVED", "reasoning": "clear and on-topic"}`

func TestParseClassification_PlainJSON(t *testing.T) {
	res, err := parseClassification("c1", goodAnswer)
	require.NoError(t, err)
	assert.Equal(t, "c1", res.ContentID)
	assert.Equal(t, 9, res.QualityScore)
	assert.True(t, res.IsRelevant)
	assert.True(t, res.IsAppropriate)
	assert.Equal(t, VerdictApproved, res.Verdict)
	assert.Equal(t, "clear and on-topic", res.Reasoning)
	assert.False(t, res.ScreenedAt.IsZero())
}

func TestParseClassification_FencedEquivalence(t *testing.T) {
	plain, err := parseClassification("c1", goodAnswer)
	require.NoError(t, err)

	wrapped := []string{
		"```json\n" + goodAnswer + "\n```",
		"```\n" + goodAnswer + "\n```",
		"```JSON\n" + goodAnswer + "\n```",
		"```json " + goodAnswer + " ```",
		"  ```json\n" + goodAnswer + "\n```  ",
	}
	for _, raw := range wrapped {
		res, err := parseClassification("c1", raw)
		require.NoError(t, err, "input: %q", raw)
		assert.Equal(t, plain.QualityScore, res.QualityScore)
		assert.Equal(t, plain.Verdict, res.Verdict)
		assert.Equal(t, plain.Reasoning, res.Reasoning)
	}
}

func TestParseClassification_Malformed(t *testing.T) {
	cases := map[string]string{
		"not json":              "the lesson looks fine to me",
		"empty":                 "",
		"missing quality_score": `{"is_relevant": true, "is_appropriate": true, "verdict": "APPROVED", "reasoning": "ok"}`,
		"missing is_relevant":   `{"quality_score": 8, "is_appropriate": true, "verdict": "APPROVED", "reasoning": "ok"}`,
		"missing is_appropriate": `{"quality_score": 8, "is_relevant": true, "verdict": "APPROVED", "reasoning": "ok"}`,
		"bad verdict":           `{"quality_score": 8, "is_relevant": true, "is_appropriate": true, "verdict": "MAYBE", "reasoning": "ok"}`,
		"score too low":         `{"quality_score": 0, "is_relevant": true, "is_appropriate": true, "verdict": "REJECTED", "reasoning": "ok"}`,
		"score too high":        `{"quality_score": 11, "is_relevant": true, "is_appropriate": true, "verdict": "APPROVED", "reasoning": "ok"}`,
		"empty reasoning":       `{"quality_score": 8, "is_relevant": true, "is_appropriate": true, "verdict": "APPROVED", "reasoning": "  "}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseClassification("c1", raw)
			require.Error(t, err)
		})
	}
}

func TestFallbackResult(t *testing.T) {
	res := fallbackResult("c9", errors.New("connection refused"))
	assert.Equal(t, "c9", res.ContentID)
	assert.Equal(t, 5, res.QualityScore)
	assert.True(t, res.IsRelevant)
	assert.True(t, res.IsAppropriate)
	assert.Equal(t, VerdictNeedsReview, res.Verdict)
	assert.Contains(t, res.Reasoning, "parsing failed")
	assert.Contains(t, res.Reasoning, "connection refused")
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences("```\n{\"a\":1}\n```"))
	// no fences: unchanged apart from whitespace trimming
	assert.Equal(t, `{"a":1}`, stripCodeFences("  {\"a\":1}\n"))
}
