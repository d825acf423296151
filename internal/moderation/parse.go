package moderation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// The classifier is asked for a bare JSON object but sometimes wraps it in
// markdown code fences anyway. Leading fences may carry a language tag.
var (
	openFence  = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*")
	closeFence = regexp.MustCompile("(?s)\\s*```$")
)

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = openFence.ReplaceAllString(s, "")
	s = closeFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// classifierResponse is the strict decode target for the gateway's JSON
// answer. Pointer fields distinguish absent from zero-valued.
type classifierResponse struct {
	QualityScore  *int    `json:"quality_score"`
	IsRelevant    *bool   `json:"is_relevant"`
	IsAppropriate *bool   `json:"is_appropriate"`
	Verdict       Verdict `json:"verdict"`
	Reasoning     string  `json:"reasoning"`
}

// parseClassification decodes a raw gateway answer into a Result for the
// given content. Any structural or semantic defect is returned as an error;
// the caller converts every error into the fallback result, so there is a
// single repair path rather than scattered field-presence checks.
func parseClassification(contentID, raw string) (*Result, error) {
	var resp classifierResponse
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &resp); err != nil {
		return nil, fmt.Errorf("decode classifier response: %w", err)
	}
	if resp.QualityScore == nil {
		return nil, fmt.Errorf("classifier response missing quality_score")
	}
	if *resp.QualityScore < 1 || *resp.QualityScore > 10 {
		return nil, fmt.Errorf("quality_score %d outside 1-10", *resp.QualityScore)
	}
	if resp.IsRelevant == nil {
		return nil, fmt.Errorf("classifier response missing is_relevant")
	}
	if resp.IsAppropriate == nil {
		return nil, fmt.Errorf("classifier response missing is_appropriate")
	}
	if !resp.Verdict.Valid() {
		return nil, fmt.Errorf("invalid verdict %q", resp.Verdict)
	}
	if strings.TrimSpace(resp.Reasoning) == "" {
		return nil, fmt.Errorf("classifier response missing reasoning")
	}
	return &Result{
		ContentID:     contentID,
		QualityScore:  *resp.QualityScore,
		IsRelevant:    *resp.IsRelevant,
		IsAppropriate: *resp.IsAppropriate,
		Verdict:       resp.Verdict,
		Reasoning:     resp.Reasoning,
		ScreenedAt:    time.Now().UTC(),
	}, nil
}

// fallbackResult is the conservative verdict recorded when screening cannot
// complete normally. Fail-safe, not fail-fast: the submission flow never
// surfaces a gateway failure to the caller; a human reviews instead.
func fallbackResult(contentID string, cause error) *Result {
	return &Result{
		ContentID:     contentID,
		QualityScore:  5,
		IsRelevant:    true,
		IsAppropriate: true,
		Verdict:       VerdictNeedsReview,
		Reasoning:     "AI response parsing failed - flagged for manual review: " + cause.Error(),
		ScreenedAt:    time.Now().UTC(),
	}
}
