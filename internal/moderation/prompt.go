package moderation

import "fmt"

// buildPrompt renders the classification prompt for a submission. Pure
// function of the three inputs; everything the classifier needs to apply the
// decision rule is stated in the prompt itself.
func buildPrompt(topicName, title, body string) string {
	return fmt.Sprintf(`You are moderating lesson content for a Gen Alpha culture learning game.
Topic: %s
Title: %s
Lesson text: %s

The content teaches Gen Alpha concepts to players one idea at a time.
Evaluate this submission and return ONLY a valid JSON object with no other text:
{
  "quality_score": <integer 1-10>,
  "is_relevant": <true/false>,
  "is_appropriate": <true/false>,
  "verdict": <"APPROVED" | "NEEDS_REVIEW" | "REJECTED">,
  "reasoning": "<brief explanation>"
}

Rules:
- APPROVED: quality_score >= 8 AND is_relevant = true AND is_appropriate = true
- REJECTED: quality_score < 4 OR is_appropriate = false
- NEEDS_REVIEW: everything else (borderline quality or relevance)
`, topicName, title, body)
}
