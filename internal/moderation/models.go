package moderation

import "time"

// Verdict is the classifier's categorical outcome for a screening.
type Verdict string

const (
	VerdictApproved    Verdict = "APPROVED"
	VerdictNeedsReview Verdict = "NEEDS_REVIEW"
	VerdictRejected    Verdict = "REJECTED"
)

func (v Verdict) Valid() bool {
	switch v {
	case VerdictApproved, VerdictNeedsReview, VerdictRejected:
		return true
	}
	return false
}

// Result records one screening outcome per content item. Created exactly once
// when the classifier responds (or fails), never updated or deleted.
// QualityScore 5 is reserved as the safe default when parsing fails, so a
// stored 5 with the fallback reasoning is not a genuine classifier opinion.
type Result struct {
	ID            string    `bson:"id" json:"id"`
	ContentID     string    `bson:"contentId" json:"contentId"`
	QualityScore  int       `bson:"qualityScore" json:"qualityScore"`
	IsRelevant    bool      `bson:"isRelevant" json:"isRelevant"`
	IsAppropriate bool      `bson:"isAppropriate" json:"isAppropriate"`
	Verdict       Verdict   `bson:"verdict" json:"verdict"`
	Reasoning     string    `bson:"reasoning" json:"reasoning"`
	ScreenedAt    time.Time `bson:"screenedAt" json:"screenedAt"`
}
