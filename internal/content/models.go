package content

import "time"

// Status is the moderation lifecycle state of a piece of content.
// Submission creates content directly in PENDING_REVIEW; DRAFT exists for
// content created outside the submission pipeline (e.g. seeded fixtures).
type Status string

const (
	StatusDraft         Status = "DRAFT"
	StatusPendingReview Status = "PENDING_REVIEW"
	StatusApproved      Status = "APPROVED"
	StatusRejected      Status = "REJECTED"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPendingReview, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further pipeline transition is permitted out of s.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Content is a submitted lesson write-up.
// Status is mutated only by the moderation service (auto transitions after
// screening) or by a moderator action, never by contributors directly.
type Content struct {
	ID            string    `bson:"id" json:"id"`
	ContributorID string    `bson:"contributorId" json:"contributorId"`
	TopicID       string    `bson:"topicId" json:"topicId"`
	Title         string    `bson:"title" json:"title"`
	Body          string    `bson:"body" json:"body"`
	Status        Status    `bson:"status" json:"status"`
	VideoKey      string    `bson:"videoKey,omitempty" json:"videoKey,omitempty"`
	SubmittedAt   time.Time `bson:"submittedAt" json:"submittedAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}
