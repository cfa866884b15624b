package models

// TargetType distinguishes the two votable and subscribable entity kinds.
type TargetType string

const (
	TargetThread  TargetType = "thread"
	TargetComment TargetType = "comment"
)

// Target is a tagged reference to a thread or comment.
type Target struct {
	Type TargetType `json:"type"`
	ID   string     `json:"id"`
}

// Tally is the aggregate vote count for a target. The service models a
// single presence-only support vote, so only up_count exists.
type Tally struct {
	UpCount int `json:"up_count"`
}
