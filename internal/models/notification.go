package models

const NotificationNewComment = "new_comment"

type Notification struct {
	ID          string     `json:"id"`
	RecipientID string     `json:"recipient_id"`
	SourceType  TargetType `json:"source_type"`
	SourceID    string     `json:"source_id"`
	Kind        string     `json:"kind"`
	ActorID     *string    `json:"actor_id,omitempty"`
	Preview     string     `json:"preview,omitempty"`
	CreatedAt   string     `json:"created_at"`
}
