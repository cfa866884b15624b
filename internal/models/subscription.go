package models

type Subscription struct {
	SubscriberID string     `json:"subscriber_id"`
	SourceType   TargetType `json:"source_type"`
	SourceID     string     `json:"source_id"`
	CreatedAt    string     `json:"created_at"`
}
