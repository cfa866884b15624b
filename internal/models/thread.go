package models

type Thread struct {
	ID            string   `json:"id"`
	CommentableID string   `json:"commentable_id"`
	CourseID      string   `json:"course_id,omitempty"`
	Title         string   `json:"title"`
	Body          string   `json:"body"`
	AuthorID      *string  `json:"author_id,omitempty"`
	Anonymous     bool     `json:"anonymous"`
	Tags          []string `json:"tags"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

// ThreadRecord is the serialized form of a thread. Comments holds the full
// comment forest in recursive mode; CommentIDs holds the top-level comment
// ids in flat mode. UpCount is computed from the vote ledger at
// serialization time.
type ThreadRecord struct {
	ID            string          `json:"id"`
	CommentableID string          `json:"commentable_id"`
	CourseID      string          `json:"course_id,omitempty"`
	Title         string          `json:"title"`
	Body          string          `json:"body"`
	AuthorID      *string         `json:"author_id,omitempty"`
	Anonymous     bool            `json:"anonymous"`
	Tags          []string        `json:"tags"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
	UpCount       int             `json:"up_count"`
	CommentCount  int             `json:"comment_count"`
	CommentIDs    []string        `json:"comment_ids,omitempty"`
	Comments      []CommentRecord `json:"comments,omitempty"`
}
