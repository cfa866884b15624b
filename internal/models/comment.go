package models

type Comment struct {
	ID        string  `json:"id"`
	ThreadID  string  `json:"thread_id"`
	ParentID  *string `json:"parent_id,omitempty"`
	AuthorID  *string `json:"author_id,omitempty"`
	Anonymous bool    `json:"anonymous"`
	Body      string  `json:"body"`
	Endorsed  bool    `json:"endorsed"`
	Depth     int     `json:"depth"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// CommentRecord is the serialized form of a comment. Children is populated
// only in recursive mode, in creation order; flat mode carries ChildIDs
// instead and never descends.
type CommentRecord struct {
	ID        string          `json:"id"`
	ThreadID  string          `json:"thread_id"`
	ParentID  *string         `json:"parent_id,omitempty"`
	AuthorID  *string         `json:"author_id,omitempty"`
	Anonymous bool            `json:"anonymous"`
	Body      string          `json:"body"`
	Endorsed  bool            `json:"endorsed"`
	Depth     int             `json:"depth"`
	CreatedAt string          `json:"created_at"`
	UpCount   int             `json:"up_count"`
	ChildIDs  []string        `json:"child_ids,omitempty"`
	Children  []CommentRecord `json:"children,omitempty"`
}
