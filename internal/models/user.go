package models

type User struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Role       string  `json:"role"`
	CreatedAt  string  `json:"created_at"`
	LastActive *string `json:"last_active,omitempty"`
}
