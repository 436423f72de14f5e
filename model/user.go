package model

import "time"

// UserProfile is the application-level metadata kept alongside the external
// auth identity. Identity itself (id, email) is owned by the auth provider.
type UserProfile struct {
	UserID    string     `db:"user_id" json:"user_id"`
	Email     string     `db:"email" json:"email"`
	Name      string     `db:"name" json:"name"`
	Phone     string     `db:"phone" json:"phone,omitempty"`
	Address   string     `db:"address" json:"address,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}
