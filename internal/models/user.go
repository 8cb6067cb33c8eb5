package models

import "time"

// User is the strict, typed form of a directory record. Store implementations
// map their row shape into this at the boundary; nothing downstream re-checks
// field presence.
type User struct {
	IdentityToken  string    `json:"identityToken"`
	DisplayName    string    `json:"displayName"`
	Email          string    `json:"email"`
	Mobile         string    `json:"mobile"`
	Address        string    `json:"address"`
	PhotoReference string    `json:"photoReference,omitempty"`
	IsAdmin        bool      `json:"isAdmin"`
	Points         int64     `json:"points"`
	PasswordHash   string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}
