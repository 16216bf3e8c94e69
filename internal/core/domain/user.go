package domain

import (
	"encoding/json"
	"time"
)

// User is the user-service record as far as the dashboard needs it.
// The admin CRUD routes forward user documents untouched and never decode them.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles,omitempty"`
	IsActive  *bool     `json:"isActive,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// UnmarshalJSON accepts both "id" and Mongo-style "_id" identifiers.
func (u *User) UnmarshalJSON(b []byte) error {
	type alias User
	var raw struct {
		alias
		MongoID string `json:"_id"`
		Role    string `json:"role"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*u = User(raw.alias)
	if u.ID == "" {
		u.ID = raw.MongoID
	}
	if len(u.Roles) == 0 && raw.Role != "" {
		u.Roles = []string{raw.Role}
	}
	return nil
}

// Active treats a missing isActive flag as active.
func (u User) Active() bool {
	return u.IsActive == nil || *u.IsActive
}

// PrimaryRole returns the first role or "" when none is set.
func (u User) PrimaryRole() string {
	if len(u.Roles) == 0 {
		return ""
	}
	return u.Roles[0]
}
