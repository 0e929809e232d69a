// Package domain holds the gateway's stored entities.
package domain

import "time"

// User is a Basic-auth principal. Only the Argon2id hash of the password
// is ever stored.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Scopes       []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
