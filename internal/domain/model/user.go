package model

import "time"

// User represents a registered customer. Checkout does not require an
// account; orders placed while authenticated are linked to one.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
