package domain

import "time"

// RoleAdmin is the only role the back office knows about.
const RoleAdmin = "admin"

// User is a back-office login.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}
