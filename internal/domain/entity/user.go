// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the single identity record of the directory. The password hash is
// carried here so the login and update flows can reach it, but it is never
// serialized outward.
type User struct {
	ID           uuid.UUID `json:"id"`    // Assigned by the store at creation, immutable afterwards.
	Name         string    `json:"name"`  // Display name.
	Email        string    `json:"email"` // Login identifier, unique across all live accounts.
	PasswordHash string    `json:"-"`     // Opaque bcrypt record, mutated only through the hashing pipeline.
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
