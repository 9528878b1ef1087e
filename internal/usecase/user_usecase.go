// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"userdir/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new account.
type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginInput defines the data required to log in.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserInput defines the mutable account fields. An empty Password means
// the stored credential is left untouched.
type UpdateUserInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password"`
}

// --- Output DTOs ---

// LoginOutput returns the issued bearer token alongside the account.
type LoginOutput struct {
	Token string       `json:"token"`
	User  *entity.User `json:"user"`
}

// UserListOutput is one page of the directory listing.
type UserListOutput struct {
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalUsers int64          `json:"totalUsers"`
	TotalPages int64          `json:"totalPages"`
	Users      []*entity.User `json:"users"`
}

// UserUsecase defines the interface for user-related business operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type UserUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*entity.User, error)
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)
	ListUsers(ctx context.Context, page, limit int) (*UserListOutput, error)
	UpdateUser(ctx context.Context, id uuid.UUID, input *UpdateUserInput) (*entity.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) (*entity.User, error)
}
