// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"

	"userdir/internal/domain/entity"
	domainerrors "userdir/internal/domain/errors"
	"userdir/internal/domain/repository"
	"userdir/internal/domain/service"
	"userdir/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// userService implements the UserUsecase interface.
type userService struct {
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	logger       *slog.Logger
}

// UserServiceParams holds dependencies for UserService, injected by Fx.
type UserServiceParams struct {
	fx.In

	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Logger       *slog.Logger
}

// NewUserService is the constructor for userService. It receives all dependencies as interfaces.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	return &userService{
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		logger:       params.Logger,
	}
}

// Register creates a new account with a hashed credential.
//
// The FindByEmail pre-check gives a fast duplicate-email answer without a
// write, but it is not atomic with Create: two racing registrations can both
// pass it. The store's unique index is the real arbiter, and the repository
// reports that as the same ErrEmailTaken this pre-check produces.
func (srv *userService) Register(ctx context.Context, input *usecase.RegisterInput) (*entity.User, error) {
	srv.logger.Info("Starting registration", slog.String("email", input.Email))

	_, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err == nil {
		srv.logger.Warn("Registration rejected, email taken", slog.String("email", input.Email))

		return nil, domainerrors.ErrEmailTaken.WrapMessage("registration failed")
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, errors.Wrap(err, "failed to check email availability")
	}

	hashed, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.logger.Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage("registration failed")
	}

	newUser := &entity.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hashed,
	}

	if err := srv.userRepo.Create(ctx, newUser); err != nil {
		return nil, errors.Wrap(err, "failed to create user during registration")
	}

	srv.logger.Debug("Registration completed", slog.Any("userID", newUser.ID))

	return newUser, nil
}

// Login authenticates a credential pair and issues a bearer token.
// An unknown email and a wrong password produce the identical error, so the
// response never reveals whether an email is registered.
func (srv *userService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	srv.logger.Debug("Starting login", slog.String("email", input.Email))

	user, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.logger.Warn("Login failed, unknown email", slog.String("email", input.Email))

			return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.logger.Warn("Login failed, password mismatch", slog.String("email", input.Email))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
	}

	token, err := srv.tokenService.Issue(user.ID)
	if err != nil {
		srv.logger.Error("Failed to issue token", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to issue token")
	}

	srv.logger.Debug("User logged in", slog.Any("userID", user.ID))

	return &usecase.LoginOutput{Token: token, User: user}, nil
}

// ListUsers returns one page of the directory with paging totals.
func (srv *userService) ListUsers(ctx context.Context, page, limit int) (*usecase.UserListOutput, error) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	offset := (page - 1) * limit

	users, total, err := srv.userRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}

	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}

	return &usecase.UserListOutput{
		Page:       page,
		Limit:      limit,
		TotalUsers: total,
		TotalPages: totalPages,
		Users:      users,
	}, nil
}

// UpdateUser rewrites name, email and (optionally) the credential of an account.
// When no new password is supplied the stored hash is carried over unchanged,
// so logins with the old password keep working.
func (srv *userService) UpdateUser(ctx context.Context, id uuid.UUID, input *usecase.UpdateUserInput) (*entity.User, error) {
	srv.logger.Info("Starting user update", slog.Any("userID", id))

	user, err := srv.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound.WrapMessage("update failed")
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	if input.Password != "" {
		hashed, err := srv.hasher.Hash(input.Password)
		if err != nil {
			srv.logger.Error("Failed to hash password during update", slog.Any("error", err))

			return nil, domainerrors.ErrPasswordHashFailed.WrapMessage("update failed")
		}
		user.PasswordHash = hashed
	}

	user.Name = input.Name
	user.Email = input.Email

	// No email-uniqueness pre-check here: the store's unique index rejects a
	// duplicate and the repository maps it to ErrEmailTaken.
	if err := srv.userRepo.Update(ctx, user); err != nil {
		return nil, errors.Wrap(err, "failed to update user")
	}

	srv.logger.Debug("User updated", slog.Any("userID", user.ID))

	return user, nil
}

// DeleteUser removes an account and returns the removed record.
func (srv *userService) DeleteUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	srv.logger.Info("Starting user deletion", slog.Any("userID", id))

	user, err := srv.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound.WrapMessage("delete failed")
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	if err := srv.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Lost a race against a concurrent delete of the same account.
			return nil, domainerrors.ErrUserNotFound.WrapMessage("delete failed")
		}

		return nil, errors.Wrap(err, "failed to delete user")
	}

	srv.logger.Debug("User deleted", slog.Any("userID", user.ID))

	return user, nil
}
