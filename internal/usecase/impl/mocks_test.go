package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"userdir/internal/domain/entity"
	"userdir/internal/domain/repository"
	"userdir/internal/domain/service"
	"userdir/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// mockUserRepository is a testify mock of repository.UserRepository.
type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*entity.User); ok {
		return user, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if user, ok := args.Get(0).(*entity.User); ok {
		return user, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockUserRepository) List(ctx context.Context, offset, limit int) ([]*entity.User, int64, error) {
	args := m.Called(ctx, offset, limit)
	users, _ := args.Get(0).([]*entity.User)

	return users, args.Get(1).(int64), args.Error(2)
}

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)

	return args.Error(0)
}

func (m *mockUserRepository) Update(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)

	return args.Error(0)
}

func (m *mockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// mockPasswordHasher is a testify mock of service.PasswordHasher.
type mockPasswordHasher struct {
	mock.Mock
}

func (m *mockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)

	return args.String(0), args.Error(1)
}

func (m *mockPasswordHasher) Check(password, hash string) bool {
	args := m.Called(password, hash)

	return args.Bool(0)
}

// mockTokenService is a testify mock of service.TokenService.
type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) Issue(userID uuid.UUID) (string, error) {
	args := m.Called(userID)

	return args.String(0), args.Error(1)
}

func (m *mockTokenService) Verify(tokenString string) (uuid.UUID, error) {
	args := m.Called(tokenString)

	return args.Get(0).(uuid.UUID), args.Error(1)
}

var (
	_ repository.UserRepository = (*mockUserRepository)(nil)
	_ service.PasswordHasher    = (*mockPasswordHasher)(nil)
	_ service.TokenService      = (*mockTokenService)(nil)
)

// userServiceFixtures holds all test dependencies for user service tests.
type userServiceFixtures struct {
	service      usecase.UserUsecase
	userRepo     *mockUserRepository
	hasher       *mockPasswordHasher
	tokenService *mockTokenService
}

func createTestUserService(t *testing.T) userServiceFixtures {
	t.Helper()

	userRepo := new(mockUserRepository)
	hasher := new(mockPasswordHasher)
	tokenService := new(mockTokenService)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	service := NewUserService(UserServiceParams{
		UserRepo:     userRepo,
		Hasher:       hasher,
		TokenService: tokenService,
		Logger:       logger,
	})

	t.Cleanup(func() {
		userRepo.AssertExpectations(t)
		hasher.AssertExpectations(t)
		tokenService.AssertExpectations(t)
	})

	return userServiceFixtures{
		service:      service,
		userRepo:     userRepo,
		hasher:       hasher,
		tokenService: tokenService,
	}
}
