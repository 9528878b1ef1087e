package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"userdir/internal/delivery/http/middleware"
	"userdir/internal/delivery/http/validator"
	"userdir/internal/domain/entity"
	domainerrors "userdir/internal/domain/errors"
	"userdir/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockUserUsecase is a testify mock of usecase.UserUsecase.
type mockUserUsecase struct {
	mock.Mock
}

func (m *mockUserUsecase) Register(ctx context.Context, input *usecase.RegisterInput) (*entity.User, error) {
	args := m.Called(ctx, input)
	if user, ok := args.Get(0).(*entity.User); ok {
		return user, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockUserUsecase) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	args := m.Called(ctx, input)
	if output, ok := args.Get(0).(*usecase.LoginOutput); ok {
		return output, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockUserUsecase) ListUsers(ctx context.Context, page, limit int) (*usecase.UserListOutput, error) {
	args := m.Called(ctx, page, limit)
	if output, ok := args.Get(0).(*usecase.UserListOutput); ok {
		return output, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockUserUsecase) UpdateUser(ctx context.Context, id uuid.UUID, input *usecase.UpdateUserInput) (*entity.User, error) {
	args := m.Called(ctx, id, input)
	if user, ok := args.Get(0).(*entity.User); ok {
		return user, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockUserUsecase) DeleteUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*entity.User); ok {
		return user, args.Error(1)
	}

	return nil, args.Error(1)
}

var _ usecase.UserUsecase = (*mockUserUsecase)(nil)

type handlerFixtures struct {
	handler *UserHandler
	uc      *mockUserUsecase
	echo    *echo.Echo
	errMw   *middleware.ErrorMiddleware
}

func createTestHandler(t *testing.T) handlerFixtures {
	t.Helper()

	uc := new(mockUserUsecase)
	t.Cleanup(func() { uc.AssertExpectations(t) })

	e := echo.New()
	e.Validator = validator.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return handlerFixtures{
		handler: NewUserHandler(uc),
		uc:      uc,
		echo:    e,
		errMw:   middleware.NewErrorMiddleware(logger),
	}
}

// invoke runs a handler and routes any returned error through the same error
// handler the server installs, so assertions see the final HTTP answer.
func (f handlerFixtures) invoke(h echo.HandlerFunc, c echo.Context) {
	if err := h(c); err != nil {
		f.errMw.HandleHTTPError(err, c)
	}
}

func (f handlerFixtures) newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	return f.echo.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func TestUserHandler_Register(t *testing.T) {
	t.Run("returns 201 with the created user", func(t *testing.T) {
		f := createTestHandler(t)

		created := &entity.User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com", PasswordHash: "$2a$10$secret"}
		f.uc.On("Register", mock.Anything, mock.MatchedBy(func(input *usecase.RegisterInput) bool {
			return input.Email == "alice@example.com"
		})).Return(created, nil).Once()

		c, rec := f.newJSONContext(http.MethodPost, "/api/users",
			`{"name":"Alice","email":"alice@example.com","password":"plain"}`)
		f.invoke(f.handler.Register, c)

		assert.Equal(t, http.StatusCreated, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "User created successfully", body["message"])
		// The stored hash never leaves the server.
		assert.NotContains(t, rec.Body.String(), "$2a$10$secret")
	})

	t.Run("returns 400 for a duplicate email", func(t *testing.T) {
		f := createTestHandler(t)

		f.uc.On("Register", mock.Anything, mock.Anything).
			Return(nil, domainerrors.ErrEmailTaken.WrapMessage("registration failed")).Once()

		c, rec := f.newJSONContext(http.MethodPost, "/api/users",
			`{"name":"Alice","email":"alice@example.com","password":"plain"}`)
		f.invoke(f.handler.Register, c)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "EMAIL_TAKEN")
	})

	t.Run("returns 400 when required fields are missing", func(t *testing.T) {
		f := createTestHandler(t)

		c, rec := f.newJSONContext(http.MethodPost, "/api/users", `{"name":"Alice"}`)
		f.invoke(f.handler.Register, c)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		f.uc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("returns 400 for a malformed email", func(t *testing.T) {
		f := createTestHandler(t)

		c, rec := f.newJSONContext(http.MethodPost, "/api/users",
			`{"name":"Alice","email":"not-an-email","password":"plain"}`)
		f.invoke(f.handler.Register, c)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		f.uc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})
}

func TestUserHandler_Login(t *testing.T) {
	t.Run("returns 200 with token and user", func(t *testing.T) {
		f := createTestHandler(t)

		user := &entity.User{ID: uuid.New(), Email: "alice@example.com"}
		f.uc.On("Login", mock.Anything, mock.MatchedBy(func(input *usecase.LoginInput) bool {
			return input.Email == "alice@example.com" && input.Password == "plain"
		})).Return(&usecase.LoginOutput{Token: "signed.jwt.token", User: user}, nil).Once()

		c, rec := f.newJSONContext(http.MethodPost, "/api/users/login",
			`{"email":"alice@example.com","password":"plain"}`)
		f.invoke(f.handler.Login, c)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "signed.jwt.token")
		assert.Equal(t, "Login successful", decodeBody(t, rec)["message"])
	})

	t.Run("returns 400 for bad credentials", func(t *testing.T) {
		f := createTestHandler(t)

		f.uc.On("Login", mock.Anything, mock.Anything).
			Return(nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")).Once()

		c, rec := f.newJSONContext(http.MethodPost, "/api/users/login",
			`{"email":"alice@example.com","password":"wrong"}`)
		f.invoke(f.handler.Login, c)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Email or password is incorrect")
	})
}

func TestUserHandler_ListUsers(t *testing.T) {
	f := createTestHandler(t)

	output := &usecase.UserListOutput{
		Page:       2,
		Limit:      5,
		TotalUsers: 11,
		TotalPages: 3,
		Users:      []*entity.User{{ID: uuid.New()}},
	}
	f.uc.On("ListUsers", mock.Anything, 2, 5).Return(output, nil).Once()

	c, rec := f.newJSONContext(http.MethodGet, "/api/users?page=2&limit=5", "")
	f.invoke(f.handler.ListUsers, c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalUsers":11`)
	assert.Contains(t, rec.Body.String(), `"totalPages":3`)
}

func TestUserHandler_UpdateUser(t *testing.T) {
	t.Run("returns 200 with the updated user", func(t *testing.T) {
		f := createTestHandler(t)
		id := uuid.New()

		updated := &entity.User{ID: id, Name: "Alice Cooper", Email: "alice.cooper@example.com"}
		f.uc.On("UpdateUser", mock.Anything, id, mock.MatchedBy(func(input *usecase.UpdateUserInput) bool {
			return input.Name == "Alice Cooper" && input.Password == ""
		})).Return(updated, nil).Once()

		c, rec := f.newJSONContext(http.MethodPut, "/api/users/update/"+id.String(),
			`{"name":"Alice Cooper","email":"alice.cooper@example.com"}`)
		c.SetParamNames("id")
		c.SetParamValues(id.String())
		f.invoke(f.handler.UpdateUser, c)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "User updated successfully", decodeBody(t, rec)["message"])
	})

	t.Run("returns 400 for a non-UUID id", func(t *testing.T) {
		f := createTestHandler(t)

		c, rec := f.newJSONContext(http.MethodPut, "/api/users/update/not-a-uuid",
			`{"name":"Alice","email":"alice@example.com"}`)
		c.SetParamNames("id")
		c.SetParamValues("not-a-uuid")
		f.invoke(f.handler.UpdateUser, c)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		f.uc.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("returns 404 for an unknown id", func(t *testing.T) {
		f := createTestHandler(t)
		id := uuid.New()

		f.uc.On("UpdateUser", mock.Anything, id, mock.Anything).
			Return(nil, domainerrors.ErrUserNotFound.WrapMessage("update failed")).Once()

		c, rec := f.newJSONContext(http.MethodPut, "/api/users/update/"+id.String(),
			`{"name":"Alice","email":"alice@example.com"}`)
		c.SetParamNames("id")
		c.SetParamValues(id.String())
		f.invoke(f.handler.UpdateUser, c)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "USER_NOT_FOUND")
	})
}

func TestUserHandler_DeleteUser(t *testing.T) {
	t.Run("returns 200 with the removed user", func(t *testing.T) {
		f := createTestHandler(t)
		id := uuid.New()

		removed := &entity.User{ID: id, Email: "alice@example.com"}
		f.uc.On("DeleteUser", mock.Anything, id).Return(removed, nil).Once()

		c, rec := f.newJSONContext(http.MethodDelete, "/api/users/delete/"+id.String(), "")
		c.SetParamNames("id")
		c.SetParamValues(id.String())
		f.invoke(f.handler.DeleteUser, c)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "User deleted successfully", decodeBody(t, rec)["message"])
	})

	t.Run("returns 404 for an unknown id", func(t *testing.T) {
		f := createTestHandler(t)
		id := uuid.New()

		f.uc.On("DeleteUser", mock.Anything, id).
			Return(nil, domainerrors.ErrUserNotFound.WrapMessage("delete failed")).Once()

		c, rec := f.newJSONContext(http.MethodDelete, "/api/users/delete/"+id.String(), "")
		c.SetParamNames("id")
		c.SetParamValues(id.String())
		f.invoke(f.handler.DeleteUser, c)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHealthCheck(t *testing.T) {
	f := createTestHandler(t)

	c, rec := f.newJSONContext(http.MethodGet, "/health", "")
	require.NoError(t, HealthCheck(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
