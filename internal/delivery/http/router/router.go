// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"userdir/internal/delivery/http/middleware"
	"userdir/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	UserHandler    *handler.UserHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	userHandler    *handler.UserHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		userHandler:    params.UserHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	api := e.Group("/api")
	{
		// Registration and login are the only unauthenticated operations.
		api.POST("/users", r.userHandler.Register)
		api.POST("/users/login", r.userHandler.Login)

		api.GET("/users", r.userHandler.ListUsers, r.authMiddleware.Authenticate)
		api.PUT("/users/update/:id", r.userHandler.UpdateUser, r.authMiddleware.Authenticate)
		api.DELETE("/users/delete/:id", r.userHandler.DeleteUser, r.authMiddleware.Authenticate)
	}
}
