// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"transit/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	TransitHandler *handler.TransitHandler
}

// router holds all the handlers that need to be registered.
type router struct {
	transitHandler *handler.TransitHandler
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		transitHandler: params.TransitHandler,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", r.transitHandler.HealthCheck)

	v1 := e.Group("/v1")
	{
		v1.GET("/catalogue", r.transitHandler.GetCatalogue)
		v1.POST("/catalogue", r.transitHandler.LoadCatalogue)
		v1.GET("/buses/:name", r.transitHandler.GetBus)
		v1.GET("/stops/:name", r.transitHandler.GetStop)
		v1.GET("/route", r.transitHandler.GetRoute)
		v1.GET("/map", r.transitHandler.GetMap)
	}
}
