package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/menu-factory/internal/handler" // import the handlers that implement each endpoint
	"github.com/iliyamo/menu-factory/internal/metrics" // import the prometheus registry exposed on /metrics
)

// RegisterRoutes registers the operational endpoints: the health check used
// by load balancers and the prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}

// RegisterPublic registers the customer-facing menu.  The cache middleware
// only wraps the rendered menu; the snapshot is always read fresh.
func RegisterPublic(e *echo.Echo, h *handler.MenuHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/menu", h.ClientMenu, cache)
	e.GET("/v1/snapshot", h.Snapshot)
}

// RegisterEvents registers the websocket change stream.
func RegisterEvents(e *echo.Echo, h *handler.EventsHandler) {
	e.GET("/v1/events", h.Stream)
}

// RegisterGestion registers the management panel endpoints under
// /v1/gestion.  The AI analysis route goes through the rate limiter.
func RegisterGestion(e *echo.Echo, h *handler.MenuHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/gestion")
	g.GET("/dishes", h.ManageDishes)
	g.POST("/dishes", h.AddDish)
	// static segment registered before :id so it is never read as an id
	g.PUT("/dishes/order", h.ReorderDishes)
	g.PATCH("/dishes/:id", h.UpdateDish)
	g.DELETE("/dishes/:id", h.DeleteDish)
	g.POST("/dishes/:id/move", h.MoveDish)
	g.POST("/dishes/:id/toggle", h.ToggleDish)
	g.PUT("/dishes/:id/role", h.SetRole)
	g.GET("/price", h.GetPrice)
	g.PUT("/price", h.SetPrice)
	g.POST("/analyze", h.Analyze, limiter)
}

// RegisterFactory registers instance management under /v1/factory.
// Creating an instance may call the AI oracle, so it is rate limited.
func RegisterFactory(e *echo.Echo, h *handler.MenuHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/factory")
	g.GET("/instances", h.ListInstances)
	g.POST("/instances", h.CreateInstance, limiter)
	g.POST("/instances/:id/load", h.LoadInstance)
	g.DELETE("/instances/:id", h.DeleteInstance)
}
