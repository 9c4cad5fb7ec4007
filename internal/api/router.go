package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "gitroute/internal/api/context"
	"gitroute/internal/api/handlers"
	"gitroute/internal/api/middleware"
)

type Dependencies struct {
	WebhookHandler *handlers.WebhookHandler
	RouteHandler   *handlers.RouteHandler
	BackupHandler  *handlers.BackupHandler
	HealthHandler  *handlers.HealthHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	router.GET("/healthz", wrap(deps.HealthHandler.Check))

	authMid := deps.AuthMiddleware

	// Webhook management
	router.POST("/api/v1/webhooks",
		chain(deps.WebhookHandler.Create, authMid.Handle, middleware.RequireManage))
	router.GET("/api/v1/webhooks",
		chain(deps.WebhookHandler.List, authMid.Handle, middleware.RequireManage))
	router.PATCH("/api/v1/webhooks/:webhook_id",
		chain(deps.WebhookHandler.Edit, authMid.Handle, middleware.RequireManage))
	router.DELETE("/api/v1/webhooks/:webhook_id",
		chain(deps.WebhookHandler.Delete, authMid.Handle, middleware.RequireManage))
	router.POST("/api/v1/webhooks/:webhook_id/rotate",
		chain(deps.WebhookHandler.RotateSecret, authMid.Handle, middleware.RequireManage))

	// Route management
	router.POST("/api/v1/webhooks/:webhook_id/routes",
		chain(deps.RouteHandler.Create, authMid.Handle, middleware.RequireManage))
	router.DELETE("/api/v1/routes/:route_id",
		chain(deps.RouteHandler.Delete, authMid.Handle, middleware.RequireManage))
	router.PATCH("/api/v1/routes/:route_id/channel",
		chain(deps.RouteHandler.SetChannel, authMid.Handle, middleware.RequireManage))
	router.PATCH("/api/v1/routes/:route_id/events",
		chain(deps.RouteHandler.SetEvents, authMid.Handle, middleware.RequireManage))
	router.DELETE("/api/v1/routes/:route_id/events",
		chain(deps.RouteHandler.ClearEvents, authMid.Handle, middleware.RequireManage))

	// Backups
	router.GET("/api/v1/webhooks/:webhook_id/backup",
		chain(deps.BackupHandler.Export, authMid.Handle, middleware.RequireManage))
	router.POST("/api/v1/webhooks/:webhook_id/backup",
		chain(deps.BackupHandler.Import, authMid.Handle, middleware.RequireManage))

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		// Inject params into context
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
