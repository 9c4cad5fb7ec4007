package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	"gitroute/internal/api"
	"gitroute/internal/api/handlers"
	"gitroute/internal/api/middleware"
	"gitroute/internal/engine/notify"
	"gitroute/internal/engine/registry"
	"gitroute/internal/pkg/logger"
	"gitroute/internal/platform/auth"
	"gitroute/internal/platform/config"
	"gitroute/internal/platform/database"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open registry store: %v", err)
	}
	defer db.Close()

	// The console messenger stands in for the chat platform's private
	// message channel; swap in the real transport's implementation when
	// embedding.
	messenger := notify.NewConsoleMessenger()

	svc := registry.NewService(db, cfg.Registry, messenger)
	tokenSvc := auth.NewTokenService(cfg.JWT)

	deps := &api.Dependencies{
		WebhookHandler: handlers.NewWebhookHandler(svc),
		RouteHandler:   handlers.NewRouteHandler(svc),
		BackupHandler:  handlers.NewBackupHandler(svc),
		HealthHandler:  handlers.NewHealthHandler(db),
		AuthMiddleware: middleware.NewAuthMiddleware(tokenSvc),
	}
	router := api.NewRouter(deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Printf("Server starting on %s", addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
