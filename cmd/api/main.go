package main

import (
	"log"

	"cvmatch-backend/internal/bootstrap"
	"cvmatch-backend/internal/shared/config"
	"cvmatch-backend/internal/shared/server"
	"cvmatch-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	addr := server.Addr(cfg.Port)
	telemetry.Info("server.start", map[string]any{
		"addr":     addr,
		"env":      cfg.Env,
		"advisory": cfg.AdvisoryEnabled(),
	})

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
