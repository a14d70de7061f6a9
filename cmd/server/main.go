// Command server runs the intake HTTP service.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JaimeStill/intake/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := NewServer(ctx, cfg)
	if err != nil {
		slog.Error("server init failed", "error", err)
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		srv.logger().Error("server start failed", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()

	if err := srv.Shutdown(cfg.Server.ShutdownTimeoutDuration()); err != nil {
		srv.logger().Error("shutdown incomplete", "error", err)
		os.Exit(1)
	}
	srv.logger().Info("intake stopped")
}
