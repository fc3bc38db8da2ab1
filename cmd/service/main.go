package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"gitlab.com/dirk.krummacker/contact-form-service/internal/config"
	"gitlab.com/dirk.krummacker/contact-form-service/internal/logging"
	"gitlab.com/dirk.krummacker/contact-form-service/internal/server"
)

// Usage example on the command line:
// > PORT=3000 MONGO_URI=mongodb://localhost:27017/contactDB GIN_MODE=release go run main.go
func main() {
	if err := godotenv.Load(); err != nil {
		// a missing .env file is fine, the environment may be set up already
		slog.Debug("no .env file loaded", "err", err)
	}
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("invalid configuration", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.Start(ctx, cfg)
	if err != nil {
		logging.Fatal("could not start server", "err", err)
	}

	select {
	case <-ctx.Done():
	case err := <-srv.Done():
		slog.Error("server stopped serving", "err", err)
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown incomplete", "err", err)
		os.Exit(1)
	}
}
