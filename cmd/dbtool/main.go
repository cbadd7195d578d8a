package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"safe-route-service/internal/config"
	"safe-route-service/internal/platform/db"
	"safe-route-service/internal/platform/logging"
)

// dbtool applies the Postgres schema migrations outside of server startup.
func main() {
	timeout := flag.Duration("timeout", time.Minute, "migration timeout")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found (using environment variables)")
	}
	logging.Setup(config.Get("LOG_LEVEL", "info"), config.Get("LOG_FORMAT", "text"))

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, err := db.Open(ctx, databaseURL)
	if err != nil {
		slog.Error("open database", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	slog.Info("applying migrations")
	if err := db.Migrate(ctx, conn); err != nil {
		slog.Error("migrations failed", "error", err)
		os.Exit(1)
	}
	slog.Info("schema ready")
}
