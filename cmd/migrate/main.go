package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/config"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/migrations"
)

func main() {
	flag.Parse()

	action := "up"
	if flag.NArg() > 0 {
		action = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	m, err := migrations.New(cfg.DatabaseURL())
	if err != nil {
		slog.Error("Failed to open migrator", "error", err)
		os.Exit(1)
	}
	defer m.Close()

	version, dirty, err := migrations.Run(m, action)
	if err != nil {
		slog.Error("Migration failed", "action", action, "error", err)
		os.Exit(1)
	}

	if dirty {
		slog.Warn("Migration left the schema dirty", "action", action, "version", version)
		return
	}
	slog.Info("Migration completed", "action", action, "version", version)
}
