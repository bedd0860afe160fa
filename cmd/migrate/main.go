// cmd/migrate/main.go: runs goose against the embedded migrations.
// Uso: go run ./cmd/migrate -cmd=status
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/config"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/infra"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|redo|reset")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	if err := infra.RunMigrations(context.Background(), db, *cmd, flag.Args()...); err != nil {
		log.Fatal().Err(err).Str("cmd", *cmd).Msg("migration failed")
	}
	log.Info().Str("cmd", *cmd).Msg("migration finished")
}
