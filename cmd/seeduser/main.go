// cmd/seeduser/main.go: creates or resets the initial administrador.
// Uso: SEED_USERNAME=admin SEED_PASSWORD=secreto go run ./cmd/seeduser
package main

import (
	"context"
	"os"
	"time"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/apierror"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/config"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/infra"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/model"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/repository"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	username := envOr("SEED_USERNAME", "admin")
	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		log.Fatal().Msg("SEED_PASSWORD es obligatorio")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), service.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	ctx := context.Background()
	repo := repository.NewUsuarioRepository(db)
	u, err := repo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		u.PasswordHash = string(hash)
		u.Rol = model.RolAdministrador
		u.Activo = true
		err = repo.Update(ctx, u)
	case apierror.KindOf(err) == apierror.KindNotFound:
		err = repo.Create(ctx, &model.Usuario{
			Username:     username,
			Nombre:       envOr("SEED_NOMBRE", "Administrador"),
			PasswordHash: string(hash),
			Rol:          model.RolAdministrador,
			Activo:       true,
		})
	}
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Str("username", username).Msg("usuario administrador creado/actualizado")
}
