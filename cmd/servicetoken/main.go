// Command servicetoken mints a service token for a calling client using the
// JWT settings of the service config.
//
//	servicetoken -config ./config/config.yaml -client gateway
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shandysiswandi/stepup/internal/pkg/clock"
	"github.com/shandysiswandi/stepup/internal/pkg/config"
	"github.com/shandysiswandi/stepup/internal/pkg/jwt"
	"github.com/shandysiswandi/stepup/internal/pkg/uid"
)

func main() {
	path := flag.String("config", "./config/config.yaml", "path to the config file")
	client := flag.String("client", "", "client id carried by the token")
	ttl := flag.Duration("ttl", 0, "token lifetime, defaults to auth.jwt.ttl")
	flag.Parse()

	if *client == "" {
		slog.Error("client is required")
		os.Exit(2)
	}

	cfg, err := config.NewViper(*path)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	lifetime := *ttl
	if lifetime <= 0 {
		lifetime = cfg.GetDuration("auth.jwt.ttl")
	}
	if lifetime <= 0 {
		lifetime = time.Hour
	}

	signer, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(cfg.GetString("auth.jwt.secret")),
		Issuer:    cfg.GetString("auth.jwt.issuer"),
		Audiences: cfg.GetArray("auth.jwt.audiences"),
		TTL:       lifetime,
		Clock:     clock.New(),
		UUID:      uid.NewUUID(),
	})
	if err != nil {
		slog.Error("failed to init jwt token", "error", err)
		os.Exit(1)
	}

	token, err := signer.Generate(*client)
	if err != nil {
		slog.Error("failed to generate token", "error", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
