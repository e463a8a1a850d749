package main

import (
	"flag"

	"github.com/danmuck/callwire/internal/auth"
	"github.com/danmuck/callwire/internal/config"
	"github.com/danmuck/callwire/internal/logging"
	"github.com/danmuck/callwire/internal/stub"
	"github.com/rs/zerolog/log"
)

const (
	opLogin int32 = 1
	opEcho  int32 = 2

	stubToken = "stub-token"
)

func main() {
	configPath := flag.String("config", "cmd/callstub/config.toml", "stub config (toml)")
	flag.Parse()

	logger := logging.New("callstub")
	log.Logger = logger

	cfg, err := config.LoadStubConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load stub config")
	}
	log.Info().Str("path", *configPath).Msg("loaded stub config")

	server := stub.New(cfg.Name, cfg.Addr, cfg.CorsOrigins)
	server.RequireToken = cfg.RequireToken
	if cfg.RequireToken {
		server.Tokens = auth.NewTokenSet(stubToken)
	}
	server.Registry.HandlePublic(opLogin, stub.Login("admin", "admin", stubToken, "ERP11260"))
	server.Registry.Handle(opEcho, stub.Echo)

	log.Info().Str("name", server.Name).Str("addr", server.Addr).Msg("callstub started")
	if err := server.Serve(); err != nil {
		log.Fatal().Err(err).Msg("callstub stopped")
	}
}
