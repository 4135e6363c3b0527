package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/weiawesome/wes-io-live/liveroom-console/internal/client"
	"github.com/weiawesome/wes-io-live/liveroom-console/internal/clipboard"
	"github.com/weiawesome/wes-io-live/liveroom-console/internal/config"
	"github.com/weiawesome/wes-io-live/liveroom-console/internal/console"
	"github.com/weiawesome/wes-io-live/liveroom-console/internal/token"
	"github.com/weiawesome/wes-io-live/liveroom-console/internal/urlbuilder"
	pkglog "github.com/weiawesome/wes-io-live/liveroom-console/pkg/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: "liveroom-console",
	})
	logger := pkglog.L()

	// Bearer token
	tokens, err := token.Load(cfg.Auth.Token, cfg.Auth.TokenFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load bearer token")
	}
	if exp, ok := tokens.ExpiresAt(); ok {
		logger.Info().Time("expires_at", exp).Msg("bearer token loaded")
	}

	roomClient := client.NewRoomClient(client.Options{
		BaseURL:    cfg.Backend.BaseURL,
		PathPrefix: cfg.Backend.PathPrefix,
		Timeout:    cfg.Backend.Timeout,
		Tokens:     tokens,
		Logger:     logger,
	})
	logger.Info().Str("address", cfg.Backend.BaseURL).Msg("live room client configured")

	var clip clipboard.Service = clipboard.Disabled{}
	if cfg.Clipboard.Enabled {
		clip = clipboard.NewSystem()
	}

	c := console.New(console.Options{
		API:          roomClient,
		Builder:      urlbuilder.Default{},
		Clipboard:    clip,
		Environment:  cfg.Environment,
		PollInterval: cfg.Room.PollInterval,
		DefaultTitle: cfg.Room.DefaultTitle,
		Language:     cfg.UI.Language,
		Out:          os.Stdout,
		Logger:       logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info().Dur("poll_interval", cfg.Room.PollInterval).Msg("liveroom-console starting")
	if err := c.Run(ctx, os.Stdin); err != nil {
		logger.Error().Err(err).Msg("console stopped with error")
	}

	logger.Info().Msg("liveroom-console stopped")
}
