package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wadjakorntonsri/limestar/pkg/adapters/api"
	"github.com/wadjakorntonsri/limestar/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/limestar/pkg/adapters/repository/valkey"
	"github.com/wadjakorntonsri/limestar/pkg/config"
	"github.com/wadjakorntonsri/limestar/pkg/core/services"
	"github.com/wadjakorntonsri/limestar/pkg/ports"
)

var errNotLoggedIn = errors.New("not logged in, run 'limestar login' first")

// app is everything a command needs, wired once per invocation.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	client  *api.Client
	session *services.Session
	store   tokenStore
}

type opener func(cmd *cobra.Command) (*app, error)

type tokenStore interface {
	ports.TokenStore
	Close() error
}

func openApp(ctx context.Context, cfg *config.Config, verbose bool, logOut io.Writer) (*app, error) {
	level := cfg.LogLevel
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))

	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	client := api.New(cfg.APIURL, api.WithTimeout(cfg.Timeout), api.WithLogger(logger))
	session := services.NewSession(client, store, services.WithSessionLogger(logger))
	client.SetTokenSource(session)

	logger.Debug("restoring session", "api", cfg.APIURL, "env", cfg.AppEnv)
	session.Restore(ctx)

	return &app{cfg: cfg, logger: logger, client: client, session: session, store: store}, nil
}

// openStore picks the session store from the state URL scheme.
func openStore(cfg *config.Config) (tokenStore, error) {
	if strings.HasPrefix(cfg.StateURL, "redis://") || strings.HasPrefix(cfg.StateURL, "rediss://") {
		rdb, err := valkey.Connect(cfg.StateURL)
		if err != nil {
			return nil, err
		}
		return valkey.NewTokenStore(rdb, valkey.DefaultKey), nil
	}

	if path := cfg.StatePath(); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
	}
	repo, err := sqlite.NewSQLiteRepository(cfg.StateURL)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func (a *app) requireLogin() error {
	if !a.session.IsAuthenticated() {
		return errNotLoggedIn
	}
	return nil
}
