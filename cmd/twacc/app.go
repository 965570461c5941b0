package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/tw-accounting/twacc/internal/config"
	"github.com/tw-accounting/twacc/internal/format"
	"github.com/tw-accounting/twacc/internal/logging"
	"github.com/tw-accounting/twacc/internal/query"
	"github.com/tw-accounting/twacc/internal/session"
	"github.com/tw-accounting/twacc/internal/storage"
	"github.com/tw-accounting/twacc/pkg/client"
)

var errNotLoggedIn = errors.New("not logged in, run `twacc login` first")

// app is the wiring shared by every command: config, logger, durable
// storage, the API client and the session on top of it.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	kv      storage.KV
	api     *client.Client
	session *session.Store
	format  format.Formatter

	closers []io.Closer
}

// newApp loads the configuration and rehydrates the session. With
// TWACC_TOKEN set, the token is adopted into memory storage and the stored
// session on disk is left untouched.
func newApp(ctx context.Context) (*app, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, logFile, err := logging.Setup(cfg.StateDir, cfg.Level())
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, format: format.New(cfg.FormatLocale())}
	a.closers = append(a.closers, logFile)

	backend := cfg.Storage
	if cfg.Token != "" {
		backend = storage.BackendMemory
	}
	a.kv, err = storage.Open(backend, cfg.StateDir)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, a.kv)
	auth := storage.NewAuthStore(a.kv)

	a.api = client.New(cfg.APIURL,
		client.WithTokenStore(auth),
		client.WithUnauthorizedHandler(a.unauthorized),
		client.WithTimeout(cfg.HTTPTimeout),
		client.WithLogger(logger),
	)
	a.session = session.New(a.api, auth,
		session.WithFailurePolicy(cfg.FailurePolicy()),
		session.WithLogger(logger),
	)

	if cfg.Token != "" {
		if err := a.session.Adopt(ctx, cfg.Token); err != nil {
			a.Close()
			return nil, fmt.Errorf("TWACC_TOKEN rejected: %w", err)
		}
	} else {
		a.session.Init(ctx)
	}
	logger.Debug("session ready", "component", "main",
		"authenticated", a.session.State().IsAuthenticated, "storage", backend)
	return a, nil
}

// unauthorized runs after the client saw a 401 and cleared the stored
// token. Resetting the session notifies its subscribers.
func (a *app) unauthorized() {
	a.logger.Info("request unauthorized, session cleared", "component", "main")
	a.session.Logout()
}

// requireLogin returns errNotLoggedIn unless the session is authenticated.
func (a *app) requireLogin() error {
	if !a.session.State().IsAuthenticated {
		return errNotLoggedIn
	}
	return nil
}

// newCache returns the query cache used by a command.
func (a *app) newCache() *query.Cache {
	return query.New(query.WithLogger(a.logger))
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
