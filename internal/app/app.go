package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"banbds/internal/api"
	"banbds/internal/domain"
	"banbds/internal/fingerprint"
	"banbds/internal/gateway"
	"banbds/internal/logging"
	"banbds/internal/services/account"
	"banbds/internal/services/device"
	"banbds/internal/services/listing"
	"banbds/internal/store"
)

// App bundles the stores, services and clients used by the CLI.
type App struct {
	Config  *Config
	Log     *slog.Logger
	Store   domain.KeyValueStore
	API     *api.HTTP
	Device  *device.Service
	Gateway *gateway.Gateway
	Account *account.Service
	Listing *listing.Service

	closers []io.Closer
}

// Options override collaborators normally built from Config.
type Options struct {
	HTTP         *http.Client
	Fingerprints domain.FingerprintProvider
	Store        domain.KeyValueStore
}

// New constructs the dependency graph from cfg.
func New(ctx context.Context, cfg *Config, log *slog.Logger, opts Options) (*App, error) {
	log = logging.OrDiscard(log)
	a := &App{Config: cfg, Log: log}

	kv := opts.Store
	if kv == nil {
		var err error
		if kv, err = a.openStore(ctx); err != nil {
			return nil, err
		}
	}
	a.Store = kv

	client := opts.HTTP
	if client == nil {
		client = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	fps := opts.Fingerprints
	if fps == nil {
		fps = fingerprint.New()
	}

	a.API = api.NewHTTP(cfg.BaseURL, client, log.With(slog.String("component", "api")))
	a.Device = device.New(kv, a.API, fps, log.With(slog.String("component", "device")))

	tokens := account.NewTokenStore(kv)
	a.Gateway = gateway.New(a.Device, tokens, a.API, log.With(slog.String("component", "gateway")))
	a.Account = account.New(a.Gateway, tokens, log.With(slog.String("component", "account")))
	a.Listing = listing.New(a.Gateway, a.Account, log.With(slog.String("component", "listing")))
	return a, nil
}

func (a *App) openStore(ctx context.Context) (domain.KeyValueStore, error) {
	cfg := a.Config
	switch cfg.Store {
	case StoreMemory:
		return store.NewMemoryStore(), nil
	case StoreRedis:
		rs, err := store.OpenRedis(ctx, cfg.RedisURL, "")
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rs)
		return rs, nil
	case StoreSQLite:
		if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
			return nil, fmt.Errorf("create home: %w", err)
		}
		ss, err := store.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, ss)
		return ss, nil
	default:
		if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
			return nil, fmt.Errorf("create home: %w", err)
		}
		if cfg.Passphrase != "" {
			return store.NewSealedFileStore(cfg.Home, cfg.Passphrase), nil
		}
		return store.NewFileStore(cfg.Home), nil
	}
}

// Close releases store connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
