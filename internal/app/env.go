package app

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/five82/brokerdesk/internal/actions"
	"github.com/five82/brokerdesk/internal/brokerapi"
	"github.com/five82/brokerdesk/internal/config"
	"github.com/five82/brokerdesk/internal/logging"
	"github.com/five82/brokerdesk/internal/session"
	"github.com/five82/brokerdesk/internal/state"
)

// Options configure brokerdesk.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/brokerdesk/prefs.toml
	APIURL     string // overrides config and environment
	Verbose    bool
	Version    string // reported in the User-Agent header
}

// Env is the wired set of components shared by the console and the CLI.
type Env struct {
	Config     config.Config
	Logger     *zap.Logger
	Client     *brokerapi.Client
	Session    *session.Manager
	Store      *state.Store
	Loader     *Loader
	Dispatcher *actions.Dispatcher
	PrefsPath  string

	flush func()
}

// Bootstrap loads configuration and wires every component. Close must be
// called when done.
func Bootstrap(opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimSpace(opts.APIURL); v != "" {
		cfg.APIURL = v
	}

	logger, flush, err := logging.New(logging.Options{Path: cfg.LogPath, Verbose: opts.Verbose})
	if err != nil {
		return nil, err
	}

	clientOpts := []brokerapi.Option{
		brokerapi.WithTimeout(cfg.Timeout),
		brokerapi.WithLogger(logger.Named("api")),
	}
	if v := strings.TrimSpace(opts.Version); v != "" {
		clientOpts = append(clientOpts, brokerapi.WithUserAgent("brokerdesk/"+v))
	}
	client, err := brokerapi.NewClient(cfg.APIURL, clientOpts...)
	if err != nil {
		flush()
		return nil, fmt.Errorf("init api client: %w", err)
	}

	sessions, err := openSession(cfg, logger)
	if err != nil {
		flush()
		return nil, err
	}

	store := &state.Store{}
	loader := &Loader{Backend: client, Session: sessions, Store: store, Logger: logger.Named("loader")}
	dispatcher := &actions.Dispatcher{
		Backend: client,
		Session: sessions,
		Refetch: loader.LoadID,
		Logger:  logger.Named("actions"),
	}

	logger.Debug("bootstrap complete",
		zap.String("api_url", client.BaseURL()),
		zap.Bool("signed_in", sessions.Current().Valid()))

	return &Env{
		Config:     cfg,
		Logger:     logger,
		Client:     client,
		Session:    sessions,
		Store:      store,
		Loader:     loader,
		Dispatcher: dispatcher,
		PrefsPath:  opts.PrefsPath,
		flush:      flush,
	}, nil
}

// openSession restores the stored session, or uses BROKERDESK_TOKEN in
// memory only when it is set. A stored session with an unknown role is
// ignored and the user starts signed out.
func openSession(cfg config.Config, logger *zap.Logger) (*session.Manager, error) {
	if cfg.Token != "" {
		role, err := session.ParseRole(cfg.Role)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", config.EnvRole, err)
		}
		mgr := session.NewManager("")
		if err := mgr.Begin(session.Session{Token: cfg.Token, Role: role}); err != nil {
			return nil, err
		}
		return mgr, nil
	}
	mgr := session.NewManager(cfg.SessionPath)
	if _, err := mgr.Load(); errors.Is(err, session.ErrUnknownRole) {
		logger.Warn("ignoring stored session", zap.Error(err))
	} else if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return mgr, nil
}

// Close flushes the logger.
func (e *Env) Close() {
	if e != nil && e.flush != nil {
		e.flush()
	}
}
