package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/five82/brokerdesk/internal/prefs"
	"github.com/five82/brokerdesk/internal/ui"
)

// Run boots the brokerdesk console until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	env, err := Bootstrap(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	return RunConsole(ctx, env)
}

// RunConsole starts the poller and the console over an already wired Env.
func RunConsole(ctx context.Context, env *Env) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	prefsPath := env.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs := prefs.Load(prefsPath)

	active := &ui.Active{}
	done := StartPoller(ctx, env.Loader, active.Get, env.Config.Refresh)
	defer func() {
		cancel()
		<-done
	}()

	env.Logger.Info("console starting",
		zap.String("api_url", env.Client.BaseURL()),
		zap.Duration("refresh", env.Config.Refresh),
		zap.Bool("signed_in", env.Session.Current().Valid()))

	err := ui.Run(ui.Options{
		Context:    ctx,
		Loader:     env.Loader,
		Store:      env.Store,
		Session:    env.Session,
		Dispatcher: env.Dispatcher,
		Prefs:      userPrefs,
		PrefsPath:  prefsPath,
		LogPath:    env.Config.LogPath,
		PageSize:   env.Config.PageSize,
		Active:     active,
		Logger:     env.Logger.Named("ui"),
	})
	if err != nil {
		env.Logger.Error("console exited", zap.Error(err))
		return err
	}
	env.Logger.Info("console stopped")
	return nil
}
