package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/five82/brokerdesk/internal/brokerapi"
	"github.com/five82/brokerdesk/internal/catalog"
	"github.com/five82/brokerdesk/internal/logging"
	"github.com/five82/brokerdesk/internal/session"
	"github.com/five82/brokerdesk/internal/state"
)

// ErrSignedOut is returned by Load when there is no session to fetch with.
var ErrSignedOut = errors.New("not signed in")

// Loader fetches screen collections into the store using the current session.
type Loader struct {
	Backend brokerapi.Backend
	Session *session.Manager
	Store   *state.Store
	Logger  *zap.Logger
}

// Load fetches screen's collection and records it. Cancelled loads record
// nothing. An unauthorized response ends the session; every other failure is
// kept on the screen's snapshot next to the last good rows.
func (l *Loader) Load(ctx context.Context, screen catalog.Screen) error {
	log := logging.OrNop(l.Logger).With(zap.String("screen", screen.ID))
	token := l.Session.Token()
	if token == "" {
		return ErrSignedOut
	}

	started := time.Now()
	items, err := l.Backend.FetchCollection(ctx, token, screen.Path, screen.Key)
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		log.Debug("load cancelled")
		return context.Canceled
	}
	if err != nil {
		log.Warn("load failed", zap.Error(err))
		l.Store.Update(screen.ID, nil, err)
		if brokerapi.IsUnauthorized(err) {
			l.Store.Reset()
			if ierr := l.Session.Invalidate("session rejected while loading " + screen.Title); ierr != nil {
				log.Warn("clear session", zap.Error(ierr))
			}
		}
		return err
	}
	l.Store.Update(screen.ID, items, nil)
	log.Info("screen loaded",
		zap.Int("count", len(items)),
		zap.Duration("elapsed", time.Since(started)))
	return nil
}

// LoadID loads the screen with the given ID.
func (l *Loader) LoadID(ctx context.Context, id string) error {
	screen, ok := catalog.Lookup(id)
	if !ok {
		return fmt.Errorf("unknown screen %q", id)
	}
	return l.Load(ctx, screen)
}

// Login authenticates and starts a session.
func (l *Loader) Login(ctx context.Context, email, password string) (session.Session, error) {
	res, err := l.Backend.Login(ctx, email, password)
	if err != nil {
		logging.OrNop(l.Logger).Warn("login failed", zap.Error(err))
		return session.Session{}, err
	}
	s := session.Session{Token: res.Token, Role: session.Role(res.Role), Name: res.Name}
	if !s.Role.Valid() {
		return session.Session{}, fmt.Errorf("login returned unknown role %d", res.Role)
	}
	l.Store.Reset()
	if err := l.Session.Begin(s); err != nil {
		return session.Session{}, err
	}
	logging.OrNop(l.Logger).Info("signed in", zap.String("role", s.Role.String()))
	return l.Session.Current(), nil
}

// Logout ends the session and drops cached rows.
func (l *Loader) Logout() error {
	l.Store.Reset()
	return l.Session.Invalidate("signed out")
}
