package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/five82/brokerdesk/internal/catalog"
	"github.com/five82/brokerdesk/internal/logging"
)

const maxBackoff = 30 * time.Second

// StartPoller launches a background goroutine that refreshes the active
// screen every interval, backing off while fetches keep failing. It returns
// immediately; the returned channel closes when the goroutine exits.
func StartPoller(ctx context.Context, loader *Loader, active func() (catalog.Screen, bool), interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	if interval <= 0 {
		close(done)
		return done
	}
	log := logging.OrNop(loader.Logger)
	go func() {
		defer close(done)
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			wait := interval
			if screen, ok := active(); ok {
				if err := loader.Load(ctx, screen); err != nil && ctx.Err() == nil {
					failures := loader.Store.Snapshot(screen.ID).ConsecutiveFailures
					wait = calculateBackoff(failures, interval)
					log.Debug("poll failed", zap.String("screen", screen.ID),
						zap.Int("failures", failures), zap.Duration("next", wait))
				}
			}
			timer.Reset(wait)
		}
	}()
	return done
}

// calculateBackoff doubles base for each consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	wait := base
	for i := 0; i < failures; i++ {
		wait *= 2
		if wait >= maxBackoff {
			return maxBackoff
		}
	}
	return wait
}
