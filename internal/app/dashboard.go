package app

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/five82/brokerdesk/internal/brokerapi"
	"github.com/five82/brokerdesk/internal/catalog"
	"github.com/five82/brokerdesk/internal/session"
)

const dashboardConcurrency = 4

// Count is the row count of one screen on the dashboard.
type Count struct {
	Screen catalog.Screen
	Total  int
	Err    error
}

// Dashboard loads every screen role may open, concurrently, and reports how
// many rows each holds. Per-screen failures are reported in Count.Err; an
// unauthorized response aborts the whole dashboard.
func Dashboard(ctx context.Context, loader *Loader, role session.Role) ([]Count, error) {
	screens := catalog.ForRole(role)
	counts := make([]Count, len(screens))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(dashboardConcurrency)
	for i, screen := range screens {
		i, screen := i, screen
		g.Go(func() error {
			counts[i].Screen = screen
			if err := loader.Load(gctx, screen); err != nil {
				counts[i].Err = err
				if brokerapi.IsUnauthorized(err) {
					return err
				}
				return nil
			}
			counts[i].Total = len(loader.Store.Snapshot(screen.ID).Items)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return counts, err
	}
	return counts, nil
}
