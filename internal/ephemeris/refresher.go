package ephemeris

import (
	"context"
	"time"

	"github.com/signalsfoundry/proximity-explorer/internal/logging"
)

// Refresher keeps a Store populated by periodically re-downloading one
// CelesTrak TLE group.
type Refresher struct {
	client   *CelesTrakClient
	store    *Store
	group    string
	interval time.Duration
	log      logging.Logger
}

// NewRefresher wires a refresher; interval must be positive.
func NewRefresher(client *CelesTrakClient, store *Store, group string, interval time.Duration, log logging.Logger) *Refresher {
	if log == nil {
		log = logging.Noop()
	}
	return &Refresher{
		client:   client,
		store:    store,
		group:    group,
		interval: interval,
		log:      log,
	}
}

// RefreshOnce fetches the group immediately and replaces the store
// contents on success.
func (r *Refresher) RefreshOnce(ctx context.Context) error {
	tles, err := r.client.FetchGroup(ctx, r.group)
	if err != nil {
		return err
	}
	r.store.Replace(tles, time.Now())
	r.log.Info(ctx, "tle set refreshed",
		logging.String("group", r.group),
		logging.Int("count", len(tles)),
	)
	return nil
}

// Run refreshes immediately and then on every tick until the context is
// cancelled. Fetch failures are logged and retried at the next tick;
// the previous set stays in place.
func (r *Refresher) Run(ctx context.Context) {
	if err := r.RefreshOnce(ctx); err != nil {
		r.log.Warn(ctx, "initial tle refresh failed", logging.Err(err))
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.RefreshOnce(ctx); err != nil {
				r.log.Warn(ctx, "tle refresh failed", logging.Err(err))
			}
		}
	}
}
