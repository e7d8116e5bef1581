package catalog

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	applog "ektagames/internal/log"
)

// StartRefresher re-warms the catalog cache on schedule (standard 5-field cron or
// "@every 5m"). Stop the returned cron to end it.
func StartRefresher(a *Aggregator, schedule string, timeout time.Duration) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		n, err := a.Refresh(ctx)
		if err != nil {
			applog.BgWarn("catalog.refresh", err, map[string]any{"products": n})
			return
		}
		applog.BgInfo("catalog.refresh", map[string]any{"products": n})
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
