package cart

import (
	"time"

	"github.com/robfig/cron/v3"

	applog "ektagames/internal/log"
)

// StartSweeper drops stores idle for longer than idle on schedule, so
// sessions that never log out do not keep their subscriptions forever.
func StartSweeper(h *Hub, schedule string, idle time.Duration) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if n := h.SweepIdle(time.Now().Add(-idle)); n > 0 {
			applog.BgInfo("cart.sweep", map[string]any{"dropped": n, "remaining": h.Len()})
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
