package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/cogtask/digitspan/internal/repo"
	"github.com/robfig/cron/v3"
)

// purgeSchedule runs hourly; expired sessions are harmless in the meantime
// because the lookup query already filters them out.
const purgeSchedule = "@hourly"

// Run starts the background maintenance scheduler: an hourly purge of expired
// admin sessions. Returns the cron handle so callers can Stop it on shutdown.
func Run(sessions *repo.SessionRepo) *cron.Cron {
	c := cron.New()

	purge := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		n, err := sessions.PurgeExpired(ctx)
		if err != nil {
			slog.Error("scheduler: purge expired sessions", "error", err)
			return
		}
		if n > 0 {
			slog.Info("scheduler: purged expired sessions", "count", n)
		}
	}

	if _, err := c.AddFunc(purgeSchedule, purge); err != nil {
		// The schedule is a constant; failing to parse it is a bug.
		slog.Error("scheduler: add purge job", "error", err)
		return c
	}

	// Clean up anything left over from before the last restart.
	purge()

	c.Start()
	return c
}
