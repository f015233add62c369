package utils

import (
	"campuslink/services"
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

func logScheduler(message string) {
	log.Printf("[SESSION-SCHEDULER %s] %s", time.Now().Format(time.RFC3339), message)
}

// PurgeIdleSessions removes sessions idle for longer than timeout.
func PurgeIdleSessions(sessions *services.SessionService, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	purged, err := sessions.PurgeIdle(ctx, timeout)
	if err != nil {
		logScheduler("Error purging idle sessions: " + err.Error())
		return
	}
	if purged > 0 {
		log.Printf("[SESSION-SCHEDULER] Purged %d idle sessions", purged)
	}
}

// InitializeSessionScheduler purges idle sessions on the given cron schedule.
// The returned cron must be stopped on shutdown.
func InitializeSessionScheduler(sessions *services.SessionService, schedule string, timeout time.Duration) (*cron.Cron, error) {
	logScheduler("Initializing session scheduler...")

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		PurgeIdleSessions(sessions, timeout)
	}); err != nil {
		return nil, err
	}
	c.Start()

	logScheduler("Session scheduler started - runs " + schedule)
	return c, nil
}
