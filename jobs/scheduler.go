// Package jobs registers the monthly token batches on a cron scheduler.
package jobs

import (
	"cinema-backend/ledger"
	"cinema-backend/utils"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Schedule wires the conversion and grant batches and starts the scheduler.
// SkipIfStillRunning guarantees a batch never overlaps itself: a fire while
// the previous run is in progress is dropped, not queued in parallel.
func Schedule(db *gorm.DB) *cron.Cron {
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	l := ledger.New(db)

	// First of every month, 12:00 then 12:30.
	if _, err := c.AddFunc("0 12 1 * *", func() {
		run("convert-pending-tokens", l.ConvertPendingTokens)
	}); err != nil {
		utils.LogError(err, "cron registration failed: convert-pending-tokens")
	}
	if _, err := c.AddFunc("30 12 1 * *", func() {
		run("grant-subscriber-tokens", l.GrantSubscriberTokens)
	}); err != nil {
		utils.LogError(err, "cron registration failed: grant-subscriber-tokens")
	}

	c.Start()
	return c
}

// run logs the batch lifecycle; a store failure ends the run without
// partial application (the batches are transactional).
func run(name string, job func() error) {
	utils.LogInfo("cron job started: " + name)

	if err := job(); err != nil {
		utils.LogError(err, "cron job failed: "+name)
		return
	}

	utils.LogSuccess("cron job finished: " + name)
}
