package worker

import (
	"context"
	"time"

	"github.com/logtide/logtide/internal/logger"
	"github.com/logtide/logtide/internal/repository"
	"github.com/robfig/cron/v3"
)

// startupSweepDelay gives the server a moment to come up before the first
// sweep runs.
const startupSweepDelay = 5 * time.Second

// RetentionSweeper deletes records older than the retention horizon. The
// cutoff is measured on the client-supplied date, not ingestion time, so
// delayed ingestion does not shorten a record's life; a skewed client
// clock can still cause early or late deletion.
type RetentionSweeper struct {
	repo          repository.LogRepository
	retentionDays int
	cron          *cron.Cron
	now           func() time.Time
}

func NewRetentionSweeper(repo repository.LogRepository, retentionDays int) *RetentionSweeper {
	c := cron.New()
	rs := &RetentionSweeper{
		repo:          repo,
		retentionDays: retentionDays,
		cron:          c,
		now:           time.Now,
	}

	_, err := c.AddFunc("@every 24h", rs.sweepWrapper)
	if err != nil {
		logger.Errorf("failed to add retention cron job: %v", err)
	}

	return rs
}

// Start schedules the recurring sweep and runs one shortly after startup.
// Both stop when the context is cancelled.
func (rs *RetentionSweeper) Start(ctx context.Context) error {
	go func() {
		select {
		case <-time.After(startupSweepDelay):
			rs.sweepWrapper()
		case <-ctx.Done():
		}
	}()

	rs.cron.Start()

	go func() {
		<-ctx.Done()
		rs.cron.Stop()
	}()

	return nil
}

// Sweep deletes everything dated strictly before today minus the retention
// horizon and returns how many records went.
func (rs *RetentionSweeper) Sweep(ctx context.Context) (int64, error) {
	cutoff := rs.now().AddDate(0, 0, -rs.retentionDays).Format("2006-01-02")
	return rs.repo.DeleteOlderThan(ctx, cutoff)
}

func (rs *RetentionSweeper) sweepWrapper() {
	deleted, err := rs.Sweep(context.Background())
	if err != nil {
		logger.Errorf("retention sweep failed: %v", err)
		return
	}
	logger.Infof("retention sweep removed %d records", deleted)
}
