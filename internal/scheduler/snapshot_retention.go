package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// SnapshotPruner deletes equity snapshots older than a cutoff.
// *leaderboard.Repository satisfies it.
type SnapshotPruner interface {
	DeleteSnapshotsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// SnapshotRetentionJob removes intraday equity snapshots past the retention window
type SnapshotRetentionJob struct {
	log       zerolog.Logger
	pruner    SnapshotPruner
	retention time.Duration
	now       func() time.Time
}

// NewSnapshotRetentionJob creates a new SnapshotRetentionJob keeping retainDays days
func NewSnapshotRetentionJob(pruner SnapshotPruner, retainDays int) *SnapshotRetentionJob {
	return &SnapshotRetentionJob{
		log:       zerolog.Nop(),
		pruner:    pruner,
		retention: time.Duration(retainDays) * 24 * time.Hour,
		now:       time.Now,
	}
}

// SetLogger sets the logger for the job
func (j *SnapshotRetentionJob) SetLogger(log zerolog.Logger) {
	j.log = log.With().Str("job", j.Name()).Logger()
}

// Name returns the job name
func (j *SnapshotRetentionJob) Name() string {
	return "equity_snapshot_retention"
}

// Run deletes every snapshot taken before now minus the retention window
func (j *SnapshotRetentionJob) Run() error {
	if j.retention <= 0 {
		return fmt.Errorf("snapshot retention must be positive")
	}

	cutoff := j.now().Add(-j.retention)
	deleted, err := j.pruner.DeleteSnapshotsBefore(context.Background(), cutoff)
	if err != nil {
		return err
	}

	j.log.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("Equity snapshot retention completed")
	return nil
}
