// Package di provides dependency injection for scheduler jobs.
package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/contestboard/arena/internal/clientdata"
	"github.com/contestboard/arena/internal/config"
	"github.com/contestboard/arena/internal/reliability"
	"github.com/contestboard/arena/internal/scheduler"
)

// Fixed maintenance schedules (seconds field first)
const (
	scheduleClientDataCleanup   = "0 5 * * * *"    // hourly
	scheduleCheckCoreDatabases  = "0 45 2 * * *"   // daily, before retention and backup
	scheduleCheckWALCheckpoints = "0 */10 * * * *" // every 10 minutes
)

// RegisterJobs creates the maintenance jobs and registers them with the
// container's scheduler. A job whose schedule is empty is created but not
// scheduled. The backup job exists only when a bucket is configured.
func RegisterJobs(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil || container.Scheduler == nil {
		return nil, fmt.Errorf("container scheduler is not initialized")
	}

	instances := &JobInstances{}

	// ==========================================
	// Calendar refresh (the service doubles as its own job)
	// ==========================================
	instances.CalendarRefresh = container.CalendarService

	// ==========================================
	// Equity snapshot retention
	// ==========================================
	retention := scheduler.NewSnapshotRetentionJob(container.LeaderboardRepo, cfg.Scheduler.RetentionDays)
	retention.SetLogger(log)
	instances.SnapshotRetention = retention

	// ==========================================
	// Client data cache cleanup
	// ==========================================
	instances.ClientDataCleanup = clientdata.NewCleanupJob(container.ClientDataRepo, log)

	// ==========================================
	// Health checks
	// ==========================================
	checks := map[string]scheduler.HealthChecker{"cache": container.CacheDB}
	if container.ContestDB != nil {
		checks["contest"] = container.ContestDB
	}
	if container.Postgres != nil {
		checks["contest"] = scheduler.HealthCheckFunc(container.Postgres.PingContext)
	}
	coreCheck := scheduler.NewCheckCoreDatabasesJob(checks)
	coreCheck.SetLogger(log)
	instances.CheckCoreDatabases = coreCheck

	walCheck := scheduler.NewCheckWALCheckpointsJob(container.LocalDatabases()...)
	walCheck.SetLogger(log)
	instances.CheckWALCheckpoints = walCheck

	// ==========================================
	// Backups
	// ==========================================
	if cfg.Backup.Enabled() {
		store, err := reliability.NewS3Client(ctx, reliability.S3Config{
			Bucket:          cfg.Backup.Bucket,
			Region:          cfg.Backup.Region,
			Endpoint:        cfg.Backup.Endpoint,
			AccessKeyID:     cfg.Backup.AccessKeyID,
			SecretAccessKey: cfg.Backup.SecretAccessKey,
			PathStyle:       cfg.Backup.PathStyle,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create backup store: %w", err)
		}

		sources := make([]reliability.Snapshotter, 0, 2)
		for _, db := range container.LocalDatabases() {
			sources = append(sources, db)
		}
		container.BackupService = reliability.NewBackupService(store, sources, reliability.BackupOptions{
			StagingDir: cfg.DataDir,
			KeyPrefix:  cfg.Backup.Prefix,
			KeepCount:  cfg.Backup.KeepCount,
		}, log)
		instances.Backup = reliability.NewBackupJob(container.BackupService, log)
	} else {
		log.Info().Msg("Backups disabled (BACKUP_BUCKET not set)")
	}

	schedules := []struct {
		schedule string
		job      scheduler.Job
	}{
		{cfg.Scheduler.CalendarRefresh, instances.CalendarRefresh},
		{cfg.Scheduler.SnapshotRetention, instances.SnapshotRetention},
		{scheduleClientDataCleanup, instances.ClientDataCleanup},
		{scheduleCheckCoreDatabases, instances.CheckCoreDatabases},
		{scheduleCheckWALCheckpoints, instances.CheckWALCheckpoints},
		{cfg.Scheduler.Backup, instances.Backup},
	}

	for _, s := range schedules {
		if s.job == nil {
			continue
		}
		if s.schedule == "" {
			log.Info().Str("job", s.job.Name()).Msg("Job has no schedule, skipping")
			continue
		}
		if err := container.Scheduler.AddJob(s.schedule, s.job); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", s.job.Name(), err)
		}
	}

	return instances, nil
}
