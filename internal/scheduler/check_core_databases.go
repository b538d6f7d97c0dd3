package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

const healthCheckTimeout = 30 * time.Second

// HealthChecker is a store that can verify itself. *database.DB runs a full
// SQLite integrity check.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthCheckFunc adapts a function, such as a Postgres ping, to HealthChecker
type HealthCheckFunc func(ctx context.Context) error

// HealthCheck implements HealthChecker
func (f HealthCheckFunc) HealthCheck(ctx context.Context) error {
	return f(ctx)
}

// CheckCoreDatabasesJob verifies the cache and contest stores
type CheckCoreDatabasesJob struct {
	log       zerolog.Logger
	databases map[string]HealthChecker
}

// NewCheckCoreDatabasesJob creates a new CheckCoreDatabasesJob. Nil entries
// are skipped.
func NewCheckCoreDatabasesJob(databases map[string]HealthChecker) *CheckCoreDatabasesJob {
	return &CheckCoreDatabasesJob{
		log:       zerolog.Nop(),
		databases: databases,
	}
}

// SetLogger sets the logger for the job
func (j *CheckCoreDatabasesJob) SetLogger(log zerolog.Logger) {
	j.log = log.With().Str("job", j.Name()).Logger()
}

// Name returns the job name
func (j *CheckCoreDatabasesJob) Name() string {
	return "check_core_databases"
}

// Run checks every database and fails on the first broken one
func (j *CheckCoreDatabasesJob) Run() error {
	names := make([]string, 0, len(j.databases))
	for name := range j.databases {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		db := j.databases[name]
		if db == nil {
			j.log.Warn().Str("database", name).Msg("Database not initialized, skipping")
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
		err := db.HealthCheck(ctx)
		cancel()
		if err != nil {
			j.log.Error().
				Err(err).
				Str("database", name).
				Msg("Database health check failed")
			return fmt.Errorf("database %s is unhealthy: %w", name, err)
		}

		j.log.Debug().Str("database", name).Msg("Database health OK")
	}

	j.log.Info().Int("checked", len(names)).Msg("Database health check passed")
	return nil
}
