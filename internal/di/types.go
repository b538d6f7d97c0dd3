/**
 * Package di provides dependency injection type definitions.
 *
 * The Container holds every long-lived dependency of the application and is
 * the single source of truth for service instances. It is created by Wire()
 * and handed to the HTTP server and the scheduler.
 */
package di

import (
	"github.com/jmoiron/sqlx"

	"github.com/contestboard/arena/internal/clientdata"
	"github.com/contestboard/arena/internal/database"
	"github.com/contestboard/arena/internal/modules/calendar"
	calendarhandlers "github.com/contestboard/arena/internal/modules/calendar/handlers"
	"github.com/contestboard/arena/internal/modules/charts"
	chartshandlers "github.com/contestboard/arena/internal/modules/charts/handlers"
	"github.com/contestboard/arena/internal/modules/drawing/session"
	"github.com/contestboard/arena/internal/modules/leaderboard"
	leaderboardhandlers "github.com/contestboard/arena/internal/modules/leaderboard/handlers"
	"github.com/contestboard/arena/internal/reliability"
	"github.com/contestboard/arena/internal/scheduler"
)

/**
 * Container holds all dependencies for the application.
 *
 * Architecture:
 * - Databases: cache.db (always local) and the contest store, which is either
 *   Postgres (DATABASE_URL) or a local contest.db
 * - Repositories: contest read side, candles, client data cache
 * - Services: leaderboard, charts, calendar, backups
 * - Handlers: HTTP and WebSocket entry points
 * - Scheduler: cron-driven maintenance jobs
 */
type Container struct {
	// Databases
	CacheDB   *database.DB // client data cache
	ContestDB *database.DB // local contest store; nil when running on Postgres
	Postgres  *sqlx.DB     // remote contest store; nil when running locally

	// ContestStore is whichever contest backend is active
	ContestStore *sqlx.DB

	// Repositories
	ClientDataRepo  *clientdata.Repository
	LeaderboardRepo *leaderboard.Repository
	CandleRepo      *charts.Repository

	// Services
	LeaderboardService *leaderboard.Service
	ChartsService      *charts.Service
	CalendarClient     *calendar.Client
	CalendarService    *calendar.Service
	BackupService      *reliability.BackupService // nil when backups are not configured

	// Handlers
	LeaderboardHandler *leaderboardhandlers.Handler
	ChartsHandler      *chartshandlers.Handler
	CalendarHandler    *calendarhandlers.Handler
	SessionHandler     *session.Handler

	Scheduler *scheduler.Scheduler
}

// JobInstances holds the registered scheduler jobs for manual triggering
type JobInstances struct {
	CalendarRefresh     scheduler.Job
	SnapshotRetention   scheduler.Job
	ClientDataCleanup   scheduler.Job
	CheckCoreDatabases  scheduler.Job
	CheckWALCheckpoints scheduler.Job
	Backup              scheduler.Job // nil when backups are not configured
}

// LocalDatabases returns the SQLite stores owned by the process
func (c *Container) LocalDatabases() []*database.DB {
	dbs := []*database.DB{}
	for _, db := range []*database.DB{c.CacheDB, c.ContestDB} {
		if db != nil {
			dbs = append(dbs, db)
		}
	}
	return dbs
}

// Close closes every open database
func (c *Container) Close() error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if c.Postgres != nil {
		record(c.Postgres.Close())
	}
	for _, db := range c.LocalDatabases() {
		record(db.Close())
	}
	return firstErr
}
