// Package di provides dependency injection for repositories, services and handlers.
package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/contestboard/arena/internal/clientdata"
	"github.com/contestboard/arena/internal/config"
	"github.com/contestboard/arena/internal/modules/calendar"
	calendarhandlers "github.com/contestboard/arena/internal/modules/calendar/handlers"
	"github.com/contestboard/arena/internal/modules/charts"
	chartshandlers "github.com/contestboard/arena/internal/modules/charts/handlers"
	"github.com/contestboard/arena/internal/modules/drawing/session"
	"github.com/contestboard/arena/internal/modules/leaderboard"
	leaderboardhandlers "github.com/contestboard/arena/internal/modules/leaderboard/handlers"
)

// InitializeServices creates repositories, services and handlers on top of
// the container's databases
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil || container.CacheDB == nil || container.ContestStore == nil {
		return fmt.Errorf("container databases are not initialized")
	}

	// Repositories
	container.ClientDataRepo = clientdata.NewRepository(container.CacheDB.Conn())
	container.LeaderboardRepo = leaderboard.NewRepository(container.ContestStore, log)
	container.CandleRepo = charts.NewRepository(container.ContestStore, log)

	// Services
	container.LeaderboardService = leaderboard.NewService(container.LeaderboardRepo, log)
	container.ChartsService = charts.NewService(container.CandleRepo, log)
	container.CalendarClient = calendar.NewClient(cfg.CalendarFeedURL, log)
	container.CalendarService = calendar.NewService(
		container.CalendarClient,
		container.ClientDataRepo,
		cfg.CalendarFeedURL,
		cfg.CalendarCacheTTL,
		log,
	)

	// Handlers
	container.LeaderboardHandler = leaderboardhandlers.NewHandler(container.LeaderboardService, log)
	container.ChartsHandler = chartshandlers.NewHandler(container.ChartsService, log)
	container.CalendarHandler = calendarhandlers.NewHandler(container.CalendarService, log)

	var sessionOpts []session.HandlerOption
	if len(cfg.WSOriginPatterns) > 0 {
		sessionOpts = append(sessionOpts, session.WithOriginPatterns(cfg.WSOriginPatterns...))
	}
	if cfg.DevMode {
		sessionOpts = append(sessionOpts, session.WithOriginPatterns("localhost:*", "127.0.0.1:*"))
	}
	container.SessionHandler = session.NewHandler(container.ChartsService, log, sessionOpts...)

	log.Info().Msg("Services initialized")
	return nil
}
