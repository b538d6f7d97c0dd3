package leaderboard

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// ContestTimeZone is used to bucket trades into trading days (UTC+7)
var ContestTimeZone = time.FixedZone("ICT", 7*60*60)

const (
	recentTradesLimit = 50
	snapshotWindow    = 30 * 24 * time.Hour
)

// Service builds the leaderboard and trader profiles, falling back to the
// demo dataset when the store cannot answer
type Service struct {
	store Store
	now   func() time.Time
	log   zerolog.Logger
}

// NewService creates a new leaderboard service. store may be nil, in which
// case only demo data is served.
func NewService(store Store, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		now:   time.Now,
		log:   log.With().Str("service", "leaderboard").Logger(),
	}
}

// Leaderboard returns ranked entries and where they came from
func (s *Service) Leaderboard(ctx context.Context) ([]Entry, Source) {
	if s.store != nil {
		rows, err := s.store.LatestStats(ctx)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Msg("Store unavailable, serving demo leaderboard")
		case len(rows) == 0:
			s.log.Debug().Msg("Store has no stats yet, serving demo leaderboard")
		default:
			entries := make([]Entry, 0, len(rows))
			for _, row := range rows {
				entries = append(entries, entryFromRow(row))
			}
			return Rank(entries), SourceStore
		}
	}

	return Rank(MockEntries(s.now())), SourceMock
}

// TraderDetail returns the profile of one participant. It returns
// ErrNotFound when the id is unknown to both the store and the demo dataset.
func (s *Service) TraderDetail(ctx context.Context, id string) (*TraderDetail, error) {
	if s.store != nil {
		detail, err := s.traderFromStore(ctx, id)
		if err == nil {
			return detail, nil
		}
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn().Err(err).Str("trader", id).Msg("Store unavailable, trying demo data")
		}
	}

	for i, entry := range MockEntries(s.now()) {
		if entry.ID == id {
			return &TraderDetail{
				Trader:  entry,
				Rank:    i + 1,
				Summary: Summarize(entry.DailyHistory, entry.EquityCurve),
				Source:  SourceMock,
			}, nil
		}
	}
	return nil, ErrNotFound
}

func (s *Service) traderFromStore(ctx context.Context, id string) (*TraderDetail, error) {
	participant, err := s.store.GetParticipant(ctx, id)
	if err != nil {
		return nil, err
	}

	// Secondary lookups degrade to empty sections
	log := s.log.With().Str("trader", id).Logger()

	stats, err := s.store.LatestStatsFor(ctx, id)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load latest stats")
	}

	entry := Entry{
		ID:             participant.ParticipantID,
		Nickname:       participant.Nickname,
		IsDisqualified: participant.IsDisqualified,
		Stats:          defaultStats(),
		History:        []Trade{},
		EquityCurve:    []float64{},
		DailyHistory:   []DailySummary{},
	}
	if stats != nil {
		entry.Points = stats.Points
		entry.Profit = stats.Profit
		entry.Stats = stats.TraderStats
		entry.IsDisqualified = stats.Disqualified()
	}

	if history, err := s.store.RecentTrades(ctx, id, recentTradesLimit); err != nil {
		log.Warn().Err(err).Msg("Failed to load trade history")
	} else {
		entry.History = history
	}

	if curve, err := s.store.EquityCurve(ctx, id); err != nil {
		log.Warn().Err(err).Msg("Failed to load equity curve")
	} else {
		entry.EquityCurve = curve
	}

	since := s.now().Add(-snapshotWindow)
	if snapshots, err := s.store.EquitySnapshots(ctx, id, since); err != nil {
		log.Warn().Err(err).Msg("Failed to load equity snapshots")
	} else {
		entry.EquitySnapshots = snapshots
	}

	if trades, err := s.store.AllTrades(ctx, id); err != nil {
		log.Warn().Err(err).Msg("Failed to load trades for daily history")
	} else {
		entry.DailyHistory = DailyHistory(trades)
	}

	rank := 0
	if stats != nil {
		scores, err := s.store.ScoresOnDate(ctx, stats.Date)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to load same-day scores")
		} else {
			rank = RankOnDate(Score{Points: stats.Points, Profit: stats.Profit}, scores)
		}
	}

	return &TraderDetail{
		Trader:  entry,
		Rank:    rank,
		Summary: Summarize(entry.DailyHistory, entry.EquityCurve),
		Source:  SourceStore,
	}, nil
}

// RankOnDate is 1 + the number of scores strictly better than own: more
// points, or equal points and more profit
func RankOnDate(own Score, scores []Score) int {
	better := 0
	for _, s := range scores {
		if s.Points > own.Points || (s.Points == own.Points && s.Profit > own.Profit) {
			better++
		}
	}
	return better + 1
}

// DailyHistory groups trades by their close date in ContestTimeZone
func DailyHistory(trades []Trade) []DailySummary {
	type day struct {
		profit  float64
		profits []float64
	}
	days := make(map[string]*day)

	for _, t := range trades {
		key := t.CloseTime.In(ContestTimeZone).Format("2006-01-02")
		d, ok := days[key]
		if !ok {
			d = &day{}
			days[key] = d
		}
		d.profit += t.Profit
		d.profits = append(d.profits, t.Profit)
	}

	summaries := make([]DailySummary, 0, len(days))
	for date, d := range days {
		summary := DailySummary{
			Date:        date,
			Profit:      d.profit,
			TotalTrades: len(d.profits),
		}
		wins := 0
		for _, p := range d.profits {
			if p > 0 {
				wins++
				if p > summary.BestTrade {
					summary.BestTrade = p
				}
			}
			if p < 0 && p < summary.WorstTrade {
				summary.WorstTrade = p
			}
		}
		if len(d.profits) > 0 {
			summary.WinRate = float64(wins) / float64(len(d.profits)) * 100
		}
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Date < summaries[j].Date
	})
	return summaries
}

func defaultStats() TraderStats {
	return TraderStats{
		TradingStyle:       "Unknown",
		FavoritePair:       "-",
		AvgHoldingTime:     "-",
		AvgHoldingTimeWin:  "-",
		AvgHoldingTimeLoss: "-",
	}
}
