package charts

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// Service provides candle data for charts
type Service struct {
	store CandleStore
	log   zerolog.Logger
}

// NewService creates a new charts service. store may be nil, in which case
// every query is answered with generated candles.
func NewService(store CandleStore, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   log.With().Str("service", "charts").Logger(),
	}
}

// CleanSymbol strips the broker ".s" suffix
func CleanSymbol(symbol string) string {
	return strings.TrimSuffix(symbol, ".s")
}

// Candles returns bars for q. M1 reads the one-minute table and falls back to
// the standard table when that query fails; an empty or failed lookup is
// answered with generated candles.
func (s *Service) Candles(ctx context.Context, q Query) (*Result, error) {
	q.Symbol = CleanSymbol(q.Symbol)
	if q.Timeframe == "" {
		q.Timeframe = DefaultTimeframe
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if s.store != nil {
		if candles := s.fromStore(ctx, q); len(candles) > 0 {
			return &Result{Candles: candles, Source: SourceStore}, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("symbol", q.Symbol).
		Str("timeframe", string(q.Timeframe)).
		Msg("No stored market data, generating candles")
	return &Result{
		Candles: MockCandles(q.Symbol, q.From, q.To, q.Timeframe),
		Source:  SourceMock,
	}, nil
}

func (s *Service) fromStore(ctx context.Context, q Query) []Candle {
	table := tableMarketData
	if q.Timeframe == M1 {
		table = tableMarketDataM1
	}

	candles, err := s.store.Candles(ctx, table, q.Symbol, q.From, q.To, MaxCandles)
	if err == nil {
		return candles
	}

	s.log.Warn().Err(err).Str("table", table).Str("symbol", q.Symbol).Msg("Failed to read market data")
	if table != tableMarketDataM1 {
		return nil
	}

	candles, err = s.store.Candles(ctx, tableMarketData, q.Symbol, q.From, q.To, MaxCandles)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", q.Symbol).Msg("Fallback market data read failed")
		return nil
	}
	return candles
}
