package charts

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/contestboard/arena/internal/database"
)

const (
	tableMarketData   = "market_data"
	tableMarketDataM1 = "market_data_m1"
)

// CandleStore reads bars from one market data table
type CandleStore interface {
	Candles(ctx context.Context, table, symbol string, from, to time.Time, limit uint64) ([]Candle, error)
}

// Repository reads market data through sqlx with squirrel-built queries
type Repository struct {
	db          *sqlx.DB
	placeholder sq.PlaceholderFormat
	log         zerolog.Logger
}

// NewRepository creates a candle repository. Placeholders follow the
// driver: $n for Postgres, ? for SQLite.
func NewRepository(db *sqlx.DB, log zerolog.Logger) *Repository {
	var placeholder sq.PlaceholderFormat = sq.Question
	if database.IsPostgres(db) {
		placeholder = sq.Dollar
	}
	return &Repository{
		db:          db,
		placeholder: placeholder,
		log:         log.With().Str("repository", "charts").Logger(),
	}
}

// SelectCandles builds the range query for table, oldest bar first
func SelectCandles(table, symbol string, from, to time.Time, limit uint64) sq.SelectBuilder {
	return sq.Select("time", "open", "high", "low", "close", "COALESCE(volume, 0) AS volume").
		From(table).
		Where(sq.And{
			sq.Eq{"symbol": symbol},
			sq.GtOrEq{"time": database.FormatTime(from)},
			sq.LtOrEq{"time": database.FormatTime(to)},
		}).
		OrderBy("time ASC").
		Limit(limit)
}

type candleRow struct {
	Time   database.Timestamp `db:"time"`
	Open   float64            `db:"open"`
	High   float64            `db:"high"`
	Low    float64            `db:"low"`
	Close  float64            `db:"close"`
	Volume float64            `db:"volume"`
}

// Candles returns bars of symbol within [from, to]
func (r *Repository) Candles(ctx context.Context, table, symbol string, from, to time.Time, limit uint64) ([]Candle, error) {
	if table != tableMarketData && table != tableMarketDataM1 {
		return nil, fmt.Errorf("unknown market data table %q", table)
	}

	query, args, err := SelectCandles(table, symbol, from, to, limit).
		PlaceholderFormat(r.placeholder).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build candles query: %w", err)
	}

	var rows []candleRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query %s for %s: %w", table, symbol, err)
	}

	candles := make([]Candle, 0, len(rows))
	for _, row := range rows {
		candles = append(candles, Candle{
			Time:   row.Time.Time,
			Open:   row.Open,
			High:   row.High,
			Low:    row.Low,
			Close:  row.Close,
			Volume: row.Volume,
		})
	}
	return candles, nil
}
