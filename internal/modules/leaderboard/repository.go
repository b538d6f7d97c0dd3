package leaderboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/contestboard/arena/internal/database"
)

// Store is the read side of the contest database used by the service
type Store interface {
	LatestStats(ctx context.Context) ([]StatsRow, error)
	GetParticipant(ctx context.Context, id string) (*StatsRow, error)
	LatestStatsFor(ctx context.Context, id string) (*StatsRow, error)
	RecentTrades(ctx context.Context, id string, limit int) ([]Trade, error)
	AllTrades(ctx context.Context, id string) ([]Trade, error)
	EquityCurve(ctx context.Context, id string) ([]float64, error)
	EquitySnapshots(ctx context.Context, id string, since time.Time) ([]EquitySnapshot, error)
	ScoresOnDate(ctx context.Context, date string) ([]Score, error)
}

// Score is the (points, profit) pair used for same-day ranking
type Score struct {
	Points float64 `db:"points"`
	Profit float64 `db:"profit"`
}

// statsColumns selects a daily_stats row with NULLs folded to zero values.
// CAST keeps the date as YYYY-MM-DD text on both backends.
const statsColumns = `
	d.participant_id,
	COALESCE(p.nickname, 'Unknown') AS nickname,
	COALESCE(p.is_disqualified, FALSE) AS is_disqualified,
	CAST(d.date AS TEXT) AS date,
	COALESCE(d.balance, 0) AS balance,
	COALESCE(d.equity, 0) AS equity,
	COALESCE(d.profit, 0) AS profit,
	COALESCE(d.points, 0) AS points,
	COALESCE(d.win_rate, 0) AS win_rate,
	COALESCE(d.profit_factor, 0) AS profit_factor,
	COALESCE(d.rr_ratio, 0) AS rr_ratio,
	COALESCE(d.max_drawdown, 0) AS max_drawdown,
	COALESCE(d.total_trades, 0) AS total_trades,
	COALESCE(d.avg_win, 0) AS avg_win,
	COALESCE(d.avg_loss, 0) AS avg_loss,
	COALESCE(d.best_trade, 0) AS best_trade,
	COALESCE(d.worst_trade, 0) AS worst_trade,
	COALESCE(d.win_rate_buy, 0) AS win_rate_buy,
	COALESCE(d.win_rate_sell, 0) AS win_rate_sell,
	COALESCE(d.trading_style, 'Unknown') AS trading_style,
	COALESCE(d.favorite_pair, '-') AS favorite_pair,
	COALESCE(d.avg_holding_time, '-') AS avg_holding_time,
	COALESCE(d.avg_holding_time_win, '-') AS avg_holding_time_win,
	COALESCE(d.avg_holding_time_loss, '-') AS avg_holding_time_loss,
	COALESCE(d.max_consecutive_wins, 0) AS max_consecutive_wins,
	COALESCE(d.max_consecutive_losses, 0) AS max_consecutive_losses,
	COALESCE(d.session_asian_profit, 0) AS session_asian_profit,
	COALESCE(d.session_london_profit, 0) AS session_london_profit,
	COALESCE(d.session_newyork_profit, 0) AS session_newyork_profit,
	COALESCE(d.session_asian_win_rate, 0) AS session_asian_win_rate,
	COALESCE(d.session_london_win_rate, 0) AS session_london_win_rate,
	COALESCE(d.session_newyork_win_rate, 0) AS session_newyork_win_rate`

// Repository reads contest data through sqlx. It works against the local
// SQLite store and the remote Postgres store alike; queries are written with
// ? placeholders and rebound for the driver.
type Repository struct {
	db  *sqlx.DB
	log zerolog.Logger
}

// NewRepository creates a new leaderboard repository
func NewRepository(db *sqlx.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "leaderboard").Logger(),
	}
}

// LatestStats returns the most recent daily_stats row of every participant,
// ordered by points descending
func (r *Repository) LatestStats(ctx context.Context) ([]StatsRow, error) {
	query := `SELECT ` + statsColumns + `
		FROM daily_stats d
		LEFT JOIN participants p ON p.id = d.participant_id
		WHERE d.date = (SELECT MAX(d2.date) FROM daily_stats d2 WHERE d2.participant_id = d.participant_id)
		ORDER BY d.points DESC, d.participant_id`

	var rows []StatsRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to query latest stats: %w", err)
	}
	return rows, nil
}

// GetParticipant returns the participant with id. Stats fields are zero.
func (r *Repository) GetParticipant(ctx context.Context, id string) (*StatsRow, error) {
	query := r.db.Rebind(`
		SELECT id AS participant_id, nickname, COALESCE(is_disqualified, FALSE) AS is_disqualified
		FROM participants WHERE id = ?`)

	var row StatsRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get participant %s: %w", id, err)
	}
	return &row, nil
}

// LatestStatsFor returns the most recent daily_stats row for one participant,
// or nil when the participant has none
func (r *Repository) LatestStatsFor(ctx context.Context, id string) (*StatsRow, error) {
	query := r.db.Rebind(`SELECT ` + statsColumns + `
		FROM daily_stats d
		LEFT JOIN participants p ON p.id = d.participant_id
		WHERE d.participant_id = ?
		ORDER BY d.date DESC
		LIMIT 1`)

	var row StatsRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest stats for %s: %w", id, err)
	}
	return &row, nil
}

type tradeRow struct {
	ID         string             `db:"id"`
	Symbol     string             `db:"symbol"`
	Type       string             `db:"type"`
	Lot        float64            `db:"lot_size"`
	OpenPrice  float64            `db:"open_price"`
	ClosePrice float64            `db:"close_price"`
	SL         float64            `db:"sl"`
	TP         float64            `db:"tp"`
	OpenTime   database.Timestamp `db:"open_time"`
	CloseTime  database.Timestamp `db:"close_time"`
	Profit     float64            `db:"profit"`
}

const tradeColumns = `
	CAST(id AS TEXT) AS id, symbol, type,
	COALESCE(lot_size, 0) AS lot_size,
	COALESCE(open_price, 0) AS open_price,
	COALESCE(close_price, 0) AS close_price,
	COALESCE(sl, 0) AS sl,
	COALESCE(tp, 0) AS tp,
	open_time, close_time,
	COALESCE(profit, 0) AS profit`

// RecentTrades returns the newest closed trades first
func (r *Repository) RecentTrades(ctx context.Context, id string, limit int) ([]Trade, error) {
	query := r.db.Rebind(`SELECT ` + tradeColumns + `
		FROM trades WHERE participant_id = ?
		ORDER BY close_time DESC
		LIMIT ?`)
	return r.selectTrades(ctx, query, id, limit)
}

// AllTrades returns every closed trade, oldest first
func (r *Repository) AllTrades(ctx context.Context, id string) ([]Trade, error) {
	query := r.db.Rebind(`SELECT ` + tradeColumns + `
		FROM trades WHERE participant_id = ?
		ORDER BY close_time ASC`)
	return r.selectTrades(ctx, query, id)
}

func (r *Repository) selectTrades(ctx context.Context, query string, args ...interface{}) ([]Trade, error) {
	var rows []tradeRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}

	trades := make([]Trade, 0, len(rows))
	for _, row := range rows {
		trades = append(trades, Trade{
			ID:         row.ID,
			Symbol:     row.Symbol,
			Type:       row.Type,
			Lot:        row.Lot,
			OpenPrice:  row.OpenPrice,
			ClosePrice: row.ClosePrice,
			SL:         row.SL,
			TP:         row.TP,
			OpenTime:   row.OpenTime.Time,
			CloseTime:  row.CloseTime.Time,
			Profit:     row.Profit,
		})
	}
	return trades, nil
}

// EquityCurve returns the daily closing equity, oldest first
func (r *Repository) EquityCurve(ctx context.Context, id string) ([]float64, error) {
	query := r.db.Rebind(`
		SELECT COALESCE(equity, 0) FROM daily_stats
		WHERE participant_id = ?
		ORDER BY date ASC`)

	curve := []float64{}
	if err := r.db.SelectContext(ctx, &curve, query, id); err != nil {
		return nil, fmt.Errorf("failed to query equity curve: %w", err)
	}
	return curve, nil
}

// EquitySnapshots returns intraday snapshots taken at or after since
func (r *Repository) EquitySnapshots(ctx context.Context, id string, since time.Time) ([]EquitySnapshot, error) {
	query := r.db.Rebind(`
		SELECT timestamp, balance, equity, COALESCE(floating_pl, 0) AS floating_pl
		FROM equity_snapshots
		WHERE participant_id = ? AND timestamp >= ?
		ORDER BY timestamp ASC`)

	var rows []struct {
		Timestamp  database.Timestamp `db:"timestamp"`
		Balance    float64            `db:"balance"`
		Equity     float64            `db:"equity"`
		FloatingPL float64            `db:"floating_pl"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, id, database.FormatTime(since)); err != nil {
		return nil, fmt.Errorf("failed to query equity snapshots: %w", err)
	}

	snapshots := make([]EquitySnapshot, 0, len(rows))
	for _, row := range rows {
		snapshots = append(snapshots, EquitySnapshot{
			Time:       row.Timestamp.Unix(),
			Balance:    row.Balance,
			Equity:     row.Equity,
			FloatingPL: row.FloatingPL,
		})
	}
	return snapshots, nil
}

// ScoresOnDate returns (points, profit) of every participant on date
func (r *Repository) ScoresOnDate(ctx context.Context, date string) ([]Score, error) {
	query := r.db.Rebind(`
		SELECT COALESCE(points, 0) AS points, COALESCE(profit, 0) AS profit
		FROM daily_stats WHERE CAST(date AS TEXT) = ?`)

	var scores []Score
	if err := r.db.SelectContext(ctx, &scores, query, date); err != nil {
		return nil, fmt.Errorf("failed to query scores for %s: %w", date, err)
	}
	return scores, nil
}

// DeleteSnapshotsBefore removes equity snapshots older than cutoff and
// returns how many were removed
func (r *Repository) DeleteSnapshotsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := r.db.Rebind(`DELETE FROM equity_snapshots WHERE timestamp < ?`)

	result, err := r.db.ExecContext(ctx, query, database.FormatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to delete old equity snapshots: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted snapshots: %w", err)
	}

	r.log.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("Pruned equity snapshots")
	return n, nil
}
