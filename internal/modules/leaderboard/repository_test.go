package leaderboard

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testingpkg "github.com/contestboard/arena/internal/testing"
)

const fixtureDate = "2024-03-04"

func setupRepository(t *testing.T) (*Repository, *sqlx.DB) {
	t.Helper()
	db := testingpkg.NewMemoryStore(t)
	testingpkg.SeedParticipants(t, db, testingpkg.NewParticipantFixtures(fixtureDate)...)

	// an older, higher-scoring row that must not win "latest"
	older := testingpkg.NewParticipantFixtures("2024-03-03")[0]
	older.Points = 999
	older.Equity = 10100
	testingpkg.SeedDailyStats(t, db, older)

	return NewRepository(db, zerolog.New(nil).Level(zerolog.Disabled)), db
}

func TestRepository_LatestStats(t *testing.T) {
	repo, _ := setupRepository(t)

	rows, err := repo.LatestStats(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 4)

	ids := []string{}
	for _, r := range rows {
		ids = append(ids, r.ParticipantID)
		assert.Equal(t, fixtureDate, r.Date)
	}
	assert.Equal(t, []string{"p4", "p3", "p1", "p2"}, ids)

	assert.Equal(t, "Flagged", rows[0].Nickname)
	assert.True(t, rows[0].IsDisqualified)
	assert.True(t, rows[0].Disqualified())
	assert.True(t, rows[1].Disqualified(), "zero equity disqualifies")
	assert.False(t, rows[2].Disqualified())

	assert.Equal(t, 120.0, rows[2].Points)
	assert.Equal(t, "Scalping", rows[2].TradingStyle)
	assert.Equal(t, "XAUUSD", rows[2].FavoritePair)
	assert.Equal(t, 61.5, rows[2].WinRate)
	// NULL text columns fold to placeholders
	assert.Equal(t, "-", rows[2].AvgHoldingTime)
}

func TestRepository_GetParticipant(t *testing.T) {
	repo, _ := setupRepository(t)
	ctx := context.Background()

	p, err := repo.GetParticipant(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, "p2", p.ParticipantID)
	assert.Equal(t, "Swinger", p.Nickname)
	assert.False(t, p.IsDisqualified)

	_, err = repo.GetParticipant(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_LatestStatsFor(t *testing.T) {
	repo, db := setupRepository(t)
	ctx := context.Background()

	row, err := repo.LatestStatsFor(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, fixtureDate, row.Date)
	assert.Equal(t, 120.0, row.Points)

	_, err = db.Exec(`INSERT INTO participants (id, nickname) VALUES ('p5', 'Newcomer')`)
	require.NoError(t, err)

	row, err = repo.LatestStatsFor(ctx, "p5")
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestRepository_Trades(t *testing.T) {
	repo, db := setupRepository(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	testingpkg.SeedTrades(t, db,
		testingpkg.TradeFixture{ID: "t1", ParticipantID: "p1", Symbol: "XAUUSD", Type: "BUY", Lot: 1, OpenTime: base, CloseTime: base.Add(time.Hour), Profit: 50},
		testingpkg.TradeFixture{ID: "t2", ParticipantID: "p1", Symbol: "EURUSD", Type: "SELL", Lot: 0.5, OpenTime: base.Add(2 * time.Hour), CloseTime: base.Add(3 * time.Hour), Profit: -20},
		testingpkg.TradeFixture{ID: "t3", ParticipantID: "p1", Symbol: "XAUUSD", Type: "BUY", Lot: 2, OpenTime: base.Add(4 * time.Hour), CloseTime: base.Add(5 * time.Hour), Profit: 75},
		testingpkg.TradeFixture{ID: "t4", ParticipantID: "p2", Symbol: "GBPUSD", Type: "BUY", Lot: 1, OpenTime: base, CloseTime: base.Add(time.Hour), Profit: 10},
	)

	recent, err := repo.RecentTrades(ctx, "p1", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "t3", recent[0].ID)
	assert.Equal(t, "t2", recent[1].ID)
	assert.True(t, recent[0].CloseTime.Equal(base.Add(5*time.Hour)))
	assert.Equal(t, 2.0, recent[0].Lot)

	all, err := repo.AllTrades(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "t1", all[0].ID)
	assert.True(t, all[0].OpenTime.Equal(base))

	none, err := repo.AllTrades(ctx, "p3")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRepository_EquityCurve(t *testing.T) {
	repo, _ := setupRepository(t)

	curve, err := repo.EquityCurve(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, []float64{10100, 10500}, curve)

	curve, err = repo.EquityCurve(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, curve)
}

func TestRepository_EquitySnapshots(t *testing.T) {
	repo, db := setupRepository(t)
	ctx := context.Background()

	now := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	testingpkg.SeedEquitySnapshot(t, db, "p1", now.Add(-40*24*time.Hour), 9000, 9000)
	testingpkg.SeedEquitySnapshot(t, db, "p1", now.Add(-2*time.Hour), 10000, 10100)
	testingpkg.SeedEquitySnapshot(t, db, "p1", now.Add(-1*time.Hour), 10000, 9950)

	snapshots, err := repo.EquitySnapshots(ctx, "p1", now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, now.Add(-2*time.Hour).Unix(), snapshots[0].Time)
	assert.Equal(t, 10100.0, snapshots[0].Equity)
	assert.Equal(t, 100.0, snapshots[0].FloatingPL)
	assert.Equal(t, -50.0, snapshots[1].FloatingPL)

	deleted, err := repo.DeleteSnapshotsBefore(ctx, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	snapshots, err = repo.EquitySnapshots(ctx, "p1", time.Time{})
	require.NoError(t, err)
	assert.Len(t, snapshots, 2)
}

func TestRepository_ScoresOnDate(t *testing.T) {
	repo, _ := setupRepository(t)

	scores, err := repo.ScoresOnDate(context.Background(), fixtureDate)
	require.NoError(t, err)
	assert.Len(t, scores, 4)

	scores, err = repo.ScoresOnDate(context.Background(), "2024-03-03")
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, 999.0, scores[0].Points)
}

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	db := sqlx.NewDb(conn, "postgres")
	return NewRepository(db, zerolog.New(nil).Level(zerolog.Disabled)), mock
}

func TestRepository_PostgresPlaceholders(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`FROM participants WHERE id = \$1`).
		WithArgs("p9").
		WillReturnRows(sqlmock.NewRows([]string{"participant_id", "nickname", "is_disqualified"}).
			AddRow("p9", "Remote", false))

	closeTime := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`WHERE participant_id = \$1\s+ORDER BY close_time DESC\s+LIMIT \$2`).
		WithArgs("p9", int64(50)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "symbol", "type", "lot_size", "open_price", "close_price", "sl", "tp", "open_time", "close_time", "profit",
		}).AddRow("17", "XAUUSD", "BUY", 1.0, 2000.0, 2010.0, 0.0, 0.0, closeTime.Add(-time.Hour), closeTime, 100.0))

	ctx := context.Background()
	p, err := repo.GetParticipant(ctx, "p9")
	require.NoError(t, err)
	assert.Equal(t, "Remote", p.Nickname)

	trades, err := repo.RecentTrades(ctx, "p9", 50)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.True(t, trades[0].CloseTime.Equal(closeTime))
	assert.Equal(t, 100.0, trades[0].Profit)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_PostgresNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`FROM participants WHERE id = \$1`).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"participant_id", "nickname", "is_disqualified"}))

	_, err := repo.GetParticipant(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
