package testing

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/contestboard/arena/internal/database"
)

// ParticipantFixture is one contest participant with its latest daily stats
type ParticipantFixture struct {
	ID             string
	Nickname       string
	Disqualified   bool
	Date           string
	Equity         float64
	Balance        float64
	Profit         float64
	Points         float64
	WinRate        float64
	MaxDrawdown    float64
	TotalTrades    int
	TradingStyle   string
	FavoritePair   string
	ProfitFactor   float64
	MaxConsecutive int
}

// TradeFixture is a closed trade
type TradeFixture struct {
	ID            string
	ParticipantID string
	Symbol        string
	Type          string
	Lot           float64
	OpenTime      time.Time
	CloseTime     time.Time
	Profit        float64
}

// CandleFixture is one OHLCV bar
type CandleFixture struct {
	Symbol string
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// NewParticipantFixtures returns a small field with one blown account and one
// flagged participant
func NewParticipantFixtures(date string) []ParticipantFixture {
	return []ParticipantFixture{
		{ID: "p1", Nickname: "Scalper", Date: date, Equity: 10500, Balance: 10400, Profit: 500, Points: 120, WinRate: 61.5, MaxDrawdown: 8, TotalTrades: 40, TradingStyle: "Scalping", FavoritePair: "XAUUSD"},
		{ID: "p2", Nickname: "Swinger", Date: date, Equity: 11200, Balance: 11200, Profit: 1200, Points: 90, WinRate: 55, MaxDrawdown: 12, TotalTrades: 12, TradingStyle: "Swing", FavoritePair: "EURUSD"},
		{ID: "p3", Nickname: "Blown", Date: date, Equity: 0, Balance: 0, Profit: -10000, Points: 300, WinRate: 20, MaxDrawdown: 100, TotalTrades: 80},
		{ID: "p4", Nickname: "Flagged", Disqualified: true, Date: date, Equity: 13000, Balance: 13000, Profit: 3000, Points: 400, WinRate: 70, MaxDrawdown: 5, TotalTrades: 20},
	}
}

// SeedParticipants inserts participants and one daily_stats row each
func SeedParticipants(t *testing.T, db *sqlx.DB, fixtures ...ParticipantFixture) {
	t.Helper()
	for _, p := range fixtures {
		if _, err := db.Exec(db.Rebind(`INSERT OR IGNORE INTO participants (id, nickname, is_disqualified) VALUES (?, ?, ?)`),
			p.ID, p.Nickname, p.Disqualified); err != nil {
			t.Fatalf("Failed to insert participant %s: %v", p.ID, err)
		}
		SeedDailyStats(t, db, p)
	}
}

// SeedDailyStats inserts one daily_stats row for an existing participant
func SeedDailyStats(t *testing.T, db *sqlx.DB, p ParticipantFixture) {
	t.Helper()
	_, err := db.Exec(db.Rebind(`
		INSERT INTO daily_stats (
			participant_id, date, balance, equity, profit, points, win_rate, profit_factor,
			max_drawdown, total_trades, trading_style, favorite_pair, max_consecutive_wins
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.Date, p.Balance, p.Equity, p.Profit, p.Points, p.WinRate, p.ProfitFactor,
		p.MaxDrawdown, p.TotalTrades, p.TradingStyle, p.FavoritePair, p.MaxConsecutive)
	if err != nil {
		t.Fatalf("Failed to insert daily stats for %s: %v", p.ID, err)
	}
}

// SeedTrades inserts closed trades
func SeedTrades(t *testing.T, db *sqlx.DB, trades ...TradeFixture) {
	t.Helper()
	for _, tr := range trades {
		_, err := db.Exec(db.Rebind(`
			INSERT INTO trades (id, participant_id, symbol, type, lot_size, open_price, close_price, open_time, close_time, profit)
			VALUES (?, ?, ?, ?, ?, 0, 0, ?, ?, ?)`),
			tr.ID, tr.ParticipantID, tr.Symbol, tr.Type, tr.Lot,
			database.FormatTime(tr.OpenTime), database.FormatTime(tr.CloseTime), tr.Profit)
		if err != nil {
			t.Fatalf("Failed to insert trade %s: %v", tr.ID, err)
		}
	}
}

// SeedEquitySnapshot inserts one equity snapshot
func SeedEquitySnapshot(t *testing.T, db *sqlx.DB, participantID string, ts time.Time, balance, equity float64) {
	t.Helper()
	_, err := db.Exec(db.Rebind(`
		INSERT INTO equity_snapshots (participant_id, timestamp, balance, equity, floating_pl)
		VALUES (?, ?, ?, ?, ?)`),
		participantID, database.FormatTime(ts), balance, equity, equity-balance)
	if err != nil {
		t.Fatalf("Failed to insert equity snapshot for %s: %v", participantID, err)
	}
}

// SeedCandles inserts bars into table (market_data or market_data_m1)
func SeedCandles(t *testing.T, db *sqlx.DB, table string, candles ...CandleFixture) {
	t.Helper()
	for _, c := range candles {
		_, err := db.Exec(db.Rebind(`INSERT INTO `+table+` (symbol, time, open, high, low, close, volume) VALUES (?, ?, ?, ?, ?, ?, ?)`),
			c.Symbol, database.FormatTime(c.Time), c.Open, c.High, c.Low, c.Close, c.Volume)
		if err != nil {
			t.Fatalf("Failed to insert candle into %s: %v", table, err)
		}
	}
}

// NewCandleFixtures returns count consecutive bars starting at start
func NewCandleFixtures(symbol string, start time.Time, interval time.Duration, count int) []CandleFixture {
	candles := make([]CandleFixture, 0, count)
	price := 1.1
	for i := 0; i < count; i++ {
		candles = append(candles, CandleFixture{
			Symbol: symbol,
			Time:   start.Add(time.Duration(i) * interval),
			Open:   price,
			High:   price + 0.002,
			Low:    price - 0.001,
			Close:  price + 0.001,
			Volume: float64(100 + i),
		})
		price += 0.001
	}
	return candles
}
