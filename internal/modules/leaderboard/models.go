// Package leaderboard ranks contest participants and assembles trader profiles.
package leaderboard

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a participant exists in neither the store nor
// the mock dataset
var ErrNotFound = errors.New("trader not found")

// DisqualifiedRank is assigned to both ranks of a disqualified participant
const DisqualifiedRank = 999

// Source tells where leaderboard data came from
type Source string

const (
	SourceStore Source = "store"
	SourceMock  Source = "mock"
)

// TraderStats holds the per-day statistics computed by the account bridge
type TraderStats struct {
	WinRate               float64 `json:"winRate" db:"win_rate"`
	ProfitFactor          float64 `json:"profitFactor" db:"profit_factor"`
	RRRatio               float64 `json:"rrRatio" db:"rr_ratio"`
	MaxDrawdown           float64 `json:"maxDrawdown" db:"max_drawdown"`
	TotalTrades           int     `json:"totalTrades" db:"total_trades"`
	AvgWin                float64 `json:"avgWin" db:"avg_win"`
	AvgLoss               float64 `json:"avgLoss" db:"avg_loss"`
	BestTrade             float64 `json:"bestTrade" db:"best_trade"`
	WorstTrade            float64 `json:"worstTrade" db:"worst_trade"`
	WinRateBuy            float64 `json:"winRateBuy" db:"win_rate_buy"`
	WinRateSell           float64 `json:"winRateSell" db:"win_rate_sell"`
	TradingStyle          string  `json:"tradingStyle" db:"trading_style"`
	FavoritePair          string  `json:"favoritePair" db:"favorite_pair"`
	AvgHoldingTime        string  `json:"avgHoldingTime" db:"avg_holding_time"`
	AvgHoldingTimeWin     string  `json:"avgHoldingTimeWin" db:"avg_holding_time_win"`
	AvgHoldingTimeLoss    string  `json:"avgHoldingTimeLoss" db:"avg_holding_time_loss"`
	MaxConsecutiveWins    int     `json:"maxConsecutiveWins" db:"max_consecutive_wins"`
	MaxConsecutiveLosses  int     `json:"maxConsecutiveLosses" db:"max_consecutive_losses"`
	SessionAsianProfit    float64 `json:"sessionAsianProfit" db:"session_asian_profit"`
	SessionLondonProfit   float64 `json:"sessionLondonProfit" db:"session_london_profit"`
	SessionNewYorkProfit  float64 `json:"sessionNewYorkProfit" db:"session_newyork_profit"`
	SessionAsianWinRate   float64 `json:"sessionAsianWinRate" db:"session_asian_win_rate"`
	SessionLondonWinRate  float64 `json:"sessionLondonWinRate" db:"session_london_win_rate"`
	SessionNewYorkWinRate float64 `json:"sessionNewYorkWinRate" db:"session_newyork_win_rate"`
}

// StatsRow is one daily_stats row joined with its participant
type StatsRow struct {
	ParticipantID  string  `db:"participant_id"`
	Nickname       string  `db:"nickname"`
	IsDisqualified bool    `db:"is_disqualified"`
	Date           string  `db:"date"`
	Balance        float64 `db:"balance"`
	Equity         float64 `db:"equity"`
	Profit         float64 `db:"profit"`
	Points         float64 `db:"points"`
	TraderStats
}

// Disqualified applies the contest rules: blown account, drawdown of 99% or
// more, or flagged by the organisers
func (r StatsRow) Disqualified() bool {
	return r.Equity <= 0 || r.MaxDrawdown >= 99 || r.IsDisqualified
}

// Trade is a closed position
type Trade struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	Type       string    `json:"type"`
	Lot        float64   `json:"lot"`
	OpenPrice  float64   `json:"openPrice"`
	ClosePrice float64   `json:"closePrice"`
	SL         float64   `json:"sl"`
	TP         float64   `json:"tp"`
	OpenTime   time.Time `json:"openTime"`
	CloseTime  time.Time `json:"closeTime"`
	Profit     float64   `json:"profit"`
}

// EquitySnapshot is a point of the intraday equity curve
type EquitySnapshot struct {
	Time       int64   `json:"time"` // unix seconds
	Balance    float64 `json:"balance"`
	Equity     float64 `json:"equity"`
	FloatingPL float64 `json:"floatingPL"`
}

// DailySummary aggregates one trading day (UTC+7 calendar date)
type DailySummary struct {
	Date        string  `json:"date"`
	Profit      float64 `json:"profit"`
	TotalTrades int     `json:"totalTrades"`
	WinRate     float64 `json:"winRate"`
	BestTrade   float64 `json:"bestTrade"`
	WorstTrade  float64 `json:"worstTrade"`
}

// Entry is one leaderboard row
type Entry struct {
	ID              string           `json:"id"`
	Nickname        string           `json:"nickname"`
	Points          float64          `json:"points"`
	Profit          float64          `json:"profit"`
	IsDisqualified  bool             `json:"isDisqualified"`
	Stats           TraderStats      `json:"stats"`
	History         []Trade          `json:"history"`
	EquityCurve     []float64        `json:"equityCurve"`
	DailyHistory    []DailySummary   `json:"dailyHistory,omitempty"`
	EquitySnapshots []EquitySnapshot `json:"equitySnapshots,omitempty"`
	RankProfit      int              `json:"rankProfit"`
	RankPoints      int              `json:"rankPoints"`
}

// Summary holds derived statistics for a trader profile
type Summary struct {
	TradingDays       int     `json:"tradingDays"`
	MeanDailyProfit   float64 `json:"meanDailyProfit"`
	StdDevDailyProfit float64 `json:"stdDevDailyProfit"`
	SharpeLike        float64 `json:"sharpeLike"`
	MaxDrawdownPct    float64 `json:"maxDrawdownPct"`
	ProfitableDaysPct float64 `json:"profitableDaysPct"`
}

// TraderDetail is the full trader profile
type TraderDetail struct {
	Trader  Entry   `json:"trader"`
	Rank    int     `json:"rank"`
	Summary Summary `json:"summary"`
	Source  Source  `json:"source"`
}
