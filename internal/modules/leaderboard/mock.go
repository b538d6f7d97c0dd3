package leaderboard

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// mockSeed keeps the demo dataset stable between requests
const mockSeed = 20240101

var mockSymbols = []string{"XAUUSD", "EURUSD", "GBPUSD", "BTCUSD", "US30"}

// MockEntries returns the demo leaderboard served when the contest store is
// unavailable or empty. Entries are in their original listing order.
func MockEntries(now time.Time) []Entry {
	rng := rand.New(rand.NewSource(mockSeed))

	entries := []Entry{
		{
			ID: "1", Nickname: "TraderPro99", Points: 1500, Profit: 1200.50,
			Stats: TraderStats{
				WinRate: 65.5, ProfitFactor: 2.1, RRRatio: 1.5, MaxDrawdown: 12.5, TotalTrades: 145,
				AvgWin: 150, AvgLoss: -80, BestTrade: 500, WorstTrade: -200, WinRateBuy: 60, WinRateSell: 70,
				TradingStyle: "Intraday", FavoritePair: "XAUUSD",
				AvgHoldingTime: "2h 30m", AvgHoldingTimeWin: "1h 15m", AvgHoldingTimeLoss: "3h 45m",
				MaxConsecutiveWins: 5, MaxConsecutiveLosses: 2,
				SessionAsianProfit: 150.50, SessionLondonProfit: 500, SessionNewYorkProfit: -200,
				SessionAsianWinRate: 60, SessionLondonWinRate: 75, SessionNewYorkWinRate: 40,
			},
		},
		{ID: "2", Nickname: "CryptoKing", Points: 1450, Profit: 980, Stats: TraderStats{WinRate: 55, ProfitFactor: 1.8, RRRatio: 1.2, MaxDrawdown: 25, TotalTrades: 89, AvgWin: 200, AvgLoss: -150, BestTrade: 350, WorstTrade: -180}},
		{ID: "3", Nickname: "MoonWalker", Points: 1400, Profit: -150, Stats: TraderStats{WinRate: 40, ProfitFactor: 0.8, RRRatio: 0.7, MaxDrawdown: 45, TotalTrades: 200, AvgWin: 50, AvgLoss: -60, BestTrade: 120, WorstTrade: -150}},
		{ID: "4", Nickname: "HODLer", Points: 1350, Profit: 500.25, Stats: TraderStats{WinRate: 50, ProfitFactor: 1.2, RRRatio: 1.1, MaxDrawdown: 10, TotalTrades: 50, AvgWin: 100, AvgLoss: -90, BestTrade: 100, WorstTrade: -90}},
		{ID: "5", Nickname: "BearWhale", Points: 1300, Profit: 2000, Stats: TraderStats{WinRate: 70, ProfitFactor: 3.5, RRRatio: 2.5, MaxDrawdown: 5, TotalTrades: 30, AvgWin: 500, AvgLoss: -100}},
	}

	for i := 0; i < 10; i++ {
		id := i + 6
		entries = append(entries, Entry{
			ID:       fmt.Sprint(id),
			Nickname: fmt.Sprintf("Trader_%d", id),
			Points:   float64(1000 - i*50),
			Profit:   round2(rng.Float64()*2000 - 1000),
			Stats: TraderStats{
				WinRate:        round1(rng.Float64() * 100),
				ProfitFactor:   round2(rng.Float64() * 3),
				RRRatio:        round2(rng.Float64() * 3),
				MaxDrawdown:    round1(rng.Float64() * 50),
				TotalTrades:    rng.Intn(100),
				AvgWin:         100,
				AvgLoss:        -50,
				BestTrade:      200,
				WorstTrade:     -100,
				WinRateBuy:     50,
				WinRateSell:    50,
				TradingStyle:   "Scalping",
				FavoritePair:   "EURUSD",
				AvgHoldingTime: "15m",
			},
		})
	}

	for i := range entries {
		historyLen := 10
		if i >= 5 {
			historyLen = 5
		}
		entries[i].EquityCurve = mockEquity(rng, 10000, 20)
		entries[i].History = mockHistory(rng, now, historyLen)
		entries[i].DailyHistory = mockDailyHistory(rng, now, 30)
		entries[i].IsDisqualified = mockDisqualified(entries[i])
	}
	return entries
}

// mockDisqualified mirrors the store rule for demo rows, which carry an
// equity curve instead of an equity column
func mockDisqualified(e Entry) bool {
	if e.IsDisqualified || e.Stats.MaxDrawdown > 99 {
		return true
	}
	return len(e.EquityCurve) > 0 && e.EquityCurve[len(e.EquityCurve)-1] <= 0
}

// mockHistory returns count trades one hour apart, newest first
func mockHistory(rng *rand.Rand, now time.Time, count int) []Trade {
	trades := make([]Trade, 0, count)
	for i := count - 1; i >= 0; i-- {
		open := now.Add(-time.Duration(count-i) * time.Hour)
		side := "BUY"
		if rng.Intn(2) == 1 {
			side = "SELL"
		}
		trades = append(trades, Trade{
			ID:        fmt.Sprintf("mock-%d", i),
			Symbol:    mockSymbols[rng.Intn(len(mockSymbols))],
			Type:      side,
			Lot:       round2(rng.Float64()*5 + 0.1),
			Profit:    round2(rng.Float64()*2000 - 800),
			OpenTime:  open.UTC(),
			CloseTime: open.Add(30 * time.Minute).UTC(),
		})
	}
	return trades
}

func mockEquity(rng *rand.Rand, start float64, count int) []float64 {
	balance := start
	curve := []float64{balance}
	for i := 0; i < count; i++ {
		balance += (rng.Float64() - 0.45) * 500
		curve = append(curve, round2(balance))
	}
	return curve
}

func mockDailyHistory(rng *rand.Rand, now time.Time, count int) []DailySummary {
	days := make([]DailySummary, 0, count)
	for i := 0; i < count; i++ {
		date := now.AddDate(0, 0, -(count - 1 - i))
		days = append(days, DailySummary{
			Date:   date.UTC().Format("2006-01-02"),
			Profit: round2(rng.Float64()*1000 - 400),
		})
	}
	return days
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
