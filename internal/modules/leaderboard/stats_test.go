package leaderboard

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	days := []DailySummary{
		{Date: "2024-03-01", Profit: 100},
		{Date: "2024-03-02", Profit: -50},
		{Date: "2024-03-03", Profit: 200},
	}

	s := Summarize(days, []float64{100, 120, 90, 130, 65})

	assert.Equal(t, 3, s.TradingDays)
	assert.InDelta(t, 66.667, s.ProfitableDaysPct, 0.001)
	assert.InDelta(t, 83.333, s.MeanDailyProfit, 0.001)
	// sample standard deviation
	assert.InDelta(t, math.Sqrt(31666.667/2), s.StdDevDailyProfit, 0.001)
	assert.InDelta(t, s.MeanDailyProfit/s.StdDevDailyProfit*math.Sqrt(3), s.SharpeLike, 1e-9)
	assert.InDelta(t, 50.0, s.MaxDrawdownPct, 1e-9)
}

func TestSummarize_SingleDay(t *testing.T) {
	s := Summarize([]DailySummary{{Date: "2024-03-01", Profit: -20}}, nil)

	assert.Equal(t, 1, s.TradingDays)
	assert.Equal(t, -20.0, s.MeanDailyProfit)
	assert.Zero(t, s.StdDevDailyProfit)
	assert.Zero(t, s.SharpeLike)
	assert.Zero(t, s.ProfitableDaysPct)
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil, nil))
}

func TestMaxDrawdownPct(t *testing.T) {
	tests := []struct {
		name  string
		curve []float64
		want  float64
	}{
		{"too short", []float64{100}, 0},
		{"only rising", []float64{100, 110, 120}, 0},
		{"single dip", []float64{100, 80, 120}, 20},
		{"deeper later dip", []float64{100, 90, 200, 100}, 50},
		{"blown", []float64{1000, 0}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, maxDrawdownPct(tt.curve), 1e-9)
		})
	}
}
