package leaderboard

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summarize derives profile statistics from the daily history and the equity
// curve. Missing inputs leave the corresponding fields at zero.
func Summarize(days []DailySummary, equityCurve []float64) Summary {
	var s Summary

	if len(days) > 0 {
		profits := make([]float64, len(days))
		profitable := 0
		for i, d := range days {
			profits[i] = d.Profit
			if d.Profit > 0 {
				profitable++
			}
		}
		s.TradingDays = len(days)
		s.ProfitableDaysPct = float64(profitable) / float64(len(days)) * 100

		if len(profits) > 1 {
			s.MeanDailyProfit, s.StdDevDailyProfit = stat.MeanStdDev(profits, nil)
		} else {
			s.MeanDailyProfit = profits[0]
		}
		if s.StdDevDailyProfit > 0 {
			s.SharpeLike = s.MeanDailyProfit / s.StdDevDailyProfit * math.Sqrt(float64(len(profits)))
		}
	}

	s.MaxDrawdownPct = maxDrawdownPct(equityCurve)
	return s
}

// maxDrawdownPct returns the largest peak-to-trough decline in percent
func maxDrawdownPct(curve []float64) float64 {
	if len(curve) < 2 {
		return 0
	}

	// running peak at every point
	peaks := make([]float64, len(curve))
	copy(peaks, curve)
	for i := 1; i < len(peaks); i++ {
		peaks[i] = math.Max(peaks[i-1], peaks[i])
	}

	drawdowns := make([]float64, len(curve))
	for i, peak := range peaks {
		if peak > 0 {
			drawdowns[i] = (peak - curve[i]) / peak * 100
		}
	}
	return floats.Max(drawdowns)
}
