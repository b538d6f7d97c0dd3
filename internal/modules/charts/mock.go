package charts

import (
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"time"
)

var basePrices = map[string]float64{
	"XAUUSD": 2000,
	"EURUSD": 1.08,
	"GBPUSD": 1.26,
	"BTCUSD": 45000,
	"US30":   38000,
	"USDJPY": 150,
	"GBPJPY": 188,
}

const defaultBasePrice = 100

// MockCandles generates a random walk over [from, to] on weekdays only,
// with 0.1% volatility per bar and a slight upward drift. The walk is seeded
// from the symbol and start time, so a query always yields the same bars.
func MockCandles(symbol string, from, to time.Time, tf Timeframe) []Candle {
	base, ok := basePrices[symbol]
	if !ok {
		base = defaultBasePrice
	}
	volatility := base * 0.001

	decimals := 5
	if strings.Contains(symbol, "JPY") {
		decimals = 3
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(symbol))
	rng := rand.New(rand.NewSource(int64(h.Sum64()) ^ from.Unix()))

	interval := tf.Interval()
	price := base
	candles := []Candle{}

	for t := from.UTC(); !t.After(to) && len(candles) < MaxCandles; t = t.Add(interval) {
		if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}

		open := price
		close := open + (rng.Float64()-0.48)*volatility
		high := math.Max(open, close) + rng.Float64()*volatility*0.5
		low := math.Min(open, close) - rng.Float64()*volatility*0.5

		candles = append(candles, Candle{
			Time:   t,
			Open:   roundTo(open, decimals),
			High:   roundTo(high, decimals),
			Low:    roundTo(low, decimals),
			Close:  roundTo(close, decimals),
			Volume: float64(rng.Intn(1000) + 100),
		})
		price = close
	}
	return candles
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
