package leaderboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRank(t *testing.T) {
	entries := []Entry{
		{ID: "a", Points: 100, Profit: 50},
		{ID: "b", Points: 300, Profit: -20, IsDisqualified: true},
		{ID: "c", Points: 200, Profit: 10},
		{ID: "d", Points: 150, Profit: 400},
		{ID: "e", Points: 500, Profit: 900, IsDisqualified: true},
	}

	ranked := Rank(entries)
	require.Len(t, ranked, 5)

	ids := make([]string, len(ranked))
	for i, e := range ranked {
		ids[i] = e.ID
	}
	assert.Equal(t, []string{"c", "d", "a", "b", "e"}, ids)

	byID := map[string]Entry{}
	for _, e := range ranked {
		byID[e.ID] = e
	}
	assert.Equal(t, 1, byID["c"].RankPoints)
	assert.Equal(t, 2, byID["d"].RankPoints)
	assert.Equal(t, 3, byID["a"].RankPoints)

	assert.Equal(t, 1, byID["d"].RankProfit)
	assert.Equal(t, 2, byID["a"].RankProfit)
	assert.Equal(t, 3, byID["c"].RankProfit)

	for _, id := range []string{"b", "e"} {
		assert.Equal(t, DisqualifiedRank, byID[id].RankPoints)
		assert.Equal(t, DisqualifiedRank, byID[id].RankProfit)
	}
}

func TestRank_TiesKeepInputOrder(t *testing.T) {
	ranked := Rank([]Entry{
		{ID: "x", Points: 10, Profit: 5},
		{ID: "y", Points: 10, Profit: 5},
	})

	require.Len(t, ranked, 2)
	assert.Equal(t, "x", ranked[0].ID)
	assert.Equal(t, 1, ranked[0].RankPoints)
	assert.Equal(t, 1, ranked[0].RankProfit)
	assert.Equal(t, 2, ranked[1].RankPoints)
	assert.Equal(t, 2, ranked[1].RankProfit)
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, Rank(nil))
}

func TestStatsRowDisqualified(t *testing.T) {
	tests := []struct {
		name string
		row  StatsRow
		want bool
	}{
		{"healthy", StatsRow{Equity: 1000, TraderStats: TraderStats{MaxDrawdown: 20}}, false},
		{"blown account", StatsRow{Equity: 0}, true},
		{"negative equity", StatsRow{Equity: -5}, true},
		{"drawdown at limit", StatsRow{Equity: 10, TraderStats: TraderStats{MaxDrawdown: 99}}, true},
		{"drawdown just below", StatsRow{Equity: 10, TraderStats: TraderStats{MaxDrawdown: 98.9}}, false},
		{"flagged", StatsRow{Equity: 5000, IsDisqualified: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.row.Disqualified())
		})
	}
}

func TestRankOnDate(t *testing.T) {
	scores := []Score{
		{Points: 100, Profit: 50},
		{Points: 100, Profit: 80},
		{Points: 200, Profit: 0},
		{Points: 50, Profit: 1000},
	}

	assert.Equal(t, 3, RankOnDate(Score{Points: 100, Profit: 50}, scores))
	assert.Equal(t, 2, RankOnDate(Score{Points: 100, Profit: 80}, scores))
	assert.Equal(t, 1, RankOnDate(Score{Points: 200, Profit: 0}, scores))
	assert.Equal(t, 1, RankOnDate(Score{Points: 10}, nil))
}
