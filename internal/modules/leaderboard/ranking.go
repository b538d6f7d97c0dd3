package leaderboard

import "sort"

// Rank assigns profit and points ranks to active entries, parks disqualified
// entries at DisqualifiedRank, and orders the result by points (descending)
// followed by the disqualified entries in their input order. Ties keep input
// order.
func Rank(entries []Entry) []Entry {
	active := make([]Entry, 0, len(entries))
	disqualified := make([]Entry, 0)
	for _, e := range entries {
		if e.IsDisqualified {
			e.RankProfit = DisqualifiedRank
			e.RankPoints = DisqualifiedRank
			disqualified = append(disqualified, e)
			continue
		}
		active = append(active, e)
	}

	byProfit := make([]int, len(active))
	for i := range byProfit {
		byProfit[i] = i
	}
	sort.SliceStable(byProfit, func(a, b int) bool {
		return active[byProfit[a]].Profit > active[byProfit[b]].Profit
	})
	for rank, idx := range byProfit {
		active[idx].RankProfit = rank + 1
	}

	sort.SliceStable(active, func(a, b int) bool {
		return active[a].Points > active[b].Points
	})
	for i := range active {
		active[i].RankPoints = i + 1
	}

	return append(active, disqualified...)
}

// entryFromRow maps a store row to a leaderboard entry without history
func entryFromRow(row StatsRow) Entry {
	return Entry{
		ID:             row.ParticipantID,
		Nickname:       row.Nickname,
		Points:         row.Points,
		Profit:         row.Profit,
		IsDisqualified: row.Disqualified(),
		Stats:          row.TraderStats,
		History:        []Trade{},
		EquityCurve:    []float64{},
	}
}
