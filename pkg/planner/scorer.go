package planner

import (
	"math"
	"sort"

	"github.com/shvilbus/shvilbus/pkg/htdf"
	"golang.org/x/exp/slices"
)

// score computes the ranking metrics on a finished candidate. The hiking
// ratio is the share of door-to-door time spent on the trail.
func (o *Options) score(candidate *htdf.Candidate) {
	if candidate.TotalDuration <= 0 {
		candidate.HikingRatio = 0
		candidate.Score = 0
		return
	}

	candidate.HikingRatio = candidate.HikingDuration.Seconds() / candidate.TotalDuration.Seconds()
	candidate.Score = candidate.HikingRatio
}

// Rank orders candidates for presentation. The default ordering is by hiking
// ratio with a cascade of tie-breakers; the departure ordering simply sorts
// by when the hiker leaves home.
func (o *Options) Rank(candidates []htdf.Candidate, query *htdf.PlanQuery) {
	if query.SortBy == htdf.SortByDeparture {
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].DepartureFromOrigin().Before(candidates[j].DepartureFromOrigin())
		})
		return
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return o.less(&candidates[i], &candidates[j], query)
	})
}

func (o *Options) less(a *htdf.Candidate, b *htdf.Candidate, query *htdf.PlanQuery) bool {
	if math.Abs(a.Score-b.Score) >= o.ScoreEpsilon {
		return a.Score > b.Score
	}

	if a.TotalTransfers() != b.TotalTransfers() {
		return a.TotalTransfers() < b.TotalTransfers()
	}

	if a.TotalWalkM != b.TotalWalkM {
		return a.TotalWalkM < b.TotalWalkM
	}

	aBonus := preferenceBonus(a, query)
	bBonus := preferenceBonus(b, query)
	if aBonus != bBonus {
		return aBonus > bBonus
	}

	if a.ThroughHike != b.ThroughHike {
		return a.ThroughHike
	}

	return a.TrailRef < b.TrailRef
}

// preferenceBonus counts how many of the query's soft preferences a candidate
// satisfies. Preferences never exclude candidates, they only break ties.
func preferenceBonus(candidate *htdf.Candidate, query *htdf.PlanQuery) int {
	bonus := 0

	for _, colour := range query.PreferredColours {
		if slices.Contains(candidate.Colours, colour) {
			bonus++
		}
	}

	if query.PreferredDifficulty != "" && candidate.Difficulty == query.PreferredDifficulty {
		bonus++
	}

	return bonus
}
