package planner

import "time"

// Options hold the pacing model and pruning knobs for a planning run. The
// defaults encode a conservative recreational hiker.
type Options struct {
	// Naismith pacing: level ground speed plus a time allowance per metre of
	// ascent.
	BaseSpeedKmh      float64
	ClimbRateMPerHour float64

	// Road walking between a bus stop and the trail entry.
	WalkSpeedKmh float64

	// RestBufferFraction inflates the pacing estimate to cover breaks.
	RestBufferFraction float64

	// A feasible candidate whose slack is below this threshold gets a
	// warning rather than being dropped.
	TightMarginThreshold time.Duration

	// Through-hike segments outside this band are skipped: shorter ones are
	// better served out-and-back, longer ones do not fit a day.
	ThroughHikeMinKm float64
	ThroughHikeMaxKm float64

	// Candidates whose hiking ratios differ by less than ScoreEpsilon are
	// considered tied and fall through to the secondary ranking criteria.
	ScoreEpsilon float64

	// MaxParallelTrails bounds the per-trail fan-out.
	MaxParallelTrails int
}

func DefaultOptions() Options {
	return Options{
		BaseSpeedKmh:      4,
		ClimbRateMPerHour: 600,

		WalkSpeedKmh: 4.5,

		RestBufferFraction: 0.10,

		TightMarginThreshold: 30 * time.Minute,

		ThroughHikeMinKm: 3,
		ThroughHikeMaxKm: 20,

		ScoreEpsilon: 0.01,

		MaxParallelTrails: 8,
	}
}
