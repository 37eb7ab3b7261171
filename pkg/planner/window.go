package planner

import (
	"time"

	"github.com/shvilbus/shvilbus/pkg/htdf"
)

// HikeEstimate is the Naismith pacing estimate for a segment: level time at
// the base speed plus a climb allowance, inflated by the rest buffer.
func (o *Options) HikeEstimate(distanceKm float64, climbM float64) time.Duration {
	hours := distanceKm/o.BaseSpeedKmh + climbM/o.ClimbRateMPerHour
	hours *= 1 + o.RestBufferFraction

	return time.Duration(hours * float64(time.Hour))
}

// WalkDuration is the road-walk time for a stop-to-trail distance.
func (o *Options) WalkDuration(distanceM float64) time.Duration {
	hours := distanceM / 1000 / o.WalkSpeedKmh

	return time.Duration(hours * float64(time.Hour))
}

// Window computes the on-trail time between alighting the outbound bus and
// boarding the return bus, net of the road walks at each end.
func (o *Options) Window(outboundArrival time.Time, returnDeparture time.Time, entryWalkM float64, exitWalkM float64, required time.Duration) htdf.HikeWindow {
	start := outboundArrival.Add(o.WalkDuration(entryWalkM))
	end := returnDeparture.Add(-o.WalkDuration(exitWalkM))

	available := end.Sub(start)
	if available < 0 {
		available = 0
	}

	return htdf.HikeWindow{
		Start: start,
		End:   end,

		Available: available,
		Required:  required,

		Feasible: available >= required,
		Margin:   available - required,
	}
}

// outAndBack sizes the hike for a non-loop trail entered and left at the same
// stop: walk out for at most half the window, then retrace. The hike never
// exceeds a full out-and-back of the whole trail.
func (o *Options) outAndBack(window htdf.HikeWindow, trail *htdf.Trail) (distanceKm float64, duration time.Duration) {
	fullOneWay := o.HikeEstimate(trail.DistanceKm, trail.ElevationGainM)
	fullReturn := o.HikeEstimate(trail.DistanceKm, trail.ElevationLossM)

	if window.Available >= fullOneWay+fullReturn {
		return 2 * trail.DistanceKm, fullOneWay + fullReturn
	}

	// Partial out-and-back: turn around at the half-window mark. The
	// returned distance assumes symmetric pacing on the retraced leg.
	oneWayHours := window.Available.Hours() / 2
	climbPerKm := 0.0
	if trail.DistanceKm > 0 {
		climbPerKm = trail.ElevationGainM / trail.DistanceKm
	}

	// Invert the pacing model: hours = d/base + d*climbPerKm/rate, buffered.
	perKmHours := (1/o.BaseSpeedKmh + climbPerKm/o.ClimbRateMPerHour) * (1 + o.RestBufferFraction)
	oneWayKm := oneWayHours / perKmHours

	return 2 * oneWayKm, window.Available
}
