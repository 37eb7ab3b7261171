package planner

import (
	"testing"
	"time"

	"github.com/shvilbus/shvilbus/pkg/htdf"
)

// durationNear absorbs the float rounding in the pacing arithmetic.
func durationNear(a time.Duration, b time.Duration) bool {
	difference := a - b
	if difference < 0 {
		difference = -difference
	}
	return difference <= time.Millisecond
}

func TestHikeEstimate(t *testing.T) {
	options := DefaultOptions()

	t.Run("FlatTrail", func(t *testing.T) {
		// 8 km at 4 km/h is 2h, plus the 10% rest buffer
		estimate := options.HikeEstimate(8, 0)
		expected := 2*time.Hour + 12*time.Minute

		if !durationNear(estimate, expected) {
			t.Errorf("Expected %s, got %s", expected, estimate)
		}
	})

	t.Run("ClimbAddsTime", func(t *testing.T) {
		flat := options.HikeEstimate(8, 0)
		climbing := options.HikeEstimate(8, 600)

		if !durationNear(climbing-flat, 66*time.Minute) {
			t.Errorf("Expected 600m of climb to add 1h6m, got %s", climbing-flat)
		}
	})
}

func TestWindow(t *testing.T) {
	options := DefaultOptions()
	date := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)

	arrival := htdf.NewClockTime(9, 0).On(date)
	departure := htdf.NewClockTime(16, 0).On(date)

	t.Run("WalksShrinkTheWindow", func(t *testing.T) {
		// 900m at 4.5 km/h is 12 minutes each way
		window := options.Window(arrival, departure, 900, 900, 5*time.Hour)

		if window.Start != arrival.Add(12*time.Minute) {
			t.Errorf("Expected start 09:12, got %s", window.Start)
		}
		if window.End != departure.Add(-12*time.Minute) {
			t.Errorf("Expected end 15:48, got %s", window.End)
		}
		if window.Available != 6*time.Hour+36*time.Minute {
			t.Errorf("Expected 6h36m available, got %s", window.Available)
		}
		if !window.Feasible {
			t.Error("Expected a feasible window")
		}
		if window.Margin != window.Available-window.Required {
			t.Errorf("Margin inconsistent: %s", window.Margin)
		}
	})

	t.Run("InfeasibleWhenRequiredExceedsAvailable", func(t *testing.T) {
		window := options.Window(arrival, departure, 0, 0, 8*time.Hour)

		if window.Feasible {
			t.Error("Expected an infeasible window")
		}
		if window.Margin >= 0 {
			t.Errorf("Expected a negative margin, got %s", window.Margin)
		}
	})

	t.Run("NegativeWindowClampsToZero", func(t *testing.T) {
		window := options.Window(departure, arrival, 0, 0, time.Hour)

		if window.Available != 0 {
			t.Errorf("Expected zero availability, got %s", window.Available)
		}
	})
}

func TestOutAndBack(t *testing.T) {
	options := DefaultOptions()
	date := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)

	trail := &htdf.Trail{
		PrimaryIdentifier: "shvilbus-trail-nahal-ktalav",
		DistanceKm:        4,
		ElevationGainM:    200,
		ElevationLossM:    200,
	}

	t.Run("FullTrailWhenWindowAllows", func(t *testing.T) {
		window := options.Window(
			htdf.NewClockTime(8, 0).On(date),
			htdf.NewClockTime(17, 0).On(date),
			0, 0, time.Hour,
		)

		distance, duration := options.outAndBack(window, trail)

		if distance != 8 {
			t.Errorf("Expected the full 8km out-and-back, got %.1fkm", distance)
		}
		fullTime := options.HikeEstimate(4, 200) + options.HikeEstimate(4, 200)
		if duration != fullTime {
			t.Errorf("Expected %s, got %s", fullTime, duration)
		}
	})

	t.Run("PartialHikeInTightWindow", func(t *testing.T) {
		window := options.Window(
			htdf.NewClockTime(10, 0).On(date),
			htdf.NewClockTime(11, 30).On(date),
			0, 0, time.Hour,
		)

		distance, duration := options.outAndBack(window, trail)

		if distance >= 2*trail.DistanceKm {
			t.Errorf("Expected a partial hike, got %.1fkm", distance)
		}
		if distance <= 0 {
			t.Errorf("Expected some distance, got %.1fkm", distance)
		}
		if duration != window.Available {
			t.Errorf("Expected the whole window to be used, got %s of %s", duration, window.Available)
		}
	})
}
