package planner

import (
	"context"
	"testing"
	"time"

	"github.com/shvilbus/shvilbus/pkg/calendar"
	"github.com/shvilbus/shvilbus/pkg/htdf"
	"github.com/shvilbus/shvilbus/pkg/scheduleindex"
	"github.com/shvilbus/shvilbus/pkg/trailindex"
	"golang.org/x/exp/slices"
)

type stubSchedules struct {
	index scheduleindex.Index
}

func (s stubSchedules) Load(ctx context.Context, date time.Time) (scheduleindex.Index, error) {
	return s.index, nil
}

type fixedCandles struct {
	candleTime   time.Time
	havdalahTime time.Time
	estimated    bool
}

func (f fixedCandles) CandleLighting(ctx context.Context, date time.Time) (time.Time, bool, error) {
	return f.candleTime, f.estimated, nil
}

func (f fixedCandles) Havdalah(ctx context.Context, date time.Time) (time.Time, bool, error) {
	return f.havdalahTime, f.estimated, nil
}

func record(tripRef string, stopRef string, at htdf.ClockTime, sequence int) scheduleindex.Record {
	return scheduleindex.Record{
		TripRef:   tripRef,
		Line:      "446",
		Operator:  "egged",
		StopRef:   stopRef,
		Arrival:   at,
		Departure: at,
		Sequence:  sequence,
	}
}

func loopTrail() htdf.Trail {
	return htdf.Trail{
		PrimaryIdentifier: "shvilbus-trail-sataf",
		Name:              "Sataf Loop",
		DistanceKm:        6,
		ElevationGainM:    300,
		IsLoop:            true,
		Colours:           []string{"blue"},
		Difficulty:        "moderate",
		SeasonWarnings:    []string{"Wadi crossing floods after rain"},
		AccessPoints: []htdf.AccessPoint{
			{StopRef: "trailhead", StopName: "Sataf Junction", WalkDistanceM: 450, TrailOffsetKm: 0},
		},
	}
}

func newTestPlanner(records []scheduleindex.Record, trails []htdf.Trail, candles calendar.CandleSource) *Planner {
	saturday, _ := calendar.LoadSaturdayService()

	return NewPlanner(
		stubSchedules{index: scheduleindex.NewMemoryIndex(nil, records)},
		trailindex.NewMemoryRepository(trails),
		candles,
		saturday,
	)
}

func weekdayRecords() []scheduleindex.Record {
	at := htdf.NewClockTime

	return []scheduleindex.Record{
		record("out", "home", at(7, 30), 1),
		record("out", "trailhead", at(8, 30), 2),

		record("back", "trailhead", at(16, 0), 1),
		record("back", "home", at(17, 0), 2),
	}
}

func TestPlanLoopTrail(t *testing.T) {
	wednesday := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)

	hikePlanner := newTestPlanner(weekdayRecords(), []htdf.Trail{loopTrail()}, fixedCandles{})

	results, err := hikePlanner.Plan(context.Background(), &htdf.PlanQuery{
		OriginStops: []string{"home"},
		Date:        wednesday,
		Region:      "jerusalem",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if results.Deadline.Rule != htdf.DeadlineRuleWeekday {
		t.Errorf("Expected weekday deadline, got %s", results.Deadline.Rule)
	}

	if len(results.Candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d (diagnostics: %+v)", len(results.Candidates), results.Diagnostics)
	}

	candidate := results.Candidates[0]

	if candidate.TrailRef != "shvilbus-trail-sataf" {
		t.Errorf("Unexpected trail: %s", candidate.TrailRef)
	}
	if candidate.ThroughHike {
		t.Error("Expected a loop candidate, not a through-hike")
	}
	if candidate.HikedDistanceKm != 6 {
		t.Errorf("Expected the full 6km circuit, got %.1fkm", candidate.HikedDistanceKm)
	}
	if candidate.HikingRatio <= 0 || candidate.HikingRatio >= 1 {
		t.Errorf("Expected hiking ratio in (0,1), got %f", candidate.HikingRatio)
	}
	if !candidate.Window.Feasible {
		t.Error("Expected a feasible window")
	}

	// The 16:00 departure is the last of the day from the trailhead
	if !slices.Contains(candidate.Warnings, htdf.WarningLastBus) {
		t.Errorf("Expected a last-bus warning, got %v", candidate.Warnings)
	}
	if slices.Contains(candidate.Warnings, htdf.WarningTightMargin) {
		t.Errorf("Did not expect a tight-margin warning with hours of slack, got %v", candidate.Warnings)
	}
}

func TestPlanLoopTrailTwoGates(t *testing.T) {
	wednesday := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)
	at := htdf.NewClockTime

	trail := htdf.Trail{
		PrimaryIdentifier: "shvilbus-trail-carmel",
		Name:              "Little Switzerland Loop",
		DistanceKm:        6,
		ElevationGainM:    300,
		IsLoop:            true,
		AccessPoints: []htdf.AccessPoint{
			{StopRef: "gate-a", StopName: "Northern Gate", WalkDistanceM: 200, TrailOffsetKm: 0},
			{StopRef: "gate-b", StopName: "Southern Gate", WalkDistanceM: 200, TrailOffsetKm: 5},
		},
	}

	// Gate A is an hour's ride, gate B three hours door to door longer
	records := []scheduleindex.Record{
		record("out-a", "home", at(7, 30), 1),
		record("out-a", "gate-a", at(8, 30), 2),

		record("out-b", "home", at(6, 30), 1),
		record("out-b", "gate-b", at(9, 30), 2),

		record("back-a", "gate-a", at(16, 0), 1),
		record("back-a", "home", at(17, 0), 2),

		record("back-b", "gate-b", at(16, 0), 1),
		record("back-b", "home", at(17, 30), 2),
	}

	hikePlanner := newTestPlanner(records, []htdf.Trail{trail}, fixedCandles{})

	results, err := hikePlanner.Plan(context.Background(), &htdf.PlanQuery{
		OriginStops: []string{"home"},
		Date:        wednesday,
		Region:      "jerusalem",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Both gates are feasible, but a trail gets one circuit candidate and a
	// loop never becomes a gate-to-gate hike
	if len(results.Candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d (diagnostics: %+v)", len(results.Candidates), results.Diagnostics)
	}

	candidate := results.Candidates[0]

	if candidate.ThroughHike {
		t.Error("Expected a circuit candidate, not a through-hike")
	}
	if candidate.Entry.StopRef != "gate-a" {
		t.Errorf("Expected the shorter ride via gate-a, got %s", candidate.Entry.StopRef)
	}
	if candidate.HikedDistanceKm != 6 {
		t.Errorf("Expected the full circuit, got %.1fkm", candidate.HikedDistanceKm)
	}
}

func TestPlanSaturdayNoService(t *testing.T) {
	saturday := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)

	hikePlanner := newTestPlanner(weekdayRecords(), []htdf.Trail{loopTrail()}, fixedCandles{})

	results, err := hikePlanner.Plan(context.Background(), &htdf.PlanQuery{
		OriginStops: []string{"home"},
		Date:        saturday,
		Region:      "jerusalem",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !results.Deadline.NoService() {
		t.Errorf("Expected a no-service deadline, got %s", results.Deadline.Rule)
	}
	if len(results.Candidates) != 0 {
		t.Errorf("Expected no candidates, got %d", len(results.Candidates))
	}
	if len(results.Diagnostics) != 1 || results.Diagnostics[0].Reason != htdf.DropReasonNoServiceDay {
		t.Errorf("Expected a single no-service diagnostic, got %+v", results.Diagnostics)
	}
}

func TestPlanFridayDeadline(t *testing.T) {
	friday := time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC)

	t.Run("EarlyCandlesDropTheReturn", func(t *testing.T) {
		// Deadline 15:00 - 2h = 13:00, before any return bus
		candles := fixedCandles{candleTime: time.Date(2025, 6, 13, 15, 0, 0, 0, time.UTC)}
		hikePlanner := newTestPlanner(weekdayRecords(), []htdf.Trail{loopTrail()}, candles)

		results, err := hikePlanner.Plan(context.Background(), &htdf.PlanQuery{
			OriginStops: []string{"home"},
			Date:        friday,
			Region:      "jerusalem",
		})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if len(results.Candidates) != 0 {
			t.Fatalf("Expected no candidates, got %d", len(results.Candidates))
		}

		found := false
		for _, diagnostic := range results.Diagnostics {
			if diagnostic.Reason == htdf.DropReasonNoReturnItinerary {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected a no-return diagnostic, got %+v", results.Diagnostics)
		}
	})

	t.Run("EstimatedCandlesFlagTheCandidate", func(t *testing.T) {
		// Deadline 19:00 - 2h = 17:00, the return arrives exactly then
		candles := fixedCandles{
			candleTime: time.Date(2025, 6, 13, 19, 0, 0, 0, time.UTC),
			estimated:  true,
		}
		hikePlanner := newTestPlanner(weekdayRecords(), []htdf.Trail{loopTrail()}, candles)

		results, err := hikePlanner.Plan(context.Background(), &htdf.PlanQuery{
			OriginStops: []string{"home"},
			Date:        friday,
			Region:      "jerusalem",
		})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if len(results.Candidates) != 1 {
			t.Fatalf("Expected 1 candidate, got %d (diagnostics: %+v)", len(results.Candidates), results.Diagnostics)
		}
		if !slices.Contains(results.Candidates[0].Warnings, htdf.WarningEstimatedDeadline) {
			t.Errorf("Expected an estimated-deadline warning, got %v", results.Candidates[0].Warnings)
		}
	})
}

func TestPlanSafetyMarginMonotonic(t *testing.T) {
	friday := time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC)
	candles := fixedCandles{candleTime: time.Date(2025, 6, 13, 19, 0, 0, 0, time.UTC)}

	// Growing the safety margin tightens the deadline, so a plan that is
	// infeasible at some margin must stay infeasible at every larger one.
	margins := []time.Duration{time.Hour, 2 * time.Hour, 3 * time.Hour, 4 * time.Hour}

	previous := -1
	for _, margin := range margins {
		hikePlanner := newTestPlanner(weekdayRecords(), []htdf.Trail{loopTrail()}, candles)

		results, err := hikePlanner.Plan(context.Background(), &htdf.PlanQuery{
			OriginStops:  []string{"home"},
			Date:         friday,
			Region:       "jerusalem",
			SafetyMargin: margin,
		})
		if err != nil {
			t.Fatalf("Unexpected error at margin %s: %v", margin, err)
		}

		if previous >= 0 && len(results.Candidates) > previous {
			t.Errorf("Margin %s produced %d candidates after %d at a smaller margin", margin, len(results.Candidates), previous)
		}
		previous = len(results.Candidates)
	}

	if previous != 0 {
		t.Errorf("Expected a 4h margin (deadline 15:00, before any return bus) to drop every candidate, got %d", previous)
	}
}

func TestPlanThroughHike(t *testing.T) {
	wednesday := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)
	at := htdf.NewClockTime

	linearTrail := htdf.Trail{
		PrimaryIdentifier: "shvilbus-trail-nahal-amud",
		Name:              "Nahal Amud",
		DistanceKm:        10,
		ElevationGainM:    300,
		AccessPoints: []htdf.AccessPoint{
			{StopRef: "amud-north", WalkDistanceM: 0, TrailOffsetKm: 0},
			{StopRef: "amud-south", WalkDistanceM: 0, TrailOffsetKm: 10},
		},
	}

	records := []scheduleindex.Record{
		record("out", "home", at(7, 0), 1),
		record("out", "amud-north", at(8, 0), 2),

		record("back", "amud-south", at(15, 0), 1),
		record("back", "home", at(16, 0), 2),
	}

	hikePlanner := newTestPlanner(records, []htdf.Trail{linearTrail}, fixedCandles{})

	results, err := hikePlanner.Plan(context.Background(), &htdf.PlanQuery{
		OriginStops: []string{"home"},
		Date:        wednesday,
		Region:      "jerusalem",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(results.Candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d (diagnostics: %+v)", len(results.Candidates), results.Diagnostics)
	}

	candidate := results.Candidates[0]

	if !candidate.ThroughHike {
		t.Fatal("Expected a through-hike candidate")
	}
	if candidate.Entry.StopRef != "amud-north" || candidate.Exit == nil || candidate.Exit.StopRef != "amud-south" {
		t.Errorf("Expected amud-north -> amud-south, got %s -> %v", candidate.Entry.StopRef, candidate.Exit)
	}
	if candidate.HikedDistanceKm != 10 {
		t.Errorf("Expected the 10km segment, got %.1fkm", candidate.HikedDistanceKm)
	}
}

func TestPlanSeasonWarnings(t *testing.T) {
	// A January date is in the rainy season
	january := time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC)

	hikePlanner := newTestPlanner(weekdayRecords(), []htdf.Trail{loopTrail()}, fixedCandles{})

	results, err := hikePlanner.Plan(context.Background(), &htdf.PlanQuery{
		OriginStops: []string{"home"},
		Date:        january,
		Region:      "jerusalem",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(results.Candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(results.Candidates))
	}
	if !slices.Contains(results.Candidates[0].Warnings, "Wadi crossing floods after rain") {
		t.Errorf("Expected the trail's season warning in winter, got %v", results.Candidates[0].Warnings)
	}
}

func TestPlanMaxResults(t *testing.T) {
	wednesday := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)

	var trails []htdf.Trail
	for _, name := range []string{"a", "b", "c"} {
		trail := loopTrail()
		trail.PrimaryIdentifier = "shvilbus-trail-" + name
		trails = append(trails, trail)
	}

	hikePlanner := newTestPlanner(weekdayRecords(), trails, fixedCandles{})

	results, err := hikePlanner.Plan(context.Background(), &htdf.PlanQuery{
		OriginStops: []string{"home"},
		Date:        wednesday,
		Region:      "jerusalem",
		MaxResults:  2,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(results.Candidates) != 2 {
		t.Errorf("Expected the result list cut to 2, got %d", len(results.Candidates))
	}
}
