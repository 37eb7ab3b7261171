// Package planner answers one question: which hikes can be done on a given
// date by public transport, leaving from the given origin stops and getting
// back before the day's deadline. It fans out over the filtered trail set,
// runs transit searches per access point, sizes the hiking window, and ranks
// the surviving candidates.
package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shvilbus/shvilbus/pkg/calendar"
	"github.com/shvilbus/shvilbus/pkg/htdf"
	"github.com/shvilbus/shvilbus/pkg/scheduleindex"
	"github.com/shvilbus/shvilbus/pkg/trailindex"
	"github.com/shvilbus/shvilbus/pkg/transit"
	"github.com/shvilbus/shvilbus/pkg/util"
	"github.com/sourcegraph/conc/pool"
)

type ScheduleProvider interface {
	Load(ctx context.Context, date time.Time) (scheduleindex.Index, error)
}

type Planner struct {
	Schedules ScheduleProvider
	Trails    trailindex.Repository

	Candles  calendar.CandleSource
	Saturday *calendar.SaturdayService

	Options Options
}

func NewPlanner(schedules ScheduleProvider, trails trailindex.Repository, candles calendar.CandleSource, saturday *calendar.SaturdayService) *Planner {
	return &Planner{
		Schedules: schedules,
		Trails:    trails,

		Candles:  candles,
		Saturday: saturday,

		Options: DefaultOptions(),
	}
}

type trailOutcome struct {
	candidates  []htdf.Candidate
	diagnostics []htdf.Diagnostic

	err error
}

// Plan runs one full planning query. A day with no qualifying hikes is a
// successful result carrying diagnostics, not an error.
func (p *Planner) Plan(ctx context.Context, query *htdf.PlanQuery) (*htdf.PlanResults, error) {
	query.ApplyDefaults()
	query.OriginStops = util.RemoveDuplicateStrings(query.OriginStops, nil)

	resolver := calendar.NewResolver(p.Candles, p.Saturday, query.SafetyMargin)
	deadline, err := resolver.Resolve(ctx, query.Date, query.Region)
	if err != nil {
		return nil, err
	}

	results := &htdf.PlanResults{
		Deadline: deadline,
	}

	if deadline.NoService() {
		results.Diagnostics = append(results.Diagnostics, htdf.Diagnostic{
			Reason: htdf.DropReasonNoServiceDay,
			Detail: "no service back to " + query.Region + " on this date",
		})
		return results, nil
	}

	index, err := p.Schedules.Load(ctx, query.Date)
	if err != nil {
		return nil, err
	}

	trails, err := p.Trails.Trails(ctx)
	if err != nil {
		return nil, err
	}

	trails, err = trailindex.ApplyFilters(trails, query)
	if err != nil {
		return nil, err
	}

	search := transit.NewSearch(index, query.MaxTransfers)
	deadlineClock := htdf.ClockTimeOf(deadline.Time)

	trailPool := pool.NewWithResults[*trailOutcome]().WithMaxGoroutines(p.Options.MaxParallelTrails)
	for _, trail := range trails {
		trail := trail

		trailPool.Go(func() *trailOutcome {
			return p.planTrail(ctx, search, &trail, query, deadlineClock)
		})
	}

	for _, outcome := range trailPool.Wait() {
		if outcome.err != nil {
			return nil, outcome.err
		}

		results.Candidates = append(results.Candidates, outcome.candidates...)
		results.Diagnostics = append(results.Diagnostics, outcome.diagnostics...)
	}

	p.finishCandidates(results, search, query)

	p.Options.Rank(results.Candidates, query)
	if len(results.Candidates) > query.MaxResults {
		results.Candidates = results.Candidates[:query.MaxResults]
	}

	log.Info().
		Str("date", query.Date.Format("2006-01-02")).
		Str("region", query.Region).
		Str("rule", string(deadline.Rule)).
		Int("trails", len(trails)).
		Int("candidates", len(results.Candidates)).
		Int("diagnostics", len(results.Diagnostics)).
		Msg("Planned hiking day")

	return results, nil
}

func (p *Planner) planTrail(ctx context.Context, search *transit.Search, trail *htdf.Trail, query *htdf.PlanQuery, deadline htdf.ClockTime) *trailOutcome {
	outcome := &trailOutcome{}

	if err := ctx.Err(); err != nil {
		outcome.err = err
		return outcome
	}

	if query.IncludeSingleAccess {
		var best *htdf.Candidate
		for _, accessPoint := range trail.AccessPoints {
			candidate := p.planSingleAccess(ctx, search, trail, accessPoint, query, deadline, outcome)
			if outcome.err != nil {
				return outcome
			}
			if candidate == nil {
				continue
			}

			if best == nil || hikingShare(candidate) > hikingShare(best) {
				best = candidate
			}
		}

		if best != nil {
			outcome.candidates = append(outcome.candidates, *best)
		}
	}

	if query.IncludeThroughHikes && !trail.IsLoop && len(trail.AccessPoints) > 1 {
		p.planThroughHikes(ctx, search, trail, query, deadline, outcome)
	}

	return outcome
}

// hikingShare is the fraction of door-to-door time spent on the trail, used
// to pick one access point per trail before the scoring pass runs.
func hikingShare(candidate *htdf.Candidate) float64 {
	if candidate.TotalDuration <= 0 {
		return 0
	}

	return candidate.HikingDuration.Seconds() / candidate.TotalDuration.Seconds()
}

// planSingleAccess builds the hike entering and leaving the trail at one
// access point: the whole circuit for a loop trail, an out-and-back sized to
// the window otherwise. Only the best access point per trail is kept, so the
// candidate is returned to the caller rather than recorded here.
func (p *Planner) planSingleAccess(ctx context.Context, search *transit.Search, trail *htdf.Trail, accessPoint htdf.AccessPoint, query *htdf.PlanQuery, deadline htdf.ClockTime, outcome *trailOutcome) *htdf.Candidate {
	outbound, returning, ok := p.searchBothWays(ctx, search, trail, accessPoint, accessPoint, query, deadline, outcome)
	if !ok {
		return nil
	}

	var required time.Duration
	if trail.IsLoop {
		required = p.Options.HikeEstimate(trail.DistanceKm, trail.ElevationGainM)
	} else {
		required = query.MinHikingDuration
	}

	window := p.Options.Window(outbound.ArrivalTime(), returning.DepartureTime(), accessPoint.WalkDistanceM, accessPoint.WalkDistanceM, required)
	if !window.Feasible {
		outcome.diagnostics = append(outcome.diagnostics, dropDiagnostic(trail, accessPoint.StopRef, htdf.DropReasonInfeasibleWindow,
			"window of "+window.Available.String()+" is under the required "+required.String()))
		return nil
	}

	var hikedKm float64
	var hikingDuration time.Duration
	if trail.IsLoop {
		hikedKm = trail.DistanceKm
		hikingDuration = required
	} else {
		hikedKm, hikingDuration = p.Options.outAndBack(window, trail)
	}

	if hikingDuration < query.MinHikingDuration {
		outcome.diagnostics = append(outcome.diagnostics, dropDiagnostic(trail, accessPoint.StopRef, htdf.DropReasonHikeTooShort,
			"only "+hikingDuration.String()+" of hiking fits the window"))
		return nil
	}

	return &htdf.Candidate{
		TrailRef:  trail.PrimaryIdentifier,
		TrailName: trail.Name,

		Entry: accessPoint,

		IsLoop: trail.IsLoop,

		Outbound: *outbound,
		Return:   *returning,

		Window: window,

		HikedDistanceKm: hikedKm,
		HikingDuration:  hikingDuration,

		TotalDuration: returning.ArrivalTime().Sub(outbound.DepartureTime()),
		TotalWalkM:    2 * accessPoint.WalkDistanceM,

		Colours:    trail.Colours,
		Difficulty: trail.Difficulty,

		Warnings: seasonWarnings(trail, query.Date),
	}
}

// planThroughHikes builds linear hikes entering at one access point and
// leaving at another.
func (p *Planner) planThroughHikes(ctx context.Context, search *transit.Search, trail *htdf.Trail, query *htdf.PlanQuery, deadline htdf.ClockTime, outcome *trailOutcome) {
	pairs, err := p.Options.throughHikePairs(trail)
	if err != nil {
		outcome.diagnostics = append(outcome.diagnostics, dropDiagnostic(trail, "", htdf.DropReasonUnorderedAccess, err.Error()))
		return
	}

	for _, pair := range pairs {
		outbound, returning, ok := p.searchBothWays(ctx, search, trail, pair.entry, pair.exit, query, deadline, outcome)
		if !ok {
			if outcome.err != nil {
				return
			}
			continue
		}

		required := p.Options.HikeEstimate(pair.segmentKm, pair.climbM)

		window := p.Options.Window(outbound.ArrivalTime(), returning.DepartureTime(), pair.entry.WalkDistanceM, pair.exit.WalkDistanceM, required)
		if !window.Feasible {
			outcome.diagnostics = append(outcome.diagnostics, dropDiagnostic(trail, pair.entry.StopRef, htdf.DropReasonInfeasibleWindow,
				"window of "+window.Available.String()+" is under the required "+required.String()))
			continue
		}

		if required < query.MinHikingDuration {
			outcome.diagnostics = append(outcome.diagnostics, dropDiagnostic(trail, pair.entry.StopRef, htdf.DropReasonHikeTooShort,
				"segment takes only "+required.String()))
			continue
		}

		exit := pair.exit

		outcome.candidates = append(outcome.candidates, htdf.Candidate{
			TrailRef:  trail.PrimaryIdentifier,
			TrailName: trail.Name,

			Entry: pair.entry,
			Exit:  &exit,

			ThroughHike: true,
			IsLoop:      trail.IsLoop,

			Outbound: *outbound,
			Return:   *returning,

			Window: window,

			HikedDistanceKm: pair.segmentKm,
			HikingDuration:  required,

			TotalDuration: returning.ArrivalTime().Sub(outbound.DepartureTime()),
			TotalWalkM:    pair.entry.WalkDistanceM + pair.exit.WalkDistanceM,

			Colours:    trail.Colours,
			Difficulty: trail.Difficulty,

			Warnings: seasonWarnings(trail, query.Date),
		})
	}
}

// searchBothWays runs the outbound and return transit searches for an
// entry/exit stop pair, recording diagnostics when either side has no
// itinerary.
func (p *Planner) searchBothWays(ctx context.Context, search *transit.Search, trail *htdf.Trail, entry htdf.AccessPoint, exit htdf.AccessPoint, query *htdf.PlanQuery, deadline htdf.ClockTime, outcome *trailOutcome) (*htdf.Itinerary, *htdf.Itinerary, bool) {
	outbound, err := search.Forward(ctx, query.OriginStops, []string{entry.StopRef}, query.EarliestDeparture, query.Date)
	if err != nil {
		p.recordSearchError(trail, entry.StopRef, err, outcome)
		return nil, nil, false
	}
	if outbound == nil {
		outcome.diagnostics = append(outcome.diagnostics, dropDiagnostic(trail, entry.StopRef, htdf.DropReasonNoOutboundItinerary,
			fmt.Sprintf("no itinerary reaches the trail within %d transfers", query.MaxTransfers)))
		return nil, nil, false
	}

	returning, err := search.Backward(ctx, []string{exit.StopRef}, query.OriginStops, deadline, query.Date)
	if err != nil {
		p.recordSearchError(trail, exit.StopRef, err, outcome)
		return nil, nil, false
	}
	if returning == nil {
		outcome.diagnostics = append(outcome.diagnostics, dropDiagnostic(trail, exit.StopRef, htdf.DropReasonNoReturnItinerary,
			"no itinerary returns before "+deadline.String()))
		return nil, nil, false
	}

	return outbound, returning, true
}

func (p *Planner) recordSearchError(trail *htdf.Trail, stopRef string, err error, outcome *trailOutcome) {
	var unknownStop transit.UnknownStopError
	if errors.As(err, &unknownStop) {
		outcome.diagnostics = append(outcome.diagnostics, dropDiagnostic(trail, unknownStop.StopRef, htdf.DropReasonUnknownStop, err.Error()))
		return
	}

	outcome.err = err
}

// finishCandidates attaches warnings and scores once all trails are in.
func (p *Planner) finishCandidates(results *htdf.PlanResults, search *transit.Search, query *htdf.PlanQuery) {
	for index := range results.Candidates {
		candidate := &results.Candidates[index]

		if results.Deadline.Estimated {
			candidate.Warnings = append(candidate.Warnings, htdf.WarningEstimatedDeadline)
		}

		if candidate.Window.Margin < p.Options.TightMarginThreshold {
			candidate.Warnings = append(candidate.Warnings, htdf.WarningTightMargin)
		}

		returnStop := candidate.Return.Legs[0].OriginStopRef
		if search.IsLastDeparture(returnStop, htdf.ClockTimeOf(candidate.Return.DepartureTime())) {
			candidate.Warnings = append(candidate.Warnings, htdf.WarningLastBus)
		}

		p.Options.score(candidate)
	}
}

// seasonWarnings surfaces a trail's season notes during the rainy months,
// when wadis flood and they become relevant.
func seasonWarnings(trail *htdf.Trail, date time.Time) []string {
	switch date.Month() {
	case time.November, time.December, time.January, time.February, time.March:
		return append([]string{}, trail.SeasonWarnings...)
	default:
		return nil
	}
}

func dropDiagnostic(trail *htdf.Trail, stopRef string, reason htdf.DropReason, detail string) htdf.Diagnostic {
	return htdf.Diagnostic{
		TrailRef:  trail.PrimaryIdentifier,
		TrailName: trail.Name,
		StopRef:   stopRef,
		Reason:    reason,
		Detail:    detail,
	}
}
