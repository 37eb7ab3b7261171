// Package transit finds the best itinerary between stops against a
// date-resolved schedule index. One search component serves both directions:
// forward mode returns the earliest-arriving itinerary departing at or after
// a time, backward mode the latest-departing itinerary arriving at or before
// a deadline.
package transit

import (
	"context"
	"fmt"
	"time"

	"github.com/shvilbus/shvilbus/pkg/htdf"
	"github.com/shvilbus/shvilbus/pkg/scheduleindex"
)

type UnknownStopError struct {
	StopRef string
}

func (e UnknownStopError) Error() string {
	return fmt.Sprintf("stop %s is not known to the schedule index", e.StopRef)
}

// Limits bound the expansion so a search never degenerates into an all-pairs
// traversal. The network is sparse and transfer depth small, so tight caps
// lose almost nothing.
type Limits struct {
	MaxIntermediateStops    int
	MaxConnectingDepartures int
	MaxLatestDepartures     int
}

func DefaultLimits() Limits {
	return Limits{
		MaxIntermediateStops:    30,
		MaxConnectingDepartures: 10,
		MaxLatestDepartures:     10,
	}
}

const DefaultMinConnection = 1 * time.Minute

type Search struct {
	Index scheduleindex.Index

	MaxTransfers  int
	MinConnection time.Duration

	Limits Limits
}

func NewSearch(index scheduleindex.Index, maxTransfers int) *Search {
	return &Search{
		Index:         index,
		MaxTransfers:  maxTransfers,
		MinConnection: DefaultMinConnection,
		Limits:        DefaultLimits(),
	}
}

// rawLeg is an itinerary leg before stop names, line metadata and calendar
// dates are attached.
type rawLeg struct {
	tripRef string

	fromStopRef string
	departure   htdf.ClockTime

	toStopRef string
	arrival   htdf.ClockTime
}

func (s *Search) minConnection() htdf.ClockTime {
	return htdf.ClockTime(s.MinConnection / time.Second)
}

func (s *Search) checkKnown(stopRefs []string) error {
	for _, stopRef := range stopRefs {
		if !s.Index.IsKnownStop(stopRef) {
			return UnknownStopError{StopRef: stopRef}
		}
	}
	return nil
}

// Forward finds the earliest itinerary departing any origin stop at or after
// earliest and arriving at any destination stop. Fewer transfers beats a
// shorter duration: each expansion round runs to completion before the next
// transfer depth is tried, so a direct itinerary is always preferred over a
// faster multi-leg one. Returns (nil, nil) when no itinerary exists within
// the constraints.
func (s *Search) Forward(ctx context.Context, originStops []string, destinationStops []string, earliest htdf.ClockTime, date time.Time) (*htdf.Itinerary, error) {
	if err := s.checkKnown(originStops); err != nil {
		return nil, err
	}
	if err := s.checkKnown(destinationStops); err != nil {
		return nil, err
	}

	destinations := map[string]bool{}
	for _, stopRef := range destinationStops {
		destinations[stopRef] = true
	}

	for transfers := 0; transfers <= s.MaxTransfers; transfers++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		best := forwardBest{}
		for _, originStop := range originStops {
			s.forwardExplore(originStop, earliest, transfers, destinations, 0, "", nil, &best)
		}

		if best.found {
			return s.materialize(best.legs, date), nil
		}
	}

	return nil, nil
}

type forwardBest struct {
	found   bool
	arrival htdf.ClockTime
	legs    []rawLeg
}

func (s *Search) forwardExplore(stopRef string, ready htdf.ClockTime, transfersLeft int, destinations map[string]bool, boardLimit int, lastTrip string, prefix []rawLeg, best *forwardBest) {
	boardingsChecked := 0

	for _, boarding := range s.Index.DeparturesFrom(stopRef, ready) {
		// Boarding later than the best known arrival can never improve
		if best.found && boarding.Departure >= best.arrival {
			break
		}

		// Don't reboard the trip just alighted from
		if boarding.TripRef == lastTrip {
			continue
		}

		if boardLimit > 0 {
			boardingsChecked++
			if boardingsChecked > boardLimit {
				break
			}
		}

		calls := s.Index.TripCalls(boarding.TripRef)
		intermediatesChecked := 0

		for _, call := range calls {
			if call.Sequence <= boarding.Sequence {
				continue
			}
			if best.found && call.Arrival >= best.arrival {
				break
			}

			leg := rawLeg{
				tripRef:     boarding.TripRef,
				fromStopRef: stopRef,
				departure:   boarding.Departure,
				toStopRef:   call.StopRef,
				arrival:     call.Arrival,
			}

			if destinations[call.StopRef] {
				if !best.found || call.Arrival < best.arrival {
					best.found = true
					best.arrival = call.Arrival
					best.legs = appendLeg(prefix, leg)
				}
				// The first destination hit on a trip is its earliest
				break
			}

			intermediatesChecked++
			if intermediatesChecked > s.Limits.MaxIntermediateStops {
				break
			}

			if transfersLeft > 0 {
				s.forwardExplore(
					call.StopRef,
					call.Arrival+s.minConnection(),
					transfersLeft-1,
					destinations,
					s.Limits.MaxConnectingDepartures,
					boarding.TripRef,
					appendLeg(prefix, leg),
					best,
				)
			}
		}
	}
}

// Backward finds the itinerary with the latest departure from any of the
// trail stops whose final arrival at an origin stop is at or before the
// deadline. As with Forward, transfer depth is tried in increasing order.
// Returns (nil, nil) when no itinerary exists within the constraints.
func (s *Search) Backward(ctx context.Context, trailStops []string, originStops []string, deadline htdf.ClockTime, date time.Time) (*htdf.Itinerary, error) {
	if err := s.checkKnown(trailStops); err != nil {
		return nil, err
	}
	if err := s.checkKnown(originStops); err != nil {
		return nil, err
	}

	origins := map[string]bool{}
	for _, stopRef := range originStops {
		origins[stopRef] = true
	}

	for transfers := 0; transfers <= s.MaxTransfers; transfers++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		best := backwardBest{departure: -1}
		for _, trailStop := range trailStops {
			s.backwardExplore(trailStop, origins, deadline, transfers, &best)
		}

		if best.found {
			return s.materialize(best.legs, date), nil
		}
	}

	return nil, nil
}

type backwardBest struct {
	found     bool
	departure htdf.ClockTime
	legs      []rawLeg
}

func (s *Search) backwardExplore(trailStop string, origins map[string]bool, deadline htdf.ClockTime, transfersLeft int, best *backwardBest) {
	departures := s.Index.DeparturesFrom(trailStop, 0)

	checked := 0
	for index := len(departures) - 1; index >= 0; index-- {
		boarding := departures[index]

		// Departing after the deadline can never arrive before it
		if boarding.Departure > deadline {
			continue
		}

		if best.found && boarding.Departure <= best.departure {
			break
		}

		checked++
		if checked > s.Limits.MaxLatestDepartures {
			break
		}

		legs, reached := s.backwardReach(boarding, trailStop, origins, deadline, transfersLeft)
		if reached && (!best.found || boarding.Departure > best.departure) {
			best.found = true
			best.departure = boarding.Departure
			best.legs = legs
		}
	}
}

// backwardReach checks whether a boarded trip makes it to an origin stop
// before the deadline, transferring up to transfersLeft more times.
func (s *Search) backwardReach(boarding scheduleindex.StopDeparture, fromStop string, origins map[string]bool, deadline htdf.ClockTime, transfersLeft int) ([]rawLeg, bool) {
	calls := s.Index.TripCalls(boarding.TripRef)

	intermediatesChecked := 0
	for _, call := range calls {
		if call.Sequence <= boarding.Sequence {
			continue
		}
		if call.Arrival > deadline {
			break
		}

		leg := rawLeg{
			tripRef:     boarding.TripRef,
			fromStopRef: fromStop,
			departure:   boarding.Departure,
			toStopRef:   call.StopRef,
			arrival:     call.Arrival,
		}

		if origins[call.StopRef] {
			return []rawLeg{leg}, true
		}

		intermediatesChecked++
		if intermediatesChecked > s.Limits.MaxIntermediateStops {
			break
		}

		if transfersLeft == 0 {
			continue
		}

		connectionsChecked := 0
		for _, connection := range s.Index.DeparturesFrom(call.StopRef, call.Arrival+s.minConnection()) {
			if connection.Departure > deadline {
				break
			}
			if connection.TripRef == boarding.TripRef {
				continue
			}

			connectionsChecked++
			if connectionsChecked > s.Limits.MaxConnectingDepartures {
				break
			}

			rest, reached := s.backwardReach(connection, call.StopRef, origins, deadline, transfersLeft-1)
			if reached {
				return append([]rawLeg{leg}, rest...), true
			}
		}
	}

	return nil, false
}

// IsLastDeparture reports whether no further departure leaves the stop after
// the given time, used to surface a "last bus of the day" warning.
func (s *Search) IsLastDeparture(stopRef string, at htdf.ClockTime) bool {
	return len(s.Index.DeparturesFrom(stopRef, at+1)) == 0
}

func (s *Search) materialize(legs []rawLeg, date time.Time) *htdf.Itinerary {
	itinerary := &htdf.Itinerary{}

	for _, leg := range legs {
		info := s.Index.TripInfo(leg.tripRef)

		itinerary.Legs = append(itinerary.Legs, htdf.Leg{
			Line:     info.Line,
			Operator: info.Operator,

			OriginStopRef:  leg.fromStopRef,
			OriginStopName: s.Index.StopName(leg.fromStopRef),

			DestinationStopRef:  leg.toStopRef,
			DestinationStopName: s.Index.StopName(leg.toStopRef),

			DepartureTime: leg.departure.On(date),
			ArrivalTime:   leg.arrival.On(date),
		})
	}

	return itinerary
}

func appendLeg(prefix []rawLeg, leg rawLeg) []rawLeg {
	legs := make([]rawLeg, len(prefix)+1)
	copy(legs, prefix)
	legs[len(prefix)] = leg

	return legs
}
