package scheduleindex

import (
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/shvilbus/shvilbus/pkg/htdf"
)

// MemoryIndex answers point queries over one service day's records entirely
// in memory. It is immutable after construction and safe for concurrent
// readers.
type MemoryIndex struct {
	stopNames map[string]string

	stopDepartures map[string][]StopDeparture
	stopArrivals   map[string][]StopArrival

	tripCalls map[string][]TripCall
	tripInfo  map[string]TripInfo
}

func NewMemoryIndex(stops []htdf.Stop, records []Record) *MemoryIndex {
	index := &MemoryIndex{
		stopNames:      map[string]string{},
		stopDepartures: map[string][]StopDeparture{},
		stopArrivals:   map[string][]StopArrival{},
		tripCalls:      map[string][]TripCall{},
		tripInfo:       map[string]TripInfo{},
	}

	for _, stop := range stops {
		index.stopNames[stop.PrimaryIdentifier] = stop.PrimaryName
	}

	for _, record := range records {
		index.stopDepartures[record.StopRef] = append(index.stopDepartures[record.StopRef], StopDeparture{
			TripRef:   record.TripRef,
			Departure: record.Departure,
			Sequence:  record.Sequence,
		})
		index.stopArrivals[record.StopRef] = append(index.stopArrivals[record.StopRef], StopArrival{
			TripRef:  record.TripRef,
			Arrival:  record.Arrival,
			Sequence: record.Sequence,
		})
		index.tripCalls[record.TripRef] = append(index.tripCalls[record.TripRef], TripCall{
			StopRef:   record.StopRef,
			Arrival:   record.Arrival,
			Departure: record.Departure,
			Sequence:  record.Sequence,
		})

		if _, exists := index.tripInfo[record.TripRef]; !exists {
			index.tripInfo[record.TripRef] = TripInfo{
				Line:     record.Line,
				Operator: record.Operator,
			}
		}

		// Stops only present in the schedule still need a display name
		if _, exists := index.stopNames[record.StopRef]; !exists {
			index.stopNames[record.StopRef] = record.StopRef
		}
	}

	for stopRef := range index.stopDepartures {
		departures := index.stopDepartures[stopRef]
		sort.Slice(departures, func(i, j int) bool {
			return departures[i].Departure < departures[j].Departure
		})
	}
	for stopRef := range index.stopArrivals {
		arrivals := index.stopArrivals[stopRef]
		sort.Slice(arrivals, func(i, j int) bool {
			return arrivals[i].Arrival < arrivals[j].Arrival
		})
	}
	for tripRef := range index.tripCalls {
		calls := index.tripCalls[tripRef]
		sort.Slice(calls, func(i, j int) bool {
			return calls[i].Sequence < calls[j].Sequence
		})
	}

	log.Debug().
		Int("stops", len(index.stopNames)).
		Int("trips", len(index.tripCalls)).
		Msg("Built in-memory schedule index")

	return index
}

func (m *MemoryIndex) DeparturesFrom(stopRef string, after htdf.ClockTime) []StopDeparture {
	departures := m.stopDepartures[stopRef]

	first := sort.Search(len(departures), func(i int) bool {
		return departures[i].Departure >= after
	})

	return departures[first:]
}

func (m *MemoryIndex) ArrivalsAt(stopRef string, before htdf.ClockTime) []StopArrival {
	arrivals := m.stopArrivals[stopRef]

	end := sort.Search(len(arrivals), func(i int) bool {
		return arrivals[i].Arrival > before
	})

	return arrivals[:end]
}

func (m *MemoryIndex) TripCalls(tripRef string) []TripCall {
	return m.tripCalls[tripRef]
}

func (m *MemoryIndex) TripInfo(tripRef string) TripInfo {
	return m.tripInfo[tripRef]
}

func (m *MemoryIndex) IsKnownStop(stopRef string) bool {
	if _, exists := m.stopDepartures[stopRef]; exists {
		return true
	}
	if _, exists := m.stopArrivals[stopRef]; exists {
		return true
	}
	_, exists := m.stopNames[stopRef]
	return exists
}

func (m *MemoryIndex) StopName(stopRef string) string {
	if name, exists := m.stopNames[stopRef]; exists {
		return name
	}
	return stopRef
}
