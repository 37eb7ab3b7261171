// Package scheduleindex is the boundary to the precomputed, date-resolved
// schedule data the planning engine searches over. Which service runs on
// which calendar date is resolved before an Index is built; the engine only
// ever sees one service day at a time.
package scheduleindex

import (
	"github.com/shvilbus/shvilbus/pkg/htdf"
)

// Record is one scheduled call of a trip at a stop, the flat unit the
// importer writes and an Index is hydrated from.
type Record struct {
	TripRef  string `csv:"trip_ref" bson:"tripref"`
	Line     string `csv:"line" bson:"line"`
	Operator string `csv:"operator" bson:"operator"`

	StopRef string `csv:"stop_ref" bson:"stopref"`

	Arrival   htdf.ClockTime `csv:"arrival" bson:"arrival"`
	Departure htdf.ClockTime `csv:"departure" bson:"departure"`

	Sequence int `csv:"sequence" bson:"sequence"`
}

type StopDeparture struct {
	TripRef   string
	Departure htdf.ClockTime
	Sequence  int
}

type StopArrival struct {
	TripRef  string
	Arrival  htdf.ClockTime
	Sequence int
}

type TripCall struct {
	StopRef   string
	Arrival   htdf.ClockTime
	Departure htdf.ClockTime
	Sequence  int
}

type TripInfo struct {
	Line     string
	Operator string
}

type Index interface {
	// DeparturesFrom returns scheduled boardings at a stop at or after the
	// given time of day, ordered by departure time.
	DeparturesFrom(stopRef string, after htdf.ClockTime) []StopDeparture

	// ArrivalsAt returns scheduled arrivals at a stop at or before the given
	// time of day, ordered by arrival time.
	ArrivalsAt(stopRef string, before htdf.ClockTime) []StopArrival

	// TripCalls returns every call of a trip ordered by stop sequence.
	TripCalls(tripRef string) []TripCall

	TripInfo(tripRef string) TripInfo

	IsKnownStop(stopRef string) bool
	StopName(stopRef string) string
}
