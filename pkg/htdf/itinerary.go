package htdf

import (
	"fmt"
	"time"
)

type Leg struct {
	Line     string `groups:"basic"`
	Operator string `groups:"basic"`

	OriginStopRef  string `groups:"basic"`
	OriginStopName string `groups:"basic"`

	DestinationStopRef  string `groups:"basic"`
	DestinationStopName string `groups:"basic"`

	DepartureTime time.Time `groups:"basic"`
	ArrivalTime   time.Time `groups:"basic"`
}

// Itinerary is an ordered sequence of boarded legs. It is a value: once
// produced by a search it is never edited, only kept or discarded.
type Itinerary struct {
	Legs []Leg `groups:"basic"`
}

func (i *Itinerary) Transfers() int {
	return len(i.Legs) - 1
}

func (i *Itinerary) DepartureTime() time.Time {
	return i.Legs[0].DepartureTime
}

func (i *Itinerary) ArrivalTime() time.Time {
	return i.Legs[len(i.Legs)-1].ArrivalTime
}

func (i *Itinerary) Duration() time.Duration {
	return i.ArrivalTime().Sub(i.DepartureTime())
}

// Validate checks the structural invariants: legs time ordered, consecutive
// legs joined at the same stop, and every connection leaving at least
// minConnection between alighting and reboarding.
func (i *Itinerary) Validate(minConnection time.Duration) error {
	if len(i.Legs) == 0 {
		return fmt.Errorf("itinerary has no legs")
	}

	for index, leg := range i.Legs {
		if leg.ArrivalTime.Before(leg.DepartureTime) {
			return fmt.Errorf("leg %d arrives before it departs", index)
		}

		if index == 0 {
			continue
		}

		previous := i.Legs[index-1]
		if previous.DestinationStopRef != leg.OriginStopRef {
			return fmt.Errorf("leg %d departs %s but previous leg arrives %s", index, leg.OriginStopRef, previous.DestinationStopRef)
		}

		if leg.DepartureTime.Sub(previous.ArrivalTime) < minConnection {
			return fmt.Errorf("leg %d connection shorter than %s", index, minConnection)
		}
	}

	return nil
}
