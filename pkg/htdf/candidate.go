package htdf

import "time"

const (
	WarningTightMargin       = "Tight hiking margin before the return bus"
	WarningLastBus           = "Return uses the last bus of the day"
	WarningEstimatedDeadline = "Deadline derived from an estimated candle-lighting time"
)

// Candidate is one fully described hike plan: a trail reached by an outbound
// itinerary, the hike itself, and a return itinerary arriving before the
// deadline. Candidates reference their Trail by identifier so many ranked
// candidates for the same trail never alias mutable state.
type Candidate struct {
	TrailRef  string `groups:"basic"`
	TrailName string `groups:"basic"`

	Entry AccessPoint  `groups:"basic"`
	Exit  *AccessPoint `groups:"basic"`

	ThroughHike bool `groups:"basic"`
	IsLoop      bool `groups:"basic"`

	Outbound Itinerary `groups:"basic"`
	Return   Itinerary `groups:"basic"`

	Window HikeWindow `groups:"basic"`

	HikedDistanceKm float64       `groups:"basic"`
	HikingDuration  time.Duration `groups:"basic"`

	TotalDuration time.Duration `groups:"basic"`
	TotalWalkM    float64       `groups:"basic"`

	// HikingRatio is the fraction of the whole trip spent hiking, the
	// primary ranking metric. Always within (0, 1) for a feasible candidate.
	HikingRatio float64 `groups:"basic"`
	Score       float64 `groups:"basic"`

	Colours    []string `groups:"basic"`
	Difficulty string   `groups:"basic"`

	Warnings []string `groups:"basic"`
}

func (c *Candidate) TotalTransfers() int {
	return c.Outbound.Transfers() + c.Return.Transfers()
}

func (c *Candidate) DepartureFromOrigin() time.Time {
	return c.Outbound.DepartureTime()
}

func (c *Candidate) ArrivalAtOrigin() time.Time {
	return c.Return.ArrivalTime()
}
