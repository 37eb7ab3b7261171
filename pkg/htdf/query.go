package htdf

import "time"

type SortPreference string

const (
	SortByHikingRatio SortPreference = "hiking_ratio"
	SortByDeparture   SortPreference = "departure"
)

// PlanQuery carries everything the planning engine needs for one run. Origin
// resolution (city name to stop identifiers) happens before the engine is
// invoked.
type PlanQuery struct {
	OriginStops []string
	Date        time.Time
	Region      string

	MaxTransfers      int
	SafetyMargin      time.Duration
	EarliestDeparture ClockTime

	MinHikingDuration time.Duration
	MaxWalkToTrailM   float64
	MaxResults        int

	// Trail filters, applied before any transit search runs.
	Colours           []string
	MinDistanceKm     float64
	MaxDistanceKm     float64
	LoopOnly          bool
	LinearOnly        bool
	MaxElevationGainM float64
	Difficulty        string
	Area              string

	// FilterExpression is an optional expr-lang predicate over a Trail,
	// e.g. `distance_km <= 12 && difficulty == "easy"`.
	FilterExpression string

	// Preference weights used as ranking tie-breakers.
	PreferredColours    []string
	PreferredDifficulty string

	IncludeSingleAccess bool
	IncludeThroughHikes bool

	SortBy SortPreference
}

const (
	DefaultMaxTransfers      = 2
	DefaultSafetyMargin      = 2 * time.Hour
	DefaultMinHikingDuration = 1 * time.Hour
	DefaultMaxWalkToTrailM   = 1000
	DefaultMaxResults        = 20
)

var DefaultEarliestDeparture = NewClockTime(6, 0)

// ApplyDefaults fills the zero-valued knobs a caller left unset.
func (q *PlanQuery) ApplyDefaults() {
	if q.MaxTransfers == 0 {
		q.MaxTransfers = DefaultMaxTransfers
	}
	if q.SafetyMargin == 0 {
		q.SafetyMargin = DefaultSafetyMargin
	}
	if q.EarliestDeparture == 0 {
		q.EarliestDeparture = DefaultEarliestDeparture
	}
	if q.MinHikingDuration == 0 {
		q.MinHikingDuration = DefaultMinHikingDuration
	}
	if q.MaxWalkToTrailM == 0 {
		q.MaxWalkToTrailM = DefaultMaxWalkToTrailM
	}
	if q.MaxResults == 0 {
		q.MaxResults = DefaultMaxResults
	}
	if !q.IncludeSingleAccess && !q.IncludeThroughHikes {
		q.IncludeSingleAccess = true
		q.IncludeThroughHikes = true
	}
	if q.SortBy == "" {
		q.SortBy = SortByHikingRatio
	}
}

type PlanResults struct {
	Candidates []Candidate `groups:"basic"`

	Deadline Deadline `groups:"basic"`

	Diagnostics []Diagnostic `groups:"basic"`
}
