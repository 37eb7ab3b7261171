package htdf

import "fmt"

type AccessPoint struct {
	StopRef  string `groups:"basic"`
	StopName string `groups:"basic"`

	WalkDistanceM float64 `groups:"basic"`

	TrailEntry Location `groups:"basic"`

	// TrailOffsetKm is the along-trail distance from the trail start to this
	// access point's entry coordinate. Pairing relies on this field being
	// populated and ordered by the upstream spatial join.
	TrailOffsetKm float64 `groups:"basic"`
}

type Trail struct {
	PrimaryIdentifier string `groups:"basic"`

	Name       string `groups:"basic"`
	DataSource string `groups:"internal"`

	DistanceKm     float64 `groups:"basic"`
	ElevationGainM float64 `groups:"basic"`
	ElevationLossM float64 `groups:"basic"`
	MaxElevationM  float64 `groups:"detailed"`
	MinElevationM  float64 `groups:"detailed"`

	Difficulty string   `groups:"basic"`
	Colours    []string `groups:"basic"`
	Area       string   `groups:"basic"`

	IsLoop bool `groups:"basic"`

	RecommendedSeasons []string `groups:"detailed"`
	SeasonWarnings     []string `groups:"basic"`

	AccessPoints []AccessPoint `groups:"basic"`
}

// OrderedAccessPoints returns the trail's access points, erroring when the
// upstream along-trail ordering invariant does not hold.
func (t *Trail) OrderedAccessPoints() ([]AccessPoint, error) {
	for index := 1; index < len(t.AccessPoints); index++ {
		if t.AccessPoints[index].TrailOffsetKm < t.AccessPoints[index-1].TrailOffsetKm {
			return nil, fmt.Errorf("trail %s access points not ordered by trail offset", t.PrimaryIdentifier)
		}
	}

	return t.AccessPoints, nil
}
