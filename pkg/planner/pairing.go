package planner

import (
	"github.com/shvilbus/shvilbus/pkg/htdf"
)

// throughHikePair is an ordered (entry, exit) access point combination whose
// along-trail segment falls inside the through-hike distance band.
type throughHikePair struct {
	entry htdf.AccessPoint
	exit  htdf.AccessPoint

	segmentKm float64
	climbM    float64
}

// throughHikePairs enumerates viable entry/exit pairs for a trail. Access
// points must already be ordered by trail offset, and the hiker is only ever
// routed forward along the trail: entry offset strictly below exit offset.
func (o *Options) throughHikePairs(trail *htdf.Trail) ([]throughHikePair, error) {
	// A loop is hiked as a full circuit from one gate, never gate to gate.
	if trail.IsLoop {
		return nil, nil
	}

	accessPoints, err := trail.OrderedAccessPoints()
	if err != nil {
		return nil, err
	}

	var pairs []throughHikePair
	for i := 0; i < len(accessPoints); i++ {
		for j := i + 1; j < len(accessPoints); j++ {
			segmentKm := accessPoints[j].TrailOffsetKm - accessPoints[i].TrailOffsetKm
			if segmentKm < o.ThroughHikeMinKm || segmentKm > o.ThroughHikeMaxKm {
				continue
			}

			pairs = append(pairs, throughHikePair{
				entry:     accessPoints[i],
				exit:      accessPoints[j],
				segmentKm: segmentKm,
				climbM:    o.segmentClimb(trail, segmentKm),
			})
		}
	}

	return pairs, nil
}

// segmentClimb pro-rates the trail's total ascent over a segment. Trails in
// the index carry aggregate elevation only, not per-point profiles.
func (o *Options) segmentClimb(trail *htdf.Trail, segmentKm float64) float64 {
	if trail.DistanceKm <= 0 {
		return 0
	}

	return trail.ElevationGainM * segmentKm / trail.DistanceKm
}
