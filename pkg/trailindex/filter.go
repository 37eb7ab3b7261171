package trailindex

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/shvilbus/shvilbus/pkg/htdf"
	"github.com/shvilbus/shvilbus/pkg/util"
	"golang.org/x/exp/slices"
)

// trailEnv is the environment exposed to filter expressions.
type trailEnv struct {
	Name          string   `expr:"name"`
	DistanceKm    float64  `expr:"distance_km"`
	ElevationGain float64  `expr:"elevation_gain_m"`
	ElevationLoss float64  `expr:"elevation_loss_m"`
	MaxElevation  float64  `expr:"max_elevation_m"`
	MinElevation  float64  `expr:"min_elevation_m"`
	Difficulty    string   `expr:"difficulty"`
	Colours       []string `expr:"colours"`
	Area          string   `expr:"area"`
	IsLoop        bool     `expr:"is_loop"`
	AccessPoints  int      `expr:"access_points"`
}

func environmentForTrail(trail *htdf.Trail) trailEnv {
	return trailEnv{
		Name:          trail.Name,
		DistanceKm:    trail.DistanceKm,
		ElevationGain: trail.ElevationGainM,
		ElevationLoss: trail.ElevationLossM,
		MaxElevation:  trail.MaxElevationM,
		MinElevation:  trail.MinElevationM,
		Difficulty:    trail.Difficulty,
		Colours:       trail.Colours,
		Area:          trail.Area,
		IsLoop:        trail.IsLoop,
		AccessPoints:  len(trail.AccessPoints),
	}
}

// CompileFilterExpression checks a user supplied filter expression before any
// trails are evaluated against it.
func CompileFilterExpression(expression string) (*vm.Program, error) {
	program, err := expr.Compile(expression, expr.Env(trailEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}

	return program, nil
}

// ApplyFilters reduces the trail set to those matching the query criteria.
// Access points further than the query walk distance limit are stripped from
// the surviving trails, and trails left without any access point are dropped.
func ApplyFilters(trails []htdf.Trail, query *htdf.PlanQuery) ([]htdf.Trail, error) {
	var program *vm.Program
	if query.FilterExpression != "" {
		var err error
		program, err = CompileFilterExpression(query.FilterExpression)
		if err != nil {
			return nil, err
		}
	}

	util.InPlaceFilter(&trails, func(trail htdf.Trail) bool {
		return matchesQuery(&trail, query, program)
	})

	result := make([]htdf.Trail, 0, len(trails))
	for _, trail := range trails {
		accessPoints := make([]htdf.AccessPoint, 0, len(trail.AccessPoints))
		for _, accessPoint := range trail.AccessPoints {
			if query.MaxWalkToTrailM > 0 && accessPoint.WalkDistanceM > query.MaxWalkToTrailM {
				continue
			}
			accessPoints = append(accessPoints, accessPoint)
		}

		if len(accessPoints) == 0 {
			continue
		}

		trail.AccessPoints = accessPoints
		result = append(result, trail)
	}

	return result, nil
}

func matchesQuery(trail *htdf.Trail, query *htdf.PlanQuery, program *vm.Program) bool {
	if query.MinDistanceKm > 0 && trail.DistanceKm < query.MinDistanceKm {
		return false
	}
	if query.MaxDistanceKm > 0 && trail.DistanceKm > query.MaxDistanceKm {
		return false
	}
	if query.LoopOnly && !trail.IsLoop {
		return false
	}
	if query.LinearOnly && trail.IsLoop {
		return false
	}
	if query.MaxElevationGainM > 0 && trail.ElevationGainM > query.MaxElevationGainM {
		return false
	}
	if query.Difficulty != "" && !strings.EqualFold(trail.Difficulty, query.Difficulty) {
		return false
	}
	if query.Area != "" && !strings.EqualFold(trail.Area, query.Area) {
		return false
	}

	if len(query.Colours) > 0 {
		matched := false
		for _, colour := range query.Colours {
			if slices.Contains(trail.Colours, colour) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if program != nil {
		output, err := expr.Run(program, environmentForTrail(trail))
		if err != nil {
			return false
		}
		if keep, ok := output.(bool); !ok || !keep {
			return false
		}
	}

	return true
}
