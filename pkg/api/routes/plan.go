package routes

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/shvilbus/shvilbus/pkg/calendar"
	"github.com/shvilbus/shvilbus/pkg/htdf"
	"github.com/shvilbus/shvilbus/pkg/planner"

	iso8601 "github.com/senseyeio/duration"
)

func PlanRouter(router fiber.Router, hikePlanner *planner.Planner) {
	router.Get("/", func(c *fiber.Ctx) error {
		return getPlan(c, hikePlanner)
	})
}

func getPlan(c *fiber.Ctx, hikePlanner *planner.Planner) error {
	originQuery := c.Query("origin")
	if originQuery == "" {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter origin must list at least one stop identifier",
		})
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter date should be a YYYY-MM-DD date",
		})
	}

	region := c.Query("region")
	if region == "" {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter region is required",
		})
	}

	query := &htdf.PlanQuery{
		OriginStops: strings.Split(originQuery, ","),
		Date:        date,
		Region:      region,

		FilterExpression:    c.Query("filter"),
		Difficulty:          c.Query("difficulty"),
		Area:                c.Query("area"),
		PreferredDifficulty: c.Query("preferred_difficulty"),

		SortBy: htdf.SortPreference(c.Query("sort")),
	}

	if colours := c.Query("colours"); colours != "" {
		query.Colours = strings.Split(colours, ",")
	}
	if colours := c.Query("preferred_colours"); colours != "" {
		query.PreferredColours = strings.Split(colours, ",")
	}

	// Durations on the wire are ISO8601, e.g. PT2H30M for the safety margin
	if marginString := c.Query("safety_margin"); marginString != "" {
		margin, err := iso8601.ParseISO8601(marginString)
		if err != nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Parameter safety_margin should be an ISO8601 duration",
			})
		}

		query.SafetyMargin = margin.Shift(date).Sub(date)
	}

	if earliest := c.Query("earliest_departure"); earliest != "" {
		query.EarliestDeparture, err = htdf.ParseClockTime(earliest)
		if err != nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Parameter earliest_departure should be a HH:MM clock time",
			})
		}
	}

	intParameters := map[string]*int{
		"max_transfers": &query.MaxTransfers,
		"max_results":   &query.MaxResults,
	}
	for name, target := range intParameters {
		if value := c.Query(name); value != "" {
			*target, err = strconv.Atoi(value)
			if err != nil {
				c.SendStatus(fiber.StatusBadRequest)
				return c.JSON(fiber.Map{
					"error": "Parameter " + name + " should be an integer",
				})
			}
		}
	}

	floatParameters := map[string]*float64{
		"min_distance_km":      &query.MinDistanceKm,
		"max_distance_km":      &query.MaxDistanceKm,
		"max_elevation_gain_m": &query.MaxElevationGainM,
		"max_walk_m":           &query.MaxWalkToTrailM,
	}
	for name, target := range floatParameters {
		if value := c.Query(name); value != "" {
			*target, err = strconv.ParseFloat(value, 64)
			if err != nil {
				c.SendStatus(fiber.StatusBadRequest)
				return c.JSON(fiber.Map{
					"error": "Parameter " + name + " should be a number",
				})
			}
		}
	}

	query.LoopOnly = c.QueryBool("loop_only")
	query.LinearOnly = c.QueryBool("linear_only")

	results, err := hikePlanner.Plan(c.Context(), query)
	if err != nil {
		var configError calendar.ConfigError
		if errors.As(err, &configError) {
			c.SendStatus(fiber.StatusServiceUnavailable)
			return c.JSON(fiber.Map{
				"error": configError.Error(),
			})
		}

		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	resultsReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, results)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce plan results",
		})
	}

	return c.JSON(resultsReduced)
}
