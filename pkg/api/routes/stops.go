package routes

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shvilbus/shvilbus/pkg/database"
	"github.com/shvilbus/shvilbus/pkg/htdf"
	"github.com/shvilbus/shvilbus/pkg/planner"
	"github.com/shvilbus/shvilbus/pkg/scheduleindex"
	"go.mongodb.org/mongo-driver/bson"
)

func StopsRouter(router fiber.Router, schedules planner.ScheduleProvider) {
	router.Get("/:identifier", getStop)
	router.Get("/:identifier/departures", func(c *fiber.Ctx) error {
		return getStopDepartures(c, schedules)
	})
	router.Get("/:identifier/arrivals", func(c *fiber.Ctx) error {
		return getStopArrivals(c, schedules)
	})
}

func getStop(c *fiber.Ctx) error {
	identifier := c.Params("identifier")

	stopsCollection := database.GetCollection("stops")
	var stop *htdf.Stop
	stopsCollection.FindOne(context.Background(), bson.M{"primaryidentifier": identifier}).Decode(&stop)

	if stop == nil {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find Stop matching Stop Identifier",
		})
	}

	return c.JSON(stop)
}

type stopCallResponse struct {
	TripRef  string `json:"trip_ref"`
	Line     string `json:"line"`
	Operator string `json:"operator"`
	Time     string `json:"time"`
}

// loadScheduleIndex hydrates the schedule index for the route's date
// parameter, defaulting to today.
func loadScheduleIndex(c *fiber.Ctx, schedules planner.ScheduleProvider) (scheduleindex.Index, bool) {
	date := time.Now()
	if dateString := c.Query("date"); dateString != "" {
		var err error
		date, err = time.Parse("2006-01-02", dateString)
		if err != nil {
			c.SendStatus(fiber.StatusBadRequest)
			c.JSON(fiber.Map{
				"error": "Parameter date should be a YYYY-MM-DD date",
			})
			return nil, false
		}
	}

	index, err := schedules.Load(c.Context(), date)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		c.JSON(fiber.Map{
			"error": err.Error(),
		})
		return nil, false
	}

	return index, true
}

func parseClockQuery(c *fiber.Ctx, name string, fallback htdf.ClockTime) (htdf.ClockTime, bool) {
	value := c.Query(name)
	if value == "" {
		return fallback, true
	}

	parsed, err := htdf.ParseClockTime(value)
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		c.JSON(fiber.Map{
			"error": "Parameter " + name + " should be a HH:MM clock time",
		})
		return 0, false
	}

	return parsed, true
}

func getStopDepartures(c *fiber.Ctx, schedules planner.ScheduleProvider) error {
	identifier := c.Params("identifier")

	index, ok := loadScheduleIndex(c, schedules)
	if !ok {
		return nil
	}

	after, ok := parseClockQuery(c, "after", 0)
	if !ok {
		return nil
	}

	if !index.IsKnownStop(identifier) {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find Stop matching Stop Identifier",
		})
	}

	count, err := strconv.Atoi(c.Query("count", "25"))
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter count should be an integer",
		})
	}

	departures := index.DeparturesFrom(identifier, after)
	if len(departures) > count {
		departures = departures[:count]
	}

	response := []stopCallResponse{}
	for _, departure := range departures {
		info := index.TripInfo(departure.TripRef)

		response = append(response, stopCallResponse{
			TripRef:  departure.TripRef,
			Line:     info.Line,
			Operator: info.Operator,
			Time:     departure.Departure.String(),
		})
	}

	return c.JSON(response)
}

func getStopArrivals(c *fiber.Ctx, schedules planner.ScheduleProvider) error {
	identifier := c.Params("identifier")

	index, ok := loadScheduleIndex(c, schedules)
	if !ok {
		return nil
	}

	before, ok := parseClockQuery(c, "before", htdf.ClockTime(htdf.SecondsPerDay-1))
	if !ok {
		return nil
	}

	if !index.IsKnownStop(identifier) {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find Stop matching Stop Identifier",
		})
	}

	count, err := strconv.Atoi(c.Query("count", "25"))
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter count should be an integer",
		})
	}

	arrivals := index.ArrivalsAt(identifier, before)

	// Latest arrivals are the interesting end of the list
	if len(arrivals) > count {
		arrivals = arrivals[len(arrivals)-count:]
	}

	response := []stopCallResponse{}
	for _, arrival := range arrivals {
		info := index.TripInfo(arrival.TripRef)

		response = append(response, stopCallResponse{
			TripRef:  arrival.TripRef,
			Line:     info.Line,
			Operator: info.Operator,
			Time:     arrival.Arrival.String(),
		})
	}

	return c.JSON(response)
}
