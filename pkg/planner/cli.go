package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/liip/sheriff"
	"github.com/rs/zerolog/log"
	"github.com/shvilbus/shvilbus/pkg/calendar"
	"github.com/shvilbus/shvilbus/pkg/database"
	"github.com/shvilbus/shvilbus/pkg/htdf"
	"github.com/shvilbus/shvilbus/pkg/redis_client"
	"github.com/shvilbus/shvilbus/pkg/scheduleindex"
	"github.com/shvilbus/shvilbus/pkg/trailindex"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "planner",
		Usage: "Plan bus-reachable hikes for a date",
		Subcommands: []*cli.Command{
			{
				Name:  "plan",
				Usage: "Run a one-shot planning query and print the results",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "origin",
						Usage:    "Origin stop identifier (repeatable)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "date",
						Usage:    "Hiking date (YYYY-MM-DD)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "region",
						Usage:    "Home region for the return deadline",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "max-transfers",
						Usage: "Maximum transfers per itinerary",
					},
					&cli.StringFlag{
						Name:  "safety-margin",
						Usage: "Margin before candle lighting on Fridays, e.g. 2h or 90m",
					},
					&cli.StringFlag{
						Name:  "sort",
						Usage: "Result ordering: hiking_ratio or departure",
					},
					&cli.IntFlag{
						Name:  "max-results",
						Usage: "Maximum candidates to print",
					},
					&cli.StringSliceFlag{
						Name:  "colour",
						Usage: "Only trails marked with this colour (repeatable)",
					},
					&cli.StringFlag{
						Name:  "filter",
						Usage: "Trail filter expression, e.g. 'distance_km <= 12 && is_loop'",
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}
					if err := redis_client.Connect(); err != nil {
						log.Warn().Err(err).Msg("Failed to connect to Redis, continuing without response cache")
					}

					date, err := time.Parse("2006-01-02", c.String("date"))
					if err != nil {
						return fmt.Errorf("invalid date %q: %w", c.String("date"), err)
					}

					query := &htdf.PlanQuery{
						OriginStops: c.StringSlice("origin"),
						Date:        date,
						Region:      c.String("region"),

						MaxTransfers: c.Int("max-transfers"),
						MaxResults:   c.Int("max-results"),

						Colours:          c.StringSlice("colour"),
						FilterExpression: c.String("filter"),

						SortBy: htdf.SortPreference(c.String("sort")),
					}

					if margin := c.String("safety-margin"); margin != "" {
						query.SafetyMargin, err = time.ParseDuration(margin)
						if err != nil {
							return fmt.Errorf("invalid safety margin %q: %w", margin, err)
						}
					}

					saturday, err := calendar.LoadSaturdayService()
					if err != nil {
						return err
					}

					planner := NewPlanner(
						scheduleindex.NewMongoLoader(),
						trailindex.NewMongoRepository(),
						calendar.NewHebcalClient(redis_client.NewStringCache()),
						saturday,
					)

					results, err := planner.Plan(context.Background(), query)
					if err != nil {
						return err
					}

					marshalled, err := sheriff.Marshal(&sheriff.Options{
						Groups: []string{"basic"},
					}, results)
					if err != nil {
						return err
					}

					output, err := json.MarshalIndent(marshalled, "", "  ")
					if err != nil {
						return err
					}

					fmt.Println(string(output))

					return nil
				},
			},
		},
	}
}
