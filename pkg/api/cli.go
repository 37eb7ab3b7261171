package api

import (
	"github.com/rs/zerolog/log"
	"github.com/shvilbus/shvilbus/pkg/calendar"
	"github.com/shvilbus/shvilbus/pkg/database"
	"github.com/shvilbus/shvilbus/pkg/planner"
	"github.com/shvilbus/shvilbus/pkg/redis_client"
	"github.com/shvilbus/shvilbus/pkg/scheduleindex"
	"github.com/shvilbus/shvilbus/pkg/trailindex"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the core web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}
					if err := redis_client.Connect(); err != nil {
						log.Warn().Err(err).Msg("Failed to connect to Redis, continuing without response cache")
					}

					saturday, err := calendar.LoadSaturdayService()
					if err != nil {
						return err
					}

					hikePlanner := planner.NewPlanner(
						scheduleindex.NewMongoLoader(),
						trailindex.NewMongoRepository(),
						calendar.NewHebcalClient(redis_client.NewStringCache()),
						saturday,
					)

					return SetupServer(c.String("listen"), hikePlanner)
				},
			},
		},
	}
}
