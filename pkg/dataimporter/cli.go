package dataimporter

import (
	"os"

	"github.com/shvilbus/shvilbus/pkg/database"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "data-importer",
		Usage: "Import schedule, stop & trail datasets into the database",
		Subcommands: []*cli.Command{
			{
				Name:  "schedule",
				Usage: "Import a precomputed schedule CSV",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Usage:    "Path of the schedule CSV",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}

					file, err := os.Open(c.String("file"))
					if err != nil {
						return err
					}
					defer file.Close()

					return ImportSchedule(file)
				},
			},
			{
				Name:  "stops",
				Usage: "Import a stop register CSV",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Usage:    "Path of the stops CSV",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "datasource",
						Usage: "Identifier of the upstream dataset",
						Value: "gtfs-stops",
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}

					file, err := os.Open(c.String("file"))
					if err != nil {
						return err
					}
					defer file.Close()

					return ImportStops(file, c.String("datasource"))
				},
			},
			{
				Name:  "trails",
				Usage: "Import a trail export JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Usage:    "Path of the trails JSON",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "datasource",
						Usage: "Identifier of the upstream dataset",
						Value: "israel-hiking-map",
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}

					file, err := os.Open(c.String("file"))
					if err != nil {
						return err
					}
					defer file.Close()

					return ImportTrails(file, c.String("datasource"))
				},
			},
		},
	}
}
