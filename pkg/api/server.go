package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shvilbus/shvilbus/pkg/api/routes"
	"github.com/shvilbus/shvilbus/pkg/planner"
)

func SetupServer(listen string, hikePlanner *planner.Planner) error {
	webApp := fiber.New()
	webApp.Use(NewLogger())

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	routes.PlanRouter(group.Group("/plan"), hikePlanner)

	routes.StopsRouter(group.Group("/stops"), hikePlanner.Schedules)

	routes.TrailsRouter(group.Group("/trails"), hikePlanner.Trails)

	return webApp.Listen(listen)
}
