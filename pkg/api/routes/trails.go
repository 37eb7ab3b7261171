package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/shvilbus/shvilbus/pkg/trailindex"
)

func TrailsRouter(router fiber.Router, trails trailindex.Repository) {
	router.Get("/", func(c *fiber.Ctx) error {
		return listTrails(c, trails)
	})
	router.Get("/:identifier", func(c *fiber.Ctx) error {
		return getTrail(c, trails)
	})
}

func listTrails(c *fiber.Ctx, trails trailindex.Repository) error {
	allTrails, err := trails.Trails(c.Context())
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	trailsReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, allTrails)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce trails",
		})
	}

	return c.JSON(trailsReduced)
}

func getTrail(c *fiber.Ctx, trails trailindex.Repository) error {
	identifier := c.Params("identifier")

	trail, err := trails.Trail(c.Context(), identifier)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if trail == nil {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find Trail matching Trail Identifier",
		})
	}

	trailReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic", "detailed"},
	}, trail)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce trail",
		})
	}

	return c.JSON(trailReduced)
}
