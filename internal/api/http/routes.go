package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-narrator/internal/refresh"
	"github.com/i474232898/weather-narrator/internal/store"
	"github.com/i474232898/weather-narrator/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, st weather.Store, orch *refresh.Orchestrator) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		locReq, err := parseLocationQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshot, err := st.GetSnapshot(locReq.toLocation())
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather data for requested location")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
		}

		return c.JSON(snapshot)
	})

	v1.Get("/weather/narratives", func(c *fiber.Ctx) error {
		locReq, err := parseLocationQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		loc := locReq.toLocation()
		bindings, err := st.ActiveBindings(loc)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch narratives")
		}
		if len(bindings) == 0 {
			return fiber.NewError(fiber.StatusNotFound, "no active personas for requested location")
		}

		return c.JSON(fiber.Map{
			"location":   loc,
			"narratives": bindings,
		})
	})

	v1.Get("/personas", func(c *fiber.Ctx) error {
		personas, err := st.Personas()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch personas")
		}
		return c.JSON(personas)
	})

	v1.Post("/refresh", func(c *fiber.Ctx) error {
		report := orch.RefreshAll(c.Context())
		return c.JSON(report)
	})

	v1.Get("/refresh/last", func(c *fiber.Ctx) error {
		report := orch.LastReport()
		if report == nil {
			return fiber.NewError(fiber.StatusNotFound, "no refresh cycle has completed yet")
		}
		return c.JSON(report)
	})
}

// locationQuery holds query parameters for identifying a location.
type locationQuery struct {
	City    string `validate:"required"`
	Country string `validate:"required"`
}

func (l locationQuery) toLocation() weather.Location {
	return weather.Location{
		City:    l.City,
		Country: l.Country,
	}
}

func parseLocationQuery(c *fiber.Ctx) (locationQuery, error) {
	var q locationQuery

	q.City = c.Query("city")
	q.Country = c.Query("country")

	if err := validate.Struct(q); err != nil {
		return q, err
	}

	return q, nil
}
