package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/kgrid/weather-gateway/internal/cctv"
	"github.com/kgrid/weather-gateway/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app. cameras may
// be nil when no CCTV API key is configured; the route is then not
// registered.
func RegisterRoutes(app *fiber.App, service *weather.Service, cameras *cctv.Client) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		coord, err := parseGridQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		composite := service.Current(c.Context(), coord)
		return c.JSON(fiber.Map{
			"coordinate": coord,
			"weather":    composite.Merged(),
		})
	})

	v1.Get("/weather/hourly", func(c *fiber.Ctx) error {
		coord, err := parseGridQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		return c.JSON(fiber.Map{
			"coordinate": coord,
			"hours":      service.Hourly(c.Context(), coord),
		})
	})

	v1.Get("/weather/weekly", func(c *fiber.Ctx) error {
		coord, err := parseGridQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		return c.JSON(fiber.Map{
			"coordinate": coord,
			"days":       service.Weekly(c.Context(), coord),
		})
	})

	if cameras != nil {
		v1.Get("/cctv/nearest", func(c *fiber.Ctx) error {
			var q cameraQuery
			if err := q.bind(c); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}

			camera, err := cameras.Nearest(c.Context(), q.Lat, q.Lng)
			if err != nil {
				return cameraError(err)
			}
			return c.JSON(camera)
		})
	}
}

// gridQuery holds the grid-cell query parameters. The default cell is the
// Seoul city center.
type gridQuery struct {
	NX int `validate:"min=1,max=149"`
	NY int `validate:"min=1,max=253"`
}

func parseGridQuery(c *fiber.Ctx) (weather.GridCoordinate, error) {
	q := gridQuery{
		NX: c.QueryInt("nx", 60),
		NY: c.QueryInt("ny", 127),
	}
	if err := validate.Struct(q); err != nil {
		return weather.GridCoordinate{}, err
	}
	return weather.GridCoordinate{NX: q.NX, NY: q.NY}, nil
}

// cameraQuery holds the CCTV query parameters, bounded to the Korean
// peninsula.
type cameraQuery struct {
	Lat float64 `validate:"required,gte=33,lte=39"`
	Lng float64 `validate:"required,gte=124,lte=132"`
}

func (q *cameraQuery) bind(c *fiber.Ctx) error {
	q.Lat = c.QueryFloat("lat")
	q.Lng = c.QueryFloat("lng")
	return validate.Struct(q)
}

// cameraError maps upstream failures of the one-shot CCTV lookup onto HTTP
// statuses. Diagnostics stay in logs; the payload only carries a category.
func cameraError(err error) error {
	var authErr *weather.AuthError
	var transportErr *weather.TransportError

	switch {
	case errors.Is(err, cctv.ErrNoCamera):
		return fiber.NewError(fiber.StatusNotFound, "no cctv near the requested position")
	case errors.As(err, &authErr):
		return fiber.NewError(fiber.StatusBadGateway, "cctv provider rejected the service key")
	case errors.As(err, &transportErr):
		return fiber.NewError(fiber.StatusBadGateway, "cctv provider unavailable")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "cctv lookup failed")
	}
}
