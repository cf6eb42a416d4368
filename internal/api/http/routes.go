package httpapi

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/i474232898/wildfire-risk/internal/assessment"
	"github.com/i474232898/wildfire-risk/internal/risk"
	"github.com/i474232898/wildfire-risk/internal/weather"
)

var validate = validator.New()

// PredictionService is what the handlers need from the assessment layer.
type PredictionService interface {
	Assess(ctx context.Context, location string) (assessment.Prediction, error)
	Latest(ctx context.Context, location string) (assessment.Prediction, error)
	History(ctx context.Context, location string, from, to time.Time) ([]assessment.Prediction, error)
	FeatureImportance() map[string]float64
}

// Model describes the loaded ensemble for /health.
type Model interface {
	Params() risk.Params
	Size() int
}

// RegisterHealth reports liveness and which ensemble is being served. A
// zero seed means the trees were jittered from an unseeded source.
func RegisterHealth(app *fiber.App, model Model) {
	app.Get("/health", func(c *fiber.Ctx) error {
		p := model.Params()
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "wildfire-risk",
			"trees":   model.Size(),
			"seed":    p.Seed,
		})
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service PredictionService) {
	v1 := app.Group("/api/v1")

	v1.Post("/predict", func(c *fiber.Ctx) error {
		var req predictRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest("invalid request body", err)
		}
		req.Location = strings.TrimSpace(req.Location)
		if err := validate.Struct(req); err != nil {
			return badRequest("invalid location", err)
		}

		p, err := service.Assess(c.UserContext(), req.Location)
		if err != nil {
			return err
		}
		return c.JSON(p)
	})

	v1.Get("/feature-importance", func(c *fiber.Ctx) error {
		return c.JSON(service.FeatureImportance())
	})

	v1.Get("/predictions/latest", func(c *fiber.Ctx) error {
		q := locationQuery{Location: strings.TrimSpace(c.Query("location"))}
		if err := validate.Struct(q); err != nil {
			return badRequest("invalid location", err)
		}

		p, err := service.Latest(c.UserContext(), q.Location)
		if err != nil {
			return err
		}
		return c.JSON(p)
	})

	v1.Get("/predictions/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return badRequest("invalid query", err)
		}
		if err := validate.Struct(req); err != nil {
			return badRequest("invalid query", err)
		}

		predictions, err := service.History(c.UserContext(), req.Location, req.From, req.To)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"location":    req.Location,
			"from":        req.From,
			"to":          req.To,
			"predictions": predictions,
		})
	})
}

type predictRequest struct {
	Location string `json:"location" validate:"required,min=2,max=200"`
}

type locationQuery struct {
	Location string `validate:"required,min=2,max=200"`
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Location string    `validate:"required,min=2,max=200"`
	From     time.Time `validate:"required"`
	To       time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	h.Location = strings.TrimSpace(c.Query("location"))

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}

// apiError carries a status and a short public message; the wrapped error
// becomes the details field.
type apiError struct {
	status  int
	message string
	err     error
}

func (e *apiError) Error() string { return e.message + ": " + e.err.Error() }
func (e *apiError) Unwrap() error { return e.err }

func badRequest(message string, err error) error {
	return &apiError{status: fiber.StatusBadRequest, message: message, err: err}
}

// ErrorHandler renders every error as {"error", "details"} with a status
// derived from the error chain.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status, message := classify(err)
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Int("status", status).Msg("request failed")
	}
	return c.Status(status).JSON(fiber.Map{
		"error":   message,
		"details": err.Error(),
	})
}

func classify(err error) (int, string) {
	var (
		apiErr   *apiError
		fiberErr *fiber.Error
	)
	switch {
	case errors.As(err, &apiErr):
		return apiErr.status, apiErr.message
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErr.Message
	case errors.Is(err, weather.ErrLocationNotFound):
		return fiber.StatusNotFound, "location not found"
	case errors.Is(err, assessment.ErrNotFound):
		return fiber.StatusNotFound, "no predictions for location"
	case errors.Is(err, weather.ErrNoReadings):
		return fiber.StatusBadGateway, "weather data unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, "upstream timeout"
	default:
		return fiber.StatusInternalServerError, "internal error"
	}
}
