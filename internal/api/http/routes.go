package httpapi

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/i474232898/wbgt-forecast/internal/forecast"
	"github.com/i474232898/wbgt-forecast/internal/metrics"
)

var validate = validator.New()

// Predictor is the prediction capability the routes expose.
type Predictor interface {
	Predict(ctx context.Context, horizon string) (forecast.Prediction, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. recorder may be
// nil, in which case /metrics is not served.
func RegisterRoutes(app *fiber.App, predictor Predictor, recorder *metrics.Recorder) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "wbgt-api",
		})
	})

	predict := predictHandler(predictor)
	app.Post("/predict", predict)

	v1 := app.Group("/api/v1")
	v1.Post("/predict", predict)

	if recorder != nil {
		app.Get("/metrics", adaptor.HTTPHandler(recorder.Handler()))
	}
}

// predictRequest carries the horizon label. Horizon must be present but any
// value is accepted; unknown labels forecast for "Now".
type predictRequest struct {
	Horizon *string `json:"horizon" validate:"required"`
}

func predictHandler(predictor Predictor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req predictRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "horizon is required")
		}

		prediction, err := predictor.Predict(c.UserContext(), *req.Horizon)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.JSON(prediction)
	}
}

// ErrorHandler renders every handler error as {"error": message}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}
