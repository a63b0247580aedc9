package dashboard

import (
	"bytes"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes serves the dashboard page and its JSON twin.
func RegisterRoutes(app *fiber.App, d *Dashboard) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "wbgt-dashboard",
		})
	})

	app.Get("/", func(c *fiber.Ctx) error {
		return render(c, NewPageData(nil))
	})

	// The form posts here; every press runs a full refresh.
	app.Post("/", func(c *fiber.Ctx) error {
		report := d.Refresh(c.UserContext())
		return render(c, NewPageData(&report))
	})

	app.Get("/api/forecast", func(c *fiber.Ctx) error {
		return c.JSON(d.Refresh(c.UserContext()))
	})
}

func render(c *fiber.Ctx, data *PageData) error {
	var buf bytes.Buffer
	if err := RenderDashboard(&buf, data); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to render dashboard")
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}
