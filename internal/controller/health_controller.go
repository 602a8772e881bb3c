package controller

import (
	"customer-service-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Root(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	service  service.IHealthService
	gatherer prometheus.Gatherer
	version  string
}

func NewHealthController(service service.IHealthService, gatherer prometheus.Gatherer, version string) IHealthController {
	return &healthController{service: service, gatherer: gatherer, version: version}
}

// RegisterRoutes mounts on the app root, outside /api
func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/", c.Root)
	r.Get("/health", c.Health)
	if c.gatherer != nil {
		r.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})))
	}
}

func (c *healthController) Root(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{
		"message": "Customer Service Agent API",
		"version": c.version,
	})
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	res := c.service.Check(ctx.UserContext())
	if res.Status != "healthy" {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(res)
	}
	return ctx.JSON(res)
}
