package controller

import (
	"customer-service-be/internal/pkg/serverutils"
	"customer-service-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// provider header carrying the notification signature, the body's signature_key is the fallback
const signatureHeader = "X-Signature"

type IPaymentController interface {
	RegisterRoutes(r fiber.Router)
	Webhook(ctx *fiber.Ctx) error
	GetEvents(ctx *fiber.Ctx) error
}

type paymentController struct {
	service   service.IPaymentService
	jwtSecret string
}

func NewPaymentController(service service.IPaymentService, jwtSecret string) IPaymentController {
	return &paymentController{service: service, jwtSecret: jwtSecret}
}

func (c *paymentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/payment")
	h.Post("/webhook", c.Webhook)
	h.Get("/events", serverutils.JwtMiddleware(c.jwtSecret), c.GetEvents)
}

func (c *paymentController) Webhook(ctx *fiber.Ctx) error {
	// Body() is reused by fiber after the handler returns
	raw := append([]byte(nil), ctx.Body()...)

	msg, err := c.service.HandleWebhook(ctx.UserContext(), raw, ctx.Get(signatureHeader))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Webhook received", fiber.Map{
		"event_id":   msg.EventId,
		"event_type": msg.Type,
	}))
}

func (c *paymentController) GetEvents(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		return fiber.NewError(fiber.StatusBadRequest, "limit must be between 1 and 200")
	}

	res, err := c.service.GetRecentEvents(ctx.UserContext(), limit)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Payment events", res))
}
