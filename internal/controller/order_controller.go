package controller

import (
	"customer-service-be/internal/dto"
	"customer-service-be/internal/pkg/serverutils"
	"customer-service-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IOrderController interface {
	RegisterRoutes(r fiber.Router)
	GetOrder(ctx *fiber.Ctx) error
	SearchOrders(ctx *fiber.Ctx) error
	GetTickets(ctx *fiber.Ctx) error
}

type orderController struct {
	service   service.IOrderService
	jwtSecret string
}

func NewOrderController(service service.IOrderService, jwtSecret string) IOrderController {
	return &orderController{service: service, jwtSecret: jwtSecret}
}

// Order data is agent-facing, every route needs a token
func (c *orderController) RegisterRoutes(r fiber.Router) {
	auth := serverutils.JwtMiddleware(c.jwtSecret)
	r.Get("/orders/search", auth, c.SearchOrders)
	r.Get("/orders/:orderNumber", auth, c.GetOrder)
	r.Get("/tickets", auth, c.GetTickets)
}

func (c *orderController) GetOrder(ctx *fiber.Ctx) error {
	res, err := c.service.GetOrderDetails(ctx.UserContext(), ctx.Params("orderNumber"))
	if err != nil {
		return err
	}
	if !res.Success {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(fiber.StatusNotFound, res.Error))
	}
	return ctx.JSON(serverutils.SuccessResponse("Order detail", res.Order))
}

func (c *orderController) SearchOrders(ctx *fiber.Ctx) error {
	var q dto.OrderSearchQuery
	if err := ctx.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}
	if err := serverutils.ValidateRequest(q); err != nil {
		return err
	}

	res, err := c.service.SearchOrders(ctx.UserContext(), q.Query, q.Limit)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Order search", res))
}

func (c *orderController) GetTickets(ctx *fiber.Ctx) error {
	var q dto.TicketQuery
	if err := ctx.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}
	if err := serverutils.ValidateRequest(q); err != nil {
		return err
	}

	res, err := c.service.GetSupportTickets(ctx.UserContext(), q.Email, q.OrderNumber)
	if err != nil {
		return err
	}
	if !res.Success {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, res.Error))
	}
	return ctx.JSON(serverutils.SuccessResponse("Support tickets", res))
}
