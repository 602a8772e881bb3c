package controller

import (
	"errors"

	"customer-service-be/internal/dto"
	"customer-service-be/internal/pkg/serverutils"
	"customer-service-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	GetUserConversations(ctx *fiber.Ctx) error
	GetConversation(ctx *fiber.Ctx) error
	GetSentimentAnalytics(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService         service.IChatService
	conversationService service.IConversationService
	jwtSecret           string
}

func NewChatController(chatService service.IChatService, conversationService service.IConversationService, jwtSecret string) IChatController {
	return &chatController{
		chatService:         chatService,
		conversationService: conversationService,
		jwtSecret:           jwtSecret,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	r.Post("/chat", serverutils.OptionalJwtMiddleware(c.jwtSecret), c.Chat)
	r.Post("/search", c.Search)
	r.Get("/conversations/:userId", c.GetUserConversations)
	r.Get("/conversations/record/:id", c.GetConversation)
	r.Get("/analytics/sentiment", c.GetSentimentAnalytics)
}

func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	// a verified bearer identity wins over the body's user
	if userID := serverutils.UserIDFromLocals(ctx); userID != "" {
		req.User = userID
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.Chat(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *chatController) Search(ctx *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.conversationService.Search(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Search results", res))
}

func (c *chatController) GetUserConversations(ctx *fiber.Ctx) error {
	userId := ctx.Params("userId")
	limit := ctx.QueryInt("limit", 50)

	res, err := c.conversationService.GetUserConversations(ctx.UserContext(), userId, limit)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("User conversations", res))
}

func (c *chatController) GetConversation(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid conversation id")
	}

	res, err := c.conversationService.GetConversation(ctx.UserContext(), id)
	if errors.Is(err, service.ErrConversationNotFound) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Conversation", res))
}

func (c *chatController) GetSentimentAnalytics(ctx *fiber.Ctx) error {
	days := ctx.QueryInt("days", 7)
	if days < 1 || days > 365 {
		return fiber.NewError(fiber.StatusBadRequest, "days must be between 1 and 365")
	}

	res, err := c.conversationService.GetSentimentAnalytics(ctx.UserContext(), days)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Sentiment analytics", res))
}
