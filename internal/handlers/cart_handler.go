package handlers

import (
	"terang/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for shopping carts.
type CartHandler struct {
	service *services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service: service,
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/", h.HandleAddItem)
	cartRoutes.Patch("/", h.HandleUpdateItem)
}

// HandleGetCart serves the current cart view for a user. Users without
// a cart get an empty view rather than a 404.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	view, err := h.service.GetCart(c.Query("userId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"cart": view,
	})
}

type cartItemRequest struct {
	UserID    string      `json:"userId"`
	ProductID string      `json:"productId"`
	Quantity  interface{} `json:"quantity"`
	Action    string      `json:"action"`
}

// HandleAddItem adds a product to the user's cart, merging with any
// existing line and clamping to stock.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req cartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON payload")
	}

	view, err := h.service.AddItem(req.UserID, req.ProductID, req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Product added to cart",
		"cart":    view,
	})
}

// HandleUpdateItem adjusts or removes a cart line. The body must carry
// exactly one of action (increase|decrease) or an explicit quantity.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req cartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON payload")
	}

	update, err := services.NormalizeCartUpdate(req.Action, req.Quantity)
	if err != nil {
		return respondError(c, err)
	}

	view, err := h.service.UpdateItem(req.UserID, req.ProductID, update)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Cart updated",
		"cart":    view,
	})
}
