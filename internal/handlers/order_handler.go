package handlers

import (
	"terang/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Post("/", h.HandleCreateOrder)
}

// HandleGetOrders serves either one order (?orderId=, optionally scoped
// to ?userId=) or the full order history for a user (?userId=).
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	userID := c.Query("userId")

	if orderID := c.Query("orderId"); orderID != "" {
		order, err := h.service.GetOrderByID(orderID, userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"order": order,
		})
	}

	orders, err := h.service.GetOrders(userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"userId": userID,
		"orders": orders,
	})
}

type createOrderRequest struct {
	UserID    string                    `json:"userId"`
	AddressID string                    `json:"addressId"`
	Shipping  *services.ShippingInput   `json:"shipping"`
	Items     []services.OrderItemInput `json:"items"`
}

// HandleCreateOrder runs the checkout: validates every line against
// live stock, then atomically creates the order and decrements stock.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON payload")
	}

	order, err := h.service.CreateOrder(req.UserID, services.CreateOrderInput{
		AddressID: req.AddressID,
		Shipping:  req.Shipping,
		Items:     req.Items,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order created",
		"order":   order,
	})
}
