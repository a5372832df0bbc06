package handlers

import (
	"terang/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CustomerInfoHandler handles HTTP requests for the address book.
type CustomerInfoHandler struct {
	service *services.CustomerInfoService
}

// NewCustomerInfoHandler creates a new CustomerInfoHandler.
func NewCustomerInfoHandler(service *services.CustomerInfoService) *CustomerInfoHandler {
	return &CustomerInfoHandler{
		service: service,
	}
}

// RegisterRoutes registers the customer-info routes with the Fiber app.
func (h *CustomerInfoHandler) RegisterRoutes(router fiber.Router) {
	infoRoutes := router.Group("/customer-info")
	infoRoutes.Get("/", h.HandleListAddresses)
	infoRoutes.Post("/", h.HandleSaveAddress)
}

// HandleListAddresses serves a user's saved addresses, default first.
func (h *CustomerInfoHandler) HandleListAddresses(c *fiber.Ctx) error {
	userID := c.Query("userId")
	addresses, err := h.service.ListAddresses(userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"userId":    userID,
		"addresses": addresses,
	})
}

// HandleSaveAddress saves an address-book entry.
func (h *CustomerInfoHandler) HandleSaveAddress(c *fiber.Ctx) error {
	var input services.CustomerInfoInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid JSON payload")
	}

	address, err := h.service.SaveAddress(input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Customer info saved",
		"address": address,
	})
}
