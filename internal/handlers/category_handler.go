package handlers

import (
	"terang/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CategoryHandler handles HTTP requests for categories.
type CategoryHandler struct {
	service *services.CatalogService
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(service *services.CatalogService) *CategoryHandler {
	return &CategoryHandler{
		service: service,
	}
}

// RegisterRoutes registers the public category routes.
func (h *CategoryHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/categories", h.HandleListCategories)
}

// RegisterAdminRoutes registers category management routes behind auth.
func (h *CategoryHandler) RegisterAdminRoutes(router fiber.Router) {
	router.Post("/categories", h.HandleCreateCategory)
}

// HandleListCategories serves all categories.
func (h *CategoryHandler) HandleListCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"categories": categories,
	})
}

type createCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HandleCreateCategory creates a category.
func (h *CategoryHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var req createCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON payload")
	}

	category, err := h.service.CreateCategory(req.Name, req.Description)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Category created",
		"category": category,
	})
}
