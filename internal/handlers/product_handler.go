package handlers

import (
	"terang/internal/models"
	"terang/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service *services.CatalogService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.CatalogService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the public catalog read routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/:id", h.HandleGetProduct)
}

// RegisterAdminRoutes registers catalog management routes; the caller
// is expected to pass a router guarded by auth middleware.
func (h *ProductHandler) RegisterAdminRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
}

// HandleListProducts serves the product listing. Supports ?search=
// (alias ?q=) and ?limit=; full image lists are reduced to a thumbnail.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	search := c.Query("search")
	if search == "" {
		search = c.Query("q")
	}
	limit := c.QueryInt("limit")

	products, err := h.service.ListProducts(search, limit)
	if err != nil {
		return respondError(c, err)
	}

	summaries := make([]fiber.Map, 0, len(products))
	for i := range products {
		summaries = append(summaries, productSummary(&products[i]))
	}
	return c.JSON(fiber.Map{
		"products": summaries,
		"meta": fiber.Map{
			"total": len(summaries),
			"limit": limit,
		},
	})
}

// HandleGetProduct serves one product with its full detail.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"product": product,
	})
}

// HandleCreateProduct creates a catalog product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var input services.ProductInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid JSON payload")
	}

	product, err := h.service.CreateProduct(c.UserContext(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Product created",
		"product": product,
	})
}

// HandleUpdateProduct updates a catalog product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var input services.ProductInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid JSON payload")
	}

	product, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Product updated",
		"product": product,
	})
}

func productSummary(p *models.Product) fiber.Map {
	return fiber.Map{
		"id":           p.ID,
		"name":         p.Name,
		"description":  p.Description,
		"price":        p.Price,
		"stock":        p.Stock,
		"dimension":    p.Dimension,
		"materialCare": p.MaterialCare,
		"category":     p.Category,
		"thumbnail":    p.Thumbnail(),
		"createdAt":    p.CreatedAt,
	}
}
