package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"

	"terang/internal/apperr"
	"terang/internal/models"
	"terang/internal/repositories"
	"terang/pkg/cache"
)

const (
	defaultProductLimit = 1000
	maxProductLimit     = 2000
)

// ProductInput is the accepted payload for creating or updating a
// product. Category accepts a category id or a category name; price and
// quantity tolerate JSON numbers and numeric strings.
type ProductInput struct {
	Name         string      `json:"name" validate:"required,min=2,max=200"`
	Description  string      `json:"description" validate:"omitempty,max=2000"`
	Category     string      `json:"category"`
	Price        interface{} `json:"price"`
	Quantity     interface{} `json:"quantity"`
	Dimension    string      `json:"dimension"`
	MaterialCare string      `json:"materialCare"`
	Images       []string    `json:"images"`
}

// CatalogService handles product and category reads and catalog
// management writes. The product cache is optional; nil disables it.
type CatalogService struct {
	productRepo  repositories.ProductRepository
	categoryRepo repositories.CategoryRepository
	productCache *cache.ProductCache
	validate     *validator.Validate
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(
	productRepo repositories.ProductRepository,
	categoryRepo repositories.CategoryRepository,
	productCache *cache.ProductCache,
) *CatalogService {
	return &CatalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		productCache: productCache,
		validate:     validator.New(),
	}
}

// ListProducts returns products newest first, optionally filtered by a
// search term over name and description.
func (s *CatalogService) ListProducts(search string, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = defaultProductLimit
	}
	if limit > maxProductLimit {
		limit = maxProductLimit
	}
	products, err := s.productRepo.List(strings.TrimSpace(search), limit)
	if err != nil {
		return nil, apperr.Wrap(err, "Unable to fetch products")
	}
	return products, nil
}

// GetProduct returns one product, read through the cache when one is
// configured. Cache failures fall back to the store.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperr.New(apperr.BadRequest, "product id is required")
	}

	if s.productCache != nil {
		cached, err := s.productCache.Get(ctx, id)
		if err != nil {
			log.Printf("Product cache read failed for %s: %v", id, err)
		} else if cached != nil {
			return cached, nil
		}
	}

	product, err := s.productRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "Product not found")
		}
		return nil, apperr.Wrap(err, "Unable to fetch product")
	}

	if s.productCache != nil {
		if err := s.productCache.Set(ctx, product); err != nil {
			log.Printf("Product cache write failed for %s: %v", id, err)
		}
	}
	return product, nil
}

// CreateProduct validates the payload, resolves the category and
// persists a new product.
func (s *CatalogService) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperr.New(apperr.BadRequest, "Product name is required")
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, apperr.New(apperr.BadRequest, "Invalid product payload: "+err.Error())
	}

	price, stock, err := parsePriceAndStock(input.Price, input.Quantity)
	if err != nil {
		return nil, err
	}

	category, err := s.resolveCategory(input.Category)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:         strings.TrimSpace(input.Name),
		Description:  strings.TrimSpace(input.Description),
		Price:        price,
		Stock:        stock,
		Dimension:    strings.TrimSpace(input.Dimension),
		MaterialCare: strings.TrimSpace(input.MaterialCare),
		Images:       trimImages(input.Images),
	}
	if category != nil {
		product.CategoryID = category.ID
		product.Category = category
	}

	if err := s.productRepo.Create(product); err != nil {
		return nil, apperr.Wrap(err, "Unable to create product")
	}

	if s.productCache != nil {
		if err := s.productCache.Set(ctx, product); err != nil {
			log.Printf("Product cache write failed for %s: %v", product.ID, err)
		}
	}
	return product, nil
}

// UpdateProduct applies the provided fields to an existing product and
// invalidates its cache entry.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, input ProductInput) (*models.Product, error) {
	product, err := s.productRepo.GetByID(strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "Product not found")
		}
		return nil, apperr.Wrap(err, "Unable to fetch product")
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		product.Name = name
	}
	if desc := strings.TrimSpace(input.Description); desc != "" {
		product.Description = desc
	}
	if dim := strings.TrimSpace(input.Dimension); dim != "" {
		product.Dimension = dim
	}
	if mc := strings.TrimSpace(input.MaterialCare); mc != "" {
		product.MaterialCare = mc
	}
	if len(input.Images) > 0 {
		product.Images = trimImages(input.Images)
	}

	if price, present, ok := toNumber(input.Price); present {
		if !ok || price < 0 {
			return nil, apperr.New(apperr.BadRequest, "price must be a non-negative number")
		}
		product.Price = price
	}
	if qty, present, ok := toNumber(input.Quantity); present {
		if !ok || qty < 0 {
			return nil, apperr.New(apperr.BadRequest, "quantity must be zero or a positive number")
		}
		stock := int(qty)
		product.Stock = &stock
	}

	if input.Category != "" {
		category, err := s.resolveCategory(input.Category)
		if err != nil {
			return nil, err
		}
		if category != nil {
			product.CategoryID = category.ID
			product.Category = category
		}
	}

	if err := s.productRepo.Update(product); err != nil {
		return nil, apperr.Wrap(err, "Unable to update product")
	}

	if s.productCache != nil {
		if err := s.productCache.Invalidate(ctx, product.ID); err != nil {
			log.Printf("Product cache invalidation failed for %s: %v", product.ID, err)
		}
	}
	return product, nil
}

// ListCategories returns all categories.
func (s *CatalogService) ListCategories() ([]models.Category, error) {
	categories, err := s.categoryRepo.GetAll()
	if err != nil {
		return nil, apperr.Wrap(err, "Unable to fetch categories")
	}
	return categories, nil
}

// CreateCategory creates a category with a unique name.
func (s *CatalogService) CreateCategory(name, description string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.New(apperr.BadRequest, "Category name is required")
	}

	category := &models.Category{
		Name:        name,
		Description: strings.TrimSpace(description),
	}
	if err := s.validate.Struct(category); err != nil {
		return nil, apperr.New(apperr.BadRequest, "Invalid category payload: "+err.Error())
	}
	if err := s.categoryRepo.Create(category); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, apperr.New(apperr.Conflict, "Category already exists")
		}
		return nil, apperr.Wrap(err, "Unable to create category")
	}
	return category, nil
}

// resolveCategory accepts a category id or name. An unknown name is
// created on the fly, matching the tolerant catalog input contract.
func (s *CatalogService) resolveCategory(value string) (*models.Category, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	if category, err := s.categoryRepo.GetByID(value); err == nil {
		return category, nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.Wrap(err, "Unable to resolve category")
	}

	if category, err := s.categoryRepo.GetByName(value); err == nil {
		return category, nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.Wrap(err, "Unable to resolve category")
	}

	category := &models.Category{Name: value}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, apperr.Wrap(err, "Unable to create category")
	}
	return category, nil
}

func parsePriceAndStock(priceValue, quantityValue interface{}) (float64, *int, error) {
	price, present, ok := toNumber(priceValue)
	if present && (!ok || price < 0) {
		return 0, nil, apperr.New(apperr.BadRequest, "price must be a non-negative number")
	}

	qty, present, ok := toNumber(quantityValue)
	if !present {
		return price, nil, nil
	}
	if !ok || qty < 0 {
		return 0, nil, apperr.New(apperr.BadRequest, "quantity must be zero or a positive number")
	}
	stock := int(qty)
	return price, &stock, nil
}

func trimImages(images []string) models.ImageList {
	out := make(models.ImageList, 0, len(images))
	for _, img := range images {
		if trimmed := strings.TrimSpace(img); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
