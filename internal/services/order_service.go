package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"terang/internal/apperr"
	"terang/internal/models"
	"terang/internal/repositories"
	"terang/pkg/rabbitmq"
)

// OrderEventPublisher publishes checkout events to the message broker.
// *rabbitmq.Client satisfies it; a nil publisher disables events.
type OrderEventPublisher interface {
	PublishOrderCreated(event rabbitmq.OrderCreatedEvent) error
}

// ShippingInput is an inline shipping destination submitted with an
// order, used when no saved address is referenced.
type ShippingInput struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postalCode"`
	Country      string `json:"country"`
}

// OrderItemInput is one requested purchase line. Quantity tolerates
// JSON numbers and numeric strings; absent means 1.
type OrderItemInput struct {
	ProductID string      `json:"productId"`
	Quantity  interface{} `json:"quantity"`
}

// CreateOrderInput carries a checkout request. Exactly one of
// AddressID or Shipping supplies the destination.
type CreateOrderInput struct {
	AddressID string           `json:"addressId"`
	Shipping  *ShippingInput   `json:"shipping"`
	Items     []OrderItemInput `json:"items"`
}

// OrderService validates checkout requests against live stock and
// price, then atomically creates the order and decrements inventory.
// It is the only writer of product stock.
type OrderService struct {
	orderRepo        repositories.OrderRepository
	productRepo      repositories.ProductRepository
	customerInfoRepo repositories.CustomerInfoRepository
	publisher        OrderEventPublisher
	orderPrefix      string
}

// NewOrderService creates a new OrderService. publisher may be nil to
// disable order events.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	customerInfoRepo repositories.CustomerInfoRepository,
	publisher OrderEventPublisher,
	orderPrefix string,
) *OrderService {
	if orderPrefix == "" {
		orderPrefix = "ORD"
	}
	return &OrderService{
		orderRepo:        orderRepo,
		productRepo:      productRepo,
		customerInfoRepo: customerInfoRepo,
		publisher:        publisher,
		orderPrefix:      orderPrefix,
	}
}

// resolveShipping validates and normalizes the shipping destination,
// either copied from a saved address owned by the user or from inline
// input. It never persists anything.
func (s *OrderService) resolveShipping(userID, addressID string, shipping *ShippingInput) (models.ShippingInfo, error) {
	if addressID != "" {
		record, err := s.customerInfoRepo.GetForUser(addressID, userID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return models.ShippingInfo{}, apperr.New(apperr.NotFound, "Address not found for this user")
			}
			return models.ShippingInfo{}, apperr.Wrap(err, "Unable to load address")
		}
		return models.ShippingInfo{
			Name:         record.Name,
			Email:        record.Email,
			Phone:        record.Phone,
			AddressLine1: record.AddressLine1,
			AddressLine2: record.AddressLine2,
			City:         record.City,
			State:        record.State,
			PostalCode:   record.PostalCode,
			Country:      record.Country,
		}, nil
	}

	if shipping == nil {
		return models.ShippingInfo{}, apperr.New(apperr.BadRequest, "Shipping details are required")
	}

	required := []struct {
		field string
		value string
	}{
		{"name", shipping.Name},
		{"phone", shipping.Phone},
		{"addressLine1", shipping.AddressLine1},
		{"city", shipping.City},
		{"state", shipping.State},
		{"postalCode", shipping.PostalCode},
		{"country", shipping.Country},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return models.ShippingInfo{}, apperr.New(apperr.BadRequest, fmt.Sprintf("Shipping field %s is required", f.field))
		}
	}

	return models.ShippingInfo{
		Name:         strings.TrimSpace(shipping.Name),
		Email:        strings.ToLower(strings.TrimSpace(shipping.Email)),
		Phone:        strings.TrimSpace(shipping.Phone),
		AddressLine1: strings.TrimSpace(shipping.AddressLine1),
		AddressLine2: strings.TrimSpace(shipping.AddressLine2),
		City:         strings.TrimSpace(shipping.City),
		State:        strings.TrimSpace(shipping.State),
		PostalCode:   strings.TrimSpace(shipping.PostalCode),
		Country:      strings.TrimSpace(shipping.Country),
	}, nil
}

// CreateOrder validates every requested line against live stock and
// price, then creates the order, its items and the stock decrements in
// one transaction. Any validation failure aborts before a single write;
// a storage failure during the transaction rolls the whole order back.
func (s *OrderService) CreateOrder(userID string, input CreateOrderInput) (*models.Order, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperr.New(apperr.BadRequest, "userId is required")
	}
	if len(input.Items) == 0 {
		return nil, apperr.New(apperr.BadRequest, "At least one product item is required")
	}

	shippingInfo, err := s.resolveShipping(userID, strings.TrimSpace(input.AddressID), input.Shipping)
	if err != nil {
		return nil, err
	}

	// Pre-validation pass: touches no storage writes. Items are checked
	// in input order so the first failing line names itself.
	var total float64
	snapshots := make([]models.OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		productID := strings.TrimSpace(item.ProductID)
		if productID == "" {
			return nil, apperr.New(apperr.BadRequest, "Each item must include productId")
		}

		qty, present, ok := toNumber(item.Quantity)
		if !present {
			qty = 1
		}
		if !ok || qty < 1 {
			return nil, apperr.New(apperr.BadRequest, "Item quantity must be a positive number")
		}
		quantity := int(qty)

		product, err := s.productRepo.GetByID(productID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, apperr.New(apperr.NotFound, fmt.Sprintf("Product not found: %s", productID))
			}
			return nil, apperr.Wrap(err, "Unable to load product")
		}

		if math.IsNaN(product.Price) || math.IsInf(product.Price, 0) {
			return nil, apperr.New(apperr.BadRequest, fmt.Sprintf("Product price invalid for %s", product.Name))
		}
		if product.Stock != nil && *product.Stock < quantity {
			return nil, apperr.New(apperr.Conflict, fmt.Sprintf("Only %d left for %s", *product.Stock, product.Name))
		}

		subtotal := product.Price * float64(quantity)
		total += subtotal
		snapshots = append(snapshots, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  quantity,
			Subtotal:  subtotal,
		})
	}

	// The order number is best-effort unique by construction; a
	// collision on the unique index just means we mint a new one.
	var order *models.Order
	for attempt := 0; attempt < 3; attempt++ {
		candidate := &models.Order{
			UserID:      userID,
			OrderNumber: buildOrderNumber(s.orderPrefix),
			Shipping:    shippingInfo,
			Total:       total,
		}
		err = s.orderRepo.Create(candidate, snapshots)
		if errors.Is(err, repositories.ErrDuplicateKey) {
			continue
		}
		if err != nil {
			return nil, apperr.Wrap(err, "Could not create order")
		}
		order = candidate
		break
	}
	if order == nil {
		return nil, apperr.Wrap(err, "Could not create order")
	}

	if s.publisher != nil {
		event := rabbitmq.OrderCreatedEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			UserID:      order.UserID,
			Total:       order.Total,
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.publisher.PublishOrderCreated(event); err != nil {
			log.Printf("Warning: Failed to publish order created event for order %s: %v", order.ID, err)
		}
	}

	created, err := s.orderRepo.GetByID(order.ID)
	if err != nil {
		return nil, apperr.Wrap(err, "Could not load created order")
	}
	return created, nil
}

// GetOrders returns a user's orders, newest first.
func (s *OrderService) GetOrders(userID string) ([]models.Order, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperr.New(apperr.BadRequest, "userId query parameter is required")
	}
	orders, err := s.orderRepo.ListByUser(userID)
	if err != nil {
		return nil, apperr.Wrap(err, "Unable to load orders")
	}
	return orders, nil
}

// GetOrderByID returns one order. When userID is supplied the order
// must belong to that user; otherwise it is reported as not found.
func (s *OrderService) GetOrderByID(orderID, userID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(strings.TrimSpace(orderID))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "Order not found")
		}
		return nil, apperr.Wrap(err, "Unable to load order")
	}
	if userID = strings.TrimSpace(userID); userID != "" && order.UserID != userID {
		return nil, apperr.New(apperr.NotFound, "Order not found for this user")
	}
	return order, nil
}

// buildOrderNumber mints a human-readable order number from a base-36
// timestamp and a random base-36 suffix, e.g. ORD-MBX3K2J1-004F.
func buildOrderNumber(prefix string) string {
	timestamp := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
	random := strings.ToUpper(strconv.FormatInt(int64(rand.Intn(1_000_000)), 36))
	for len(random) < 4 {
		random = "0" + random
	}
	return fmt.Sprintf("%s-%s-%s", prefix, timestamp, random)
}
