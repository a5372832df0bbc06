package services_test

import (
	"fmt"
	"strings"
	"testing"

	"terang/internal/apperr"
	"terang/internal/models"
	"terang/internal/repositories"
	"terang/internal/services"
	"terang/pkg/rabbitmq"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderRepository is a mock implementation of repositories.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	args := m.Called(order, items)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByUser(userID string) ([]models.Order, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

// MockCustomerInfoRepository is a mock implementation of repositories.CustomerInfoRepository
type MockCustomerInfoRepository struct {
	mock.Mock
}

func (m *MockCustomerInfoRepository) ListByUser(userID string) ([]models.CustomerInfo, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CustomerInfo), args.Error(1)
}

func (m *MockCustomerInfoRepository) GetForUser(id, userID string) (*models.CustomerInfo, error) {
	args := m.Called(id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CustomerInfo), args.Error(1)
}

func (m *MockCustomerInfoRepository) Save(info *models.CustomerInfo) error {
	args := m.Called(info)
	return args.Error(0)
}

// MockOrderEventPublisher is a mock implementation of services.OrderEventPublisher
type MockOrderEventPublisher struct {
	mock.Mock
}

func (m *MockOrderEventPublisher) PublishOrderCreated(event rabbitmq.OrderCreatedEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

func validShipping() *services.ShippingInput {
	return &services.ShippingInput{
		Name:         "Ayu Lestari",
		Email:        "Ayu@Example.com",
		Phone:        "081234567890",
		AddressLine1: "Jl. Cahaya 12",
		City:         "Bandung",
		State:        "Jawa Barat",
		PostalCode:   "40115",
		Country:      "Indonesia",
	}
}

func orderFixture(t *testing.T, products ...models.Product) (*services.OrderService, *MockOrderRepository, *MockCustomerInfoRepository, *repositories.MockProductRepository) {
	t.Helper()
	productRepo := repositories.NewMockProductRepository()
	for i := range products {
		require.NoError(t, productRepo.Create(&products[i]))
	}
	orderRepo := new(MockOrderRepository)
	infoRepo := new(MockCustomerInfoRepository)
	svc := services.NewOrderService(orderRepo, productRepo, infoRepo, nil, "ORD")
	return svc, orderRepo, infoRepo, productRepo
}

func TestOrderService_CreateOrderFreezesSnapshots(t *testing.T) {
	svc, orderRepo, _, _ := orderFixture(t,
		models.Product{ID: "p1", Name: "Pendant Lamp", Price: 100, Stock: intPtr(5)},
		models.Product{ID: "p2", Name: "Candle Set", Price: 25, Stock: nil},
	)

	var captured *models.Order
	var capturedItems []models.OrderItem
	orderRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		captured = args.Get(0).(*models.Order)
		capturedItems = args.Get(1).([]models.OrderItem)
		captured.ID = "order-1"
	}).Return(nil).Once()
	orderRepo.On("GetByID", "order-1").Return(&models.Order{ID: "order-1", Total: 250}, nil).Once()

	_, err := svc.CreateOrder("user-1", services.CreateOrderInput{
		Shipping: validShipping(),
		Items: []services.OrderItemInput{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: "2"},
		},
	})
	require.NoError(t, err)
	orderRepo.AssertExpectations(t)

	require.NotNil(t, captured)
	assert.Equal(t, "user-1", captured.UserID)
	assert.Equal(t, 250.0, captured.Total)
	assert.True(t, strings.HasPrefix(captured.OrderNumber, "ORD-"))
	assert.Equal(t, "ayu@example.com", captured.Shipping.Email)

	require.Len(t, capturedItems, 2)
	assert.Equal(t, "Pendant Lamp", capturedItems[0].Name)
	assert.Equal(t, 200.0, capturedItems[0].Subtotal)
	assert.Equal(t, 2, capturedItems[1].Quantity)
	assert.Equal(t, 50.0, capturedItems[1].Subtotal)
}

func TestOrderService_CreateOrderInsufficientStock(t *testing.T) {
	svc, orderRepo, _, _ := orderFixture(t,
		models.Product{ID: "p1", Name: "Pendant Lamp", Price: 100, Stock: intPtr(5)},
		models.Product{ID: "p2", Name: "Rare Vase", Price: 400, Stock: intPtr(2)},
	)

	_, err := svc.CreateOrder("user-1", services.CreateOrderInput{
		Shipping: validShipping(),
		Items: []services.OrderItemInput{
			{ProductID: "p1", Quantity: 1},
			{ProductID: "p2", Quantity: 3},
		},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "Only 2 left for Rare Vase")

	// The valid first line must not have been written either.
	orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderService_CreateOrderUnknownProduct(t *testing.T) {
	svc, orderRepo, _, _ := orderFixture(t)

	_, err := svc.CreateOrder("user-1", services.CreateOrderInput{
		Shipping: validShipping(),
		Items:    []services.OrderItemInput{{ProductID: "ghost"}},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "Product not found: ghost")
	orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderService_CreateOrderValidatesInput(t *testing.T) {
	svc, _, _, _ := orderFixture(t,
		models.Product{ID: "p1", Name: "Pendant Lamp", Price: 100, Stock: intPtr(5)},
	)

	_, err := svc.CreateOrder("", services.CreateOrderInput{
		Shipping: validShipping(),
		Items:    []services.OrderItemInput{{ProductID: "p1"}},
	})
	assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))

	_, err = svc.CreateOrder("user-1", services.CreateOrderInput{Shipping: validShipping()})
	assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))

	_, err = svc.CreateOrder("user-1", services.CreateOrderInput{
		Shipping: validShipping(),
		Items:    []services.OrderItemInput{{ProductID: "p1", Quantity: 0}},
	})
	assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))

	shipping := validShipping()
	shipping.Phone = "  "
	_, err = svc.CreateOrder("user-1", services.CreateOrderInput{
		Shipping: shipping,
		Items:    []services.OrderItemInput{{ProductID: "p1"}},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "Shipping field phone is required")
}

func TestOrderService_CreateOrderFromSavedAddress(t *testing.T) {
	svc, orderRepo, infoRepo, _ := orderFixture(t,
		models.Product{ID: "p1", Name: "Pendant Lamp", Price: 100, Stock: intPtr(5)},
	)

	infoRepo.On("GetForUser", "addr-1", "user-1").Return(&models.CustomerInfo{
		ID: "addr-1", UserID: "user-1", Name: "Ayu Lestari", Phone: "0812",
		AddressLine1: "Jl. Cahaya 12", City: "Bandung", State: "Jawa Barat",
		PostalCode: "40115", Country: "Indonesia",
	}, nil).Once()

	var captured *models.Order
	orderRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		captured = args.Get(0).(*models.Order)
		captured.ID = "order-1"
	}).Return(nil).Once()
	orderRepo.On("GetByID", "order-1").Return(&models.Order{ID: "order-1"}, nil).Once()

	_, err := svc.CreateOrder("user-1", services.CreateOrderInput{
		AddressID: "addr-1",
		Items:     []services.OrderItemInput{{ProductID: "p1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ayu Lestari", captured.Shipping.Name)
	infoRepo.AssertExpectations(t)

	infoRepo.On("GetForUser", "addr-2", "user-1").Return(nil, repositories.ErrNotFound).Once()
	_, err = svc.CreateOrder("user-1", services.CreateOrderInput{
		AddressID: "addr-2",
		Items:     []services.OrderItemInput{{ProductID: "p1"}},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "Address not found for this user")
}

func TestOrderService_CreateOrderRetriesOnOrderNumberCollision(t *testing.T) {
	svc, orderRepo, _, _ := orderFixture(t,
		models.Product{ID: "p1", Name: "Pendant Lamp", Price: 100, Stock: intPtr(5)},
	)

	seen := map[string]bool{}
	orderRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		o := args.Get(0).(*models.Order)
		seen[o.OrderNumber] = true
	}).Return(repositories.ErrDuplicateKey).Once()
	orderRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		o := args.Get(0).(*models.Order)
		seen[o.OrderNumber] = true
		o.ID = "order-1"
	}).Return(nil).Once()
	orderRepo.On("GetByID", "order-1").Return(&models.Order{ID: "order-1"}, nil).Once()

	_, err := svc.CreateOrder("user-1", services.CreateOrderInput{
		Shipping: validShipping(),
		Items:    []services.OrderItemInput{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)
	orderRepo.AssertNumberOfCalls(t, "Create", 2)
	assert.Len(t, seen, 2) // the retry minted a fresh number
}

func TestOrderService_CreateOrderPublishesEvent(t *testing.T) {
	productRepo := repositories.NewMockProductRepository()
	require.NoError(t, productRepo.Create(&models.Product{
		ID: "p1", Name: "Pendant Lamp", Price: 100, Stock: intPtr(5),
	}))
	orderRepo := new(MockOrderRepository)
	infoRepo := new(MockCustomerInfoRepository)
	publisher := new(MockOrderEventPublisher)
	svc := services.NewOrderService(orderRepo, productRepo, infoRepo, publisher, "ORD")

	orderRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(0).(*models.Order).ID = "order-1"
	}).Return(nil).Once()
	orderRepo.On("GetByID", "order-1").Return(&models.Order{ID: "order-1"}, nil).Once()
	// A broker failure must not fail the checkout.
	publisher.On("PublishOrderCreated", mock.Anything).Return(fmt.Errorf("broker down")).Once()

	order, err := svc.CreateOrder("user-1", services.CreateOrderInput{
		Shipping: validShipping(),
		Items:    []services.OrderItemInput{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "order-1", order.ID)
	publisher.AssertExpectations(t)
}

func TestOrderService_GetOrderByIDScopedToUser(t *testing.T) {
	svc, orderRepo, _, _ := orderFixture(t)

	orderRepo.On("GetByID", "order-1").Return(&models.Order{ID: "order-1", UserID: "user-1"}, nil)

	order, err := svc.GetOrderByID("order-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "order-1", order.ID)

	_, err = svc.GetOrderByID("order-1", "someone-else")
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	orderRepo.On("GetByID", "ghost").Return(nil, repositories.ErrNotFound)
	_, err = svc.GetOrderByID("ghost", "")
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}
