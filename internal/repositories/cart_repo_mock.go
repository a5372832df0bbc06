package repositories

import (
	"sync"

	"terang/internal/models"

	"github.com/google/uuid"
)

// MockCartRepository is an in-memory implementation of CartRepository.
type MockCartRepository struct {
	carts map[string]models.Cart    // keyed by cart ID
	items map[string]models.CartItem // keyed by item ID
	mu    sync.Mutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		carts: make(map[string]models.Cart),
		items: make(map[string]models.CartItem),
	}
}

// GetByUserID returns the cart for a user with its items attached.
func (r *MockCartRepository) GetByUserID(userID string) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cart := range r.carts {
		if cart.UserID == userID {
			cart.Items = nil
			for _, item := range r.items {
				if item.CartID == cart.ID {
					cart.Items = append(cart.Items, item)
				}
			}
			return &cart, nil
		}
	}
	return nil, ErrNotFound
}

// Create adds a new cart, rejecting a second cart for the same user.
func (r *MockCartRepository) Create(cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.carts {
		if existing.UserID == cart.UserID {
			return ErrDuplicateKey
		}
	}
	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	r.carts[cart.ID] = *cart
	return nil
}

// GetItem returns a cart line by (cartID, productID).
func (r *MockCartRepository) GetItem(cartID, productID string) (*models.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range r.items {
		if item.CartID == cartID && item.ProductID == productID {
			found := item
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

// SaveItem upserts a cart line.
func (r *MockCartRepository) SaveItem(item *models.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	r.items[item.ID] = *item
	return nil
}

// DeleteItem removes a cart line.
func (r *MockCartRepository) DeleteItem(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// InTransaction runs fn against the same repository. The mutex already
// serializes writers, so the mock has nothing extra to roll back.
func (r *MockCartRepository) InTransaction(fn func(CartRepository) error) error {
	return fn(r)
}
