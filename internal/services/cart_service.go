package services

import (
	"errors"
	"strings"

	"terang/internal/apperr"
	"terang/internal/models"
	"terang/internal/repositories"
)

// CartService handles business logic for shopping carts. It owns all
// Cart and CartItem mutations; product stock is only ever read here.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// GetCart returns the serialized cart for a user. A user with no cart
// gets an empty view; nothing is created on read.
func (s *CartService) GetCart(userID string) (*models.CartView, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperr.New(apperr.BadRequest, "userId is required")
	}

	cart, err := s.cartRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return &models.CartView{UserID: userID, Items: []models.CartItemView{}}, nil
		}
		return nil, apperr.Wrap(err, "Unable to load cart")
	}
	return s.serializeCart(cart), nil
}

// AddItem merges the requested quantity into the user's cart line for
// the product, clamped to available stock. Re-adding never sums past
// the cap. The read-merge-write runs inside one transaction so two
// concurrent adds cannot lose an update.
func (s *CartService) AddItem(userID, productID string, quantity interface{}) (*models.CartView, error) {
	userID = strings.TrimSpace(userID)
	productID = strings.TrimSpace(productID)
	if userID == "" {
		return nil, apperr.New(apperr.BadRequest, "userId is required")
	}
	if productID == "" {
		return nil, apperr.New(apperr.BadRequest, "productId is required")
	}

	qty, present, ok := toNumber(quantity)
	if !present {
		qty = 1
	}
	if !ok || qty < 1 {
		return nil, apperr.New(apperr.BadRequest, "quantity must be a positive number")
	}
	requested := int(qty)

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.New(apperr.BadRequest, "Invalid product specified")
		}
		return nil, apperr.Wrap(err, "Unable to load product")
	}

	availableStock, bounded := product.AvailableStock()
	if bounded && availableStock <= 0 {
		return nil, apperr.New(apperr.Conflict, "Product is out of stock")
	}

	err = s.cartRepo.InTransaction(func(r repositories.CartRepository) error {
		cart, err := getOrCreateCart(r, userID)
		if err != nil {
			return err
		}

		currentQuantity := 0
		item, err := r.GetItem(cart.ID, productID)
		switch {
		case err == nil:
			currentQuantity = item.Quantity
		case errors.Is(err, repositories.ErrNotFound):
			item = nil
		default:
			return err
		}

		desiredQuantity := currentQuantity + requested
		finalQuantity := desiredQuantity
		if bounded && finalQuantity > availableStock {
			finalQuantity = availableStock
		}
		if finalQuantity <= 0 {
			return apperr.New(apperr.Conflict, "Product is out of stock")
		}

		if item == nil {
			item = &models.CartItem{
				CartID:    cart.ID,
				ProductID: product.ID,
				Name:      product.Name,
				Price:     product.Price,
			}
		}
		item.Quantity = finalQuantity
		return r.SaveItem(item)
	})
	if err != nil {
		var e *apperr.Error
		if errors.As(err, &e) {
			return nil, err
		}
		return nil, apperr.Wrap(err, "Unable to update cart")
	}

	return s.GetCart(userID)
}

// CartUpdate is the normalized form of a cart mutation request, after
// the action-vs-quantity union has been resolved.
type CartUpdate struct {
	op       cartUpdateOp
	quantity int
}

type cartUpdateOp int

const (
	opIncrease cartUpdateOp = iota + 1
	opDecrease
	opSet
)

// NormalizeCartUpdate resolves the two accepted request shapes,
// {action: increase|decrease} or {quantity: n>=0}, into one canonical
// update. Exactly one shape must be supplied.
func NormalizeCartUpdate(action string, quantity interface{}) (CartUpdate, error) {
	qty, present, ok := toNumber(quantity)
	action = strings.TrimSpace(action)

	if action != "" && present {
		return CartUpdate{}, apperr.New(apperr.BadRequest, "provide either action or quantity, not both")
	}
	if action != "" {
		switch action {
		case "increase":
			return CartUpdate{op: opIncrease}, nil
		case "decrease":
			return CartUpdate{op: opDecrease}, nil
		default:
			return CartUpdate{}, apperr.New(apperr.BadRequest, "action must be increase or decrease")
		}
	}
	if !present {
		return CartUpdate{}, apperr.New(apperr.BadRequest, "action or quantity is required")
	}
	if !ok || qty < 0 {
		return CartUpdate{}, apperr.New(apperr.BadRequest, "quantity must be zero or a positive number")
	}
	return CartUpdate{op: opSet, quantity: int(qty)}, nil
}

// UpdateItem applies a normalized update to an existing cart line. The
// result is clamped to current stock; a resulting quantity of zero or
// less deletes the line.
func (s *CartService) UpdateItem(userID, productID string, update CartUpdate) (*models.CartView, error) {
	userID = strings.TrimSpace(userID)
	productID = strings.TrimSpace(productID)
	if userID == "" {
		return nil, apperr.New(apperr.BadRequest, "userId is required")
	}
	if productID == "" {
		return nil, apperr.New(apperr.BadRequest, "productId is required")
	}

	cart, err := s.cartRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "Cart not found")
		}
		return nil, apperr.Wrap(err, "Unable to load cart")
	}

	// A deleted product leaves the line adjustable but uncapped, the
	// same as an unlimited-stock product. Anything other than a clean
	// miss is a storage fault, not a missing product.
	availableStock := 0
	bounded := false
	product, err := s.productRepo.GetByID(productID)
	switch {
	case err == nil:
		availableStock, bounded = product.AvailableStock()
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, apperr.Wrap(err, "Unable to load product")
	}

	err = s.cartRepo.InTransaction(func(r repositories.CartRepository) error {
		item, err := r.GetItem(cart.ID, productID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return apperr.New(apperr.NotFound, "Product not found in cart")
			}
			return err
		}

		newQuantity := item.Quantity
		switch update.op {
		case opIncrease:
			newQuantity++
		case opDecrease:
			newQuantity--
		case opSet:
			newQuantity = update.quantity
		}
		if bounded && newQuantity > availableStock {
			newQuantity = availableStock
		}

		if newQuantity <= 0 {
			return r.DeleteItem(item.ID)
		}
		item.Quantity = newQuantity
		return r.SaveItem(item)
	})
	if err != nil {
		var e *apperr.Error
		if errors.As(err, &e) {
			return nil, err
		}
		return nil, apperr.Wrap(err, "Unable to update cart")
	}

	return s.GetCart(userID)
}

// getOrCreateCart finds the cart for a user or creates an empty one.
// Carts have no foreign key to users, so guest ids need no placeholder
// account. Losing a create race means another request made the cart
// first; re-fetch and use that row.
func getOrCreateCart(r repositories.CartRepository, userID string) (*models.Cart, error) {
	cart, err := r.GetByUserID(userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	cart = &models.Cart{UserID: userID}
	if err := r.Create(cart); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return r.GetByUserID(userID)
		}
		return nil, err
	}
	return cart, nil
}

// serializeCart recomputes the served view of a cart from current stock
// and price. Quantities above stock are silently clamped; lines whose
// effective quantity would be zero or less are dropped from the view
// without touching the stored row.
func (s *CartService) serializeCart(cart *models.Cart) *models.CartView {
	view := &models.CartView{
		UserID: cart.UserID,
		Items:  []models.CartItemView{},
	}

	for _, item := range cart.Items {
		product := item.Product
		if product == nil {
			if resolved, err := s.productRepo.GetByID(item.ProductID); err == nil {
				product = resolved
			}
		}

		unitPrice := item.Price
		if unitPrice == 0 && product != nil {
			unitPrice = product.Price
		}

		var maxQuantity *int
		effectiveQuantity := item.Quantity
		if stock, bounded := product.AvailableStock(); bounded {
			if effectiveQuantity > stock {
				effectiveQuantity = stock
			}
			capped := stock
			maxQuantity = &capped
		}
		if effectiveQuantity <= 0 {
			continue
		}

		name := item.Name
		if name == "" && product != nil {
			name = product.Name
		}

		view.Items = append(view.Items, models.CartItemView{
			ProductID:   item.ProductID,
			Name:        name,
			Price:       unitPrice,
			Quantity:    effectiveQuantity,
			Image:       product.Thumbnail(),
			MaxQuantity: maxQuantity,
		})
		view.Total += unitPrice * float64(effectiveQuantity)
	}
	return view
}
