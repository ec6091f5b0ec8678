package commerce

import (
	"errors"

	"gorm.io/gorm"

	"github.com/clubshop-app/ClubShop/app/models"
	"github.com/clubshop-app/ClubShop/internal/pkg/apperrors"
	"github.com/clubshop-app/ClubShop/internal/pkg/pricing"
)

// Service owns the cart-to-order lifecycle: the single open order per user,
// line mutations with tier pricing and stock checks, and the seal-at-checkout
// step that turns a cart into an immutable order with a payment attached.
type Service struct {
	repo Repository
}

// NewService creates a commerce service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a commerce service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// GetCart returns the buyer's open order with lines preloaded, or an empty
// unsaved order value when no cart exists yet (a cart row is only created on
// the first mutation).
func (s *Service) GetCart(userID uint) (*models.Order, error) {
	order, err := s.repo.GetOpenOrderWithItems(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.Order{UserID: userID}, nil
		}
		return nil, err
	}
	return order, nil
}

// checkAvailable compares the item's stored stock against the total quantity
// requested after the mutation. Stock is advisory at cart time: nothing is
// reserved, so the same units can sit in two concurrent carts until one of
// them checks out.
func checkAvailable(item *models.Item, requestedTotal int) error {
	if requestedTotal > item.Stock {
		return &apperrors.InsufficientStockError{
			ItemID:    item.ID,
			Available: item.Stock,
			Requested: requestedTotal,
		}
	}
	return nil
}

// AddToCart adds quantity units of an item to the buyer's open order. The
// whole mutation is atomic: a failed stock check leaves the cart untouched.
//
// The captured line price follows the storefront's accumulation rule: a new
// line captures unit price times quantity, an increment recomputes the line
// as the current tier unit price plus the previous quantity at base price.
func (s *Service) AddToCart(buyer pricing.BuyerContext, itemID uint, quantity int) (*models.OrderItem, error) {
	if quantity < 1 {
		return nil, apperrors.NewValidation("quantity must be at least 1")
	}

	var result *models.OrderItem
	err := s.repo.Transaction(func(tx Repository) error {
		item, err := tx.GetItem(itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}

		order, err := tx.GetOrCreateOpenOrder(buyer.UserID)
		if err != nil {
			return err
		}

		line, err := tx.GetOrderLineForUpdate(order.ID, itemID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		existing := 0
		if line != nil {
			existing = line.Quantity
		}
		if err := checkAvailable(item, existing+quantity); err != nil {
			return err
		}

		unitPrice := pricing.EffectivePrice(item, buyer)
		if line == nil {
			line = &models.OrderItem{
				OrderID:  order.ID,
				ItemID:   item.ID,
				Quantity: quantity,
				Price:    unitPrice * float64(quantity),
				Currency: item.Currency,
			}
			if err := tx.CreateOrderLine(line); err != nil {
				return err
			}
		} else {
			line.Quantity += quantity
			line.Price = unitPrice + float64(existing)*item.Price
			if err := tx.SaveOrderLine(line); err != nil {
				return err
			}
		}

		result = line
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveFromCart removes quantity units from a cart line. The line price is
// recomputed with the same accumulation pattern as AddToCart; the line is
// deleted outright once its quantity reaches zero, so stored quantity is
// never zero or negative.
func (s *Service) RemoveFromCart(buyer pricing.BuyerContext, orderItemID uint, quantity int) error {
	if quantity < 1 {
		return apperrors.NewValidation("quantity must be at least 1")
	}

	return s.repo.Transaction(func(tx Repository) error {
		line, err := tx.GetOrderLineByIDForUpdate(orderItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}

		order, err := tx.GetOrderForUpdate(line.OrderID)
		if err != nil {
			return err
		}
		if order.UserID != buyer.UserID {
			return apperrors.ErrUnauthorized
		}
		if order.CheckedOut {
			return apperrors.ErrAlreadyFinalized
		}

		remaining := line.Quantity - quantity
		if remaining <= 0 {
			return tx.DeleteOrderLine(line.ID)
		}

		item, err := tx.GetItem(line.ItemID)
		if err != nil {
			return err
		}

		line.Quantity = remaining
		line.Price = pricing.EffectivePrice(item, buyer) + float64(remaining-1)*item.Price
		return tx.SaveOrderLine(line)
	})
}

// Checkout seals the order: it rejects a second submission and an empty
// cart, sums the captured line totals, creates the payment, and marks the
// order and every line ordered, all in one transaction. Partial application
// (payment without a sealed order or vice versa) cannot happen.
func (s *Service) Checkout(userID uint, orderID uint, method string) (*models.Payment, error) {
	if !models.IsValidPaymentMethod(method) {
		return nil, apperrors.NewValidation("unknown payment method %q", method)
	}

	var payment *models.Payment
	err := s.repo.Transaction(func(tx Repository) error {
		order, err := tx.GetOrderForUpdate(orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}
		if order.UserID != userID {
			return apperrors.ErrUnauthorized
		}
		if order.CheckedOut {
			return apperrors.ErrAlreadyFinalized
		}

		total, count, currency, err := tx.SumOrderLines(order.ID)
		if err != nil {
			return err
		}
		if count == 0 {
			return apperrors.ErrEmptyOrder
		}

		// The payment inherits the currency the lines captured.
		p := &models.Payment{
			UserID:   userID,
			OrderID:  &order.ID,
			Method:   method,
			Amount:   total,
			Currency: currency,
		}
		if err := tx.CreatePayment(p); err != nil {
			return err
		}
		if err := tx.SealOrder(order, p.ID); err != nil {
			return err
		}

		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}
