package cart

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"smartbite/internal/models"
)

const (
	// TaxRate is applied to the subtotal
	TaxRate = 0.085
	// DeliveryFee is charged on every non-empty order
	DeliveryFee = 3.99
)

// ErrEmptyCart is returned when checking out a cart with no lines
var ErrEmptyCart = errors.New("cart is empty")

// Summary is the order review breakdown of a cart
type Summary struct {
	Subtotal    float64 `json:"subtotal"`
	Tax         float64 `json:"tax"`
	DeliveryFee float64 `json:"delivery_fee"`
	Total       float64 `json:"total"`
	ItemCount   int     `json:"item_count"`
}

// Summarize computes tax, delivery and total for a snapshot
func Summarize(snap Snapshot) Summary {
	if snap.IsEmpty() {
		return Summary{}
	}

	tax := roundCents(snap.Total * TaxRate)
	return Summary{
		Subtotal:    snap.Total,
		Tax:         tax,
		DeliveryFee: DeliveryFee,
		Total:       roundCents(snap.Total + tax + DeliveryFee),
		ItemCount:   snap.ItemCount,
	}
}

// Checkout turns the cart into a confirmed order and clears it
func Checkout(s *Store, customer models.CustomerInfo) (*models.Order, error) {
	snap, ok := s.take()
	if !ok {
		return nil, ErrEmptyCart
	}

	summary := Summarize(snap)
	order := &models.Order{
		ID:        uuid.New().String(),
		Items:     make([]models.OrderItem, 0, len(snap.Items)),
		Subtotal:  summary.Subtotal,
		Tax:       summary.Tax,
		Delivery:  summary.DeliveryFee,
		Total:     summary.Total,
		Status:    models.OrderStatusConfirmed,
		Customer:  customer,
		CreatedAt: time.Now(),
	}
	for _, line := range snap.Items {
		order.Items = append(order.Items, models.OrderItem{
			MenuItemID:          line.ID,
			Name:                line.Name,
			Price:               line.Price,
			Quantity:            line.Quantity,
			SpecialInstructions: line.SpecialInstructions,
		})
	}

	s.metrics.RecordCheckout(order.Total)
	return order, nil
}
