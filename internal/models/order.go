package models

import "time"

// Order represents a checked-out cart
type Order struct {
	ID        string       `json:"id"`
	Items     []OrderItem  `json:"items"`
	Subtotal  float64      `json:"subtotal"`
	Tax       float64      `json:"tax"`
	Delivery  float64      `json:"delivery_fee"`
	Total     float64      `json:"total"`
	Status    OrderStatus  `json:"status"`
	Customer  CustomerInfo `json:"customer"`
	CreatedAt time.Time    `json:"created_at"`
}

// OrderItem represents an item in an order
type OrderItem struct {
	MenuItemID          string  `json:"menu_item_id"`
	Name                string  `json:"name"`
	Price               float64 `json:"price"`
	Quantity            int     `json:"quantity"`
	SpecialInstructions string  `json:"special_instructions,omitempty"`
}

// CustomerInfo holds contact details captured at checkout
type CustomerInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address,omitempty"`
}

// OrderStatus represents the possible states of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ItemIDs returns the menu item ids of the order in line order
func (o *Order) ItemIDs() []string {
	ids := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		ids = append(ids, item.MenuItemID)
	}
	return ids
}
