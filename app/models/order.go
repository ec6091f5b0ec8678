package models

import "time"

// Order is a user's cart while CheckedOut is false and an immutable,
// payment-linked order once sealed. OpenMarker is 1 while the order is open
// and NULL once sealed; the unique index on (user_id, open_marker) is the
// serialization point that keeps concurrent cart mutations from creating two
// open orders for the same user (NULLs never collide in MySQL unique keys).
type Order struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index:ux_orders_user_open,unique,priority:1" json:"user_id"`
	OpenMarker *uint8    `gorm:"index:ux_orders_user_open,unique,priority:2;default:1" json:"-"`
	CheckedOut bool      `gorm:"not null;default:false;index" json:"checked_out"`
	PaymentID  *uint     `gorm:"index;default:null" json:"payment_id,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Items   []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	Payment *Payment    `gorm:"foreignKey:PaymentID" json:"payment,omitempty"`
}

// Total sums the captured line totals of the loaded items.
func (o *Order) Total() float64 {
	var total float64
	for _, it := range o.Items {
		total += it.Price
	}
	return total
}

// OrderItem is one cart line. Price is the captured line total, not a unit
// price: every add/remove recomputes it from the current tier price and the
// quantity already captured (see commerce.Service). At most one line exists
// per (order, item) while the order is open; a line is deleted once its
// quantity reaches zero.
type OrderItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index:ux_order_items_order_item,unique,priority:1" json:"order_id"`
	ItemID    uint      `gorm:"not null;index:ux_order_items_order_item,unique,priority:2" json:"item_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Price     float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Currency  string    `gorm:"type:varchar(3);not null;default:'BRL'" json:"currency"`
	Ordered   bool      `gorm:"not null;default:false;index" json:"ordered"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Item *Item `gorm:"foreignKey:ItemID" json:"item,omitempty"`
}
