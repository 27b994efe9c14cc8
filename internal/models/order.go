package models

import (
	"time"

	"github.com/nlstn/go-posadmin/internal/pricing"
	"gorm.io/gorm"
)

// Order is the aggregate root for a sale. TotalPrice is derived from Items and
// is only ever written by the store after recomputation.
type Order struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	CustomerID    uint           `json:"customer_id" gorm:"not null;index"`
	Customer      *Customer      `json:"customer,omitempty" gorm:"foreignKey:CustomerID;references:ID"`
	TotalPrice    pricing.Money  `json:"total_price" gorm:"type:decimal(12,2);not null;default:0"`
	PaymentMethod PaymentMethod  `json:"payment_method" gorm:"size:20;not null"`
	Status        OrderStatus    `json:"status" gorm:"size:20;not null;default:'new';index"`
	Version       int            `json:"version" gorm:"not null;default:1"`
	Items         []OrderItem    `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// Lines returns the priced lines of the order's items.
func (o *Order) Lines() []pricing.Line {
	lines := make([]pricing.Line, len(o.Items))
	for i, item := range o.Items {
		lines[i] = item.Line()
	}
	return lines
}

// Trashed reports whether the order is soft-deleted.
func (o *Order) Trashed() bool {
	return o.DeletedAt.Valid
}

// OrderItem is one product line of an order. Price is the unit price captured
// when the product was selected.
type OrderItem struct {
	ID        uint          `json:"id" gorm:"primaryKey"`
	OrderID   uint          `json:"order_id" gorm:"not null;index"`
	ProductID uint          `json:"product_id" gorm:"not null;index"`
	Product   *Product      `json:"product,omitempty" gorm:"foreignKey:ProductID;references:ID"`
	Quantity  int           `json:"quantity" gorm:"not null;default:1"`
	Price     pricing.Money `json:"price" gorm:"type:decimal(10,2);not null"`
}

// Line returns the item as a priced line.
func (i OrderItem) Line() pricing.Line {
	return pricing.Line{Price: i.Price, Quantity: i.Quantity}
}

// AllModels lists every entity in migration order.
func AllModels() []interface{} {
	return []interface{}{&Category{}, &Product{}, &Customer{}, &Order{}, &OrderItem{}}
}
