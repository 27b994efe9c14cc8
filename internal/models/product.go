package models

import (
	"time"

	"github.com/nlstn/go-posadmin/internal/pricing"
)

// Product is a sellable catalog item.
type Product struct {
	ID         uint          `json:"id" gorm:"primaryKey"`
	Name       string        `json:"name" gorm:"size:200;not null;index"`
	Price      pricing.Money `json:"price" gorm:"type:decimal(10,2);not null"`
	Stock      int           `json:"stock" gorm:"not null;default:0"`
	Image      *string       `json:"image"` // path under the products/ upload directory
	CategoryID uint          `json:"category_id" gorm:"not null;index"`
	Category   *Category     `json:"category,omitempty" gorm:"foreignKey:CategoryID;references:ID"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}
