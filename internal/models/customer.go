package models

import "time"

// Customer places orders.
type Customer struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:200;not null;index"`
	Email     string    `json:"email" gorm:"size:254"`
	Phone     string    `json:"phone" gorm:"size:50"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
