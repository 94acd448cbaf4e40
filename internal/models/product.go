package models

import "time"

// Product is a single entry on a user's list. Position is a dense,
// zero-based rank among the owner's products: for any user the stored
// positions are always exactly 0..n-1.
type Product struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);index:idx_products_owner_position" validate:"required"`
	Name      string    `json:"name" validate:"required,max=200"`
	Amount    float64   `json:"amount" validate:"gte=0"`
	Comment   string    `json:"comment,omitempty" validate:"omitempty,max=500"`
	Position  int       `json:"position" gorm:"index:idx_products_owner_position" validate:"gte=0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
