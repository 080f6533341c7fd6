package model

import (
	"time"

	"github.com/google/uuid"
)

// Inventory is the current stock counter for a product. The product itself
// lives in the external products service; only the quantity is owned here.
type Inventory struct {
	ProductID uuid.UUID `gorm:"type:uuid;primary_key" json:"product_id"`
	Quantity  int       `gorm:"not null;default:0" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Inventory) TableName() string {
	return "inventory"
}
