package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Purchase is an append-only record of a completed purchase. Rows are never
// updated or deleted after creation.
type Purchase struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id" validate:"uuid_required"`
	Quantity   int             `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
	CreatedAt  time.Time       `gorm:"autoCreateTime;<-:create" json:"created_at"`
}

// BeforeCreate assigns the server-generated identifier.
func (p *Purchase) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
