package repository

import (
	"context"
	"errors"

	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryRepository interface {
	FindByProductID(ctx context.Context, productID uuid.UUID) (*model.Inventory, error)
	// Adjust applies delta to the counter, creating the row at quantity 0
	// first if absent. No floor is enforced; a negative delta may take the
	// counter below zero. Purchases go through PurchaseRepository instead.
	Adjust(ctx context.Context, productID uuid.UUID, delta int) (*model.Inventory, error)
}

type inventoryRepo struct {
	db *gorm.DB
}

func NewInventoryRepo(db *gorm.DB) InventoryRepository {
	return &inventoryRepo{db}
}

func (r *inventoryRepo) FindByProductID(ctx context.Context, productID uuid.UUID) (*model.Inventory, error) {
	var inv model.Inventory
	if err := r.db.WithContext(ctx).First(&inv, "product_id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *inventoryRepo) Adjust(ctx context.Context, productID uuid.UUID, delta int) (*model.Inventory, error) {
	var inv model.Inventory

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&inv, "product_id = ?", productID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			inv = model.Inventory{ProductID: productID, Quantity: 0}
			if err := tx.Create(&inv).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		inv.Quantity += delta
		return tx.Model(&model.Inventory{}).
			Where("product_id = ?", productID).
			Update("quantity", inv.Quantity).Error
	})
	if err != nil {
		return nil, err
	}

	return &inv, nil
}
