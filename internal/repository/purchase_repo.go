package repository

import (
	"context"
	"errors"

	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInsufficientStock is returned by CreateWithDebit when the inventory row
// holds fewer units than the purchase asks for.
var ErrInsufficientStock = errors.New("insufficient stock")

type PurchaseRepository interface {
	// CreateWithDebit debits the inventory row and inserts the purchase record
	// in one transaction. Either both writes happen or neither does. Returns
	// the remaining quantity after the debit. A missing inventory row surfaces
	// as gorm.ErrRecordNotFound.
	CreateWithDebit(ctx context.Context, purchase *model.Purchase) (int, error)
	FindAll(ctx context.Context) ([]model.Purchase, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error)
}

type purchaseRepo struct {
	db *gorm.DB
}

func NewPurchaseRepo(db *gorm.DB) PurchaseRepository {
	return &purchaseRepo{db}
}

func (r *purchaseRepo) CreateWithDebit(ctx context.Context, purchase *model.Purchase) (int, error) {
	remaining := 0

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv model.Inventory
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&inv, "product_id = ?", purchase.ProductID).Error; err != nil {
			return err
		}
		if inv.Quantity < purchase.Quantity {
			return ErrInsufficientStock
		}

		// Conditional debit. The row lock above already serializes concurrent
		// purchases for this product; the quantity guard keeps the counter
		// non-negative even if the lock clause is ever weakened.
		res := tx.Model(&model.Inventory{}).
			Where("product_id = ? AND quantity >= ?", purchase.ProductID, purchase.Quantity).
			Update("quantity", gorm.Expr("quantity - ?", purchase.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientStock
		}

		remaining = inv.Quantity - purchase.Quantity
		return tx.Create(purchase).Error
	})
	if err != nil {
		return 0, err
	}

	return remaining, nil
}

func (r *purchaseRepo) FindAll(ctx context.Context) ([]model.Purchase, error) {
	var purchases []model.Purchase
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&purchases).Error
	return purchases, err
}

func (r *purchaseRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	var purchase model.Purchase
	if err := r.db.WithContext(ctx).First(&purchase, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}
