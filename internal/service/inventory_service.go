package service

import (
	"context"
	"errors"
	"fmt"

	"go-inventory-ledger/internal/metrics"
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/ws"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInventoryNotFound = errors.New("inventory not found")

type InventoryService interface {
	GetInventory(ctx context.Context, productID uuid.UUID) (*model.Inventory, error)
	// AdjustInventory applies delta unchecked: positive for restocks, negative
	// for corrections. A missing row is created at quantity 0 before the delta
	// is applied, so the result may be negative. The purchase path has its own
	// guarded debit and never calls this.
	AdjustInventory(ctx context.Context, productID uuid.UUID, delta int) (*model.Inventory, error)
}

type inventoryService struct {
	inventoryRepo repository.InventoryRepository
	hub           *ws.Hub
	logger        *zap.Logger
}

func NewInventoryService(repo repository.InventoryRepository, hub *ws.Hub, logger *zap.Logger) InventoryService {
	return &inventoryService{
		inventoryRepo: repo,
		hub:           hub,
		logger:        logger,
	}
}

func (s *inventoryService) GetInventory(ctx context.Context, productID uuid.UUID) (*model.Inventory, error) {
	inv, err := s.inventoryRepo.FindByProductID(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInventoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find inventory: %w", err)
	}
	return inv, nil
}

func (s *inventoryService) AdjustInventory(ctx context.Context, productID uuid.UUID, delta int) (*model.Inventory, error) {
	inv, err := s.inventoryRepo.Adjust(ctx, productID, delta)
	if err != nil {
		s.logger.Error("inventory adjustment failed",
			zap.String("product_id", productID.String()),
			zap.Int("delta", delta),
			zap.Error(err))
		return nil, fmt.Errorf("adjust inventory: %w", err)
	}

	metrics.StockAdjustmentsTotal.Inc()
	s.hub.NotifyStockUpdate(ws.ActionAdjusted, productID, inv.Quantity)
	s.logger.Info("inventory adjusted",
		zap.String("product_id", productID.String()),
		zap.Int("delta", delta),
		zap.Int("quantity", inv.Quantity))

	return inv, nil
}
