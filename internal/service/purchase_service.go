package service

import (
	"context"
	"errors"
	"fmt"

	"go-inventory-ledger/internal/client"
	"go-inventory-ledger/internal/metrics"
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidQuantity     = errors.New("quantity must be greater than zero")
	ErrProductNotFound     = errors.New("product not found")
	ErrUpstreamUnavailable = errors.New("products service unavailable")
	ErrInsufficientStock   = errors.New("insufficient stock")
)

type PurchaseService interface {
	Purchase(ctx context.Context, productID uuid.UUID, quantity int) (*model.Purchase, error)
	GetAllPurchases(ctx context.Context) ([]model.Purchase, error)
	GetPurchaseByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error)
}

type purchaseService struct {
	products     client.ProductClient
	purchaseRepo repository.PurchaseRepository
	hub          *ws.Hub
	logger       *zap.Logger
}

func NewPurchaseService(
	products client.ProductClient,
	purchaseRepo repository.PurchaseRepository,
	hub *ws.Hub,
	logger *zap.Logger,
) PurchaseService {
	return &purchaseService{
		products:     products,
		purchaseRepo: purchaseRepo,
		hub:          hub,
		logger:       logger,
	}
}

// Purchase resolves the current unit price from the products service, debits
// the inventory row and appends a purchase record. Debit and record insert
// are one transaction; a failure in either leaves the ledger untouched.
//
// The price is fetched once, before the transaction, and is not re-validated
// at commit. A price change in that window is recorded at the fetched value.
func (s *purchaseService) Purchase(ctx context.Context, productID uuid.UUID, quantity int) (*model.Purchase, error) {
	if quantity <= 0 {
		metrics.PurchasesTotal.WithLabelValues(metrics.OutcomeInvalidQuantity).Inc()
		return nil, ErrInvalidQuantity
	}

	product, err := s.products.FetchProduct(ctx, productID)
	if err != nil {
		switch {
		case errors.Is(err, client.ErrProductNotFound):
			metrics.PurchasesTotal.WithLabelValues(metrics.OutcomeProductNotFound).Inc()
			return nil, ErrProductNotFound
		case errors.Is(err, client.ErrMalformedResponse):
			metrics.PurchasesTotal.WithLabelValues(metrics.OutcomeMalformedUpstream).Inc()
			return nil, err
		default:
			metrics.PurchasesTotal.WithLabelValues(metrics.OutcomeUpstreamError).Inc()
			s.logger.Error("product lookup failed",
				zap.String("product_id", productID.String()),
				zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
		}
	}

	purchase := &model.Purchase{
		ProductID:  productID,
		Quantity:   quantity,
		UnitPrice:  product.Price,
		TotalPrice: product.Price.Mul(decimal.NewFromInt(int64(quantity))),
	}

	remaining, err := s.purchaseRepo.CreateWithDebit(ctx, purchase)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			metrics.PurchasesTotal.WithLabelValues(metrics.OutcomeInventoryNotFound).Inc()
			return nil, ErrInventoryNotFound
		case errors.Is(err, repository.ErrInsufficientStock):
			metrics.PurchasesTotal.WithLabelValues(metrics.OutcomeInsufficientStock).Inc()
			return nil, ErrInsufficientStock
		default:
			metrics.PurchasesTotal.WithLabelValues(metrics.OutcomeStorageError).Inc()
			s.logger.Error("purchase persistence failed",
				zap.String("product_id", productID.String()),
				zap.Int("quantity", quantity),
				zap.Error(err))
			return nil, fmt.Errorf("persist purchase: %w", err)
		}
	}

	metrics.PurchasesTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	s.hub.NotifyStockUpdate(ws.ActionPurchased, productID, remaining)
	s.logger.Info("purchase completed",
		zap.String("purchase_id", purchase.ID.String()),
		zap.String("product_id", productID.String()),
		zap.Int("quantity", quantity),
		zap.String("total_price", purchase.TotalPrice.String()),
		zap.Int("remaining_stock", remaining))

	return purchase, nil
}

func (s *purchaseService) GetAllPurchases(ctx context.Context) ([]model.Purchase, error) {
	return s.purchaseRepo.FindAll(ctx)
}

func (s *purchaseService) GetPurchaseByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	purchase, err := s.purchaseRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("purchase %s: %w", id, gorm.ErrRecordNotFound)
	}
	if err != nil {
		return nil, err
	}
	return purchase, nil
}
