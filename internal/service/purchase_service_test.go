package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go-inventory-ledger/internal/client"
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Mock ProductClient
type mockProductClient struct {
	mu      sync.Mutex
	product *client.Product
	err     error
	calls   int
}

func (m *mockProductClient) FetchProduct(ctx context.Context, id uuid.UUID) (*client.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.product, nil
}

// Mock PurchaseRepository backed by an in-memory stock map. CreateWithDebit
// mirrors the storage contract: debit and insert happen under one lock, and
// any failure leaves the stock untouched.
type mockPurchaseRepo struct {
	mu         sync.Mutex
	stock      map[uuid.UUID]int
	purchases  []model.Purchase
	failCreate error
}

func newMockPurchaseRepo() *mockPurchaseRepo {
	return &mockPurchaseRepo{stock: make(map[uuid.UUID]int)}
}

func (m *mockPurchaseRepo) CreateWithDebit(ctx context.Context, p *model.Purchase) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	qty, ok := m.stock[p.ProductID]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	if qty < p.Quantity {
		return 0, repository.ErrInsufficientStock
	}
	if m.failCreate != nil {
		return 0, m.failCreate
	}

	m.stock[p.ProductID] = qty - p.Quantity
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	m.purchases = append(m.purchases, *p)
	return qty - p.Quantity, nil
}

func (m *mockPurchaseRepo) FindAll(ctx context.Context) ([]model.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Purchase, len(m.purchases))
	copy(out, m.purchases)
	return out, nil
}

func (m *mockPurchaseRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.purchases {
		if m.purchases[i].ID == id {
			p := m.purchases[i]
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPurchaseRepo) stockOf(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stock[id]
}

func (m *mockPurchaseRepo) purchaseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.purchases)
}

func newTestPurchaseService(products client.ProductClient, repo *mockPurchaseRepo) PurchaseService {
	return NewPurchaseService(products, repo, nil, zap.NewNop())
}

func priceProduct(id uuid.UUID, price string) *client.Product {
	return &client.Product{
		ID:    id,
		Name:  "widget",
		Price: decimal.RequireFromString(price),
	}
}

func TestPurchase_Success(t *testing.T) {
	productID := uuid.New()
	products := &mockProductClient{product: priceProduct(productID, "10.00")}
	repo := newMockPurchaseRepo()
	repo.stock[productID] = 10

	svc := newTestPurchaseService(products, repo)

	purchase, err := svc.Purchase(context.Background(), productID, 3)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if purchase.ID == uuid.Nil {
		t.Error("expected a generated purchase id")
	}
	if purchase.Quantity != 3 {
		t.Errorf("expected quantity 3, got %d", purchase.Quantity)
	}
	if !purchase.UnitPrice.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("expected unit price 10.00, got %s", purchase.UnitPrice)
	}
	if !purchase.TotalPrice.Equal(decimal.RequireFromString("30.00")) {
		t.Errorf("expected total price 30.00, got %s", purchase.TotalPrice)
	}
	if got := repo.stockOf(productID); got != 7 {
		t.Errorf("expected remaining stock 7, got %d", got)
	}
}

func TestPurchase_TotalPriceScale(t *testing.T) {
	productID := uuid.New()
	products := &mockProductClient{product: priceProduct(productID, "99.99")}
	repo := newMockPurchaseRepo()
	repo.stock[productID] = 5

	svc := newTestPurchaseService(products, repo)

	purchase, err := svc.Purchase(context.Background(), productID, 2)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if !purchase.TotalPrice.Equal(decimal.RequireFromString("199.98")) {
		t.Errorf("expected total price 199.98, got %s", purchase.TotalPrice)
	}
}

func TestPurchase_InvalidQuantity(t *testing.T) {
	productID := uuid.New()
	products := &mockProductClient{product: priceProduct(productID, "10.00")}
	repo := newMockPurchaseRepo()
	repo.stock[productID] = 10

	svc := newTestPurchaseService(products, repo)

	for _, quantity := range []int{0, -1} {
		if _, err := svc.Purchase(context.Background(), productID, quantity); !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("quantity %d: expected ErrInvalidQuantity, got %v", quantity, err)
		}
	}

	if products.calls != 0 {
		t.Errorf("expected no upstream calls for invalid quantity, got %d", products.calls)
	}
	if got := repo.stockOf(productID); got != 10 {
		t.Errorf("expected stock unchanged at 10, got %d", got)
	}
}

func TestPurchase_ProductNotFound(t *testing.T) {
	productID := uuid.New()
	products := &mockProductClient{err: client.ErrProductNotFound}
	repo := newMockPurchaseRepo()
	repo.stock[productID] = 10

	svc := newTestPurchaseService(products, repo)

	if _, err := svc.Purchase(context.Background(), productID, 1); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
	if repo.purchaseCount() != 0 {
		t.Error("expected no purchase record")
	}
	if got := repo.stockOf(productID); got != 10 {
		t.Errorf("expected stock unchanged at 10, got %d", got)
	}
}

func TestPurchase_UpstreamUnavailable(t *testing.T) {
	productID := uuid.New()
	products := &mockProductClient{err: client.ErrServiceUnavailable}
	repo := newMockPurchaseRepo()
	repo.stock[productID] = 10

	svc := newTestPurchaseService(products, repo)

	if _, err := svc.Purchase(context.Background(), productID, 1); !errors.Is(err, ErrUpstreamUnavailable) {
		t.Errorf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if repo.purchaseCount() != 0 {
		t.Error("expected no purchase record")
	}
	if got := repo.stockOf(productID); got != 10 {
		t.Errorf("expected stock unchanged at 10, got %d", got)
	}
}

func TestPurchase_MalformedUpstream(t *testing.T) {
	productID := uuid.New()
	products := &mockProductClient{err: client.ErrMalformedResponse}
	repo := newMockPurchaseRepo()
	repo.stock[productID] = 10

	svc := newTestPurchaseService(products, repo)

	if _, err := svc.Purchase(context.Background(), productID, 1); !errors.Is(err, client.ErrMalformedResponse) {
		t.Errorf("expected ErrMalformedResponse, got %v", err)
	}
	if repo.purchaseCount() != 0 {
		t.Error("expected no purchase record")
	}
}

func TestPurchase_InventoryNotFound(t *testing.T) {
	productID := uuid.New()
	products := &mockProductClient{product: priceProduct(productID, "10.00")}
	repo := newMockPurchaseRepo() // no stock row for productID

	svc := newTestPurchaseService(products, repo)

	if _, err := svc.Purchase(context.Background(), productID, 1); !errors.Is(err, ErrInventoryNotFound) {
		t.Errorf("expected ErrInventoryNotFound, got %v", err)
	}
	if repo.purchaseCount() != 0 {
		t.Error("expected no purchase record")
	}
}

func TestPurchase_InsufficientStock(t *testing.T) {
	productID := uuid.New()
	products := &mockProductClient{product: priceProduct(productID, "10.00")}
	repo := newMockPurchaseRepo()
	repo.stock[productID] = 2

	svc := newTestPurchaseService(products, repo)

	if _, err := svc.Purchase(context.Background(), productID, 3); !errors.Is(err, ErrInsufficientStock) {
		t.Errorf("expected ErrInsufficientStock, got %v", err)
	}
	if got := repo.stockOf(productID); got != 2 {
		t.Errorf("expected stock unchanged at 2, got %d", got)
	}
	if repo.purchaseCount() != 0 {
		t.Error("expected no purchase record")
	}
}

func TestPurchase_StorageFailureLeavesNoPartialState(t *testing.T) {
	productID := uuid.New()
	products := &mockProductClient{product: priceProduct(productID, "10.00")}
	repo := newMockPurchaseRepo()
	repo.stock[productID] = 10
	repo.failCreate = errors.New("connection reset")

	svc := newTestPurchaseService(products, repo)

	if _, err := svc.Purchase(context.Background(), productID, 1); err == nil {
		t.Fatal("expected error, got success")
	}
	if got := repo.stockOf(productID); got != 10 {
		t.Errorf("expected stock unchanged at 10, got %d", got)
	}
	if repo.purchaseCount() != 0 {
		t.Error("expected no purchase record")
	}
}

func TestPurchase_Concurrent(t *testing.T) {
	initialStock := 20
	totalRequests := 50

	productID := uuid.New()
	products := &mockProductClient{product: priceProduct(productID, "10.00")}
	repo := newMockPurchaseRepo()
	repo.stock[productID] = initialStock

	svc := newTestPurchaseService(products, repo)

	var successCount atomic.Int32
	var insufficientCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Purchase(context.Background(), productID, 1)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, ErrInsufficientStock):
				insufficientCount.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := successCount.Load(); got != int32(initialStock) {
		t.Errorf("expected %d successes, got %d", initialStock, got)
	}
	if got := insufficientCount.Load(); got != int32(totalRequests-initialStock) {
		t.Errorf("expected %d insufficient-stock failures, got %d", totalRequests-initialStock, got)
	}
	if got := repo.stockOf(productID); got != 0 {
		t.Errorf("expected final stock 0, got %d", got)
	}
	if got := repo.purchaseCount(); got != initialStock {
		t.Errorf("expected %d purchase records, got %d", initialStock, got)
	}
}
