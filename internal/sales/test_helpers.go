package sales

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vendaflow/pos-backend/internal/coupons"
	"github.com/vendaflow/pos-backend/internal/finance"
	"github.com/vendaflow/pos-backend/internal/notifications"
	"github.com/vendaflow/pos-backend/internal/pricing"
	"github.com/vendaflow/pos-backend/internal/products"
	"github.com/vendaflow/pos-backend/pkg/config"
	"github.com/vendaflow/pos-backend/pkg/db/models"
	"github.com/vendaflow/pos-backend/pkg/logger"
)

type testEnv struct {
	svc     Service
	conn    *gorm.DB
	repo    Repository
	prodSvc products.Service
}

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := "file:sales_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = conn.AutoMigrate(
		&models.Product{},
		&models.StockMovement{},
		&models.Customer{},
		&models.Coupon{},
		&models.Sale{},
		&models.SaleItem{},
		&models.FinancialTransaction{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logg := logger.New(logger.Options{ServiceName: "test"})
	runner := testTxRunner{db: conn}

	loyaltyCfg := config.LoyaltyConfig{
		Enabled:          true,
		ThresholdCents:   5000,
		UpgradeTierCents: 10000,
		BasePercent:      10,
		UpgradePercent:   15,
		ExpiryDays:       30,
	}

	productRepo := products.NewRepository(conn)
	prodSvc, err := products.NewService(productRepo, runner, logg)
	if err != nil {
		t.Fatalf("products service: %v", err)
	}

	couponRepo := coupons.NewRepository(conn)
	couponSvc, err := coupons.NewService(couponRepo, loyaltyCfg, logg)
	if err != nil {
		t.Fatalf("coupons service: %v", err)
	}

	notifySvc, err := notifications.NewService(notifications.NewRepository(conn), logg)
	if err != nil {
		t.Fatalf("notifications service: %v", err)
	}

	svc, err := NewService(Deps{
		Repo:          NewRepository(conn),
		Products:      productRepo,
		Coupons:       couponSvc,
		CouponRepo:    couponRepo,
		Finance:       finance.NewRepository(conn),
		Notifications: notifySvc,
		Tx:            runner,
		Engine:        pricing.NewEngine(config.PricingConfig{AllowStacking: true, ClampPercent: true}),
		Loyalty:       coupons.NewLoyaltyPolicy(loyaltyCfg),
		Logger:        logg,
	})
	if err != nil {
		t.Fatalf("sales service: %v", err)
	}

	return &testEnv{svc: svc, conn: conn, repo: NewRepository(conn), prodSvc: prodSvc}
}

func (e *testEnv) seedProduct(t *testing.T, name string, priceCents int64, stock int) *models.Product {
	t.Helper()

	product := &models.Product{Name: name, PriceCents: priceCents, ControlsStock: true, CurrentStock: stock, IsActive: true}
	if err := e.conn.Create(product).Error; err != nil {
		t.Fatalf("seed product %s: %v", name, err)
	}
	return product
}

func (e *testEnv) seedUntrackedProduct(t *testing.T, name string, priceCents int64) *models.Product {
	t.Helper()

	product := &models.Product{Name: name, PriceCents: priceCents, ControlsStock: false, IsActive: true}
	if err := e.conn.Create(product).Error; err != nil {
		t.Fatalf("seed untracked product %s: %v", name, err)
	}
	return product
}

func (e *testEnv) seedCustomer(t *testing.T, name string) *models.Customer {
	t.Helper()

	customer := &models.Customer{Name: name}
	if err := e.conn.Create(customer).Error; err != nil {
		t.Fatalf("seed customer %s: %v", name, err)
	}
	return customer
}

func (e *testEnv) seedCoupon(t *testing.T, coupon *models.Coupon) *models.Coupon {
	t.Helper()

	if err := e.conn.Create(coupon).Error; err != nil {
		t.Fatalf("seed coupon %s: %v", coupon.Code, err)
	}
	return coupon
}
