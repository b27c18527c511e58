package customers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vendaflow/pos-backend/pkg/db/models"
	"github.com/vendaflow/pos-backend/pkg/enums"
	pkgerrors "github.com/vendaflow/pos-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	dsn := "file:customers_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Customer{}, &models.Sale{}, &models.SaleItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(NewRepository(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}

func TestCreateAndGetProfile(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	customer, err := svc.Create(ctx, CreateParams{Name: "Maria Silva"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// two settled sales and one open tab; only settled spend counts
	sales := []models.Sale{
		{CustomerID: &customer.ID, Status: enums.SaleStatusCompleted, TotalCents: 3000},
		{CustomerID: &customer.ID, Status: enums.SaleStatusCompleted, TotalCents: 2500},
		{CustomerID: &customer.ID, Status: enums.SaleStatusOpen, TotalCents: 0},
	}
	for i := range sales {
		if err := conn.Create(&sales[i]).Error; err != nil {
			t.Fatalf("seed sale: %v", err)
		}
	}

	profile, err := svc.Get(ctx, customer.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if profile.TotalSpentCents != 5500 {
		t.Fatalf("total spent = %d, want 5500", profile.TotalSpentCents)
	}
}

func TestCreate_RequiresName(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateParams{Name: "   "})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	name := "Anyone"
	_, err := svc.Update(context.Background(), uuid.New(), UpdateParams{Name: &name})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestList_Search(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"Ana Costa", "Bruno Lima", "Ana Paula"} {
		if _, err := svc.Create(ctx, CreateParams{Name: name}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	result, err := svc.List(ctx, ListParams{Search: "ana"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(result.Items))
	}
}

func TestDelete(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	customer, err := svc.Create(ctx, CreateParams{Name: "Carlos Souza"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, customer.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var count int64
	if err := conn.Model(&models.Customer{}).Where("id = ?", customer.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatal("expected customer row removed")
	}

	if err := svc.Delete(ctx, customer.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found on repeat delete, got %v", err)
	}
}
