package products

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/vendaflow/pos-backend/pkg/db/models"
	"github.com/vendaflow/pos-backend/pkg/enums"
	pkgerrors "github.com/vendaflow/pos-backend/pkg/errors"
)

func TestCreate_RecordsInitialStockMovement(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	product, err := svc.Create(ctx, CreateParams{
		Name:         "Espresso Beans 1kg",
		PriceCents:   4500,
		InitialStock: 12,
		MinStock:     3,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if product.ID == uuid.Nil {
		t.Fatal("expected product id to be assigned")
	}

	movements, _, err := repo.ListMovements(ctx, listMovementsParams{ProductID: product.ID})
	if err != nil {
		t.Fatalf("list movements: %v", err)
	}
	if len(movements) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(movements))
	}
	if movements[0].Type != enums.StockMovementRestock {
		t.Fatalf("unexpected movement type: %s", movements[0].Type)
	}
	if movements[0].PreviousStock != 0 || movements[0].NewStock != 12 {
		t.Fatalf("unexpected movement levels: %+v", movements[0])
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		params CreateParams
	}{
		{"blank name", CreateParams{Name: "  ", PriceCents: 100}},
		{"negative price", CreateParams{Name: "Thing", PriceCents: -1}},
		{"negative stock", CreateParams{Name: "Thing", PriceCents: 100, InitialStock: -1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.params)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestAdjustStock_DecrementAndMovement(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	product, err := svc.Create(ctx, CreateParams{Name: "Soda Can", PriceCents: 450, InitialStock: 10})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	reason := "breakage"
	updated, err := svc.AdjustStock(ctx, AdjustStockParams{
		ProductID: product.ID,
		Delta:     -4,
		Type:      enums.StockMovementAdjustment,
		Reason:    &reason,
	})
	if err != nil {
		t.Fatalf("AdjustStock returned error: %v", err)
	}
	if updated.CurrentStock != 6 {
		t.Fatalf("stock = %d, want 6", updated.CurrentStock)
	}

	movements, _, err := repo.ListMovements(ctx, listMovementsParams{ProductID: product.ID})
	if err != nil {
		t.Fatalf("list movements: %v", err)
	}
	if len(movements) != 2 {
		t.Fatalf("expected 2 movements, got %d", len(movements))
	}

	var adjustment *models.StockMovement
	for i := range movements {
		if movements[i].Type == enums.StockMovementAdjustment {
			adjustment = &movements[i]
		}
	}
	if adjustment == nil {
		t.Fatal("adjustment movement missing")
	}
	if adjustment.PreviousStock != 10 || adjustment.NewStock != 6 || adjustment.Quantity != 4 {
		t.Fatalf("unexpected adjustment movement: %+v", adjustment)
	}
}

func TestAdjustStock_InsufficientStockAborts(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	product, err := svc.Create(ctx, CreateParams{Name: "Rare Item", PriceCents: 9900, InitialStock: 2})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.AdjustStock(ctx, AdjustStockParams{
		ProductID: product.ID,
		Delta:     -5,
		Type:      enums.StockMovementAdjustment,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}

	details, ok := typed.Details().(map[string]any)
	if !ok || details["product_name"] != "Rare Item" {
		t.Fatalf("expected details naming the product, got %v", typed.Details())
	}

	// the failed adjustment must not leak a movement or change stock
	reloaded, err := repo.GetByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.CurrentStock != 2 {
		t.Fatalf("stock changed after aborted adjustment: %d", reloaded.CurrentStock)
	}
	movements, _, err := repo.ListMovements(ctx, listMovementsParams{ProductID: product.ID})
	if err != nil {
		t.Fatalf("list movements: %v", err)
	}
	if len(movements) != 1 {
		t.Fatalf("expected only the initial movement, got %d", len(movements))
	}
}

func TestAdjustStock_RejectsSaleType(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AdjustStock(ctx, AdjustStockParams{
		ProductID: uuid.New(),
		Delta:     -1,
		Type:      enums.StockMovementSale,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdate_PartialFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	product, err := svc.Create(ctx, CreateParams{Name: "Old Name", PriceCents: 1000})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newName := "New Name"
	newPrice := int64(1250)
	updated, err := svc.Update(ctx, product.ID, UpdateParams{Name: &newName, PriceCents: &newPrice})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Name != "New Name" || updated.PriceCents != 1250 {
		t.Fatalf("unexpected update result: %+v", updated)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Get(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestList_CursorPagination(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := svc.Create(ctx, CreateParams{Name: "Item", PriceCents: int64(100 + i)}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	first, err := svc.List(ctx, ListParams{Limit: 3})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(first.Items) != 3 || first.Cursor == "" {
		t.Fatalf("expected full first page with cursor, got %d items cursor=%q", len(first.Items), first.Cursor)
	}

	second, err := svc.List(ctx, ListParams{Limit: 3, Cursor: first.Cursor})
	if err != nil {
		t.Fatalf("List second page returned error: %v", err)
	}
	if len(second.Items) != 2 || second.Cursor != "" {
		t.Fatalf("expected final page of 2 without cursor, got %d items cursor=%q", len(second.Items), second.Cursor)
	}
}

func TestDelete_DeactivatesProduct(t *testing.T) {
	svc, _, conn := newTestService(t)
	ctx := context.Background()

	product, err := svc.Create(ctx, CreateParams{Name: "Seasonal Blend", PriceCents: 2000})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, product.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var reloaded models.Product
	if err := conn.First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("expected row to survive deactivation: %v", err)
	}
	if reloaded.IsActive {
		t.Fatal("expected product deactivated")
	}

	if err := svc.Delete(ctx, product.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict on repeat delete, got %v", err)
	}
	if err := svc.Delete(ctx, uuid.New()); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown product, got %v", err)
	}
}

func TestCreate_ControlsStock(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tracked, err := svc.Create(ctx, CreateParams{Name: "Beans", PriceCents: 1000})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !tracked.ControlsStock {
		t.Fatal("expected stock control on by default")
	}

	byWeight := false
	weighed, err := svc.Create(ctx, CreateParams{Name: "Queijo por peso", PriceCents: 4000, ControlsStock: &byWeight})
	if err != nil {
		t.Fatalf("create weighed: %v", err)
	}
	if weighed.ControlsStock {
		t.Fatal("expected stock control off for weighed item")
	}

	enable := true
	updated, err := svc.Update(ctx, weighed.ID, UpdateParams{ControlsStock: &enable})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.ControlsStock {
		t.Fatal("expected stock control enabled after update")
	}
}
