package enums

import "testing"

func TestParseSaleStatus(t *testing.T) {
	status, err := ParseSaleStatus("open")
	if err != nil {
		t.Fatalf("ParseSaleStatus returned error: %v", err)
	}
	if status != SaleStatusOpen {
		t.Fatalf("unexpected status: %s", status)
	}
	if !status.CanSettle() {
		t.Fatal("open sales must be settleable")
	}

	if _, err := ParseSaleStatus("paid"); err == nil {
		t.Fatal("expected error for unknown status")
	}

	if SaleStatusCompleted.CanSettle() {
		t.Fatal("completed sales must not settle again")
	}
}

func TestParsePaymentMethod(t *testing.T) {
	for _, raw := range []string{"cash", "credit_card", "debit_card", "pix"} {
		method, err := ParsePaymentMethod(raw)
		if err != nil {
			t.Fatalf("ParsePaymentMethod(%q) returned error: %v", raw, err)
		}
		if !method.IsValid() {
			t.Fatalf("parsed method %q reported invalid", raw)
		}
	}

	if _, err := ParsePaymentMethod("check"); err == nil {
		t.Fatal("expected error for unsupported method")
	}
}

func TestParseDiscountKind(t *testing.T) {
	kind, err := ParseDiscountKind("percent")
	if err != nil {
		t.Fatalf("ParseDiscountKind returned error: %v", err)
	}
	if kind != DiscountKindPercent {
		t.Fatalf("unexpected kind: %s", kind)
	}

	if DiscountKind("bogo").IsValid() {
		t.Fatal("unknown kind must be invalid")
	}
}

func TestParseTaskRecurrence(t *testing.T) {
	for _, raw := range []string{"none", "weekly", "biweekly", "monthly"} {
		if _, err := ParseTaskRecurrence(raw); err != nil {
			t.Fatalf("ParseTaskRecurrence(%q) returned error: %v", raw, err)
		}
	}
	if _, err := ParseTaskRecurrence("daily"); err == nil {
		t.Fatal("expected error for unsupported recurrence")
	}
}

func TestParseStockMovementType(t *testing.T) {
	movement, err := ParseStockMovementType("sale")
	if err != nil {
		t.Fatalf("ParseStockMovementType returned error: %v", err)
	}
	if movement != StockMovementSale {
		t.Fatalf("unexpected movement type: %s", movement)
	}
}
