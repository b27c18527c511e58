package coupons

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vendaflow/pos-backend/pkg/config"
	"github.com/vendaflow/pos-backend/pkg/db/models"
	"github.com/vendaflow/pos-backend/pkg/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:coupons_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Customer{}, &models.Coupon{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func testLoyaltyConfig() config.LoyaltyConfig {
	return config.LoyaltyConfig{
		Enabled:          true,
		ThresholdCents:   5000,
		UpgradeTierCents: 10000,
		BasePercent:      10,
		UpgradePercent:   15,
		ExpiryDays:       30,
	}
}

func newTestService(t *testing.T) (Service, Repository, *gorm.DB) {
	t.Helper()

	conn := newTestDB(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo, testLoyaltyConfig(), logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo, conn
}
