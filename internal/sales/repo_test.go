package sales

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendaflow/pos-backend/pkg/db/models"
	"github.com/vendaflow/pos-backend/pkg/enums"
)

func seedSale(t *testing.T, env *testEnv, status enums.SaleStatus, customerID *uuid.UUID, createdAt time.Time) *models.Sale {
	t.Helper()

	sale := &models.Sale{
		Status:     status,
		CustomerID: customerID,
		CreatedAt:  createdAt,
	}
	require.NoError(t, env.conn.Create(sale).Error)
	return sale
}

func TestRepositoryList_pagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	var seeded []*models.Sale
	for i := 0; i < 5; i++ {
		seeded = append(seeded, seedSale(t, env, enums.SaleStatusOpen, nil, base.Add(time.Duration(i)*time.Minute)))
	}

	firstPage, cursor, err := env.repo.List(ctx, listSalesParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, firstPage, 2)
	require.NotNil(t, cursor)

	// Newest first.
	assert.Equal(t, seeded[4].ID, firstPage[0].ID)
	assert.Equal(t, seeded[3].ID, firstPage[1].ID)

	secondPage, cursor2, err := env.repo.List(ctx, listSalesParams{Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, secondPage, 2)
	require.NotNil(t, cursor2)
	assert.Equal(t, seeded[2].ID, secondPage[0].ID)
	assert.Equal(t, seeded[1].ID, secondPage[1].ID)

	lastPage, cursor3, err := env.repo.List(ctx, listSalesParams{Limit: 2, Cursor: cursor2})
	require.NoError(t, err)
	require.Len(t, lastPage, 1)
	assert.Nil(t, cursor3)
	assert.Equal(t, seeded[0].ID, lastPage[0].ID)
}

func TestRepositoryList_filters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	customer := env.seedCustomer(t, "Paula")
	seedSale(t, env, enums.SaleStatusOpen, nil, base)
	completed := seedSale(t, env, enums.SaleStatusCompleted, &customer.ID, base.Add(time.Minute))
	cancelled := seedSale(t, env, enums.SaleStatusCancelled, &customer.ID, base.Add(2*time.Minute))

	byStatus, _, err := env.repo.List(ctx, listSalesParams{Status: enums.SaleStatusCompleted})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, completed.ID, byStatus[0].ID)

	byCustomer, _, err := env.repo.List(ctx, listSalesParams{CustomerID: customer.ID})
	require.NoError(t, err)
	require.Len(t, byCustomer, 2)
	assert.Equal(t, cancelled.ID, byCustomer[0].ID)
	assert.Equal(t, completed.ID, byCustomer[1].ID)
}
