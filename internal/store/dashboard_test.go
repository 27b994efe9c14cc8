package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	f := seedFixture(t, s)

	live, err := s.SaveOrder(ctx, newOrderInput(f, ItemInput{ProductID: f.products["A"].ID, Quantity: 1}))
	require.NoError(t, err)
	trashed, err := s.SaveOrder(ctx, newOrderInput(f, ItemInput{ProductID: f.products["B"].ID, Quantity: 1}))
	require.NoError(t, err)
	require.NoError(t, s.DeleteOrder(ctx, trashed.ID))

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Customers: 1, Products: 4, Orders: 1, Categories: 1}, st)
	assert.NotZero(t, live.ID)
}

func TestLatestOrders(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	empty, err := s.LatestOrders(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)

	f := seedFixture(t, s)
	var lastID uint
	for i := 0; i < 7; i++ {
		items := []ItemInput{{ProductID: f.products["A"].ID, Quantity: 1}}
		if i%2 == 0 {
			items = append(items, ItemInput{ProductID: f.products["C"].ID, Quantity: 2})
		}
		o, err := s.SaveOrder(ctx, newOrderInput(f, items...))
		require.NoError(t, err)
		lastID = o.ID
	}

	rows, err := s.LatestOrders(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, LatestOrdersLimit)

	newest := rows[0]
	assert.Equal(t, lastID, newest.ID)
	assert.Equal(t, "Alice Baker", newest.CustomerName)
	assert.EqualValues(t, 2, newest.ItemsCount)
	assert.Equal(t, "24.50", newest.TotalPrice.String())
	assert.EqualValues(t, 1, rows[1].ItemsCount)
}

func TestLatestOrdersCapsLimit(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	f := seedFixture(t, s)

	for i := 0; i < MaxLatestOrdersLimit+3; i++ {
		_, err := s.SaveOrder(ctx, newOrderInput(f, ItemInput{ProductID: f.products["B"].ID, Quantity: 1}))
		require.NoError(t, err)
	}

	rows, err := s.LatestOrders(ctx, 1000000)
	require.NoError(t, err)
	assert.Len(t, rows, MaxLatestOrdersLimit)

	rows, err = s.LatestOrders(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, rows, 7)
}
