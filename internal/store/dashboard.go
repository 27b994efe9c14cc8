package store

import (
	"context"
	"time"

	"github.com/nlstn/go-posadmin/internal/apperrors"
	"github.com/nlstn/go-posadmin/internal/models"
	"github.com/nlstn/go-posadmin/internal/pricing"
)

// Stats holds the dashboard counters. Trashed orders are not counted.
type Stats struct {
	Customers  int64 `json:"customers"`
	Products   int64 `json:"products"`
	Orders     int64 `json:"orders"`
	Categories int64 `json:"categories"`
}

// OrderSummary is one row of the latest orders widget.
type OrderSummary struct {
	ID           uint               `json:"id"`
	CustomerName string             `json:"customer_name"`
	Status       models.OrderStatus `json:"status"`
	TotalPrice   pricing.Money      `json:"total_price"`
	ItemsCount   int64              `json:"items_count"`
	CreatedAt    time.Time          `json:"created_at"`
}

const (
	// LatestOrdersLimit is the number of rows the dashboard shows.
	LatestOrdersLimit = 5
	// MaxLatestOrdersLimit caps the rows a single request may load.
	MaxLatestOrdersLimit = 50
)

// Stats counts the entities shown on the dashboard.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	db := s.conn(ctx)
	var st Stats
	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&models.Customer{}, &st.Customers},
		{&models.Product{}, &st.Products},
		{&models.Order{}, &st.Orders},
		{&models.Category{}, &st.Categories},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dest).Error; err != nil {
			return Stats{}, apperrors.Persistence("count dashboard stats", err)
		}
	}
	return st, nil
}

// LatestOrders returns the newest live orders with their item counts.
// A limit below one selects LatestOrdersLimit; larger limits are capped at
// MaxLatestOrdersLimit.
func (s *Store) LatestOrders(ctx context.Context, limit int) ([]OrderSummary, error) {
	switch {
	case limit < 1:
		limit = LatestOrdersLimit
	case limit > MaxLatestOrdersLimit:
		limit = MaxLatestOrdersLimit
	}

	var orders []models.Order
	err := s.conn(ctx).Preload("Customer").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, apperrors.Persistence("list latest orders", err)
	}
	if len(orders) == 0 {
		return []OrderSummary{}, nil
	}

	ids := make([]uint, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	var rows []struct {
		OrderID uint
		Items   int64
	}
	err = s.conn(ctx).Model(&models.OrderItem{}).
		Select("order_id, COUNT(*) AS items").
		Where("order_id IN ?", ids).
		Group("order_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Persistence("count order items", err)
	}
	itemCounts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		itemCounts[r.OrderID] = r.Items
	}

	out := make([]OrderSummary, len(orders))
	for i, o := range orders {
		out[i] = OrderSummary{
			ID:         o.ID,
			Status:     o.Status,
			TotalPrice: o.TotalPrice,
			ItemsCount: itemCounts[o.ID],
			CreatedAt:  o.CreatedAt,
		}
		if o.Customer != nil {
			out[i].CustomerName = o.Customer.Name
		}
	}
	return out, nil
}
