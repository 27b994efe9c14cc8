package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nlstn/go-posadmin/internal/apperrors"
	"github.com/nlstn/go-posadmin/internal/models"
	"github.com/nlstn/go-posadmin/internal/pricing"
	"github.com/nlstn/go-posadmin/internal/skiptoken"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ItemInput is one submitted order line. Prices are never taken from input:
// a kept item retains its stored price and anything else captures the current
// product price.
type ItemInput struct {
	// ID identifies an existing item of the order. Zero adds a new item.
	ID        uint `json:"id,omitempty"`
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// OrderInput is the editable state of an order. The item set replaces the
// stored one.
type OrderInput struct {
	// ID selects the order to update. Zero creates a new order.
	ID            uint                 `json:"id,omitempty"`
	CustomerID    uint                 `json:"customer_id"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	// Status defaults to new on create and to the stored status on update.
	Status models.OrderStatus `json:"status,omitempty"`
	Items  []ItemInput        `json:"items"`
	// ExpectedVersion, when non-zero, must equal the stored version.
	ExpectedVersion int `json:"-"`
}

// Validate checks the input without touching the database.
func (in OrderInput) Validate() error {
	if in.CustomerID == 0 {
		return apperrors.Validation("customer_id", "customer is required")
	}
	if !in.PaymentMethod.Valid() {
		return apperrors.Validation("payment_method", fmt.Sprintf("unknown payment method %q", in.PaymentMethod))
	}
	if in.Status != "" && !in.Status.Valid() {
		return apperrors.Validation("status", fmt.Sprintf("unknown order status %q", in.Status))
	}
	if len(in.Items) == 0 {
		return apperrors.Validation("items", "an order needs at least one item")
	}
	return validateItems(in.Items)
}

func validateItems(items []ItemInput) error {
	seen := make(map[uint]bool, len(items))
	for i, item := range items {
		if item.ProductID == 0 {
			return apperrors.Validation(fmt.Sprintf("items[%d].product_id", i), "product is required")
		}
		if item.Quantity < 1 {
			return apperrors.Validation(fmt.Sprintf("items[%d].quantity", i),
				fmt.Sprintf("quantity must be at least 1, got %d", item.Quantity))
		}
		if item.ID != 0 {
			if seen[item.ID] {
				return apperrors.Validation(fmt.Sprintf("items[%d].id", i), fmt.Sprintf("item %d appears twice", item.ID))
			}
			seen[item.ID] = true
		}
	}
	return nil
}

// SaveOrder creates (ID == 0) or updates an order together with its items and
// recomputed total in a single transaction.
func (s *Store) SaveOrder(ctx context.Context, in OrderInput) (*models.Order, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	op := "create order"
	if in.ID != 0 {
		op = "update order"
	}

	var saved models.Order
	err := s.runInTransaction(ctx, op, func(ctx context.Context, tx *gorm.DB) error {
		if err := ensureCustomer(tx, in.CustomerID); err != nil {
			return err
		}

		var current models.Order
		stored := map[uint]models.OrderItem{}
		if in.ID != 0 {
			if err := first(tx.Preload("Items"), &current, "order", in.ID); err != nil {
				return err
			}
			if in.ExpectedVersion != 0 && in.ExpectedVersion != current.Version {
				return staleVersion(current.ID, in.ExpectedVersion, current.Version)
			}
			for _, item := range current.Items {
				stored[item.ID] = item
			}
		}

		status := in.Status
		switch {
		case status == "" && in.ID == 0:
			status = models.StatusNew
		case status == "":
			status = current.Status
		case in.ID == 0:
			if status != models.StatusNew && !s.permissiveStatus {
				return apperrors.Validation("status", fmt.Sprintf("new orders start as %q", models.StatusNew))
			}
		default:
			if err := s.checkTransition(current.Status, status); err != nil {
				return err
			}
		}

		items, err := priceItems(ctx, catalogOn(tx), in.Items, stored)
		if err != nil {
			return err
		}
		lines := make([]pricing.Line, len(items))
		for i, item := range items {
			lines[i] = item.Line()
		}
		if err := pricing.ValidateLines(lines); err != nil {
			return err
		}
		total := pricing.RecomputeTotal(lines)

		if in.ID == 0 {
			order := models.Order{
				CustomerID:    in.CustomerID,
				PaymentMethod: in.PaymentMethod,
				Status:        status,
				TotalPrice:    total,
				Version:       1,
			}
			if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
				return err
			}
			for i := range items {
				items[i].OrderID = order.ID
			}
			if err := tx.Omit("Product").Create(&items).Error; err != nil {
				return err
			}
			saved.ID = order.ID
		} else {
			if err := replaceItems(tx, current.ID, items); err != nil {
				return err
			}
			res := tx.Model(&models.Order{}).
				Where("id = ? AND version = ?", current.ID, current.Version).
				Updates(map[string]interface{}{
					"customer_id":    in.CustomerID,
					"payment_method": in.PaymentMethod,
					"status":         status,
					"total_price":    total,
					"version":        gorm.Expr("version + 1"),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperrors.Conflict(fmt.Sprintf("order %d was modified concurrently", current.ID))
			}
			saved.ID = current.ID
		}

		return loadOrder(tx, &saved, saved.ID)
	})
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "order saved", "order_id", saved.ID, "version", saved.Version, "total", saved.TotalPrice.String())
	return &saved, nil
}

// PreviewTotal prices items the way SaveOrder would and returns their total
// without writing anything. With a non-zero orderID, items naming an existing
// item of that order keep its stored price. An empty item list totals 0.00.
func (s *Store) PreviewTotal(ctx context.Context, orderID uint, items []ItemInput) (pricing.Money, error) {
	if err := validateItems(items); err != nil {
		return pricing.Money{}, err
	}

	db := s.conn(ctx)
	stored := map[uint]models.OrderItem{}
	if orderID != 0 {
		var current models.Order
		if err := first(db.Preload("Items"), &current, "order", orderID); err != nil {
			return pricing.Money{}, err
		}
		for _, item := range current.Items {
			stored[item.ID] = item
		}
	}

	priced, err := priceItems(ctx, catalogOn(db), items, stored)
	if err != nil {
		return pricing.Money{}, classify("preview order total", err)
	}
	lines := make([]pricing.Line, len(priced))
	for i, item := range priced {
		lines[i] = item.Line()
	}
	if err := pricing.ValidateLines(lines); err != nil {
		return pricing.Money{}, err
	}
	return pricing.RecomputeTotal(lines), nil
}

// priceItems builds the item rows for the submitted lines. Prices are captured
// once per product.
func priceItems(ctx context.Context, catalog pricing.Catalog, inputs []ItemInput, stored map[uint]models.OrderItem) ([]models.OrderItem, error) {
	captured := map[uint]pricing.Money{}
	items := make([]models.OrderItem, 0, len(inputs))
	for i, in := range inputs {
		item := models.OrderItem{ID: in.ID, ProductID: in.ProductID, Quantity: in.Quantity}
		if in.ID != 0 {
			prev, ok := stored[in.ID]
			if !ok {
				nf := apperrors.NotFound("order item", in.ID)
				nf.Target = fmt.Sprintf("items[%d].id", i)
				return nil, nf
			}
			if prev.ProductID == in.ProductID {
				item.Price = prev.Price
				items = append(items, item)
				continue
			}
		}
		price, ok := captured[in.ProductID]
		if !ok {
			var err error
			price, err = pricing.CaptureUnitPrice(ctx, catalog, in.ProductID)
			if err != nil {
				var appErr *apperrors.Error
				if errors.As(err, &appErr) && appErr.Target == "" {
					appErr.Target = fmt.Sprintf("items[%d].product_id", i)
				}
				return nil, err
			}
			captured[in.ProductID] = price
		}
		item.Price = price
		items = append(items, item)
	}
	return items, nil
}

// replaceItems makes the stored item set of an order equal to items.
func replaceItems(tx *gorm.DB, orderID uint, items []models.OrderItem) error {
	keep := make([]uint, 0, len(items))
	for _, item := range items {
		if item.ID != 0 {
			keep = append(keep, item.ID)
		}
	}

	del := tx.Where("order_id = ?", orderID)
	if len(keep) > 0 {
		del = del.Where("id NOT IN ?", keep)
	}
	if err := del.Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}

	var added []models.OrderItem
	for _, item := range items {
		if item.ID == 0 {
			item.OrderID = orderID
			added = append(added, item)
			continue
		}
		if err := tx.Model(&models.OrderItem{}).
			Where("id = ? AND order_id = ?", item.ID, orderID).
			Updates(map[string]interface{}{
				"product_id": item.ProductID,
				"quantity":   item.Quantity,
				"price":      item.Price,
			}).Error; err != nil {
			return err
		}
	}
	if len(added) > 0 {
		if err := tx.Omit("Product").Create(&added).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) checkTransition(from, to models.OrderStatus) error {
	if s.permissiveStatus || from.CanTransitionTo(to) {
		return nil
	}
	return apperrors.InvalidTransition(string(from), string(to))
}

func staleVersion(id uint, expected, actual int) error {
	return apperrors.Conflict(fmt.Sprintf("order %d is at version %d, not %d", id, actual, expected))
}

func loadOrder(db *gorm.DB, dest *models.Order, id uint) error {
	return first(db.Preload("Customer").Preload("Items", func(q *gorm.DB) *gorm.DB {
		return q.Order("id ASC")
	}).Preload("Items.Product"), dest, "order", id)
}

// GetOrder loads a live order with its customer and items.
func (s *Store) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := loadOrder(s.conn(ctx), &o, id); err != nil {
		return nil, err
	}
	return &o, nil
}

// GetOrderWithTrashed loads an order whether or not it is soft-deleted.
func (s *Store) GetOrderWithTrashed(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := loadOrder(s.conn(ctx).Unscoped(), &o, id); err != nil {
		return nil, err
	}
	return &o, nil
}

// TransitionOrderStatus changes only the status of a live order.
func (s *Store) TransitionOrderStatus(ctx context.Context, id uint, next models.OrderStatus, expectedVersion int) (*models.Order, error) {
	if !next.Valid() {
		return nil, apperrors.Validation("status", fmt.Sprintf("unknown order status %q", next))
	}
	var saved models.Order
	err := s.runInTransaction(ctx, "transition order status", func(ctx context.Context, tx *gorm.DB) error {
		var current models.Order
		if err := first(tx, &current, "order", id); err != nil {
			return err
		}
		if expectedVersion != 0 && expectedVersion != current.Version {
			return staleVersion(id, expectedVersion, current.Version)
		}
		if err := s.checkTransition(current.Status, next); err != nil {
			return err
		}
		res := tx.Model(&models.Order{}).
			Where("id = ? AND version = ?", id, current.Version).
			Updates(map[string]interface{}{
				"status":  next,
				"version": gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.Conflict(fmt.Sprintf("order %d was modified concurrently", id))
		}
		return loadOrder(tx, &saved, id)
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// DeleteOrder soft-deletes an order. Its items stay so it can be restored.
func (s *Store) DeleteOrder(ctx context.Context, id uint) error {
	n, err := s.DeleteOrders(ctx, []uint{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NotFound("order", id)
	}
	return nil
}

// DeleteOrders soft-deletes the live orders among ids and returns how many were deleted.
func (s *Store) DeleteOrders(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := s.conn(ctx).Where("id IN ?", ids).Delete(&models.Order{})
	if res.Error != nil {
		return 0, apperrors.Persistence("delete orders", res.Error)
	}
	return res.RowsAffected, nil
}

// RestoreOrder clears the soft delete of an order. Restoring a live order is a no-op.
func (s *Store) RestoreOrder(ctx context.Context, id uint) (*models.Order, error) {
	var restored models.Order
	err := s.runInTransaction(ctx, "restore order", func(ctx context.Context, tx *gorm.DB) error {
		ok, err := exists(tx.Unscoped(), &models.Order{}, id)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.NotFound("order", id)
		}
		if _, err := restoreOrders(tx, []uint{id}); err != nil {
			return err
		}
		return loadOrder(tx, &restored, id)
	})
	if err != nil {
		return nil, err
	}
	return &restored, nil
}

// RestoreOrders restores the trashed orders among ids and returns how many were restored.
func (s *Store) RestoreOrders(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := restoreOrders(s.conn(ctx), ids)
	if err != nil {
		return 0, apperrors.Persistence("restore orders", err)
	}
	return n, nil
}

func restoreOrders(db *gorm.DB, ids []uint) (int64, error) {
	res := db.Unscoped().Model(&models.Order{}).
		Where("id IN ? AND deleted_at IS NOT NULL", ids).
		Updates(map[string]interface{}{
			"deleted_at": nil,
			"version":    gorm.Expr("version + 1"),
		})
	return res.RowsAffected, res.Error
}

// ForceDeleteOrder permanently removes an order, trashed or not, and its items.
func (s *Store) ForceDeleteOrder(ctx context.Context, id uint) error {
	n, err := s.ForceDeleteOrders(ctx, []uint{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NotFound("order", id)
	}
	return nil
}

// ForceDeleteOrders permanently removes the orders among ids with their items.
func (s *Store) ForceDeleteOrders(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	err := s.runInTransaction(ctx, "force delete orders", func(ctx context.Context, tx *gorm.DB) error {
		if err := tx.Where("order_id IN ?", ids).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Unscoped().Where("id IN ?", ids).Delete(&models.Order{})
		if res.Error != nil {
			return res.Error
		}
		n = res.RowsAffected
		return nil
	})
	return n, err
}

// Trashed selects orders by soft-delete state.
type Trashed string

const (
	// TrashedWithout lists live orders only.
	TrashedWithout Trashed = ""
	// TrashedWith lists live and trashed orders.
	TrashedWith Trashed = "with"
	// TrashedOnly lists trashed orders only.
	TrashedOnly Trashed = "only"
)

// ParseTrashed accepts "", "without", "with" and "only".
func ParseTrashed(s string) (Trashed, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "without":
		return TrashedWithout, nil
	case "with":
		return TrashedWith, nil
	case "only":
		return TrashedOnly, nil
	}
	return "", apperrors.Validation("trashed", fmt.Sprintf("unknown trashed filter %q", s))
}

// DefaultPageSize is the order page size when none is requested.
const DefaultPageSize = 10

// PageSizes lists the accepted order page sizes.
var PageSizes = []int{10, 25, 50}

// OrderFilter narrows and pages the order list. Orders are listed newest first.
type OrderFilter struct {
	Status  models.OrderStatus
	Trashed Trashed
	// CreatedFrom and CreatedUntil bound the creation date, both days inclusive.
	CreatedFrom  *time.Time
	CreatedUntil *time.Time
	// Search matches the order id or a substring of the customer name.
	Search    string
	PageSize  int
	SkipToken string
}

// OrderPage is one page of orders.
type OrderPage struct {
	Orders []models.Order
	// Count is the number of orders matching the filter across all pages.
	Count int64
	// NextSkipToken resumes after the last order; empty on the last page.
	NextSkipToken string
}

func (f OrderFilter) pageSize() (int, error) {
	if f.PageSize == 0 {
		return DefaultPageSize, nil
	}
	for _, size := range PageSizes {
		if f.PageSize == size {
			return size, nil
		}
	}
	return 0, apperrors.Validation("page_size", fmt.Sprintf("page size must be one of 10, 25, 50, got %d", f.PageSize))
}

// ListOrders returns one page of orders matching f.
func (s *Store) ListOrders(ctx context.Context, f OrderFilter) (*OrderPage, error) {
	size, err := f.pageSize()
	if err != nil {
		return nil, err
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, apperrors.Validation("status", fmt.Sprintf("unknown order status %q", f.Status))
	}
	var after *skiptoken.SkipToken
	if f.SkipToken != "" {
		after, err = skiptoken.Decode(f.SkipToken)
		if err != nil {
			return nil, apperrors.Validation("skiptoken", err.Error())
		}
	}

	q := s.conn(ctx).Model(&models.Order{})
	switch f.Trashed {
	case TrashedWithout:
	case TrashedWith:
		q = q.Unscoped()
	case TrashedOnly:
		q = q.Unscoped().Where("orders.deleted_at IS NOT NULL")
	default:
		return nil, apperrors.Validation("trashed", fmt.Sprintf("unknown trashed filter %q", f.Trashed))
	}
	if f.Status != "" {
		q = q.Where("orders.status = ?", f.Status)
	}
	if f.CreatedFrom != nil {
		q = q.Where("orders.created_at >= ?", startOfDay(*f.CreatedFrom))
	}
	if f.CreatedUntil != nil {
		q = q.Where("orders.created_at < ?", startOfDay(*f.CreatedUntil).AddDate(0, 0, 1))
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		q = q.Joins("LEFT JOIN customers ON customers.id = orders.customer_id")
		like := "%" + escapeLike(term) + "%"
		if id, err := strconv.ParseUint(term, 10, 64); err == nil {
			q = q.Where("orders.id = ? OR "+likeContains("customers.name"), id, like)
		} else {
			q = q.Where(likeContains("customers.name"), like)
		}
	}

	page := &OrderPage{}
	if err := q.Session(&gorm.Session{}).Count(&page.Count).Error; err != nil {
		return nil, apperrors.Persistence("count orders", err)
	}

	if after != nil {
		q = q.Where("orders.created_at < ? OR (orders.created_at = ? AND orders.id < ?)",
			after.CreatedAt, after.CreatedAt, after.ID)
	}
	err = q.Preload("Customer").Preload("Items").
		Order("orders.created_at DESC, orders.id DESC").
		Limit(size + 1).
		Find(&page.Orders).Error
	if err != nil {
		return nil, apperrors.Persistence("list orders", err)
	}

	if len(page.Orders) > size {
		page.Orders = page.Orders[:size]
		last := page.Orders[size-1]
		page.NextSkipToken, err = skiptoken.Encode(skiptoken.After(last.ID, last.CreatedAt))
		if err != nil {
			return nil, fmt.Errorf("encode skip token: %w", err)
		}
	}
	return page, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func ensureCustomer(tx *gorm.DB, id uint) error {
	ok, err := exists(tx, &models.Customer{}, id)
	if err != nil {
		return err
	}
	if !ok {
		nf := apperrors.NotFound("customer", id)
		nf.Target = "customer_id"
		return nf
	}
	return nil
}
