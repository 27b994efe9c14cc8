package store

import (
	"context"
	"fmt"

	"github.com/nlstn/go-posadmin/internal/apperrors"
	"github.com/nlstn/go-posadmin/internal/models"
	"gorm.io/gorm"
)

// CreateCustomer validates and inserts c.
func (s *Store) CreateCustomer(ctx context.Context, c *models.Customer) error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.ID = 0
	if err := s.conn(ctx).Create(c).Error; err != nil {
		return apperrors.Persistence("create customer", err)
	}
	return nil
}

// GetCustomer loads a customer by id.
func (s *Store) GetCustomer(ctx context.Context, id uint) (*models.Customer, error) {
	var c models.Customer
	if err := first(s.conn(ctx), &c, "customer", id); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCustomers returns customers ordered by name and the total match count.
func (s *Store) ListCustomers(ctx context.Context, opts ListOptions) ([]models.Customer, int64, error) {
	q := opts.apply(s.conn(ctx).Model(&models.Customer{}), "name")

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, apperrors.Persistence("count customers", err)
	}

	var customers []models.Customer
	if err := opts.page(q.Order("name ASC, id ASC")).Find(&customers).Error; err != nil {
		return nil, 0, apperrors.Persistence("list customers", err)
	}
	return customers, total, nil
}

// UpdateCustomer writes the editable fields of c, identified by c.ID.
func (s *Store) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return s.runInTransaction(ctx, "update customer", func(ctx context.Context, tx *gorm.DB) error {
		var current models.Customer
		if err := first(tx, &current, "customer", c.ID); err != nil {
			return err
		}
		if err := tx.Model(&current).Select("name", "email", "phone", "address").Updates(c).Error; err != nil {
			return err
		}
		return tx.First(c, c.ID).Error
	})
}

// DeleteCustomer removes a customer without orders, trashed orders included.
func (s *Store) DeleteCustomer(ctx context.Context, id uint) error {
	return s.runInTransaction(ctx, "delete customer", func(ctx context.Context, tx *gorm.DB) error {
		var orders int64
		if err := tx.Unscoped().Model(&models.Order{}).Where("customer_id = ?", id).Count(&orders).Error; err != nil {
			return err
		}
		if orders > 0 {
			return apperrors.Conflict(fmt.Sprintf("customer %d has %d order(s)", id, orders))
		}
		res := tx.Delete(&models.Customer{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("customer", id)
		}
		return nil
	})
}
