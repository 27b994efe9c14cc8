package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/nlstn/go-posadmin/internal/apperrors"
	"github.com/nlstn/go-posadmin/internal/models"
	"gorm.io/gorm"
)

// CreateCategory validates and inserts c.
func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.ID = 0
	return s.runInTransaction(ctx, "create category", func(ctx context.Context, tx *gorm.DB) error {
		if err := ensureUniqueCategoryName(tx, c.Name, 0); err != nil {
			return err
		}
		return tx.Omit("Products").Create(c).Error
	})
}

// GetCategory loads a category by id.
func (s *Store) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	if err := first(s.conn(ctx), &c, "category", id); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCategories returns categories ordered by name and the total match count.
func (s *Store) ListCategories(ctx context.Context, opts ListOptions) ([]models.Category, int64, error) {
	q := opts.apply(s.conn(ctx).Model(&models.Category{}), "name")

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, apperrors.Persistence("count categories", err)
	}

	var categories []models.Category
	if err := opts.page(q.Order("name ASC, id ASC")).Find(&categories).Error; err != nil {
		return nil, 0, apperrors.Persistence("list categories", err)
	}
	return categories, total, nil
}

// UpdateCategory writes the editable fields of c, identified by c.ID.
func (s *Store) UpdateCategory(ctx context.Context, c *models.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return s.runInTransaction(ctx, "update category", func(ctx context.Context, tx *gorm.DB) error {
		var current models.Category
		if err := first(tx, &current, "category", c.ID); err != nil {
			return err
		}
		if err := ensureUniqueCategoryName(tx, c.Name, c.ID); err != nil {
			return err
		}
		if err := tx.Model(&current).Select("name", "description").Updates(c).Error; err != nil {
			return err
		}
		return tx.First(c, c.ID).Error
	})
}

// DeleteCategory removes a category that no product references.
func (s *Store) DeleteCategory(ctx context.Context, id uint) error {
	return s.runInTransaction(ctx, "delete category", func(ctx context.Context, tx *gorm.DB) error {
		var products int64
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).Count(&products).Error; err != nil {
			return err
		}
		if products > 0 {
			return apperrors.Conflict(fmt.Sprintf("category %d still has %d product(s)", id, products))
		}
		res := tx.Delete(&models.Category{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("category", id)
		}
		return nil
	})
}

func ensureUniqueCategoryName(tx *gorm.DB, name string, exceptID uint) error {
	var count int64
	q := tx.Model(&models.Category{}).Where("LOWER(name) = ?", strings.ToLower(name))
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperrors.Validation("name", fmt.Sprintf("a category named %q already exists", name))
	}
	return nil
}
