package store

import (
	"context"
	"fmt"

	"github.com/nlstn/go-posadmin/internal/apperrors"
	"github.com/nlstn/go-posadmin/internal/models"
	"github.com/nlstn/go-posadmin/internal/pricing"
	"gorm.io/gorm"
)

// ProductListOptions narrows the product list.
type ProductListOptions struct {
	ListOptions
	// CategoryID restricts the list to one category when non-zero.
	CategoryID uint
}

// CreateProduct validates and inserts p. The category must exist.
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.ID = 0
	return s.runInTransaction(ctx, "create product", func(ctx context.Context, tx *gorm.DB) error {
		if err := ensureCategory(tx, p.CategoryID); err != nil {
			return err
		}
		if err := tx.Omit("Category").Create(p).Error; err != nil {
			return err
		}
		return tx.Preload("Category").First(p, p.ID).Error
	})
}

// GetProduct loads a product and its category.
func (s *Store) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := first(s.conn(ctx).Preload("Category"), &p, "product", id); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProducts returns products ordered by name and the total match count.
func (s *Store) ListProducts(ctx context.Context, opts ProductListOptions) ([]models.Product, int64, error) {
	q := opts.apply(s.conn(ctx).Model(&models.Product{}), "name")
	if opts.CategoryID != 0 {
		q = q.Where("category_id = ?", opts.CategoryID)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, apperrors.Persistence("count products", err)
	}

	var products []models.Product
	if err := opts.page(q.Preload("Category").Order("name ASC, id ASC")).Find(&products).Error; err != nil {
		return nil, 0, apperrors.Persistence("list products", err)
	}
	return products, total, nil
}

// UpdateProduct writes the editable fields of p, identified by p.ID.
// Existing order items keep the price they captured.
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.runInTransaction(ctx, "update product", func(ctx context.Context, tx *gorm.DB) error {
		var current models.Product
		if err := first(tx, &current, "product", p.ID); err != nil {
			return err
		}
		if err := ensureCategory(tx, p.CategoryID); err != nil {
			return err
		}
		if err := tx.Model(&current).
			Select("name", "price", "stock", "image", "category_id").
			Updates(p).Error; err != nil {
			return err
		}
		return tx.Preload("Category").First(p, p.ID).Error
	})
}

// DeleteProduct removes a product that no order item references. Items of
// soft-deleted orders count, since those orders can still be restored.
func (s *Store) DeleteProduct(ctx context.Context, id uint) error {
	return s.runInTransaction(ctx, "delete product", func(ctx context.Context, tx *gorm.DB) error {
		var items int64
		if err := tx.Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&items).Error; err != nil {
			return err
		}
		if items > 0 {
			return apperrors.Conflict(fmt.Sprintf("product %d is referenced by %d order item(s)", id, items))
		}
		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("product", id)
		}
		return nil
	})
}

// UnitPrice returns the current price of a product. It implements pricing.Catalog.
func (s *Store) UnitPrice(ctx context.Context, productID uint) (pricing.Money, error) {
	return catalogOn(s.conn(ctx)).UnitPrice(ctx, productID)
}

// catalogOn returns a price catalog reading through db, typically a transaction.
func catalogOn(db *gorm.DB) pricing.Catalog {
	return pricing.CatalogFunc(func(ctx context.Context, productID uint) (pricing.Money, error) {
		var p models.Product
		if err := first(db.WithContext(ctx).Select("id", "price"), &p, "product", productID); err != nil {
			return pricing.Money{}, err
		}
		return p.Price, nil
	})
}

func ensureCategory(tx *gorm.DB, id uint) error {
	ok, err := exists(tx, &models.Category{}, id)
	if err != nil {
		return err
	}
	if !ok {
		nf := apperrors.NotFound("category", id)
		nf.Target = "category_id"
		return nf
	}
	return nil
}
