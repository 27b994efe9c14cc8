// Package pricing maintains the order total invariant: the total of an order is
// the sum of unit price × quantity over its line items, kept in decimal
// arithmetic and rounded to two places.
package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/nlstn/go-posadmin/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Line is one priced line of an order.
type Line struct {
	Price    Money
	Quantity int
}

// LineTotal returns price × quantity for the line.
func (l Line) LineTotal() Money {
	return l.Price.Mul(l.Quantity)
}

// ValidateLine rejects quantities below one and negative prices.
// Callers validate before handing lines to RecomputeTotal.
func ValidateLine(l Line) error {
	if l.Quantity < 1 {
		return apperrors.Validation("quantity", fmt.Sprintf("quantity must be at least 1, got %d", l.Quantity))
	}
	if l.Price.IsNegative() {
		return apperrors.Validation("price", fmt.Sprintf("price must not be negative, got %s", l.Price))
	}
	return nil
}

// ValidateLines validates every line and reports the index of the first bad one.
func ValidateLines(lines []Line) error {
	for i, l := range lines {
		if err := ValidateLine(l); err != nil {
			var appErr *apperrors.Error
			if errors.As(err, &appErr) {
				appErr.Target = fmt.Sprintf("items[%d].%s", i, appErr.Target)
			}
			return err
		}
	}
	return nil
}

// RecomputeTotal returns Σ price × quantity. The sum is exact and rounded once,
// half-up, to two decimal places. An empty slice totals 0.00.
func RecomputeTotal(lines []Line) Money {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Price.Decimal().Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return NewMoney(sum)
}

// Catalog resolves the current unit price of a product.
// Implementations return an error matching apperrors.ErrNotFound for unknown ids.
type Catalog interface {
	UnitPrice(ctx context.Context, productID uint) (Money, error)
}

// CatalogFunc adapts a function to Catalog.
type CatalogFunc func(ctx context.Context, productID uint) (Money, error)

// UnitPrice calls f.
func (f CatalogFunc) UnitPrice(ctx context.Context, productID uint) (Money, error) {
	return f(ctx, productID)
}

// CaptureUnitPrice copies the product's current price for a newly selected line.
// An unknown product is a NotFound error; the caller must not keep the line.
func CaptureUnitPrice(ctx context.Context, catalog Catalog, productID uint) (Money, error) {
	if productID == 0 {
		return Money{}, apperrors.Validation("product_id", "product is required")
	}
	price, err := catalog.UnitPrice(ctx, productID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return Money{}, err
		}
		return Money{}, fmt.Errorf("capture price of product %d: %w", productID, err)
	}
	return price, nil
}
