package models

import (
	"net/mail"
	"strings"

	"github.com/nlstn/go-posadmin/internal/apperrors"
)

// Validate checks the fields staff can edit on a category.
func (c *Category) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return apperrors.Validation("name", "category name is required")
	}
	return nil
}

// Validate checks the fields staff can edit on a product.
func (p *Product) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	switch {
	case p.Name == "":
		return apperrors.Validation("name", "product name is required")
	case p.Price.IsNegative():
		return apperrors.Validation("price", "price must not be negative")
	case p.Stock < 0:
		return apperrors.Validation("stock", "stock must not be negative")
	case p.CategoryID == 0:
		return apperrors.Validation("category_id", "category is required")
	}
	return nil
}

// Validate checks the fields staff can edit on a customer.
func (c *Customer) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	if c.Name == "" {
		return apperrors.Validation("name", "customer name is required")
	}
	if c.Email != "" {
		addr, err := mail.ParseAddress(c.Email)
		if err != nil {
			return apperrors.Validation("email", "email is not a valid address")
		}
		c.Email = addr.Address
	}
	return nil
}
