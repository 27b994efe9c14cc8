package handlers

import (
	"context"
	"net/http"

	"github.com/nlstn/go-posadmin/internal/models"
	"github.com/nlstn/go-posadmin/internal/observability"
	"github.com/nlstn/go-posadmin/internal/pricing"
	"github.com/nlstn/go-posadmin/internal/response"
	"github.com/nlstn/go-posadmin/internal/store"
)

// resource binds the single-entity routes of a catalog or customer entity to
// its store operations.
type resource[T any] struct {
	entity string
	path   string
	get    func(context.Context, uint) (*T, error)
	create func(context.Context, *T) error
	update func(context.Context, *T) error
	delete func(context.Context, uint) error
	setID  func(*T, uint)
}

func (res resource[T]) register(h *Handler, mux *http.ServeMux) {
	item := res.path + "/{id}"
	mux.HandleFunc("POST "+res.path, h.handle(res.entity, observability.OpCreate, res.handleCreate(h)))
	mux.HandleFunc("GET "+item, h.handle(res.entity, observability.OpRead, res.handleGet(h)))
	mux.HandleFunc("PUT "+item, h.handle(res.entity, observability.OpUpdate, res.handleReplace(h)))
	mux.HandleFunc("PATCH "+item, h.handle(res.entity, observability.OpPatch, res.handlePatch(h)))
	mux.HandleFunc("DELETE "+item, h.handle(res.entity, observability.OpDelete, res.handleDelete(h)))
}

func (res resource[T]) handleCreate(h *Handler) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		entity := new(T)
		if err := decodeJSON(r, entity); err != nil {
			return err
		}
		if err := res.create(r.Context(), entity); err != nil {
			return err
		}
		h.writeEntity(w, r, http.StatusCreated, entity)
		return nil
	}
}

func (res resource[T]) handleGet(h *Handler) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathID(r)
		if err != nil {
			return err
		}
		entity, err := res.get(r.Context(), id)
		if err != nil {
			return err
		}
		h.writeJSON(w, r, http.StatusOK, entity)
		return nil
	}
}

// handleReplace decodes a complete entity. Fields left out are written as
// their zero value.
func (res resource[T]) handleReplace(h *Handler) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathID(r)
		if err != nil {
			return err
		}
		entity := new(T)
		if err := decodeJSON(r, entity); err != nil {
			return err
		}
		res.setID(entity, id)
		if err := res.update(r.Context(), entity); err != nil {
			return err
		}
		h.writeEntity(w, r, http.StatusOK, entity)
		return nil
	}
}

// handlePatch decodes the body over the stored entity.
func (res resource[T]) handlePatch(h *Handler) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathID(r)
		if err != nil {
			return err
		}
		entity, err := res.get(r.Context(), id)
		if err != nil {
			return err
		}
		if err := decodeJSON(r, entity); err != nil {
			return err
		}
		res.setID(entity, id)
		if err := res.update(r.Context(), entity); err != nil {
			return err
		}
		h.writeEntity(w, r, http.StatusOK, entity)
		return nil
	}
}

func (res resource[T]) handleDelete(h *Handler) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathID(r)
		if err != nil {
			return err
		}
		if err := res.delete(r.Context(), id); err != nil {
			return err
		}
		observability.RequestLogger(r.Context(), h.logger).InfoContext(r.Context(), "record deleted",
			observability.LogFieldEntity, res.entity, observability.LogFieldEntityID, id)
		response.WriteNoContent(w)
		return nil
	}
}

func (h *Handler) registerCategories(mux *http.ServeMux) {
	resource[models.Category]{
		entity: "category",
		path:   "/categories",
		get:    h.store.GetCategory,
		create: h.store.CreateCategory,
		update: h.store.UpdateCategory,
		delete: h.store.DeleteCategory,
		setID:  func(c *models.Category, id uint) { c.ID = id },
	}.register(h, mux)

	mux.HandleFunc("GET /categories", h.handle("category", observability.OpList, func(w http.ResponseWriter, r *http.Request) error {
		opts, err := listOptions(r)
		if err != nil {
			return err
		}
		categories, total, err := h.store.ListCategories(r.Context(), opts)
		if err != nil {
			return err
		}
		h.writeCollection(w, r, "category", categories, len(categories), &total, "")
		return nil
	}))
}

func (h *Handler) registerProducts(mux *http.ServeMux) {
	resource[models.Product]{
		entity: "product",
		path:   "/products",
		get:    h.store.GetProduct,
		create: h.store.CreateProduct,
		update: h.store.UpdateProduct,
		delete: h.store.DeleteProduct,
		setID:  func(p *models.Product, id uint) { p.ID = id },
	}.register(h, mux)

	mux.HandleFunc("GET /products", h.handle("product", observability.OpList, func(w http.ResponseWriter, r *http.Request) error {
		opts, err := productListOptions(r)
		if err != nil {
			return err
		}
		products, total, err := h.store.ListProducts(r.Context(), opts)
		if err != nil {
			return err
		}
		h.writeCollection(w, r, "product", products, len(products), &total, "")
		return nil
	}))
	mux.HandleFunc("GET /products/{id}/price", h.handle("product", observability.OpCapture, h.handleProductPrice))
	mux.HandleFunc("GET /products/export.xlsx", h.handle("product", observability.OpExport, h.handleExportProducts))
}

func productListOptions(r *http.Request) (store.ProductListOptions, error) {
	base, err := listOptions(r)
	if err != nil {
		return store.ProductListOptions{}, err
	}
	categoryID, err := queryInt(r, "category_id")
	if err != nil {
		return store.ProductListOptions{}, err
	}
	return store.ProductListOptions{ListOptions: base, CategoryID: uint(categoryID)}, nil
}

// productPrice is the price an order line captures when the product is selected.
type productPrice struct {
	ProductID uint          `json:"product_id"`
	Price     pricing.Money `json:"price"`
}

func (h *Handler) handleProductPrice(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	price, err := pricing.CaptureUnitPrice(r.Context(), h.store, id)
	if err != nil {
		return err
	}
	h.writeJSON(w, r, http.StatusOK, productPrice{ProductID: id, Price: price})
	return nil
}

func (h *Handler) registerCustomers(mux *http.ServeMux) {
	resource[models.Customer]{
		entity: "customer",
		path:   "/customers",
		get:    h.store.GetCustomer,
		create: h.store.CreateCustomer,
		update: h.store.UpdateCustomer,
		delete: h.store.DeleteCustomer,
		setID:  func(c *models.Customer, id uint) { c.ID = id },
	}.register(h, mux)

	mux.HandleFunc("GET /customers", h.handle("customer", observability.OpList, func(w http.ResponseWriter, r *http.Request) error {
		opts, err := listOptions(r)
		if err != nil {
			return err
		}
		customers, total, err := h.store.ListCustomers(r.Context(), opts)
		if err != nil {
			return err
		}
		h.writeCollection(w, r, "customer", customers, len(customers), &total, "")
		return nil
	}))
}
