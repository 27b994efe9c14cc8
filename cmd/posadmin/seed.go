package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	posadmin "github.com/nlstn/go-posadmin"
	"github.com/nlstn/go-posadmin/internal/models"
	"github.com/nlstn/go-posadmin/internal/pricing"
	"github.com/nlstn/go-posadmin/internal/response"
)

type sampleProduct struct {
	name     string
	price    string
	stock    int
	category string
}

var (
	sampleCategories = []string{"Bakery", "Drinks", "Snacks"}

	sampleProducts = []sampleProduct{
		{"Sourdough Loaf", "6.50", 20, "Bakery"},
		{"Croissant", "2.40", 40, "Bakery"},
		{"Espresso", "2.20", 100, "Drinks"},
		{"Orange Juice", "3.75", 30, "Drinks"},
		{"Granola Bar", "1.95", 50, "Snacks"},
	}

	sampleCustomers = []models.Customer{
		{Name: "Alice Baker", Email: "alice@example.com", Phone: "555-0101"},
		{Name: "Bob Brewer", Email: "bob@example.com", Phone: "555-0102"},
		{Name: "Carol Cook", Email: "carol@example.com"},
	}
)

// sampleOrders lists item quantities by product name per order.
var sampleOrders = []struct {
	customer int
	payment  models.PaymentMethod
	status   models.OrderStatus
	items    map[string]int
}{
	{0, models.PaymentCash, models.StatusNew, map[string]int{"Croissant": 2, "Espresso": 2}},
	{1, models.PaymentCard, models.StatusProcessing, map[string]int{"Sourdough Loaf": 1}},
	{2, models.PaymentOnline, models.StatusShipped, map[string]int{"Orange Juice": 3, "Granola Bar": 4}},
	{0, models.PaymentCard, models.StatusCancelled, map[string]int{"Espresso": 1}},
}

// seedDatabase drops every table, recreates the schema and loads sample data.
// Orders go through SaveOrder so their totals are derived from the items.
func seedDatabase(ctx context.Context, service *posadmin.Service) error {
	all := models.AllModels()
	reversed := make([]interface{}, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		reversed = append(reversed, all[i])
	}
	if err := service.DB().WithContext(ctx).Migrator().DropTable(reversed...); err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}
	if err := service.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	st := service.Store()
	categories := make(map[string]uint, len(sampleCategories))
	for _, name := range sampleCategories {
		c := &models.Category{Name: name}
		if err := st.CreateCategory(ctx, c); err != nil {
			return fmt.Errorf("failed to seed category %s: %w", name, err)
		}
		categories[name] = c.ID
	}

	products := make(map[string]uint, len(sampleProducts))
	for _, sp := range sampleProducts {
		price, err := pricing.ParseMoney(sp.price)
		if err != nil {
			return err
		}
		p := &models.Product{Name: sp.name, Price: price, Stock: sp.stock, CategoryID: categories[sp.category]}
		if err := st.CreateProduct(ctx, p); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", sp.name, err)
		}
		products[sp.name] = p.ID
	}

	customers := make([]uint, len(sampleCustomers))
	for i := range sampleCustomers {
		c := sampleCustomers[i]
		if err := st.CreateCustomer(ctx, &c); err != nil {
			return fmt.Errorf("failed to seed customer %s: %w", c.Name, err)
		}
		customers[i] = c.ID
	}

	for i, so := range sampleOrders {
		in := posadmin.OrderInput{CustomerID: customers[so.customer], PaymentMethod: so.payment}
		for _, sp := range sampleProducts {
			if qty, ok := so.items[sp.name]; ok {
				in.Items = append(in.Items, posadmin.ItemInput{ProductID: products[sp.name], Quantity: qty})
			}
		}
		order, err := service.SaveOrder(ctx, in)
		if err != nil {
			return fmt.Errorf("failed to seed order %d: %w", i+1, err)
		}
		if err := advanceStatus(ctx, service, order, so.status); err != nil {
			return fmt.Errorf("failed to seed order %d: %w", i+1, err)
		}
	}

	slog.Default().InfoContext(ctx, "database seeded",
		"categories", len(sampleCategories), "products", len(sampleProducts),
		"customers", len(sampleCustomers), "orders", len(sampleOrders))
	return nil
}

// advanceStatus walks order through the transition table to target.
func advanceStatus(ctx context.Context, service *posadmin.Service, order *models.Order, target models.OrderStatus) error {
	path := map[models.OrderStatus][]models.OrderStatus{
		models.StatusProcessing: {models.StatusProcessing},
		models.StatusShipped:    {models.StatusProcessing, models.StatusShipped},
		models.StatusCancelled:  {models.StatusCancelled},
	}[target]
	for _, next := range path {
		var err error
		if order, err = service.TransitionOrderStatus(ctx, order.ID, next, order.Version); err != nil {
			return err
		}
	}
	return nil
}

// registerReseed exposes POST /admin/reseed, which resets the database to the
// sample data.
func registerReseed(service *posadmin.Service) {
	service.HandleFunc("POST /admin/reseed", func(w http.ResponseWriter, r *http.Request) {
		if err := seedDatabase(r.Context(), service); err != nil {
			slog.Default().ErrorContext(r.Context(), "reseed failed", "error", err)
			_ = response.WriteError(w, err)
			return
		}
		_ = response.WriteJSON(w, http.StatusOK, map[string]string{
			"status":  "success",
			"message": "Database reseeded with default data",
		})
	})
}
