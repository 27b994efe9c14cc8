package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/nlstn/go-posadmin/internal/models"
	"github.com/nlstn/go-posadmin/internal/observability"
	"github.com/tealeg/xlsx"
)

const (
	contentTypeXLSX  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportTimeLayout = "2006-01-02 15:04:05"
	moneyFormat      = "0.00"
)

// exportPageSize is the order page size used while walking an export.
const exportPageSize = 50

var (
	productExportHeaders = []string{"ID", "Name", "Category", "Price", "Stock", "CreatedAt", "UpdatedAt"}
	orderExportHeaders   = []string{"ID", "Customer", "Status", "PaymentMethod", "Items", "TotalPrice", "CreatedAt", "DeletedAt"}
)

func addHeaderRow(sheet *xlsx.Sheet, headers []string) {
	row := sheet.AddRow()
	for _, h := range headers {
		row.AddCell().SetString(h)
	}
}

// handleExportProducts writes the product list, filtered like GET /products,
// as a spreadsheet.
func (h *Handler) handleExportProducts(w http.ResponseWriter, r *http.Request) error {
	opts, err := productListOptions(r)
	if err != nil {
		return err
	}
	products, _, err := h.store.ListProducts(r.Context(), opts)
	if err != nil {
		return err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("create products sheet: %w", err)
	}
	addHeaderRow(sheet, productExportHeaders)
	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(p.ID))
		row.AddCell().SetString(p.Name)
		category := ""
		if p.Category != nil {
			category = p.Category.Name
		}
		row.AddCell().SetString(category)
		row.AddCell().SetFloatWithFormat(p.Price.Decimal().InexactFloat64(), moneyFormat)
		row.AddCell().SetInt(p.Stock)
		row.AddCell().SetString(p.CreatedAt.Format(exportTimeLayout))
		row.AddCell().SetString(p.UpdatedAt.Format(exportTimeLayout))
	}

	h.obs.Metrics().RecordResultCount(r.Context(), "product", int64(len(products)))
	return h.writeWorkbook(w, r, file, "products.xlsx")
}

// handleExportOrders writes every order matching the list filters as a
// spreadsheet, walking the keyset pages.
func (h *Handler) handleExportOrders(w http.ResponseWriter, r *http.Request) error {
	f, err := orderFilter(r)
	if err != nil {
		return err
	}
	f.PageSize = exportPageSize
	f.SkipToken = ""

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return fmt.Errorf("create orders sheet: %w", err)
	}
	addHeaderRow(sheet, orderExportHeaders)

	var exported int64
	for {
		page, err := h.store.ListOrders(r.Context(), f)
		if err != nil {
			return err
		}
		for i := range page.Orders {
			addOrderRow(sheet, &page.Orders[i])
		}
		exported += int64(len(page.Orders))
		if page.NextSkipToken == "" {
			break
		}
		f.SkipToken = page.NextSkipToken
	}

	h.obs.Metrics().RecordResultCount(r.Context(), orderEntity, exported)
	return h.writeWorkbook(w, r, file, "orders.xlsx")
}

func addOrderRow(sheet *xlsx.Sheet, o *models.Order) {
	row := sheet.AddRow()
	row.AddCell().SetInt(int(o.ID))
	customer := ""
	if o.Customer != nil {
		customer = o.Customer.Name
	}
	row.AddCell().SetString(customer)
	row.AddCell().SetString(string(o.Status))
	row.AddCell().SetString(string(o.PaymentMethod))
	row.AddCell().SetInt(len(o.Items))
	row.AddCell().SetFloatWithFormat(o.TotalPrice.Decimal().InexactFloat64(), moneyFormat)
	row.AddCell().SetString(o.CreatedAt.Format(exportTimeLayout))
	deleted := ""
	if o.DeletedAt.Valid {
		deleted = o.DeletedAt.Time.Format(exportTimeLayout)
	}
	row.AddCell().SetString(deleted)
}

// writeWorkbook renders file into memory first so a failure still produces an
// error response.
func (h *Handler) writeWorkbook(w http.ResponseWriter, r *http.Request, file *xlsx.File, name string) error {
	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	w.Header().Set("Content-Type", contentTypeXLSX)
	w.Header().Set("Content-Disposition", "attachment; filename="+name)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		observability.RequestLogger(r.Context(), h.logger).ErrorContext(r.Context(), "Error writing workbook",
			observability.LogFieldError, err.Error())
	}
	return nil
}
