package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

func openWorkbook(t *testing.T, body []byte) *xlsx.Sheet {
	t.Helper()
	file, err := xlsx.OpenBinary(body)
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)
	return file.Sheets[0]
}

func TestExportProducts(t *testing.T) {
	env := setupEnv(t)

	rec := env.do(t, http.MethodGet, "/products/export.xlsx?search=a", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, contentTypeXLSX, rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "products.xlsx")

	sheet := openWorkbook(t, rec.Body.Bytes())
	require.Equal(t, "Products", sheet.Name)
	require.Len(t, sheet.Rows, 2)
	require.Equal(t, "Name", sheet.Rows[0].Cells[1].Value)
	require.Equal(t, "A", sheet.Rows[1].Cells[1].Value)
	require.Equal(t, "Bakery", sheet.Rows[1].Cells[2].Value)
}

func TestExportOrdersWalksAllPages(t *testing.T) {
	env := setupEnv(t)
	for i := 0; i < exportPageSize+3; i++ {
		rec := env.do(t, http.MethodPost, "/orders", env.orderBody(env.item("C", 1)))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := env.do(t, http.MethodGet, "/orders/export.xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	sheet := openWorkbook(t, rec.Body.Bytes())
	require.Equal(t, "Orders", sheet.Name)
	require.Len(t, sheet.Rows, exportPageSize+4)
	header := sheet.Rows[0]
	require.Equal(t, "TotalPrice", header.Cells[5].Value)
	require.Equal(t, "Alice Baker", sheet.Rows[1].Cells[1].Value)
	require.Equal(t, "new", sheet.Rows[1].Cells[2].Value)
}

func TestExportOrdersRejectsBadFilter(t *testing.T) {
	env := setupEnv(t)
	requireError(t, env.do(t, http.MethodGet, "/orders/export.xlsx?trashed=maybe", nil), http.StatusBadRequest, "ValidationError", "trashed")
}
