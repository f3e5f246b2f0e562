package httpserver

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/glamourpk/glamour/internal/domain"
)

// handleAdminExportXLSX streams the catalog and recent orders as a workbook
// with one sheet per dataset.
func (s *Server) handleAdminExportXLSX(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		respondErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	products, _, err := s.products.List(r.Context(), domain.ProductFilter{Page: 1, PageSize: 100})
	if err != nil {
		s.fail(w, err)
		return
	}
	var allProducts []domain.Product
	allProducts = append(allProducts, products...)
	for page := 2; len(products) == 100 && page <= 100; page++ {
		products, _, err = s.products.List(r.Context(), domain.ProductFilter{Page: page, PageSize: 100})
		if err != nil {
			break
		}
		allProducts = append(allProducts, products...)
	}

	orders, _, err := s.orders.List(r.Context(), domain.OrderFilter{Page: 1, PageSize: 500})
	if err != nil {
		s.fail(w, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const prodSheet = "Products"
	idx, err := f.NewSheet(prodSheet)
	if err != nil {
		s.fail(w, err)
		return
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	prodHeader := []any{"Slug", "Name", "Category", "Type", "Collection", "Price", "Stock", "Featured", "Active", "Meta Title", "Meta Description", "Keywords"}
	_ = f.SetSheetRow(prodSheet, "A1", &prodHeader)
	for i, p := range allProducts {
		row := []any{
			p.Slug, p.Name, string(p.Category), string(p.Type), p.Collection,
			p.Price, p.Stock, p.Featured, p.Active,
			p.MetaTitle, p.MetaDescription, strings.Join(p.MetaKeywords, ", "),
		}
		_ = f.SetSheetRow(prodSheet, fmt.Sprintf("A%d", i+2), &row)
	}

	const orderSheet = "Orders"
	if _, err := f.NewSheet(orderSheet); err == nil {
		orderHeader := []any{"Number", "Created", "Customer", "Email", "Phone", "City", "Status", "Payment", "Total"}
		_ = f.SetSheetRow(orderSheet, "A1", &orderHeader)
		for i, o := range orders {
			row := []any{
				o.Number, o.CreatedAt.Format(time.RFC3339), o.CustomerName, o.CustomerEmail,
				o.CustomerPhone, o.City, string(o.Status), string(o.Payment), o.TotalAmount,
			}
			_ = f.SetSheetRow(orderSheet, fmt.Sprintf("A%d", i+2), &row)
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=glamour_%s.xlsx", time.Now().Format("2006-01-02")))
	if err := f.Write(w); err != nil {
		log.Error().Err(err).Msg("xlsx write")
	}
}
