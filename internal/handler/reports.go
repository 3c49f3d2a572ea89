package handler

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/crazy-pizza/api/internal/database"
	"github.com/crazy-pizza/api/internal/enum"
	"github.com/go-chi/chi/v5"
)

// ReportsStore defines the database methods needed by report handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type ReportsStore interface {
	GetDailySales(ctx context.Context) ([]database.SalesBucketRow, error)
	GetWeeklySales(ctx context.Context) ([]database.SalesBucketRow, error)
	GetMonthlySales(ctx context.Context) ([]database.SalesBucketRow, error)
	GetCustomerSegments(ctx context.Context) ([]database.CustomerSegmentRow, error)
}

// ReportsHandler handles sales and customer reporting endpoints.
type ReportsHandler struct {
	store ReportsStore
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(store ReportsStore) *ReportsHandler {
	return &ReportsHandler{store: store}
}

// RegisterRoutes registers report endpoints on the given Chi router.
// Expected to be mounted at /reports.
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/sales", h.Sales)
	r.Get("/customer-segments", h.CustomerSegments)
}

type salesBucketResponse struct {
	Bucket     string `json:"bucket"`
	OrderCount int64  `json:"order_count"`
	TotalSales string `json:"total_sales"`
}

type customerSegmentResponse struct {
	TableNo    int16  `json:"table_no"`
	OrderCount int64  `json:"order_count"`
	TotalSpent string `json:"total_spent"`
}

// Sales handles GET /reports/sales?period=DAILY|WEEKLY|MONTHLY.
// Only finished orders contribute to sales figures.
func (h *ReportsHandler) Sales(w http.ResponseWriter, r *http.Request) {
	period := strings.ToUpper(r.URL.Query().Get("period"))

	var (
		rows []database.SalesBucketRow
		err  error
	)
	switch period {
	case enum.ReportPeriodDaily:
		rows, err = h.store.GetDailySales(r.Context())
	case enum.ReportPeriodWeekly:
		rows, err = h.store.GetWeeklySales(r.Context())
	case enum.ReportPeriodMonthly:
		rows, err = h.store.GetMonthlySales(r.Context())
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "period must be one of DAILY, WEEKLY, MONTHLY",
		})
		return
	}
	if err != nil {
		log.Printf("ERROR: sales report: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]salesBucketResponse, len(rows))
	for i, row := range rows {
		resp[i] = salesBucketResponse{
			Bucket:     row.Bucket,
			OrderCount: row.OrderCount,
			TotalSales: numericToString(row.TotalSales),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// CustomerSegments handles GET /reports/customer-segments: finished
// order volume grouped by table number.
func (h *ReportsHandler) CustomerSegments(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.GetCustomerSegments(r.Context())
	if err != nil {
		log.Printf("ERROR: customer segments report: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]customerSegmentResponse, len(rows))
	for i, row := range rows {
		resp[i] = customerSegmentResponse{
			TableNo:    row.TableNo,
			OrderCount: row.OrderCount,
			TotalSpent: numericToString(row.TotalSpent),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
