package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/crazy-pizza/api/internal/database"
	"github.com/crazy-pizza/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	TakeOrder(ctx context.Context, req service.TakeOrderRequest) (*service.TakeOrderResult, error)
	FinishOrder(ctx context.Context, orderID int64) (database.Order, error)
	CancelOrder(ctx context.Context, orderID int64) error
}

// OrderStore defines the database methods needed by order read handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	GetActiveOrder(ctx context.Context, id int64) (database.Order, error)
	ListOrderDetails(ctx context.Context, orderID int64) ([]database.OrderDetail, error)
	ListActiveOrders(ctx context.Context) ([]database.ListActiveOrdersRow, error)
	ListFinishedOrders(ctx context.Context) ([]database.ListFinishedOrdersRow, error)
}

// OrderHandler handles order lifecycle endpoints.
type OrderHandler struct {
	svc   OrderServicer
	store OrderStore
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderStore) *OrderHandler {
	return &OrderHandler{svc: svc, store: store}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted at /orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Take)
	r.Get("/active", h.ListActive)
	r.Get("/finished", h.ListFinished)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/finish", h.Finish)
	r.Delete("/{id}", h.Cancel)
}

// --- Request / Response types ---

type takeOrderRequest struct {
	CustomerKind string                 `json:"customer_kind"`
	CustomerID   int64                  `json:"customer_id"`
	Items        []takeOrderItemRequest `json:"items"`
}

type takeOrderItemRequest struct {
	Category  string `json:"category"`
	ProductID int64  `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

type orderResponse struct {
	ID                int64               `json:"id"`
	TempCustomerID    *int64              `json:"temp_customer_id"`
	CustomerID        *int64              `json:"customer_id"`
	TotalPrice        string              `json:"total_price"`
	OrderTakenDate    string              `json:"order_taken_date"`
	OrderTakenHour    string              `json:"order_taken_hour"`
	OrderPreparedHour *string             `json:"order_prepared_hour"`
	Items             []orderItemResponse `json:"items"`
}

type orderItemResponse struct {
	Category  string `json:"category"`
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int32  `json:"quantity"`
}

// orderListRow is one display row of the active/finished order screens:
// the order, the resolved table number, and the collapsed item summary.
type orderListRow struct {
	ID                int64   `json:"id"`
	TempCustomerID    *int64  `json:"temp_customer_id"`
	CustomerID        *int64  `json:"customer_id"`
	TableNo           *int16  `json:"table_no"`
	TotalPrice        string  `json:"total_price"`
	OrderTakenDate    string  `json:"order_taken_date"`
	OrderTakenHour    string  `json:"order_taken_hour"`
	OrderPreparedHour *string `json:"order_prepared_hour,omitempty"`
	Items             string  `json:"items"`
}

// --- Handlers ---

// Take handles POST /orders: the waiter submits the assembled draft.
func (h *OrderHandler) Take(w http.ResponseWriter, r *http.Request) {
	var req takeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.CustomerKind == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "customer_kind is required"})
		return
	}
	if req.CustomerID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "customer_id is required"})
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "items are required"})
		return
	}
	for i, item := range req.Items {
		if item.ProductID <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("items[%d]: product_id is required", i),
			})
			return
		}
		if item.Quantity <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("items[%d]: quantity must be > 0", i),
			})
			return
		}
	}

	svcItems := make([]service.TakeOrderItemRequest, len(req.Items))
	for i, item := range req.Items {
		svcItems[i] = service.TakeOrderItemRequest{
			Category:  item.Category,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	result, err := h.svc.TakeOrder(r.Context(), service.TakeOrderRequest{
		CustomerKind: req.CustomerKind,
		CustomerID:   req.CustomerID,
		Items:        svcItems,
	})
	if err != nil {
		if isOrderValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		if isOrderNotFoundError(err) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: take order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(result))
}

// Get handles GET /orders/{id}: one Active order with its line items.
// Orders already finished or canceled are not served here; the history
// screens use the list endpoints.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetActiveOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get active order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	details, err := h.store.ListOrderDetails(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list order details: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := dbOrderToResponse(order)
	resp.Items = make([]orderItemResponse, len(details))
	for i, d := range details {
		resp.Items[i] = orderItemResponse{
			Category:  string(d.ItemCategory),
			ProductID: d.ItemID,
			Name:      d.ItemName,
			Quantity:  d.Quantity,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListActive handles GET /orders/active. An empty active table yields an
// empty list, never an error.
func (h *OrderHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.ListActiveOrders(r.Context())
	if err != nil {
		log.Printf("ERROR: list active orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderListRow, len(rows))
	for i, row := range rows {
		resp[i] = orderListRow{
			ID:             row.ID,
			TempCustomerID: int8Ptr(row.TempCustomerID),
			CustomerID:     int8Ptr(row.CustomerID),
			TableNo:        int2Ptr(row.TableNo),
			TotalPrice:     numericToString(row.TotalPrice),
			OrderTakenDate: row.OrderTakenDate.Format("2006-01-02"),
			OrderTakenHour: timeToString(row.OrderTakenHour),
			Items:          row.Items,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListFinished handles GET /orders/finished.
func (h *OrderHandler) ListFinished(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.ListFinishedOrders(r.Context())
	if err != nil {
		log.Printf("ERROR: list finished orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderListRow, len(rows))
	for i, row := range rows {
		prepared := timeToString(row.OrderPreparedHour)
		resp[i] = orderListRow{
			ID:                row.ID,
			TempCustomerID:    int8Ptr(row.TempCustomerID),
			CustomerID:        int8Ptr(row.CustomerID),
			TableNo:           int2Ptr(row.TableNo),
			TotalPrice:        numericToString(row.TotalPrice),
			OrderTakenDate:    row.OrderTakenDate.Format("2006-01-02"),
			OrderTakenHour:    timeToString(row.OrderTakenHour),
			OrderPreparedHour: &prepared,
			Items:             row.Items,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Finish handles POST /orders/{id}/finish: the chef marks the order done.
func (h *OrderHandler) Finish(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.svc.FinishOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: finish order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := dbOrderToResponse(order)
	writeJSON(w, http.StatusOK, resp)
}

// Cancel handles DELETE /orders/{id}.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	if err := h.svc.CancelOrder(r.Context(), orderID); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: cancel order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

// isOrderValidationError checks if the error is a known validation error
// from the service layer that should result in 400 Bad Request.
func isOrderValidationError(err error) bool {
	return errors.Is(err, service.ErrEmptyItems) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrInvalidCategory) ||
		errors.Is(err, service.ErrInvalidCustomerKind)
}

func isOrderNotFoundError(err error) bool {
	return errors.Is(err, service.ErrProductNotFound) ||
		errors.Is(err, service.ErrCustomerNotFound)
}

func toOrderResponse(result *service.TakeOrderResult) orderResponse {
	resp := dbOrderToResponse(result.Order)
	resp.Items = make([]orderItemResponse, len(result.Details))
	for i, d := range result.Details {
		resp.Items[i] = orderItemResponse{
			Category:  string(d.ItemCategory),
			ProductID: d.ItemID,
			Name:      d.ItemName,
			Quantity:  d.Quantity,
		}
	}
	return resp
}

func dbOrderToResponse(o database.Order) orderResponse {
	resp := orderResponse{
		ID:             o.ID,
		TempCustomerID: int8Ptr(o.TempCustomerID),
		CustomerID:     int8Ptr(o.CustomerID),
		TotalPrice:     numericToString(o.TotalPrice),
		OrderTakenDate: o.OrderTakenDate.Format("2006-01-02"),
		OrderTakenHour: timeToString(o.OrderTakenHour),
	}
	if o.OrderPreparedHour.Valid {
		s := timeToString(o.OrderPreparedHour)
		resp.OrderPreparedHour = &s
	}
	return resp
}

func int8Ptr(v pgtype.Int8) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func int2Ptr(v pgtype.Int2) *int16 {
	if !v.Valid {
		return nil
	}
	return &v.Int16
}

func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}

// timeToString renders a time-of-day column as HH:MM:SS.
func timeToString(t pgtype.Time) string {
	if !t.Valid {
		return ""
	}
	secs := t.Microseconds / 1e6
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}
