package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/crazy-pizza/api/internal/auth"
	"github.com/crazy-pizza/api/internal/database"
	"github.com/crazy-pizza/api/internal/handler"
	"github.com/crazy-pizza/api/internal/middleware"
	"github.com/crazy-pizza/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// --- Mock OrderServicer ---

type mockOrderService struct {
	takeFn   func(ctx context.Context, req service.TakeOrderRequest) (*service.TakeOrderResult, error)
	finishFn func(ctx context.Context, orderID int64) (database.Order, error)
	cancelFn func(ctx context.Context, orderID int64) error
}

func (m *mockOrderService) TakeOrder(ctx context.Context, req service.TakeOrderRequest) (*service.TakeOrderResult, error) {
	if m.takeFn != nil {
		return m.takeFn(ctx, req)
	}
	return nil, service.ErrOrderNotFound
}

func (m *mockOrderService) FinishOrder(ctx context.Context, orderID int64) (database.Order, error) {
	if m.finishFn != nil {
		return m.finishFn(ctx, orderID)
	}
	return database.Order{}, service.ErrOrderNotFound
}

func (m *mockOrderService) CancelOrder(ctx context.Context, orderID int64) error {
	if m.cancelFn != nil {
		return m.cancelFn(ctx, orderID)
	}
	return service.ErrOrderNotFound
}

// --- Mock OrderStore ---

type mockOrderListStore struct {
	getActiveFn    func(ctx context.Context, id int64) (database.Order, error)
	listDetailsFn  func(ctx context.Context, orderID int64) ([]database.OrderDetail, error)
	listActiveFn   func(ctx context.Context) ([]database.ListActiveOrdersRow, error)
	listFinishedFn func(ctx context.Context) ([]database.ListFinishedOrdersRow, error)
}

func (m *mockOrderListStore) GetActiveOrder(ctx context.Context, id int64) (database.Order, error) {
	if m.getActiveFn != nil {
		return m.getActiveFn(ctx, id)
	}
	return database.Order{}, pgx.ErrNoRows
}

func (m *mockOrderListStore) ListOrderDetails(ctx context.Context, orderID int64) ([]database.OrderDetail, error) {
	if m.listDetailsFn != nil {
		return m.listDetailsFn(ctx, orderID)
	}
	return nil, nil
}

func (m *mockOrderListStore) ListActiveOrders(ctx context.Context) ([]database.ListActiveOrdersRow, error) {
	if m.listActiveFn != nil {
		return m.listActiveFn(ctx)
	}
	return []database.ListActiveOrdersRow{}, nil
}

func (m *mockOrderListStore) ListFinishedOrders(ctx context.Context) ([]database.ListFinishedOrdersRow, error) {
	if m.listFinishedFn != nil {
		return m.listFinishedFn(ctx)
	}
	return []database.ListFinishedOrdersRow{}, nil
}

// --- Test helpers ---

const testJWTSecret = "test-secret-for-handlers"

func setupOrderRouter(svc *mockOrderService, store *mockOrderListStore) *chi.Mux {
	h := handler.NewOrderHandler(svc, store)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Route("/orders", h.RegisterRoutes)
	return r
}

func waiterClaims() *auth.Claims {
	return &auth.Claims{UserID: uuid.New(), Role: "WAITER"}
}

func doAuthRequest(t *testing.T, router http.Handler, method, path string, body interface{}, claims *auth.Claims) *httptest.ResponseRecorder {
	t.Helper()

	token, err := auth.GenerateToken(testJWTSecret, claims.UserID, claims.Role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func decodeListResponse(t *testing.T, rr *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var resp []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	return resp
}

func testNumeric(t *testing.T, s string) pgtype.Numeric {
	t.Helper()
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		t.Fatalf("scan numeric %q: %v", s, err)
	}
	return n
}

func testTimeOfDay(h, m, s int) pgtype.Time {
	us := (int64(h)*3600 + int64(m)*60 + int64(s)) * 1e6
	return pgtype.Time{Microseconds: us, Valid: true}
}

func testTakeOrderResult() *service.TakeOrderResult {
	return &service.TakeOrderResult{
		Order: database.Order{
			ID:             42,
			TempCustomerID: pgtype.Int8{Int64: 7, Valid: true},
			TotalPrice:     pgtype.Numeric{},
			OrderTakenDate: time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC),
			OrderTakenHour: testTimeOfDay(19, 30, 0),
		},
		Details: []database.OrderDetail{
			{ID: 1, OrderID: 42, ItemCategory: database.CategoryPizza, ItemID: 1, ItemName: "Margherita", Quantity: 2},
		},
	}
}

// --- Take ---

func TestOrderTake_HappyPath(t *testing.T) {
	result := testTakeOrderResult()
	result.Order.TotalPrice = testNumeric(t, "16.00")

	svc := &mockOrderService{
		takeFn: func(ctx context.Context, req service.TakeOrderRequest) (*service.TakeOrderResult, error) {
			if req.CustomerKind != "TEMPORARY" {
				t.Errorf("customer_kind: got %v, want TEMPORARY", req.CustomerKind)
			}
			if req.CustomerID != 7 {
				t.Errorf("customer_id: got %v, want 7", req.CustomerID)
			}
			if len(req.Items) != 1 {
				t.Fatalf("items count: got %d, want 1", len(req.Items))
			}
			if req.Items[0].Quantity != 2 {
				t.Errorf("quantity: got %d, want 2", req.Items[0].Quantity)
			}
			return result, nil
		},
	}

	router := setupOrderRouter(svc, &mockOrderListStore{})
	rr := doAuthRequest(t, router, "POST", "/orders", map[string]interface{}{
		"customer_kind": "TEMPORARY",
		"customer_id":   7,
		"items": []map[string]interface{}{
			{"category": "PIZZA", "product_id": 1, "quantity": 2},
		},
	}, waiterClaims())

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["id"] != float64(42) {
		t.Errorf("id: got %v, want 42", resp["id"])
	}
	if resp["total_price"] != "16.00" {
		t.Errorf("total_price: got %v, want 16.00", resp["total_price"])
	}
	if resp["order_taken_date"] != "2026-02-14" {
		t.Errorf("order_taken_date: got %v, want 2026-02-14", resp["order_taken_date"])
	}
	if resp["order_taken_hour"] != "19:30:00" {
		t.Errorf("order_taken_hour: got %v, want 19:30:00", resp["order_taken_hour"])
	}
	if resp["order_prepared_hour"] != nil {
		t.Errorf("order_prepared_hour: got %v, want nil", resp["order_prepared_hour"])
	}
	if resp["customer_id"] != nil {
		t.Errorf("customer_id: got %v, want nil", resp["customer_id"])
	}
	if resp["temp_customer_id"] != float64(7) {
		t.Errorf("temp_customer_id: got %v, want 7", resp["temp_customer_id"])
	}

	items, ok := resp["items"].([]interface{})
	if !ok {
		t.Fatal("items not present in response")
	}
	if len(items) != 1 {
		t.Fatalf("items count: got %d, want 1", len(items))
	}
	item := items[0].(map[string]interface{})
	if item["name"] != "Margherita" {
		t.Errorf("item name: got %v, want Margherita", item["name"])
	}
	if item["quantity"] != float64(2) {
		t.Errorf("item quantity: got %v, want 2", item["quantity"])
	}
}

func TestOrderTake_MissingCustomerKind(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, &mockOrderListStore{})
	rr := doAuthRequest(t, router, "POST", "/orders", map[string]interface{}{
		"customer_id": 7,
		"items": []map[string]interface{}{
			{"category": "PIZZA", "product_id": 1, "quantity": 1},
		},
	}, waiterClaims())

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["error"] != "customer_kind is required" {
		t.Errorf("error: got %v, want 'customer_kind is required'", resp["error"])
	}
}

func TestOrderTake_EmptyItems(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, &mockOrderListStore{})
	rr := doAuthRequest(t, router, "POST", "/orders", map[string]interface{}{
		"customer_kind": "TEMPORARY",
		"customer_id":   7,
		"items":         []map[string]interface{}{},
	}, waiterClaims())

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["error"] != "items are required" {
		t.Errorf("error: got %v, want 'items are required'", resp["error"])
	}
}

func TestOrderTake_ZeroQuantity(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, &mockOrderListStore{})
	rr := doAuthRequest(t, router, "POST", "/orders", map[string]interface{}{
		"customer_kind": "TEMPORARY",
		"customer_id":   7,
		"items": []map[string]interface{}{
			{"category": "PIZZA", "product_id": 1, "quantity": 0},
		},
	}, waiterClaims())

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["error"] != "items[0]: quantity must be > 0" {
		t.Errorf("error: got %v, want 'items[0]: quantity must be > 0'", resp["error"])
	}
}

func TestOrderTake_InvalidBody(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, &mockOrderListStore{})
	rr := doAuthRequest(t, router, "POST", "/orders", "not json", waiterClaims())

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
}

func TestOrderTake_ProductNotFound(t *testing.T) {
	svc := &mockOrderService{
		takeFn: func(ctx context.Context, req service.TakeOrderRequest) (*service.TakeOrderResult, error) {
			return nil, service.ErrProductNotFound
		},
	}

	router := setupOrderRouter(svc, &mockOrderListStore{})
	rr := doAuthRequest(t, router, "POST", "/orders", map[string]interface{}{
		"customer_kind": "TEMPORARY",
		"customer_id":   7,
		"items": []map[string]interface{}{
			{"category": "PIZZA", "product_id": 999, "quantity": 1},
		},
	}, waiterClaims())

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNotFound, rr.Body.String())
	}
}

func TestOrderTake_InvalidCustomerKindFromService(t *testing.T) {
	svc := &mockOrderService{
		takeFn: func(ctx context.Context, req service.TakeOrderRequest) (*service.TakeOrderResult, error) {
			return nil, service.ErrInvalidCustomerKind
		},
	}

	router := setupOrderRouter(svc, &mockOrderListStore{})
	rr := doAuthRequest(t, router, "POST", "/orders", map[string]interface{}{
		"customer_kind": "WALK_IN",
		"customer_id":   7,
		"items": []map[string]interface{}{
			{"category": "PIZZA", "product_id": 1, "quantity": 1},
		},
	}, waiterClaims())

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
}

func TestOrderTake_ServiceInternalError(t *testing.T) {
	svc := &mockOrderService{
		takeFn: func(ctx context.Context, req service.TakeOrderRequest) (*service.TakeOrderResult, error) {
			return nil, context.DeadlineExceeded
		},
	}

	router := setupOrderRouter(svc, &mockOrderListStore{})
	rr := doAuthRequest(t, router, "POST", "/orders", map[string]interface{}{
		"customer_kind": "TEMPORARY",
		"customer_id":   7,
		"items": []map[string]interface{}{
			{"category": "PIZZA", "product_id": 1, "quantity": 1},
		},
	}, waiterClaims())

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusInternalServerError, rr.Body.String())
	}
}

func TestOrderTake_NoAuth(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, &mockOrderListStore{})

	req := httptest.NewRequest("POST", "/orders", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusUnauthorized, rr.Body.String())
	}
}

// --- ListActive / ListFinished ---

func TestOrderListActive_HappyPath(t *testing.T) {
	store := &mockOrderListStore{
		listActiveFn: func(ctx context.Context) ([]database.ListActiveOrdersRow, error) {
			return []database.ListActiveOrdersRow{
				{
					ID:             1,
					TempCustomerID: pgtype.Int8{Int64: 7, Valid: true},
					TableNo:        pgtype.Int2{Int16: 4, Valid: true},
					TotalPrice:     testNumeric(t, "19.00"),
					OrderTakenDate: time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC),
					OrderTakenHour: testTimeOfDay(19, 30, 0),
					Items:          "Margherita (2), Cola (1)",
				},
			}, nil
		},
	}

	router := setupOrderRouter(&mockOrderService{}, store)
	rr := doAuthRequest(t, router, "GET", "/orders/active", nil, waiterClaims())

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	rows := decodeListResponse(t, rr)
	if len(rows) != 1 {
		t.Fatalf("rows count: got %d, want 1", len(rows))
	}
	row := rows[0]
	if row["items"] != "Margherita (2), Cola (1)" {
		t.Errorf("items: got %v, want 'Margherita (2), Cola (1)'", row["items"])
	}
	if row["table_no"] != float64(4) {
		t.Errorf("table_no: got %v, want 4", row["table_no"])
	}
	if row["total_price"] != "19.00" {
		t.Errorf("total_price: got %v, want 19.00", row["total_price"])
	}
}

// An empty active table is a normal state, not an error.
func TestOrderListActive_Empty(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, &mockOrderListStore{})
	rr := doAuthRequest(t, router, "GET", "/orders/active", nil, waiterClaims())

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	rows := decodeListResponse(t, rr)
	if len(rows) != 0 {
		t.Errorf("rows count: got %d, want 0", len(rows))
	}
}

func TestOrderListFinished_HappyPath(t *testing.T) {
	store := &mockOrderListStore{
		listFinishedFn: func(ctx context.Context) ([]database.ListFinishedOrdersRow, error) {
			return []database.ListFinishedOrdersRow{
				{
					ID:                3,
					CustomerID:        pgtype.Int8{Int64: 12, Valid: true},
					TotalPrice:        testNumeric(t, "12.00"),
					OrderTakenDate:    time.Date(2026, 2, 13, 0, 0, 0, 0, time.UTC),
					OrderTakenHour:    testTimeOfDay(12, 0, 0),
					OrderPreparedHour: testTimeOfDay(12, 25, 0),
					Items:             "Garlic Bread (3)",
				},
			}, nil
		},
	}

	router := setupOrderRouter(&mockOrderService{}, store)
	rr := doAuthRequest(t, router, "GET", "/orders/finished", nil, waiterClaims())

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	rows := decodeListResponse(t, rr)
	if len(rows) != 1 {
		t.Fatalf("rows count: got %d, want 1", len(rows))
	}
	row := rows[0]
	if row["order_prepared_hour"] != "12:25:00" {
		t.Errorf("order_prepared_hour: got %v, want 12:25:00", row["order_prepared_hour"])
	}
	if row["table_no"] != nil {
		t.Errorf("table_no: got %v, want nil for permanent customer", row["table_no"])
	}
}

// --- Finish ---

// --- Get ---

func TestOrderGet_HappyPath(t *testing.T) {
	store := &mockOrderListStore{
		getActiveFn: func(ctx context.Context, id int64) (database.Order, error) {
			if id != 42 {
				t.Errorf("order id: got %d, want 42", id)
			}
			return database.Order{
				ID:             42,
				TempCustomerID: pgtype.Int8{Int64: 7, Valid: true},
				TotalPrice:     testNumeric(t, "19.00"),
				OrderTakenDate: time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC),
				OrderTakenHour: testTimeOfDay(19, 30, 0),
			}, nil
		},
		listDetailsFn: func(ctx context.Context, orderID int64) ([]database.OrderDetail, error) {
			return []database.OrderDetail{
				{ID: 1, OrderID: 42, ItemCategory: "PIZZA", ItemID: 3, ItemName: "Margherita", Quantity: 2},
				{ID: 2, OrderID: 42, ItemCategory: "DRINK", ItemID: 5, ItemName: "Cola", Quantity: 1},
			}, nil
		},
	}

	router := setupOrderRouter(&mockOrderService{}, store)
	rr := doAuthRequest(t, router, "GET", "/orders/42", nil, waiterClaims())

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["id"] != float64(42) {
		t.Errorf("id: got %v, want 42", resp["id"])
	}
	if resp["total_price"] != "19.00" {
		t.Errorf("total_price: got %v, want 19.00", resp["total_price"])
	}
	items, ok := resp["items"].([]interface{})
	if !ok || len(items) != 2 {
		t.Fatalf("items: got %v, want 2 entries", resp["items"])
	}
	first := items[0].(map[string]interface{})
	if first["name"] != "Margherita" || first["quantity"] != float64(2) {
		t.Errorf("first item: got %v", first)
	}
}

func TestOrderGet_NotActive(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, &mockOrderListStore{})
	rr := doAuthRequest(t, router, "GET", "/orders/42", nil, waiterClaims())

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNotFound, rr.Body.String())
	}
}

func TestOrderFinish_HappyPath(t *testing.T) {
	svc := &mockOrderService{
		finishFn: func(ctx context.Context, orderID int64) (database.Order, error) {
			if orderID != 42 {
				t.Errorf("order id: got %d, want 42", orderID)
			}
			return database.Order{
				ID:                42,
				TempCustomerID:    pgtype.Int8{Int64: 7, Valid: true},
				TotalPrice:        testNumeric(t, "16.00"),
				OrderTakenDate:    time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC),
				OrderTakenHour:    testTimeOfDay(19, 30, 0),
				OrderPreparedHour: testTimeOfDay(19, 55, 0),
			}, nil
		},
	}

	router := setupOrderRouter(svc, &mockOrderListStore{})
	rr := doAuthRequest(t, router, "POST", "/orders/42/finish", nil, waiterClaims())

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["order_prepared_hour"] != "19:55:00" {
		t.Errorf("order_prepared_hour: got %v, want 19:55:00", resp["order_prepared_hour"])
	}
}

func TestOrderFinish_NotFound(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, &mockOrderListStore{})
	rr := doAuthRequest(t, router, "POST", "/orders/42/finish", nil, waiterClaims())

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNotFound, rr.Body.String())
	}
}

func TestOrderFinish_InvalidID(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, &mockOrderListStore{})
	rr := doAuthRequest(t, router, "POST", "/orders/abc/finish", nil, waiterClaims())

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
}

// --- Cancel ---

func TestOrderCancel_HappyPath(t *testing.T) {
	canceled := false
	svc := &mockOrderService{
		cancelFn: func(ctx context.Context, orderID int64) error {
			if orderID != 42 {
				t.Errorf("order id: got %d, want 42", orderID)
			}
			canceled = true
			return nil
		},
	}

	router := setupOrderRouter(svc, &mockOrderListStore{})
	rr := doAuthRequest(t, router, "DELETE", "/orders/42", nil, waiterClaims())

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNoContent, rr.Body.String())
	}
	if !canceled {
		t.Error("CancelOrder should be called")
	}
}

func TestOrderCancel_NotFound(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, &mockOrderListStore{})
	rr := doAuthRequest(t, router, "DELETE", "/orders/42", nil, waiterClaims())

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNotFound, rr.Body.String())
	}
}
