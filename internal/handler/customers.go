package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/crazy-pizza/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
)

// CustomerStore defines the database methods needed by customer handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CustomerStore interface {
	CreateCustomer(ctx context.Context, arg database.CreateCustomerParams) (database.Customer, error)
	CreateTempCustomer(ctx context.Context, arg database.CreateTempCustomerParams) (database.TempCustomer, error)
	GetTableNumber(ctx context.Context, tempCustomerID int64) (int16, error)
}

// CustomerHandler handles the customer registry endpoints.
type CustomerHandler struct {
	store CustomerStore
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(store CustomerStore) *CustomerHandler {
	return &CustomerHandler{store: store}
}

// RegisterRoutes registers customer endpoints on the given Chi router.
// Expected to be mounted at /customers.
func (h *CustomerHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.CreatePermanent)
	r.Post("/temporary", h.CreateTemporary)
	r.Get("/temporary/{id}/table", h.TableNumber)
}

// --- Request / Response types ---

type createPermanentCustomerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Address   string `json:"address"`
}

type createTemporaryCustomerRequest struct {
	TableNo   int16  `json:"table_no"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type permanentCustomerResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Address   string `json:"address"`
}

type temporaryCustomerResponse struct {
	ID        int64  `json:"id"`
	TableNo   int16  `json:"table_no"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type tableNumberResponse struct {
	TempCustomerID int64 `json:"temp_customer_id"`
	TableNo        int16 `json:"table_no"`
}

// --- Handlers ---

// CreatePermanent registers a durable customer with contact details.
// No email format validation is applied; the field is free text.
func (h *CustomerHandler) CreatePermanent(w http.ResponseWriter, r *http.Request) {
	var req createPermanentCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Address == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "first_name, last_name, email and address are required"})
		return
	}

	customer, err := h.store.CreateCustomer(r.Context(), database.CreateCustomerParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Address:   req.Address,
	})
	if err != nil {
		log.Printf("ERROR: create customer: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, permanentCustomerResponse{
		ID:        customer.ID,
		FirstName: customer.FirstName,
		LastName:  customer.LastName,
		Email:     customer.Email,
		Address:   customer.Address,
	})
}

// CreateTemporary registers a walk-in customer bound to a table number,
// one per order-taking session.
func (h *CustomerHandler) CreateTemporary(w http.ResponseWriter, r *http.Request) {
	var req createTemporaryCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.TableNo <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "table_no must be > 0"})
		return
	}
	if req.FirstName == "" || req.LastName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "first_name and last_name are required"})
		return
	}

	customer, err := h.store.CreateTempCustomer(r.Context(), database.CreateTempCustomerParams{
		TableNo:   req.TableNo,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		log.Printf("ERROR: create temp customer: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, temporaryCustomerResponse{
		ID:        customer.ID,
		TableNo:   customer.TableNo,
		FirstName: customer.FirstName,
		LastName:  customer.LastName,
	})
}

// TableNumber resolves a temporary customer id to its table number.
// Ids of permanent customers never resolve here.
func (h *CustomerHandler) TableNumber(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid customer ID"})
		return
	}

	tableNo, err := h.store.GetTableNumber(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "temporary customer not found"})
			return
		}
		log.Printf("ERROR: get table number: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, tableNumberResponse{TempCustomerID: id, TableNo: tableNo})
}
