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
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// ProductStore defines the database methods needed by product handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type ProductStore interface {
	ListProducts(ctx context.Context, category database.Category) ([]database.Product, error)
	GetProduct(ctx context.Context, arg database.GetProductParams) (database.Product, error)
	CreateProduct(ctx context.Context, arg database.CreateProductParams) (database.Product, error)
	UpdateProduct(ctx context.Context, arg database.UpdateProductParams) (database.Product, error)
	DeleteProduct(ctx context.Context, arg database.DeleteProductParams) (int64, error)
}

// ProductHandler handles menu CRUD for one of the three catalog categories.
type ProductHandler struct {
	store ProductStore
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(store ProductStore) *ProductHandler {
	return &ProductHandler{store: store}
}

// RegisterRoutes registers catalog endpoints on the given Chi router.
// Expected to be mounted under a category-scoped subrouter: /menu/{category}
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type productRequest struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Ingredients string `json:"ingredients"`
}

type productResponse struct {
	ID          int64  `json:"id"`
	Category    string `json:"category"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Ingredients string `json:"ingredients"`
}

func toProductResponse(p database.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Category:    string(p.Category),
		Name:        p.Name,
		Price:       numericToString(p.Price),
		Ingredients: p.Ingredients,
	}
}

// --- Helpers ---

// categoryPaths maps URL path segments to catalog categories.
var categoryPaths = map[string]database.Category{
	"pizzas": database.CategoryPizza,
	"snacks": database.CategorySnack,
	"drinks": database.CategoryDrink,
}

func categoryFromRequest(r *http.Request) (database.Category, bool) {
	c, ok := categoryPaths[chi.URLParam(r, "category")]
	return c, ok
}

func productIDFromRequest(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

var errNegativePrice = errors.New("negative price")

func parsePrice(s string) (pgtype.Numeric, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return pgtype.Numeric{}, err
	}
	if d.IsNegative() {
		return pgtype.Numeric{}, errNegativePrice
	}
	var n pgtype.Numeric
	if err := n.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, err
	}
	return n, nil
}

// validateProductRequest checks the shared create/update fields and writes
// the error response itself; the caller just returns on !ok.
func validateProductRequest(w http.ResponseWriter, req productRequest) (pgtype.Numeric, bool) {
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return pgtype.Numeric{}, false
	}
	if req.Price == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price is required"})
		return pgtype.Numeric{}, false
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		if errors.Is(err, errNegativePrice) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price must be >= 0"})
		} else {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		}
		return pgtype.Numeric{}, false
	}
	return price, true
}

// --- Handlers ---

// List returns every product in the category, ordered by id.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	category, ok := categoryFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category"})
		return
	}

	products, err := h.store.ListProducts(r.Context(), category)
	if err != nil {
		log.Printf("ERROR: list products: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = toProductResponse(p)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single product by numeric id.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	category, ok := categoryFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category"})
		return
	}

	id, err := productIDFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	product, err := h.store.GetProduct(r.Context(), database.GetProductParams{Category: category, ID: id})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		log.Printf("ERROR: get product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(product))
}

// Create adds a new product to the category's table.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	category, ok := categoryFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category"})
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	price, ok := validateProductRequest(w, req)
	if !ok {
		return
	}

	product, err := h.store.CreateProduct(r.Context(), database.CreateProductParams{
		Category:    category,
		Name:        req.Name,
		Price:       price,
		Ingredients: req.Ingredients,
	})
	if err != nil {
		log.Printf("ERROR: create product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toProductResponse(product))
}

// Update overwrites name, price and ingredients of an existing product.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	category, ok := categoryFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category"})
		return
	}

	id, err := productIDFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	price, ok := validateProductRequest(w, req)
	if !ok {
		return
	}

	product, err := h.store.UpdateProduct(r.Context(), database.UpdateProductParams{
		Category:    category,
		ID:          id,
		Name:        req.Name,
		Price:       price,
		Ingredients: req.Ingredients,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		log.Printf("ERROR: update product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(product))
}

// Delete removes a product unconditionally. Existing line items keep their
// name snapshot, so no reference check is made.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	category, ok := categoryFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category"})
		return
	}

	id, err := productIDFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	deleted, err := h.store.DeleteProduct(r.Context(), database.DeleteProductParams{Category: category, ID: id})
	if err != nil {
		log.Printf("ERROR: delete product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if deleted == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
