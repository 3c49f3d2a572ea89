package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crazy-pizza/api/internal/database"
	"github.com/crazy-pizza/api/internal/enum"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Errors returned by the order service.
var (
	ErrEmptyItems          = errors.New("items are required")
	ErrInvalidQuantity     = errors.New("quantity must be > 0")
	ErrInvalidCategory     = errors.New("invalid category")
	ErrInvalidCustomerKind = errors.New("invalid customer_kind")
	ErrProductNotFound     = errors.New("product not found")
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrOrderNotFound       = errors.New("order not found")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed by the order lifecycle.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetProduct(ctx context.Context, arg database.GetProductParams) (database.Product, error)
	GetCustomer(ctx context.Context, id int64) (database.Customer, error)
	GetTempCustomer(ctx context.Context, id int64) (database.TempCustomer, error)
	CreateActiveOrder(ctx context.Context, arg database.CreateActiveOrderParams) (database.Order, error)
	CreateOrderDetail(ctx context.Context, arg database.CreateOrderDetailParams) (database.OrderDetail, error)
	GetActiveOrder(ctx context.Context, id int64) (database.Order, error)
	MarkOrderPrepared(ctx context.Context, arg database.MarkOrderPreparedParams) (database.Order, error)
	MoveOrderToFinished(ctx context.Context, id int64) (int64, error)
	MoveOrderToCanceled(ctx context.Context, id int64) (int64, error)
	DeleteActiveOrder(ctx context.Context, id int64) (int64, error)
	DeleteOrderDetails(ctx context.Context, orderID int64) (int64, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// TakeOrderRequest is the validated input for taking an order: the draft
// the waiter assembled at the terminal, submitted as one value.
type TakeOrderRequest struct {
	CustomerKind string
	CustomerID   int64
	Items        []TakeOrderItemRequest
}

// TakeOrderItemRequest is a single line of the draft order.
type TakeOrderItemRequest struct {
	Category  string
	ProductID int64
	Quantity  int32
}

// TakeOrderResult is the created order with its line items.
type TakeOrderResult struct {
	Order   database.Order
	Details []database.OrderDetail
}

// OrderService owns the order lifecycle: creation, the Active -> Finished
// and Active -> Canceled transitions, and nothing else. Both transitions
// are terminal.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
}

// NewOrderService creates a new OrderService.
func NewOrderService(pool TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{pool: pool, newStore: newStore}
}

// TakeOrder prices the draft against the current catalog and creates the
// order atomically: either the order row and every line item land in the
// database, or nothing does. A product id that does not exist in its
// category aborts the whole order rather than pricing the line at zero.
func (s *OrderService) TakeOrder(ctx context.Context, req TakeOrderRequest) (*TakeOrderResult, error) {
	if req.CustomerKind != enum.CustomerKindTemporary && req.CustomerKind != enum.CustomerKindPermanent {
		return nil, ErrInvalidCustomerKind
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
		}
		if !database.Category(item.Category).Valid() {
			return nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidCategory)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	tempCustomerID := pgtype.Int8{}
	customerID := pgtype.Int8{}
	if req.CustomerKind == enum.CustomerKindTemporary {
		if _, err := store.GetTempCustomer(ctx, req.CustomerID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrCustomerNotFound
			}
			return nil, fmt.Errorf("get temp customer: %w", err)
		}
		tempCustomerID = pgtype.Int8{Int64: req.CustomerID, Valid: true}
	} else {
		if _, err := store.GetCustomer(ctx, req.CustomerID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrCustomerNotFound
			}
			return nil, fmt.Errorf("get customer: %w", err)
		}
		customerID = pgtype.Int8{Int64: req.CustomerID, Valid: true}
	}

	// Resolve catalog prices and snapshot names. total = sum(price * qty)
	// at this moment; later catalog edits never change a placed order.
	totalPrice := decimal.Zero
	type pricedItem struct {
		category database.Category
		id       int64
		name     string
		quantity int32
	}
	priced := make([]pricedItem, 0, len(req.Items))
	for i, item := range req.Items {
		product, err := store.GetProduct(ctx, database.GetProductParams{
			Category: database.Category(item.Category),
			ID:       item.ProductID,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("items[%d]: %w", i, ErrProductNotFound)
			}
			return nil, fmt.Errorf("items[%d]: get product: %w", i, err)
		}
		price := numericToDecimal(product.Price)
		totalPrice = totalPrice.Add(price.Mul(decimal.NewFromInt32(item.Quantity)))
		priced = append(priced, pricedItem{
			category: product.Category,
			id:       product.ID,
			name:     product.Name,
			quantity: item.Quantity,
		})
	}

	now := time.Now()
	order, err := store.CreateActiveOrder(ctx, database.CreateActiveOrderParams{
		TempCustomerID: tempCustomerID,
		CustomerID:     customerID,
		TotalPrice:     decimalToNumeric(totalPrice),
		OrderTakenDate: now,
		OrderTakenHour: timeOfDay(now),
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	details := make([]database.OrderDetail, 0, len(priced))
	for _, p := range priced {
		detail, err := store.CreateOrderDetail(ctx, database.CreateOrderDetailParams{
			OrderID:      order.ID,
			ItemCategory: p.category,
			ItemID:       p.id,
			ItemName:     p.name,
			Quantity:     p.quantity,
		})
		if err != nil {
			return nil, fmt.Errorf("create order detail: %w", err)
		}
		details = append(details, detail)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &TakeOrderResult{Order: order, Details: details}, nil
}

// FinishOrder moves an Active order to Finished: stamps the preparation
// hour, copies the full row into finished_orders under the same id, and
// removes it from active_orders. Runs in one transaction so the order is
// never visible in both states or in neither; on failure it stays Active.
// Finishing an order that is not Active returns ErrOrderNotFound, so a
// repeated finish can never insert a duplicate.
func (s *OrderService) FinishOrder(ctx context.Context, orderID int64) (database.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.MarkOrderPrepared(ctx, database.MarkOrderPreparedParams{
		ID:           orderID,
		PreparedHour: timeOfDay(time.Now()),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("mark order prepared: %w", err)
	}

	moved, err := store.MoveOrderToFinished(ctx, orderID)
	if err != nil {
		return database.Order{}, fmt.Errorf("move order to finished: %w", err)
	}
	if moved != 1 {
		return database.Order{}, fmt.Errorf("move order to finished: %d rows copied", moved)
	}

	if _, err := store.DeleteActiveOrder(ctx, orderID); err != nil {
		return database.Order{}, fmt.Errorf("delete active order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Order{}, fmt.Errorf("commit tx: %w", err)
	}

	return order, nil
}

// CancelOrder moves an Active order to Canceled and removes its line items,
// all in one transaction. Retrying after a failure is safe: the first call
// either fully applied or fully rolled back, and a second call on an order
// that is no longer Active returns ErrOrderNotFound.
func (s *OrderService) CancelOrder(ctx context.Context, orderID int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if _, err := store.GetActiveOrder(ctx, orderID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("get active order: %w", err)
	}

	moved, err := store.MoveOrderToCanceled(ctx, orderID)
	if err != nil {
		return fmt.Errorf("move order to canceled: %w", err)
	}
	if moved != 1 {
		return fmt.Errorf("move order to canceled: %d rows copied", moved)
	}

	if _, err := store.DeleteOrderDetails(ctx, orderID); err != nil {
		return fmt.Errorf("delete order details: %w", err)
	}

	if _, err := store.DeleteActiveOrder(ctx, orderID); err != nil {
		return fmt.Errorf("delete active order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// --- Helpers ---

func timeOfDay(t time.Time) pgtype.Time {
	h, m, sec := t.Clock()
	us := (int64(h)*3600 + int64(m)*60 + int64(sec)) * 1e6
	return pgtype.Time{Microseconds: us, Valid: true}
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
