package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = "id, temp_customer_id, customer_id, total_price, order_taken_date, order_taken_hour, order_prepared_hour"

func scanOrder(row interface{ Scan(...any) error }) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.TempCustomerID, &o.CustomerID, &o.TotalPrice,
		&o.OrderTakenDate, &o.OrderTakenHour, &o.OrderPreparedHour)
	return o, err
}

type CreateActiveOrderParams struct {
	TempCustomerID pgtype.Int8
	CustomerID     pgtype.Int8
	TotalPrice     pgtype.Numeric
	OrderTakenDate time.Time
	OrderTakenHour pgtype.Time
}

func (q *Queries) CreateActiveOrder(ctx context.Context, arg CreateActiveOrderParams) (Order, error) {
	const sql = `INSERT INTO active_orders (temp_customer_id, customer_id, total_price, order_taken_date, order_taken_hour)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + orderColumns
	return scanOrder(q.db.QueryRow(ctx, sql,
		arg.TempCustomerID, arg.CustomerID, arg.TotalPrice, arg.OrderTakenDate, arg.OrderTakenHour))
}

func (q *Queries) GetActiveOrder(ctx context.Context, id int64) (Order, error) {
	const sql = `SELECT ` + orderColumns + ` FROM active_orders WHERE id = $1`
	return scanOrder(q.db.QueryRow(ctx, sql, id))
}

type MarkOrderPreparedParams struct {
	ID           int64
	PreparedHour pgtype.Time
}

// MarkOrderPrepared stamps the preparation time on an active order. Returns
// pgx.ErrNoRows when the order is not Active (absent, already finished or
// canceled), which makes finish idempotent at the caller.
func (q *Queries) MarkOrderPrepared(ctx context.Context, arg MarkOrderPreparedParams) (Order, error) {
	const sql = `UPDATE active_orders SET order_prepared_hour = $2 WHERE id = $1 RETURNING ` + orderColumns
	return scanOrder(q.db.QueryRow(ctx, sql, arg.ID, arg.PreparedHour))
}

// MoveOrderToFinished copies the whole active row into finished_orders,
// id included, so existing order_details stay reachable under the same key.
func (q *Queries) MoveOrderToFinished(ctx context.Context, id int64) (int64, error) {
	const sql = `INSERT INTO finished_orders SELECT * FROM active_orders WHERE id = $1`
	tag, err := q.db.Exec(ctx, sql, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (q *Queries) MoveOrderToCanceled(ctx context.Context, id int64) (int64, error) {
	const sql = `INSERT INTO canceled_orders SELECT * FROM active_orders WHERE id = $1`
	tag, err := q.db.Exec(ctx, sql, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (q *Queries) DeleteActiveOrder(ctx context.Context, id int64) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM active_orders WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type CreateOrderDetailParams struct {
	OrderID      int64
	ItemCategory Category
	ItemID       int64
	ItemName     string
	Quantity     int32
}

func (q *Queries) CreateOrderDetail(ctx context.Context, arg CreateOrderDetailParams) (OrderDetail, error) {
	const sql = `INSERT INTO order_details (order_id, item_category, item_id, item_name, quantity)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, order_id, item_category, item_id, item_name, quantity`
	var d OrderDetail
	err := q.db.QueryRow(ctx, sql, arg.OrderID, arg.ItemCategory, arg.ItemID, arg.ItemName, arg.Quantity).
		Scan(&d.ID, &d.OrderID, &d.ItemCategory, &d.ItemID, &d.ItemName, &d.Quantity)
	return d, err
}

func (q *Queries) ListOrderDetails(ctx context.Context, orderID int64) ([]OrderDetail, error) {
	const sql = `SELECT id, order_id, item_category, item_id, item_name, quantity
FROM order_details WHERE order_id = $1 ORDER BY id`
	rows, err := q.db.Query(ctx, sql, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []OrderDetail
	for rows.Next() {
		var d OrderDetail
		if err := rows.Scan(&d.ID, &d.OrderID, &d.ItemCategory, &d.ItemID, &d.ItemName, &d.Quantity); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

func (q *Queries) DeleteOrderDetails(ctx context.Context, orderID int64) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM order_details WHERE order_id = $1`, orderID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListActiveOrdersRow is one display row per active order: the order columns
// untouched, the table number resolved through temp_customers, and the line
// items collapsed to a single "name (quantity)" summary in insertion order.
type ListActiveOrdersRow struct {
	ID             int64
	TempCustomerID pgtype.Int8
	CustomerID     pgtype.Int8
	TotalPrice     pgtype.Numeric
	OrderTakenDate time.Time
	OrderTakenHour pgtype.Time
	TableNo        pgtype.Int2
	Items          string
}

func (q *Queries) ListActiveOrders(ctx context.Context) ([]ListActiveOrdersRow, error) {
	const sql = `SELECT
    o.id,
    o.temp_customer_id,
    o.customer_id,
    o.total_price,
    o.order_taken_date,
    o.order_taken_hour,
    tc.table_no,
    COALESCE(string_agg(od.item_name || ' (' || od.quantity || ')', ', ' ORDER BY od.id), '') AS items
FROM active_orders AS o
LEFT JOIN temp_customers AS tc ON o.temp_customer_id = tc.id
LEFT JOIN order_details AS od ON od.order_id = o.id
GROUP BY o.id, o.temp_customer_id, o.customer_id, o.total_price, o.order_taken_date, o.order_taken_hour, tc.table_no
ORDER BY o.order_taken_date, o.order_taken_hour`
	rows, err := q.db.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ListActiveOrdersRow
	for rows.Next() {
		var r ListActiveOrdersRow
		if err := rows.Scan(&r.ID, &r.TempCustomerID, &r.CustomerID, &r.TotalPrice,
			&r.OrderTakenDate, &r.OrderTakenHour, &r.TableNo, &r.Items); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListFinishedOrdersRow extends the active row shape with the preparation
// hour stamped at the Active -> Finished transition.
type ListFinishedOrdersRow struct {
	ID                int64
	TempCustomerID    pgtype.Int8
	CustomerID        pgtype.Int8
	TotalPrice        pgtype.Numeric
	OrderTakenDate    time.Time
	OrderTakenHour    pgtype.Time
	OrderPreparedHour pgtype.Time
	TableNo           pgtype.Int2
	Items             string
}

func (q *Queries) ListFinishedOrders(ctx context.Context) ([]ListFinishedOrdersRow, error) {
	const sql = `SELECT
    o.id,
    o.temp_customer_id,
    o.customer_id,
    o.total_price,
    o.order_taken_date,
    o.order_taken_hour,
    o.order_prepared_hour,
    tc.table_no,
    COALESCE(string_agg(od.item_name || ' (' || od.quantity || ')', ', ' ORDER BY od.id), '') AS items
FROM finished_orders AS o
LEFT JOIN temp_customers AS tc ON o.temp_customer_id = tc.id
LEFT JOIN order_details AS od ON od.order_id = o.id
GROUP BY o.id, o.temp_customer_id, o.customer_id, o.total_price, o.order_taken_date, o.order_taken_hour, o.order_prepared_hour, tc.table_no
ORDER BY o.order_taken_date, o.order_taken_hour`
	rows, err := q.db.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ListFinishedOrdersRow
	for rows.Next() {
		var r ListFinishedOrdersRow
		if err := rows.Scan(&r.ID, &r.TempCustomerID, &r.CustomerID, &r.TotalPrice,
			&r.OrderTakenDate, &r.OrderTakenHour, &r.OrderPreparedHour, &r.TableNo, &r.Items); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
