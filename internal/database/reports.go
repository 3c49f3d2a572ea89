package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// SalesBucketRow is one date bucket of the sales report: the bucket label
// (day, ISO week or month), how many orders finished in it, and their
// summed total_price.
type SalesBucketRow struct {
	Bucket     string
	OrderCount int64
	TotalSales pgtype.Numeric
}

const getDailySalesSQL = `SELECT
    order_taken_date::text AS bucket,
    COUNT(*) AS order_count,
    SUM(total_price) AS total_sales
FROM finished_orders
GROUP BY order_taken_date
ORDER BY order_taken_date`

const getWeeklySalesSQL = `SELECT
    to_char(order_taken_date, 'IYYY-IW') AS bucket,
    COUNT(*) AS order_count,
    SUM(total_price) AS total_sales
FROM finished_orders
GROUP BY to_char(order_taken_date, 'IYYY-IW')
ORDER BY bucket`

const getMonthlySalesSQL = `SELECT
    to_char(order_taken_date, 'YYYY-MM') AS bucket,
    COUNT(*) AS order_count,
    SUM(total_price) AS total_sales
FROM finished_orders
GROUP BY to_char(order_taken_date, 'YYYY-MM')
ORDER BY bucket`

func (q *Queries) GetDailySales(ctx context.Context) ([]SalesBucketRow, error) {
	return q.salesBuckets(ctx, getDailySalesSQL)
}

func (q *Queries) GetWeeklySales(ctx context.Context) ([]SalesBucketRow, error) {
	return q.salesBuckets(ctx, getWeeklySalesSQL)
}

func (q *Queries) GetMonthlySales(ctx context.Context) ([]SalesBucketRow, error) {
	return q.salesBuckets(ctx, getMonthlySalesSQL)
}

func (q *Queries) salesBuckets(ctx context.Context, sql string) ([]SalesBucketRow, error) {
	rows, err := q.db.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SalesBucketRow
	for rows.Next() {
		var r SalesBucketRow
		if err := rows.Scan(&r.Bucket, &r.OrderCount, &r.TotalSales); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CustomerSegmentRow groups finished orders by the table that placed them.
// Orders of permanent customers carry no table and fall out of the join.
type CustomerSegmentRow struct {
	TableNo    int16
	OrderCount int64
	TotalSpent pgtype.Numeric
}

func (q *Queries) GetCustomerSegments(ctx context.Context) ([]CustomerSegmentRow, error) {
	const sql = `SELECT
    tc.table_no,
    COUNT(*) AS order_count,
    SUM(o.total_price) AS total_spent
FROM finished_orders AS o
JOIN temp_customers AS tc ON o.temp_customer_id = tc.id
GROUP BY tc.table_no
ORDER BY tc.table_no`
	rows, err := q.db.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CustomerSegmentRow
	for rows.Next() {
		var r CustomerSegmentRow
		if err := rows.Scan(&r.TableNo, &r.OrderCount, &r.TotalSpent); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
