package database

import "context"

type CreateCustomerParams struct {
	FirstName string
	LastName  string
	Email     string
	Address   string
}

func (q *Queries) CreateCustomer(ctx context.Context, arg CreateCustomerParams) (Customer, error) {
	const sql = `INSERT INTO customers (first_name, last_name, email, address)
VALUES ($1, $2, $3, $4)
RETURNING id, first_name, last_name, email, address`
	var c Customer
	err := q.db.QueryRow(ctx, sql, arg.FirstName, arg.LastName, arg.Email, arg.Address).
		Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Address)
	return c, err
}

type CreateTempCustomerParams struct {
	TableNo   int16
	FirstName string
	LastName  string
}

func (q *Queries) CreateTempCustomer(ctx context.Context, arg CreateTempCustomerParams) (TempCustomer, error) {
	const sql = `INSERT INTO temp_customers (table_no, first_name, last_name)
VALUES ($1, $2, $3)
RETURNING id, table_no, first_name, last_name`
	var c TempCustomer
	err := q.db.QueryRow(ctx, sql, arg.TableNo, arg.FirstName, arg.LastName).
		Scan(&c.ID, &c.TableNo, &c.FirstName, &c.LastName)
	return c, err
}

func (q *Queries) GetCustomer(ctx context.Context, id int64) (Customer, error) {
	const sql = `SELECT id, first_name, last_name, email, address FROM customers WHERE id = $1`
	var c Customer
	err := q.db.QueryRow(ctx, sql, id).
		Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Address)
	return c, err
}

func (q *Queries) GetTempCustomer(ctx context.Context, id int64) (TempCustomer, error) {
	const sql = `SELECT id, table_no, first_name, last_name FROM temp_customers WHERE id = $1`
	var c TempCustomer
	err := q.db.QueryRow(ctx, sql, id).
		Scan(&c.ID, &c.TableNo, &c.FirstName, &c.LastName)
	return c, err
}

// GetTableNumber resolves a temporary customer id to its table number.
// Returns pgx.ErrNoRows for unknown ids; a permanent customer id never
// matches because the lookup only touches temp_customers.
func (q *Queries) GetTableNumber(ctx context.Context, tempCustomerID int64) (int16, error) {
	const sql = `SELECT table_no FROM temp_customers WHERE id = $1`
	var tableNo int16
	err := q.db.QueryRow(ctx, sql, tempCustomerID).Scan(&tableNo)
	return tableNo, err
}
