package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
)

const productColumns = "id, name, price, ingredients"

type CreateProductParams struct {
	Category    Category
	Name        string
	Price       pgtype.Numeric
	Ingredients string
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	table, err := arg.Category.table()
	if err != nil {
		return Product{}, err
	}
	sql := fmt.Sprintf(`INSERT INTO %s (name, price, ingredients) VALUES ($1, $2, $3) RETURNING %s`,
		table, productColumns)
	row := q.db.QueryRow(ctx, sql, arg.Name, arg.Price, arg.Ingredients)
	p := Product{Category: arg.Category}
	err = row.Scan(&p.ID, &p.Name, &p.Price, &p.Ingredients)
	return p, err
}

type UpdateProductParams struct {
	Category    Category
	ID          int64
	Name        string
	Price       pgtype.Numeric
	Ingredients string
}

// UpdateProduct overwrites all mutable fields. Returns pgx.ErrNoRows when
// the id is absent in the category's table.
func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) (Product, error) {
	table, err := arg.Category.table()
	if err != nil {
		return Product{}, err
	}
	sql := fmt.Sprintf(`UPDATE %s SET name = $2, price = $3, ingredients = $4 WHERE id = $1 RETURNING %s`,
		table, productColumns)
	row := q.db.QueryRow(ctx, sql, arg.ID, arg.Name, arg.Price, arg.Ingredients)
	p := Product{Category: arg.Category}
	err = row.Scan(&p.ID, &p.Name, &p.Price, &p.Ingredients)
	return p, err
}

type DeleteProductParams struct {
	Category Category
	ID       int64
}

// DeleteProduct removes a product unconditionally. Order details keep their
// denormalized name snapshot, so dangling item_id references are harmless.
func (q *Queries) DeleteProduct(ctx context.Context, arg DeleteProductParams) (int64, error) {
	table, err := arg.Category.table()
	if err != nil {
		return 0, err
	}
	tag, err := q.db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), arg.ID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (q *Queries) ListProducts(ctx context.Context, category Category) ([]Product, error) {
	table, err := category.table()
	if err != nil {
		return nil, err
	}
	rows, err := q.db.Query(ctx, fmt.Sprintf(`SELECT %s FROM %s ORDER BY id`, productColumns, table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p := Product{Category: category}
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Ingredients); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

type GetProductParams struct {
	Category Category
	ID       int64
}

// GetProduct looks a product up by numeric id only; display names are not
// unique and are never used as a lookup key.
func (q *Queries) GetProduct(ctx context.Context, arg GetProductParams) (Product, error) {
	table, err := arg.Category.table()
	if err != nil {
		return Product{}, err
	}
	row := q.db.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, productColumns, table), arg.ID)
	p := Product{Category: arg.Category}
	err = row.Scan(&p.ID, &p.Name, &p.Price, &p.Ingredients)
	return p, err
}
