package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Category selects one of the three catalog tables. Product ids are unique
// within a category, not across categories.
type Category string

const (
	CategoryPizza Category = "PIZZA"
	CategorySnack Category = "SNACK"
	CategoryDrink Category = "DRINK"
)

// categoryTables maps a category to its table. SQL cannot bind table names
// as parameters, so every query interpolates through this fixed map and
// nothing user-supplied ever reaches the statement text.
var categoryTables = map[Category]string{
	CategoryPizza: "pizzas",
	CategorySnack: "snacks",
	CategoryDrink: "drinks",
}

func (c Category) Valid() bool {
	_, ok := categoryTables[c]
	return ok
}

func (c Category) table() (string, error) {
	t, ok := categoryTables[c]
	if !ok {
		return "", fmt.Errorf("unknown category %q", string(c))
	}
	return t, nil
}

type Product struct {
	ID          int64
	Category    Category
	Name        string
	Price       pgtype.Numeric
	Ingredients string
}

type Customer struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	Address   string
}

type TempCustomer struct {
	ID        int64
	TableNo   int16
	FirstName string
	LastName  string
}

// Order is one row of active_orders, finished_orders or canceled_orders;
// the three tables share this schema. Exactly one of TempCustomerID and
// CustomerID is set. OrderPreparedHour is null until the order finishes.
type Order struct {
	ID                int64
	TempCustomerID    pgtype.Int8
	CustomerID        pgtype.Int8
	TotalPrice        pgtype.Numeric
	OrderTakenDate    time.Time
	OrderTakenHour    pgtype.Time
	OrderPreparedHour pgtype.Time
}

type OrderDetail struct {
	ID           int64
	OrderID      int64
	ItemCategory Category
	ItemID       int64
	ItemName     string
	Quantity     int32
}

type User struct {
	ID             uuid.UUID
	Email          string
	HashedPassword string
	FullName       string
	Role           string
	CreatedAt      time.Time
}
