package database

import (
	"context"

	"github.com/google/uuid"
)

const userColumns = "id, email, hashed_password, full_name, role, created_at"

type CreateUserParams struct {
	Email          string
	HashedPassword string
	FullName       string
	Role           string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	const sql = `INSERT INTO users (email, hashed_password, full_name, role)
VALUES ($1, $2, $3, $4)
RETURNING ` + userColumns
	var u User
	err := q.db.QueryRow(ctx, sql, arg.Email, arg.HashedPassword, arg.FullName, arg.Role).
		Scan(&u.ID, &u.Email, &u.HashedPassword, &u.FullName, &u.Role, &u.CreatedAt)
	return u, err
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	const sql = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	var u User
	err := q.db.QueryRow(ctx, sql, email).
		Scan(&u.ID, &u.Email, &u.HashedPassword, &u.FullName, &u.Role, &u.CreatedAt)
	return u, err
}

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	const sql = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	var u User
	err := q.db.QueryRow(ctx, sql, id).
		Scan(&u.ID, &u.Email, &u.HashedPassword, &u.FullName, &u.Role, &u.CreatedAt)
	return u, err
}
