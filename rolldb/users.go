package rolldb

import (
	"context"
)

type CreateUserParams struct {
	ID           string
	Username     string
	DisplayName  string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    int64
}

const createUser = `
INSERT INTO users (id, username, display_name, password_hash, is_admin, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`

// CreateUser inserts a user. A taken username yields ErrDuplicate.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	_, err := q.db.ExecContext(ctx, q.dialect.Rebind(createUser),
		arg.ID,
		arg.Username,
		arg.DisplayName,
		arg.PasswordHash,
		arg.IsAdmin,
		arg.CreatedAt,
	)
	if err != nil {
		return User{}, translateError(err)
	}
	return User(arg), nil
}

const userColumns = `id, username, display_name, password_hash, is_admin, created_at`

func scanUser(s rowScanner) (User, error) {
	var i User
	err := s.Scan(
		&i.ID,
		&i.Username,
		&i.DisplayName,
		&i.PasswordHash,
		&i.IsAdmin,
		&i.CreatedAt,
	)
	return i, err
}

const getUserByUsername = `SELECT ` + userColumns + ` FROM users WHERE username = ?`

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	i, err := scanUser(q.db.QueryRowContext(ctx, q.dialect.Rebind(getUserByUsername), username))
	return i, translateError(err)
}

const getUserByID = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	i, err := scanUser(q.db.QueryRowContext(ctx, q.dialect.Rebind(getUserByID), id))
	return i, translateError(err)
}

const listUsers = `SELECT ` + userColumns + ` FROM users ORDER BY username`

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()
	var items []User
	for rows.Next() {
		i, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateUserPassword = `UPDATE users SET password_hash = ? WHERE id = ?`

func (q *Queries) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	return q.execOne(ctx, updateUserPassword, passwordHash, id)
}

const deleteUser = `DELETE FROM users WHERE id = ?`

// DeleteUser removes a user. Their visit marks stay and keep pointing at
// the removed id.
func (q *Queries) DeleteUser(ctx context.Context, id string) error {
	return q.execOne(ctx, deleteUser, id)
}

// execOne runs a statement expected to touch exactly one row.
func (q *Queries) execOne(ctx context.Context, query string, args ...any) error {
	res, err := q.db.ExecContext(ctx, q.dialect.Rebind(query), args...)
	if err != nil {
		return translateError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
