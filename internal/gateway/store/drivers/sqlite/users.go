package sqlite

import (
	"context"
	"database/sql"

	"github.com/oxleyhq/apigate/internal/gateway/domain"
)

type usersRepo struct {
	db *sql.DB
}

const userColumns = `id, username, password_hash, scopes, created_at, updated_at`

func scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	var scopes string
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &scopes, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, mapErr(err)
	}
	u.Scopes = splitScopes(scopes)
	return u, nil
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

func (r *usersRepo) Create(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, scopes) VALUES (?, ?, ?, ?)`,
		u.ID, u.Username, u.PasswordHash, joinScopes(u.Scopes))
	return mapErr(err)
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}
