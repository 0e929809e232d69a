package sqlite

import (
	"context"
	"database/sql"

	"github.com/oxleyhq/apigate/internal/gateway/domain"
	"github.com/oxleyhq/apigate/internal/gateway/store"
)

type apiKeysRepo struct {
	db *sql.DB
}

const apiKeyColumns = `id, name, fingerprint, scopes, created_at, revoked_at`

func scanAPIKey(scan func(...any) error) (domain.APIKey, error) {
	var k domain.APIKey
	var scopes string
	var revokedAt sql.NullTime
	err := scan(&k.ID, &k.Name, &k.Fingerprint, &scopes, &k.CreatedAt, &revokedAt)
	if err != nil {
		return domain.APIKey{}, mapErr(err)
	}
	k.Scopes = splitScopes(scopes)
	if revokedAt.Valid {
		k.RevokedAt = &revokedAt.Time
	}
	return k, nil
}

func (r *apiKeysRepo) GetByFingerprint(ctx context.Context, fingerprint string) (domain.APIKey, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE fingerprint = ?`, fingerprint)
	return scanAPIKey(row.Scan)
}

func (r *apiKeysRepo) Create(ctx context.Context, k domain.APIKey) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_keys (id, name, fingerprint, scopes) VALUES (?, ?, ?, ?)`,
		k.ID, k.Name, k.Fingerprint, joinScopes(k.Scopes))
	return mapErr(err)
}

func (r *apiKeysRepo) Revoke(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE api_keys SET revoked_at = CURRENT_TIMESTAMP WHERE id = ? AND revoked_at IS NULL`,
		id)
	if err != nil {
		return mapErr(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *apiKeysRepo) List(ctx context.Context) ([]domain.APIKey, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []domain.APIKey
	for rows.Next() {
		k, err := scanAPIKey(rows.Scan)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
