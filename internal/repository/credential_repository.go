package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/embed-login/internal/domain"
)

// CredentialRepository reads the embed_credentials table. It satisfies
// credentials.Source.
type CredentialRepository interface {
	LoadCredentials(ctx context.Context) ([]domain.Credential, error)
}

type credentialRepository struct {
	pool *pgxpool.Pool
}

// NewCredentialRepository returns a Postgres-backed implementation.
func NewCredentialRepository(pool *pgxpool.Pool) CredentialRepository {
	return &credentialRepository{pool: pool}
}

func (r *credentialRepository) LoadCredentials(ctx context.Context) ([]domain.Credential, error) {
	const query = `
        SELECT username, password, display_name, avatar_url
        FROM embed_credentials
        ORDER BY username`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanCredential)
}

func scanCredential(row pgx.CollectableRow) (domain.Credential, error) {
	var cred domain.Credential
	err := row.Scan(&cred.Username, &cred.Password, &cred.DisplayName, &cred.AvatarURL)
	return cred, err
}
