package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/recapbot/recapbot/internal/domain"
)

// Secrets stores sealed credentials. Rows hold ciphertext only; the codec in
// internal/secret owns the key material.
type Secrets struct {
	db *pgxpool.Pool
}

func NewSecrets(db *pgxpool.Pool) *Secrets {
	return &Secrets{db: db}
}

func (r *Secrets) Insert(ctx context.Context, id uuid.UUID, ciphertext []byte) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO secrets (id, ciphertext) VALUES ($1, $2)`,
		id, ciphertext,
	)
	if err != nil {
		return fmt.Errorf("insert secret: %w", err)
	}
	return nil
}

func (r *Secrets) Ciphertext(ctx context.Context, id uuid.UUID) ([]byte, error) {
	var ct []byte
	err := r.db.QueryRow(ctx, `SELECT ciphertext FROM secrets WHERE id = $1`, id).Scan(&ct)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrSecretNotFound
		}
		return nil, fmt.Errorf("get secret: %w", err)
	}
	return ct, nil
}
