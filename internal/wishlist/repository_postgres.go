package wishlist

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

const (
	createGuestWishlistQuery = `
		CREATE TABLE IF NOT EXISTS guest_wishlist (
			owner TEXT PRIMARY KEY,
			gift_ids TEXT[] NOT NULL DEFAULT ARRAY[]::text[],
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	listGuestWishlistQuery = `SELECT gift_ids FROM guest_wishlist WHERE owner = $1`
	addGuestWishlistQuery  = `
		INSERT INTO guest_wishlist (owner, gift_ids, updated_at)
		VALUES ($1, ARRAY[$2::text], now())
		ON CONFLICT (owner) DO UPDATE
		SET gift_ids = array_append(guest_wishlist.gift_ids, $2::text),
			updated_at = now()
		WHERE NOT ($2::text = ANY(guest_wishlist.gift_ids))
	`
	removeGuestWishlistQuery = `
		UPDATE guest_wishlist
		SET gift_ids = array_remove(gift_ids, $2::text),
			updated_at = now()
		WHERE owner = $1
			AND ($2::text = ANY(gift_ids))
	`
	clearGuestWishlistQuery = `DELETE FROM guest_wishlist WHERE owner = $1`
)

// PostgresBackend mirrors one guest's wishlist in a text[] row, for deployments that keep
// visitor state in Postgres.
type PostgresBackend struct {
	db    *sql.DB
	owner string
}

func NewPostgresBackend(db *sql.DB, owner string) *PostgresBackend {
	return &PostgresBackend{db: db, owner: owner}
}

// MigratePostgres creates the guest_wishlist table when missing.
func MigratePostgres(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, createGuestWishlistQuery)
	return err
}

func (r *PostgresBackend) List(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.QueryRowContext(ctx, listGuestWishlistQuery, r.owner).Scan(pq.Array(&ids))
	if errors.Is(err, sql.ErrNoRows) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return dedupe(ids), nil
}

// Add and Remove touch no row when the id is already in the desired state.
func (r *PostgresBackend) Add(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, addGuestWishlistQuery, r.owner, id)
	return err
}

func (r *PostgresBackend) Remove(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, removeGuestWishlistQuery, r.owner, id)
	return err
}

func (r *PostgresBackend) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, clearGuestWishlistQuery, r.owner)
	return err
}
