// Package repository contains data access logic separated from HTTP handlers.
// This file defines the Restaurant model and repository methods for creation
// and lookup. A restaurant starts unverified; only the verification workflow
// flips the flag through its approval transaction.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Restaurant represents a restaurant entity persisted in the database. Each
// restaurant belongs to a single owner. The Verified flag is false until
// exactly one verification request has been approved for it.
type Restaurant struct {
	ID        uint64
	OwnerID   uint64
	Name      string
	Address   string
	Verified  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RestaurantRepo encapsulates all database queries related to restaurants.
type RestaurantRepo struct {
	db *sql.DB
}

// NewRestaurantRepo constructs a RestaurantRepo with the provided DB handle.
func NewRestaurantRepo(db *sql.DB) *RestaurantRepo {
	return &RestaurantRepo{db: db}
}

// Create inserts a new restaurant. On success the ID, Verified and timestamp
// fields are populated from the stored row so callers receive a fully
// populated record.
func (r *RestaurantRepo) Create(ctx context.Context, rest *Restaurant) error {
	const qInsert = "INSERT INTO restaurants (owner_id, name, address) VALUES (?, ?, ?)"
	res, err := r.db.ExecContext(ctx, qInsert, rest.OwnerID, rest.Name, rest.Address)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rest.ID = uint64(id)

	const qSelect = "SELECT owner_id, name, address, verified, created_at, updated_at FROM restaurants WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, rest.ID).
		Scan(&rest.OwnerID, &rest.Name, &rest.Address, &rest.Verified, &rest.CreatedAt, &rest.UpdatedAt)
}

// GetByID fetches a restaurant by its ID regardless of owner. It returns
// ErrRestaurantNotFound if no row is found.
func (r *RestaurantRepo) GetByID(ctx context.Context, id uint64) (Restaurant, error) {
	const q = "SELECT id, owner_id, name, address, verified, created_at, updated_at FROM restaurants WHERE id = ?"
	var rest Restaurant
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&rest.ID, &rest.OwnerID, &rest.Name, &rest.Address, &rest.Verified, &rest.CreatedAt, &rest.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Restaurant{}, ErrRestaurantNotFound
		}
		return Restaurant{}, err
	}
	return rest, nil
}

// List returns all restaurants ordered by id. The public browse endpoint
// serves this directly, so the query stays deliberately simple.
func (r *RestaurantRepo) List(ctx context.Context) ([]Restaurant, error) {
	const q = "SELECT id, owner_id, name, address, verified, created_at, updated_at FROM restaurants ORDER BY id"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Restaurant
	for rows.Next() {
		var rest Restaurant
		if err := rows.Scan(&rest.ID, &rest.OwnerID, &rest.Name, &rest.Address, &rest.Verified, &rest.CreatedAt, &rest.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rest)
	}
	return out, rows.Err()
}
