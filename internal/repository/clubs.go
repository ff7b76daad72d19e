package repository

import (
	"context"
	"fmt"

	"soccerpipe/internal/models"

	"github.com/jackc/pgx/v5"
)

// ClubRepository handles the optional club-grouping table. Populated
// opportunistically by the identity resolver; never required by any
// invariant.
type ClubRepository struct {
	db *Database
}

// FindByName looks up a club by its exact name.
func (r *ClubRepository) FindByName(ctx context.Context, name string) (*models.Club, error) {
	var c models.Club
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, name, city, state, created_at FROM clubs WHERE name = $1`,
		name,
	).Scan(&c.ID, &c.Name, &c.City, &c.State, &c.CreatedAt)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find club: %w", err)
	}
	return &c, nil
}

// Create inserts a new club.
func (r *ClubRepository) Create(ctx context.Context, name string) (*models.Club, error) {
	var c models.Club
	c.Name = name
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO clubs (name) VALUES ($1)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id, name, city, state, created_at`,
		name,
	).Scan(&c.ID, &c.Name, &c.City, &c.State, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create club: %w", err)
	}
	return &c, nil
}
