package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vbonduro/toyinv/internal/domain"
)

// ErrNotFound is returned when a toy does not exist or has been soft-deleted.
var ErrNotFound = errors.New("toy not found")

const toyColumns = `id, name, category, price, age_range, rating, in_stock, image_url, description, deleted, created_at, updated_at`

// ToyStore is the SQLite implementation of the toy collection gateway.
// Soft-deleted rows are kept but never listed.
type ToyStore struct {
	db *sql.DB
}

func NewToyStore(db *sql.DB) *ToyStore {
	return &ToyStore{db: db}
}

func (s *ToyStore) List(ctx context.Context) ([]*domain.Toy, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+toyColumns+` FROM toys
		WHERE deleted = 0 ORDER BY created_at ASC, rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list toys: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	toys := []*domain.Toy{}
	for rows.Next() {
		toy, err := scanToy(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan toy: %w", err)
		}
		toys = append(toys, toy)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating toys: %w", err)
	}

	return toys, nil
}

// GetByID returns the toy with the given id, including soft-deleted toys.
// It returns nil, nil when no row exists.
func (s *ToyStore) GetByID(ctx context.Context, id string) (*domain.Toy, error) {
	toy, err := scanToy(s.db.QueryRowContext(ctx, `
		SELECT `+toyColumns+` FROM toys WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get toy: %w", err)
	}
	return toy, nil
}

// Create inserts a new toy with a generated id. Unset fields take the
// record defaults: in stock and not deleted.
func (s *ToyStore) Create(ctx context.Context, fields domain.ToyFields) (*domain.Toy, error) {
	toy := domain.Toy{InStock: true}.Apply(fields)
	toy.ID = uuid.NewString()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO toys (id, name, category, price, age_range, rating, in_stock, image_url, description, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, toy.ID, toy.Name, string(toy.Category), nullPrice(toy.Price), toy.AgeRange, toy.Rating,
		toy.InStock, toy.ImageURL, toy.Description, toy.Deleted)
	if err != nil {
		return nil, fmt.Errorf("failed to create toy: %w", err)
	}

	return s.GetByID(ctx, toy.ID)
}

// Update merges fields into the live toy with the given id.
func (s *ToyStore) Update(ctx context.Context, id string, fields domain.ToyFields) (*domain.Toy, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := scanToy(tx.QueryRowContext(ctx, `
		SELECT `+toyColumns+` FROM toys WHERE id = ? AND deleted = 0
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get toy: %w", err)
	}

	next := current.Apply(fields)
	_, err = tx.ExecContext(ctx, `
		UPDATE toys SET name = ?, category = ?, price = ?, age_range = ?, rating = ?, in_stock = ?,
			image_url = ?, description = ?, deleted = ?, updated_at = ?
		WHERE id = ?
	`, next.Name, string(next.Category), nullPrice(next.Price), next.AgeRange, next.Rating, next.InStock,
		next.ImageURL, next.Description, next.Deleted, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update toy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit toy update: %w", err)
	}

	return s.GetByID(ctx, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanToy(row rowScanner) (*domain.Toy, error) {
	toy := &domain.Toy{}
	var category string
	var price sql.NullFloat64
	if err := row.Scan(&toy.ID, &toy.Name, &category, &price, &toy.AgeRange, &toy.Rating, &toy.InStock,
		&toy.ImageURL, &toy.Description, &toy.Deleted, &toy.CreatedAt, &toy.UpdatedAt); err != nil {
		return nil, err
	}
	toy.Category = domain.Category(category)
	if price.Valid {
		p := price.Float64
		toy.Price = &p
	}
	return toy, nil
}

func nullPrice(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}
