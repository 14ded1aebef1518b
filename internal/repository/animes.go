package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"anime-api/internal/database"
	"anime-api/internal/models"
	"anime-api/pkg/logger"
)

var (
	// ErrNotFound is returned when no row matches the given id.
	ErrNotFound = errors.New("anime not found")
	// ErrDuplicateTitle is returned when the title unique constraint is violated.
	ErrDuplicateTitle = errors.New("anime with that title already exists")
)

const uniqueViolation = pq.ErrorCode("23505")

const (
	listAnimesQuery = `SELECT id, title, description, created_at, updated_at FROM animes ORDER BY id ASC LIMIT $1 OFFSET $2`
	getAnimeQuery   = `SELECT id, title, description, created_at, updated_at FROM animes WHERE id = $1`
	insertAnimeStmt = `INSERT INTO animes (id, title, description) VALUES ($1, $2, $3)`
	updateAnimeStmt = `UPDATE animes SET title = $1, description = $2, updated_at = NOW() WHERE id = $3`
	deleteAnimeStmt = `DELETE FROM animes WHERE id = $1`
)

// Animes issues parameterized SQL against the animes table.
type Animes struct {
	db *sql.DB
}

// NewAnimes returns a repository backed by the given pool.
func NewAnimes(db *sql.DB) *Animes {
	return &Animes{db: db}
}

// List returns up to limit rows ordered by id, skipping offset rows.
func (r *Animes) List(ctx context.Context, limit, offset int) ([]models.Anime, error) {
	rows, err := r.db.QueryContext(ctx, listAnimesQuery, limit, offset)
	if err != nil {
		logger.Error(ctx, "Repository List failed", "error", err)
		return nil, fmt.Errorf("list animes: %w", err)
	}
	defer rows.Close()

	animes := make([]models.Anime, 0, min(limit, 100))
	for rows.Next() {
		var a models.Anime
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.CreatedAt, &a.UpdatedAt); err != nil {
			logger.Error(ctx, "Repository scan anime failed", "error", err)
			return nil, fmt.Errorf("scan anime: %w", err)
		}
		animes = append(animes, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate animes: %w", err)
	}
	return animes, nil
}

// GetByID returns the row with the given id or ErrNotFound.
func (r *Animes) GetByID(ctx context.Context, id string) (models.Anime, error) {
	var a models.Anime
	err := r.db.QueryRowContext(ctx, getAnimeQuery, id).
		Scan(&a.ID, &a.Title, &a.Description, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Anime{}, ErrNotFound
	}
	if err != nil {
		logger.Error(ctx, "Repository GetByID failed", "error", err, "id", id)
		return models.Anime{}, fmt.Errorf("get anime %s: %w", id, err)
	}
	return a, nil
}

// Create inserts a new row. Timestamps are defaulted by the database.
func (r *Animes) Create(ctx context.Context, id, title string, description sql.NullString) error {
	_, err := r.db.ExecContext(ctx, insertAnimeStmt, id, title, description)
	if err != nil {
		if isDuplicateTitle(err) {
			return ErrDuplicateTitle
		}
		logger.Error(ctx, "Repository Create failed", "error", err, "id", id)
		return fmt.Errorf("insert anime: %w", err)
	}
	return nil
}

// Update overwrites title and description and refreshes updated_at.
// It returns ErrNotFound when no row was affected.
func (r *Animes) Update(ctx context.Context, id, title string, description sql.NullString) error {
	res, err := r.db.ExecContext(ctx, updateAnimeStmt, title, description, id)
	if err != nil {
		if isDuplicateTitle(err) {
			return ErrDuplicateTitle
		}
		logger.Error(ctx, "Repository Update failed", "error", err, "id", id)
		return fmt.Errorf("update anime %s: %w", id, err)
	}
	return requireAffected(res)
}

// Delete removes the row by id. It returns ErrNotFound when no row was affected.
func (r *Animes) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, deleteAnimeStmt, id)
	if err != nil {
		logger.Error(ctx, "Repository Delete failed", "error", err, "id", id)
		return fmt.Errorf("delete anime %s: %w", id, err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isDuplicateTitle(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == uniqueViolation && pqErr.Constraint == database.TitleUniqueConstraint
}
