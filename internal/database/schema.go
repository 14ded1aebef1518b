package database

import (
	"context"
	"database/sql"
	"fmt"

	"anime-api/pkg/logger"
)

// TitleUniqueConstraint is the name of the unique constraint on animes.title.
const TitleUniqueConstraint = "animes_title_key"

const createAnimesTable = `
CREATE TABLE IF NOT EXISTS animes (
	id          VARCHAR(36)  PRIMARY KEY,
	title       VARCHAR(255) NOT NULL,
	description TEXT,
	created_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
	CONSTRAINT ` + TitleUniqueConstraint + ` UNIQUE (title)
)`

// EnsureSchema creates the animes table if it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createAnimesTable); err != nil {
		return fmt.Errorf("create animes table: %w", err)
	}
	logger.Info(ctx, "Schema ensured", "table", "animes")
	return nil
}
