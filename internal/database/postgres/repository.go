package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/url-redirector/internal/database"
	"github.com/vadimbarashkov/url-redirector/internal/models"
)

type LinkRepository struct {
	db *sqlx.DB
}

func NewLinkRepository(db *sqlx.DB) *LinkRepository {
	return &LinkRepository{
		db: db,
	}
}

func (r *LinkRepository) OriginalURL(ctx context.Context, code string) (string, error) {
	const op = "database.postgres.LinkRepository.OriginalURL"
	const query = `SELECT original_url FROM links WHERE code = $1`

	var url sql.NullString

	if err := r.db.GetContext(ctx, &url, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
		}

		return "", fmt.Errorf("%s: failed to get row from links table: %w", op, err)
	}

	if !url.Valid || url.String == "" {
		return "", fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
	}

	return url.String, nil
}

func (r *LinkRepository) IncrementTotalVisits(ctx context.Context, code string) error {
	const op = "database.postgres.LinkRepository.IncrementTotalVisits"
	const query = `UPDATE links SET total_visits = COALESCE(total_visits, 0) + 1 WHERE code = $1`

	res, err := r.db.ExecContext(ctx, query, code)
	if err != nil {
		return fmt.Errorf("%s: failed to update links table row: %w", op, err)
	}

	return expectOneRow(op, res, database.ErrLinkNotFound)
}

func (r *LinkRepository) HasVisitsByDate(ctx context.Context, code string) (bool, error) {
	const op = "database.postgres.LinkRepository.HasVisitsByDate"
	const query = `SELECT visits_by_date IS NOT NULL FROM links WHERE code = $1`

	var exists bool

	if err := r.db.GetContext(ctx, &exists, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}

		return false, fmt.Errorf("%s: failed to get row from links table: %w", op, err)
	}

	return exists, nil
}

func (r *LinkRepository) InitVisitsByDate(ctx context.Context, code, day string) error {
	const op = "database.postgres.LinkRepository.InitVisitsByDate"
	const query = `UPDATE links
		SET visits_by_date = jsonb_build_object($2::text, 1)
		WHERE code = $1 AND visits_by_date IS NULL`

	res, err := r.db.ExecContext(ctx, query, code, day)
	if err != nil {
		return fmt.Errorf("%s: failed to update links table row: %w", op, err)
	}

	return expectOneRow(op, res, database.ErrVisitsByDateExists)
}

// IncrementVisitsByDate relies on the row lock taken by UPDATE: concurrent
// increments of the same link are serialized and each re-reads the bucket.
func (r *LinkRepository) IncrementVisitsByDate(ctx context.Context, code, day string) error {
	const op = "database.postgres.LinkRepository.IncrementVisitsByDate"
	const query = `UPDATE links
		SET visits_by_date = jsonb_set(
			visits_by_date,
			ARRAY[$2::text],
			to_jsonb(COALESCE((visits_by_date ->> $2::text)::bigint, 0) + 1)
		)
		WHERE code = $1 AND visits_by_date IS NOT NULL`

	res, err := r.db.ExecContext(ctx, query, code, day)
	if err != nil {
		return fmt.Errorf("%s: failed to update links table row: %w", op, err)
	}

	return expectOneRow(op, res, database.ErrLinkNotFound)
}

func (r *LinkRepository) Link(ctx context.Context, code string) (*models.Link, error) {
	const op = "database.postgres.LinkRepository.Link"
	const query = `SELECT code, original_url, total_visits, visits_by_date FROM links WHERE code = $1`

	var rec linkRecord

	if err := r.db.GetContext(ctx, &rec, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get row from links table: %w", op, err)
	}

	link, err := rec.toLink()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return link, nil
}

func expectOneRow(op string, res sql.Result, errNoRows error) error {
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get number of affected rows: %w", op, err)
	}

	if rowsAffected != 1 {
		return fmt.Errorf("%s: %w", op, errNoRows)
	}

	return nil
}
