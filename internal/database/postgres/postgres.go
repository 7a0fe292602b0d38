// Package postgres stores links in a PostgreSQL table. The per-day histogram
// lives in a jsonb column so a single row holds the whole record, as in a
// key-value store.
package postgres

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx/types"
	"github.com/vadimbarashkov/url-redirector/internal/models"
)

type linkRecord struct {
	Code         string             `db:"code"`
	OriginalURL  sql.NullString     `db:"original_url"`
	TotalVisits  sql.NullInt64      `db:"total_visits"`
	VisitsByDate types.NullJSONText `db:"visits_by_date"`
}

func (r *linkRecord) toLink() (*models.Link, error) {
	link := &models.Link{
		Code:        r.Code,
		OriginalURL: r.OriginalURL.String,
		TotalVisits: r.TotalVisits.Int64,
	}

	if r.VisitsByDate.Valid {
		if err := r.VisitsByDate.Unmarshal(&link.VisitsByDate); err != nil {
			return nil, fmt.Errorf("failed to decode visits_by_date: %w", err)
		}
	}

	return link, nil
}
