package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vadimbarashkov/url-redirector/internal/database"
)

// IncrementTotal adds one visit to the link's running total. The store
// applies the increment atomically, so concurrent calls never lose updates.
func (r *Resolver) IncrementTotal(ctx context.Context, code string) error {
	const op = "service.Resolver.IncrementTotal"

	if err := r.store.IncrementTotalVisits(ctx, code); err != nil {
		return fmt.Errorf("%s: failed to increment total visits: %w", op, err)
	}

	r.logger.Debug("incremented total visits", slog.String("code", code))

	return nil
}

// IncrementForToday adds one visit to today's bucket of the per-day histogram.
//
// The histogram is created on the first visit with a conditional write. If
// another request creates it in between, the write is rejected and the visit
// is applied as an atomic increment instead, so concurrent first visits are
// all counted.
func (r *Resolver) IncrementForToday(ctx context.Context, code string) error {
	const op = "service.Resolver.IncrementForToday"

	day := r.today()

	exists, err := r.store.HasVisitsByDate(ctx, code)
	if err != nil {
		return fmt.Errorf("%s: failed to read visits by date: %w", op, err)
	}

	if !exists {
		err := r.store.InitVisitsByDate(ctx, code, day)
		if err == nil {
			r.logger.Debug("initialized visits by date", slog.String("code", code), slog.String("day", day))
			return nil
		}
		if !errors.Is(err, database.ErrVisitsByDateExists) {
			return fmt.Errorf("%s: failed to initialize visits by date: %w", op, err)
		}
	}

	if err := r.store.IncrementVisitsByDate(ctx, code, day); err != nil {
		return fmt.Errorf("%s: failed to increment visits by date: %w", op, err)
	}

	r.logger.Debug("incremented visits by date", slog.String("code", code), slog.String("day", day))

	return nil
}
