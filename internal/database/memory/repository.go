// Package memory provides an in-process link store for development and tests.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/vadimbarashkov/url-redirector/internal/database"
	"github.com/vadimbarashkov/url-redirector/internal/models"
)

// LinkRepository keeps links in a map guarded by a mutex. Every operation
// holds the lock for its full read-modify-write, which gives it the same
// atomicity as a conditional update in a real store.
type LinkRepository struct {
	mu    sync.Mutex
	links map[string]*models.Link
}

func NewLinkRepository() *LinkRepository {
	return &LinkRepository{
		links: make(map[string]*models.Link),
	}
}

// Put stores a copy of link, replacing any link with the same code.
func (r *LinkRepository) Put(link models.Link) {
	r.mu.Lock()
	defer r.mu.Unlock()

	link.VisitsByDate = maps.Clone(link.VisitsByDate)
	r.links[link.Code] = &link
}

func (r *LinkRepository) OriginalURL(_ context.Context, code string) (string, error) {
	const op = "database.memory.LinkRepository.OriginalURL"

	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.links[code]
	if !ok || link.OriginalURL == "" {
		return "", fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
	}

	return link.OriginalURL, nil
}

func (r *LinkRepository) IncrementTotalVisits(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.upsert(code).TotalVisits++

	return nil
}

func (r *LinkRepository) HasVisitsByDate(_ context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.links[code]

	return ok && link.VisitsByDate != nil, nil
}

func (r *LinkRepository) InitVisitsByDate(_ context.Context, code, day string) error {
	const op = "database.memory.LinkRepository.InitVisitsByDate"

	r.mu.Lock()
	defer r.mu.Unlock()

	link := r.upsert(code)
	if link.VisitsByDate != nil {
		return fmt.Errorf("%s: %w", op, database.ErrVisitsByDateExists)
	}

	link.VisitsByDate = map[string]int64{day: 1}

	return nil
}

func (r *LinkRepository) IncrementVisitsByDate(_ context.Context, code, day string) error {
	const op = "database.memory.LinkRepository.IncrementVisitsByDate"

	r.mu.Lock()
	defer r.mu.Unlock()

	link := r.upsert(code)
	if link.VisitsByDate == nil {
		return fmt.Errorf("%s: visits by date is not initialized", op)
	}

	link.VisitsByDate[day]++

	return nil
}

func (r *LinkRepository) Link(_ context.Context, code string) (*models.Link, error) {
	const op = "database.memory.LinkRepository.Link"

	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.links[code]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
	}

	cp := *link
	cp.VisitsByDate = maps.Clone(link.VisitsByDate)

	return &cp, nil
}

// upsert mirrors key-value stores where an update on a missing key creates it.
// Callers must hold r.mu.
func (r *LinkRepository) upsert(code string) *models.Link {
	link, ok := r.links[code]
	if !ok {
		link = &models.Link{Code: code}
		r.links[code] = link
	}
	return link
}
