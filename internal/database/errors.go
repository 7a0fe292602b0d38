package database

import "errors"

var (
	// ErrLinkNotFound is returned when no link exists for a short code, or
	// when the stored record has no original URL to redirect to.
	ErrLinkNotFound = errors.New("link not found")
	// ErrVisitsByDateExists is returned by a conditional initialization of
	// the per-day histogram when another writer created it first.
	ErrVisitsByDateExists = errors.New("visits by date already initialized")
)
