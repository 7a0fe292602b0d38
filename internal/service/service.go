// Package service implements redirect resolution for short codes and the
// best-effort visit counters updated on every successful resolution.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/url-redirector/internal/models"

	_ "time/tzdata"
)

// DefaultTimezone is the zone in which per-day visit buckets are computed.
const DefaultTimezone = "America/Bogota"

// LinkStore defines the key-value operations the resolver relies on.
// Implementations must be safe for concurrent use.
type LinkStore interface {
	// OriginalURL reads only the redirect target of a link.
	// Returns database.ErrLinkNotFound if the link is absent or has no target.
	OriginalURL(ctx context.Context, code string) (string, error)

	// IncrementTotalVisits atomically adds one to the total counter,
	// treating an absent counter as zero.
	IncrementTotalVisits(ctx context.Context, code string) error

	// HasVisitsByDate reports whether the per-day histogram exists.
	HasVisitsByDate(ctx context.Context, code string) (bool, error)

	// InitVisitsByDate creates the histogram as {day: 1} only if it is still
	// absent. Returns database.ErrVisitsByDateExists when it already exists.
	InitVisitsByDate(ctx context.Context, code, day string) error

	// IncrementVisitsByDate atomically adds one to the bucket for day,
	// treating an absent bucket as zero. The histogram must exist.
	IncrementVisitsByDate(ctx context.Context, code, day string) error

	// Link reads the full record.
	// Returns database.ErrLinkNotFound if the link is absent.
	Link(ctx context.Context, code string) (*models.Link, error)
}

// Recorder receives resolution outcomes for instrumentation.
type Recorder interface {
	ObserveResolution(statusCode int)
	IncAnalyticsFailure(counter string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveResolution(int)      {}
func (nopRecorder) IncAnalyticsFailure(string) {}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLocation sets the zone used to compute the current visit day.
func WithLocation(loc *time.Location) Option {
	return func(r *Resolver) {
		r.location = loc
	}
}

// WithClock replaces the time source. Used by tests to pin the visit day.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// WithRecorder reports every resolution outcome and swallowed analytics
// failure to rec.
func WithRecorder(rec Recorder) Option {
	return func(r *Resolver) {
		r.recorder = rec
	}
}

// Resolver resolves short codes into redirect responses and records visits.
// A single Resolver is shared by all requests.
type Resolver struct {
	store    LinkStore
	logger   *slog.Logger
	validate *validator.Validate
	recorder Recorder
	location *time.Location
	now      func() time.Time
}

// NewResolver creates a Resolver backed by store.
func NewResolver(store LinkStore, logger *slog.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		store:    store,
		logger:   logger,
		validate: validator.New(),
		recorder: nopRecorder{},
		location: defaultLocation(),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func defaultLocation() *time.Location {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		// Bogota has kept a fixed UTC-5 offset without DST since 1993.
		return time.FixedZone("-05", -5*60*60)
	}
	return loc
}

// today returns the current calendar day in the resolver's zone.
func (r *Resolver) today() string {
	return r.now().In(r.location).Format(time.DateOnly)
}
