package service_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadimbarashkov/url-redirector/internal/database/memory"
	"github.com/vadimbarashkov/url-redirector/internal/models"
	"github.com/vadimbarashkov/url-redirector/internal/service"
)

func newResolver(t *testing.T, links ...models.Link) (*service.Resolver, *memory.LinkRepository) {
	t.Helper()

	repo := memory.NewLinkRepository()
	for _, link := range links {
		repo.Put(link)
	}

	loc, err := time.LoadLocation(service.DefaultTimezone)
	require.NoError(t, err)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, loc)
	resolver := service.NewResolver(
		repo,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		service.WithLocation(loc),
		service.WithClock(func() time.Time { return now }),
	)

	return resolver, repo
}

func get(code string) service.Request {
	return service.Request{Method: http.MethodGet, Code: code}
}

func TestResolve_FirstVisit(t *testing.T) {
	resolver, repo := newResolver(t, models.Link{Code: "abc", OriginalURL: "https://example.com"})

	resp := resolver.Resolve(context.Background(), get("abc"))

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://example.com", resp.Headers["Location"])

	link, err := repo.Link(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, int64(1), link.TotalVisits)
	assert.Equal(t, map[string]int64{"2024-05-01": 1}, link.VisitsByDate)
}

func TestResolve_RepeatedVisits(t *testing.T) {
	const n = 7

	resolver, repo := newResolver(t, models.Link{Code: "abc", OriginalURL: "https://example.com"})

	for i := 0; i < n; i++ {
		resp := resolver.Resolve(context.Background(), get("abc"))
		require.Equal(t, http.StatusFound, resp.StatusCode)
	}

	link, err := repo.Link(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, int64(n), link.TotalVisits)
	assert.Equal(t, int64(n), link.VisitsByDate["2024-05-01"])
}

func TestResolve_NoMutationOnRejectedRequests(t *testing.T) {
	resolver, repo := newResolver(t, models.Link{Code: "abc", OriginalURL: "https://example.com"})

	tests := []struct {
		name   string
		req    service.Request
		status int
	}{
		{name: "preflight", req: service.Request{Method: http.MethodOptions, Code: "abc"}, status: http.StatusOK},
		{name: "empty code", req: get(""), status: http.StatusBadRequest},
		{name: "blank code", req: get("  "), status: http.StatusBadRequest},
		{name: "unknown code", req: get("missing-code"), status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := resolver.Resolve(context.Background(), tt.req)

			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}

	link, err := repo.Link(context.Background(), "abc")
	require.NoError(t, err)
	assert.Zero(t, link.TotalVisits)
	assert.Nil(t, link.VisitsByDate)

	_, err = repo.Link(context.Background(), "missing-code")
	assert.Error(t, err)
}

func TestResolve_ConcurrentVisits(t *testing.T) {
	resolver, repo := newResolver(t, models.Link{
		Code:         "abc",
		OriginalURL:  "https://example.com",
		TotalVisits:  5,
		VisitsByDate: map[string]int64{"2024-04-30": 3},
	})

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := resolver.Resolve(context.Background(), get("abc"))
			assert.Equal(t, http.StatusFound, resp.StatusCode)
		}()
	}
	wg.Wait()

	link, err := repo.Link(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, int64(7), link.TotalVisits)
	assert.Equal(t, map[string]int64{"2024-04-30": 3, "2024-05-01": 2}, link.VisitsByDate)
}

func TestResolve_ConcurrentFirstVisits(t *testing.T) {
	const n = 20

	resolver, repo := newResolver(t, models.Link{Code: "abc", OriginalURL: "https://example.com"})

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resolver.Resolve(context.Background(), get("abc"))
		}()
	}
	wg.Wait()

	link, err := repo.Link(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, int64(n), link.TotalVisits)
	assert.Equal(t, int64(n), link.VisitsByDate["2024-05-01"])
}
