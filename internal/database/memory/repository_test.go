package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadimbarashkov/url-redirector/internal/database"
	"github.com/vadimbarashkov/url-redirector/internal/models"
)

func TestLinkRepository_OriginalURL(t *testing.T) {
	repo := NewLinkRepository()
	repo.Put(models.Link{Code: "abc", OriginalURL: "https://example.com"})
	repo.Put(models.Link{Code: "broken"})

	t.Run("found", func(t *testing.T) {
		url, err := repo.OriginalURL(context.Background(), "abc")

		assert.NoError(t, err)
		assert.Equal(t, "https://example.com", url)
	})

	t.Run("not found", func(t *testing.T) {
		url, err := repo.OriginalURL(context.Background(), "missing")

		assert.ErrorIs(t, err, database.ErrLinkNotFound)
		assert.Empty(t, url)
	})

	t.Run("record without original url", func(t *testing.T) {
		url, err := repo.OriginalURL(context.Background(), "broken")

		assert.ErrorIs(t, err, database.ErrLinkNotFound)
		assert.Empty(t, url)
	})
}

func TestLinkRepository_VisitsByDate(t *testing.T) {
	ctx := context.Background()
	repo := NewLinkRepository()
	repo.Put(models.Link{Code: "abc", OriginalURL: "https://example.com"})

	exists, err := repo.HasVisitsByDate(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.Error(t, repo.IncrementVisitsByDate(ctx, "abc", "2024-05-01"))

	require.NoError(t, repo.InitVisitsByDate(ctx, "abc", "2024-05-01"))
	assert.ErrorIs(t, repo.InitVisitsByDate(ctx, "abc", "2024-05-01"), database.ErrVisitsByDateExists)

	require.NoError(t, repo.IncrementVisitsByDate(ctx, "abc", "2024-05-01"))
	require.NoError(t, repo.IncrementVisitsByDate(ctx, "abc", "2024-05-02"))

	link, err := repo.Link(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"2024-05-01": 2, "2024-05-02": 1}, link.VisitsByDate)
}

func TestLinkRepository_IncrementTotalVisits_Concurrent(t *testing.T) {
	const n = 50

	ctx := context.Background()
	repo := NewLinkRepository()
	repo.Put(models.Link{Code: "abc", OriginalURL: "https://example.com", TotalVisits: 5})

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.IncrementTotalVisits(ctx, "abc"))
		}()
	}
	wg.Wait()

	link, err := repo.Link(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, int64(5+n), link.TotalVisits)
}

func TestLinkRepository_LinkReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewLinkRepository()
	repo.Put(models.Link{Code: "abc", OriginalURL: "https://example.com", VisitsByDate: map[string]int64{"2024-05-01": 1}})

	link, err := repo.Link(ctx, "abc")
	require.NoError(t, err)
	link.VisitsByDate["2024-05-01"] = 100

	link, err = repo.Link(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, int64(1), link.VisitsByDate["2024-05-01"])

	_, err = repo.Link(ctx, "missing")
	assert.ErrorIs(t, err, database.ErrLinkNotFound)
}
