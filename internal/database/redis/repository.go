package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/vadimbarashkov/url-redirector/internal/database"
	"github.com/vadimbarashkov/url-redirector/internal/models"
)

const (
	fieldOriginalURL = "originalUrl"
	fieldTotalVisits = "totalVisits"
)

// initVisitsByDate creates the per-day hash with a single bucket unless the
// hash already exists. Returns 1 when it created the hash.
var initVisitsByDate = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('HSET', KEYS[1], ARGV[1], 1)
return 1
`)

type LinkRepository struct {
	client redis.UniversalClient
	prefix string
}

func NewLinkRepository(client redis.UniversalClient, prefix string) *LinkRepository {
	return &LinkRepository{
		client: client,
		prefix: prefix,
	}
}

func (r *LinkRepository) linkKey(code string) string {
	return r.prefix + ":link:" + code
}

func (r *LinkRepository) visitsKey(code string) string {
	return r.prefix + ":visits:" + code
}

func (r *LinkRepository) OriginalURL(ctx context.Context, code string) (string, error) {
	const op = "database.redis.LinkRepository.OriginalURL"

	url, err := r.client.HGet(ctx, r.linkKey(code), fieldOriginalURL).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
		}

		return "", fmt.Errorf("%s: failed to get hash field: %w", op, err)
	}

	if url == "" {
		return "", fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
	}

	return url, nil
}

func (r *LinkRepository) IncrementTotalVisits(ctx context.Context, code string) error {
	const op = "database.redis.LinkRepository.IncrementTotalVisits"

	if err := r.client.HIncrBy(ctx, r.linkKey(code), fieldTotalVisits, 1).Err(); err != nil {
		return fmt.Errorf("%s: failed to increment hash field: %w", op, err)
	}

	return nil
}

func (r *LinkRepository) HasVisitsByDate(ctx context.Context, code string) (bool, error) {
	const op = "database.redis.LinkRepository.HasVisitsByDate"

	n, err := r.client.Exists(ctx, r.visitsKey(code)).Result()
	if err != nil {
		return false, fmt.Errorf("%s: failed to check key: %w", op, err)
	}

	return n == 1, nil
}

func (r *LinkRepository) InitVisitsByDate(ctx context.Context, code, day string) error {
	const op = "database.redis.LinkRepository.InitVisitsByDate"

	created, err := initVisitsByDate.Run(ctx, r.client, []string{r.visitsKey(code)}, day).Int()
	if err != nil {
		return fmt.Errorf("%s: failed to run init script: %w", op, err)
	}

	if created == 0 {
		return fmt.Errorf("%s: %w", op, database.ErrVisitsByDateExists)
	}

	return nil
}

func (r *LinkRepository) IncrementVisitsByDate(ctx context.Context, code, day string) error {
	const op = "database.redis.LinkRepository.IncrementVisitsByDate"

	if err := r.client.HIncrBy(ctx, r.visitsKey(code), day, 1).Err(); err != nil {
		return fmt.Errorf("%s: failed to increment hash field: %w", op, err)
	}

	return nil
}

func (r *LinkRepository) Link(ctx context.Context, code string) (*models.Link, error) {
	const op = "database.redis.LinkRepository.Link"

	var linkCmd, visitsCmd *redis.MapStringStringCmd

	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		linkCmd = pipe.HGetAll(ctx, r.linkKey(code))
		visitsCmd = pipe.HGetAll(ctx, r.visitsKey(code))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read link hashes: %w", op, err)
	}

	fields := linkCmd.Val()
	if len(fields) == 0 {
		return nil, fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
	}

	link := &models.Link{
		Code:        code,
		OriginalURL: fields[fieldOriginalURL],
	}

	if v, ok := fields[fieldTotalVisits]; ok {
		if link.TotalVisits, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("%s: invalid %s value %q: %w", op, fieldTotalVisits, v, err)
		}
	}

	if visits := visitsCmd.Val(); len(visits) > 0 {
		link.VisitsByDate = make(map[string]int64, len(visits))
		for day, v := range visits {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: invalid visits value %q for %s: %w", op, v, day, err)
			}
			link.VisitsByDate[day] = n
		}
	}

	return link, nil
}
