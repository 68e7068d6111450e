package cache

import (
	"context"
	"database/sql"
	"time"

	"github.com/moviemate/moviemate/pkg/discover"
	"github.com/moviemate/moviemate/pkg/models"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/uptrace/bun"
)

// Key identifies a TMDB response by endpoint and translated parameters. Equal
// requests always produce equal keys since Params encode in sorted order.
func Key(endpoint string, params discover.Params) string {
	if len(params) == 0 {
		return endpoint
	}
	return endpoint + "?" + params.Encode()
}

type Stats struct {
	Entries int `json:"entries"`
	Expired int `json:"expired"`
	Hits    int `json:"hits"`
}

type Service struct {
	db  *bun.DB
	now func() time.Time
}

func NewService(db *bun.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// Get returns the cached body for key. Expired rows are treated as misses and
// left for Prune.
func (svc *Service) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	resp := &models.TMDBResponse{}
	now := svc.now()

	err := svc.db.
		NewSelect().
		Model(resp).
		Where("tr.key = ?", key).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, errors.WithStack(err)
	}
	// Expired rows stay until the prune job runs, but never count as a hit.
	if resp.Expired(now) {
		return nil, false, nil
	}

	_, err = svc.db.
		NewUpdate().
		Model((*models.TMDBResponse)(nil)).
		Set("last_hit_at = ?", now).
		Set("hits = hits + 1").
		Where("key = ?", key).
		Exec(ctx)
	if err != nil {
		return nil, false, errors.WithStack(err)
	}

	return json.RawMessage(resp.Body), true, nil
}

// Set stores body under key for ttl, replacing whatever was there.
func (svc *Service) Set(ctx context.Context, key, endpoint string, body json.RawMessage, ttl time.Duration) error {
	now := svc.now()
	resp := &models.TMDBResponse{
		Key:       key,
		Endpoint:  endpoint,
		Body:      string(body),
		CachedAt:  now,
		ExpiresAt: now.Add(ttl),
		LastHitAt: now,
	}

	_, err := svc.db.
		NewInsert().
		Model(resp).
		On("CONFLICT (key) DO UPDATE").
		Set("endpoint = EXCLUDED.endpoint").
		Set("body = EXCLUDED.body").
		Set("cached_at = EXCLUDED.cached_at").
		Set("expires_at = EXCLUDED.expires_at").
		Set("last_hit_at = EXCLUDED.last_hit_at").
		Set("hits = 0").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// Prune deletes expired rows and returns how many were removed.
func (svc *Service) Prune(ctx context.Context) (int, error) {
	res, err := svc.db.
		NewDelete().
		Model((*models.TMDBResponse)(nil)).
		Where("expires_at <= ?", svc.now()).
		Exec(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Evict keeps at most max rows, dropping the least recently hit first. A max
// of zero means unbounded.
func (svc *Service) Evict(ctx context.Context, max int) (int, error) {
	if max <= 0 {
		return 0, nil
	}

	keep := svc.db.
		NewSelect().
		Model((*models.TMDBResponse)(nil)).
		Column("tr.key").
		OrderExpr("tr.last_hit_at DESC, tr.key ASC").
		Limit(max)

	res, err := svc.db.
		NewDelete().
		Model((*models.TMDBResponse)(nil)).
		Where("key NOT IN (?)", keep).
		Exec(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Flush deletes every cached response.
func (svc *Service) Flush(ctx context.Context) (int, error) {
	res, err := svc.db.
		NewDelete().
		Model((*models.TMDBResponse)(nil)).
		Where("1=1").
		Exec(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (svc *Service) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	err := svc.db.
		NewSelect().
		Model((*models.TMDBResponse)(nil)).
		ColumnExpr("COUNT(*) AS entries").
		ColumnExpr("COALESCE(SUM(CASE WHEN tr.expires_at <= ? THEN 1 ELSE 0 END), 0) AS expired", svc.now()).
		ColumnExpr("COALESCE(SUM(tr.hits), 0) AS hits").
		Scan(ctx, &stats.Entries, &stats.Expired, &stats.Hits)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return stats, nil
}
