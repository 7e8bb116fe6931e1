package catalog

import (
	"context"
	"encoding/json"

	"github.com/andikasp/orderdesk/internal/dairyapi"
	"github.com/andikasp/orderdesk/internal/redisx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type BatchFetcher interface {
	FetchStockBatches(ctx context.Context) ([]dairyapi.StockBatch, error)
}

// Service serves the aggregated catalog, cache-first. Redis hanya cache:
// kalau kosong atau rusak, fallback ke fetch live lalu tulis ulang.
type Service struct {
	Fetcher BatchFetcher
	Redis   *redis.Client
	Logger  *zap.Logger
}

// Snapshot returns the current catalog, from cache when fresh.
func (s *Service) Snapshot(ctx context.Context) (Catalog, error) {
	if s.Redis != nil {
		if raw, err := s.Redis.Get(ctx, redisx.KeyCatalog).Result(); err == nil && raw != "" {
			var cat Catalog
			if err := json.Unmarshal([]byte(raw), &cat); err == nil {
				return cat, nil
			}
			s.Logger.Warn("catalog cache corrupt, refetching")
		}
	}
	return s.Refresh(ctx)
}

// Refresh fetches batches live, re-aggregates and rewrites the cache.
// Dipanggil setiap kali snapshot stok berubah (sesudah submit sukses,
// atau waktu event stock.changed masuk).
func (s *Service) Refresh(ctx context.Context) (Catalog, error) {
	batches, err := s.Fetcher.FetchStockBatches(ctx)
	if err != nil {
		return nil, err
	}
	cat := Aggregate(batches)

	if s.Redis != nil {
		b, err := json.Marshal(cat)
		if err == nil {
			if err := s.Redis.Set(ctx, redisx.KeyCatalog, b, redisx.TTLCatalog).Err(); err != nil {
				s.Logger.Warn("catalog cache write", zap.Error(err))
			}
		}
	}
	s.Logger.Debug("catalog refreshed", zap.Int("products", len(cat)))
	return cat, nil
}
