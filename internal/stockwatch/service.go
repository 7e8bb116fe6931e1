package stockwatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/andikasp/orderdesk/internal/catalog"
	kafkax "github.com/andikasp/orderdesk/internal/kafka"
	"github.com/andikasp/orderdesk/internal/order"
	"github.com/andikasp/orderdesk/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Service listens for stock.changed events from the stock-management
// system and keeps the cached catalog snapshot fresh.
type Service struct {
	Catalog *catalog.Service
	Redis   *redis.Client
	Logger  *zap.Logger
	Name    string
}

// HandleStockChanged dipasang sebagai handler consumer.
func (s *Service) HandleStockChanged(ctx context.Context, m kafkago.Message) error {
	var env order.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != order.EventStockChanged {
		return nil // ignore
	}

	// dedup via Redis pakai event_id
	dkey := fmt.Sprintf(redisx.KeyDedup, s.Name, env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[order.StockChangedPayload](env.Payload)
	if err != nil {
		return err
	}

	cat, err := s.Catalog.Refresh(ctx)
	if err != nil {
		return err
	}
	s.Logger.Info("catalog refreshed on stock change",
		zap.String("source", p.Source),
		zap.Ints("product_types", p.ProductTypes),
		zap.Int("products", len(cat)),
	)
	return nil
}
