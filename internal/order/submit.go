package order

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/andikasp/orderdesk/internal/audit"
	"github.com/andikasp/orderdesk/internal/basket"
	"github.com/andikasp/orderdesk/internal/catalog"
	"github.com/andikasp/orderdesk/internal/dairyapi"
	kafkax "github.com/andikasp/orderdesk/internal/kafka"
	"github.com/andikasp/orderdesk/internal/redisx"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var (
	ErrEmptyBasket  = errors.New("order has no items")
	ErrInvalidPhone = errors.New("phone number is not a valid +62 number")
	ErrStaleStock   = errors.New("one or more items exceed current stock")
)

type Mutator interface {
	CreateOrder(ctx context.Context, p dairyapi.OrderPayload) (*dairyapi.Order, error)
	UpdateOrder(ctx context.Context, id int, p dairyapi.OrderPayload) (*dairyapi.Order, error)
}

type Refresher interface {
	Refresh(ctx context.Context) (catalog.Catalog, error)
}

type AuditLog interface {
	Record(ctx context.Context, e audit.Entry) error
}

type EventPublisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Result of a submission. Idempotent true artinya draft ini sudah pernah
// sukses disubmit dan upstream tidak dipanggil lagi.
type Result struct {
	OrderID    int             `json:"orderId"`
	Order      *dairyapi.Order `json:"order,omitempty"`
	Idempotent bool            `json:"idempotent"`
}

// Submitter menjalankan pipeline submit: validasi, normalisasi telepon,
// rakit payload, panggil upstream, catat audit, publish event, refresh
// katalog. Audit, Producer dan Redis boleh nil (fitur best-effort).
type Submitter struct {
	Upstream Mutator
	Catalog  Refresher
	Audit    AuditLog
	Producer EventPublisher
	Redis    *redis.Client
	Service  string
	Logger   *zap.Logger
}

// Submit validates the draft and pushes it upstream. Urutan precondition
// baku, yang gagal duluan yang menang: basket kosong, telepon invalid,
// lalu (khusus edit) stok basi. Kalau gagal, draft tidak disentuh supaya
// user bisa koreksi dan submit ulang.
func (s *Submitter) Submit(ctx context.Context, draftID string, d *DraftOrder, cat catalog.Catalog) (*Result, error) {
	if len(d.Basket.Items) == 0 {
		return nil, ErrEmptyBasket
	}

	phone, ok := NormalizePhone(d.PhoneNumber)
	if !ok {
		return nil, ErrInvalidPhone
	}

	isUpdate := d.OrderID > 0
	if isUpdate {
		// Trimming sudah jalan waktu modal edit dibuka; ini sisa kasus
		// stok berubah lagi sesudahnya.
		if _, trimmed := basket.Revalidate(d.Basket.Items, cat); trimmed {
			return nil, ErrStaleStock
		}
	}

	// Idempotency ala create-order: submit dobel untuk draft yang sama
	// tidak boleh bikin order kedua di upstream.
	idemKey := fmt.Sprintf(redisx.KeyIdemOrderSubmit, draftID)
	if s.Redis != nil {
		if v, err := s.Redis.Get(ctx, idemKey).Result(); err == nil && v != "" {
			id, _ := strconv.Atoi(v)
			return &Result{OrderID: id, Idempotent: true}, nil
		}
	}

	payload := BuildPayload(d, phone)
	method := "create"
	if isUpdate {
		method = "update"
	}

	var (
		created *dairyapi.Order
		err     error
	)
	if isUpdate {
		created, err = s.Upstream.UpdateOrder(ctx, d.OrderID, payload)
	} else {
		created, err = s.Upstream.CreateOrder(ctx, payload)
	}
	if err != nil {
		s.recordAudit(ctx, audit.Entry{
			DraftID: draftID, Method: method, Success: false,
			Message: err.Error(), Payload: payload,
		})
		return nil, err
	}

	orderID := d.OrderID
	if created != nil {
		orderID = created.ID
	}

	s.recordAudit(ctx, audit.Entry{
		DraftID: draftID, Method: method, OrderID: &orderID,
		Success: true, Payload: payload,
	})

	if s.Redis != nil {
		if err := s.Redis.Set(ctx, idemKey, strconv.Itoa(orderID), redisx.TTLIdempotency).Err(); err != nil {
			s.Logger.Warn("idempotency key write", zap.Error(err))
		}
	}

	s.publishSubmitted(draftID, orderID, method, payload)

	// Stok berubah di upstream; snapshot katalog wajib dihitung ulang.
	if s.Catalog != nil {
		if _, err := s.Catalog.Refresh(ctx); err != nil {
			s.Logger.Warn("post-submit catalog refresh", zap.Error(err))
		}
	}

	return &Result{OrderID: orderID, Order: created}, nil
}

func (s *Submitter) recordAudit(ctx context.Context, e audit.Entry) {
	if s.Audit == nil {
		return
	}
	if err := s.Audit.Record(ctx, e); err != nil {
		s.Logger.Warn("audit record", zap.String("draft_id", e.DraftID), zap.Error(err))
	}
}

func (s *Submitter) publishSubmitted(draftID string, orderID int, method string, p dairyapi.OrderPayload) {
	if s.Producer == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventOrderSubmitted,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.Service,
		CorrelationID: draftID,
	}
	ev.Payload = kafkax.MustMarshal(OrderSubmittedPayload{
		DraftID:      draftID,
		OrderID:      orderID,
		Method:       method,
		CustomerName: p.CustomerName,
		Items:        p.OrderItems,
		ShippingCost: p.ShippingCost,
	})
	s.Producer.Publish(PartitionKey(draftID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventOrderSubmitted)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
