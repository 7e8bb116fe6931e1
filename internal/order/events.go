package order

import (
	"encoding/json"
	"time"

	"github.com/andikasp/orderdesk/internal/dairyapi"
)

const (
	EventOrderSubmitted = "OrderSubmitted"
	EventStockChanged   = "StockChanged"
)

const (
	TopicOrderSubmitted = "order.submitted"
	TopicStockChanged   = "stock.changed"
)

// Envelope v1 untuk semua event di bus.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type OrderSubmittedPayload struct {
	DraftID      string                 `json:"draft_id"`
	OrderID      int                    `json:"order_id"`
	Method       string                 `json:"method"` // create | update
	CustomerName string                 `json:"customer_name"`
	Items        []dairyapi.PayloadItem `json:"items"`
	ShippingCost float64                `json:"shipping_cost"`
}

// StockChangedPayload diterbitkan sistem manajemen stok eksternal;
// orderdesk cuma konsumen.
type StockChangedPayload struct {
	Source       string `json:"source"`
	ProductTypes []int  `json:"product_types,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

// Partition key = draft/order id, supaya event satu order tetap urut.
func PartitionKey(id string) []byte { return []byte(id) }
