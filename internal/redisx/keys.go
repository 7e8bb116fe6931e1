package redisx

import "time"

const (
	// Snapshot katalog hasil agregasi: catalog:available -> JSON []AvailableProduct
	KeyCatalog = "catalog:available"

	// Idempotency submit draft: idem:order:submit:{draft_id} -> upstream order_id
	KeyIdemOrderSubmit = "idem:order:submit:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLCatalog     = 1 * time.Minute
	TTLIdempotency = 24 * time.Hour
	TTLDedup       = 48 * time.Hour
)
