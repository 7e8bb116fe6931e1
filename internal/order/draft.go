package order

import (
	"github.com/andikasp/orderdesk/internal/basket"
	"github.com/andikasp/orderdesk/internal/catalog"
	"github.com/andikasp/orderdesk/internal/dairyapi"
)

type Status string

const (
	StatusRequested Status = "Requested"
	StatusProcessed Status = "Processed"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusRequested, StatusProcessed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// DraftOrder is the aggregate being built or edited. Satu sesi edit punya
// satu instance, pemiliknya session store; tidak pernah di-share.
type DraftOrder struct {
	OrderID       int           `json:"orderId,omitempty"` // >0 berarti edit order lama
	CustomerName  string        `json:"customerName"`
	Email         string        `json:"email"`
	PhoneNumber   string        `json:"phoneNumber"`
	Location      string        `json:"location"`
	Status        Status        `json:"status"`
	PaymentMethod string        `json:"paymentMethod"`
	ShippingCost  float64       `json:"shippingCost"`
	Notes         string        `json:"notes"`
	Basket        basket.Basket `json:"basket"`
}

func NewDraft() *DraftOrder {
	return &DraftOrder{Status: StatusRequested}
}

// HydrateFromOrder builds an editable draft out of an existing upstream
// order: line item mentah dikonsolidasi dulu, lalu direvalidasi terhadap
// stok sekarang. wasTrimmed true kalau ada baris yang dibuang.
func HydrateFromOrder(o *dairyapi.Order, cat catalog.Catalog) (*DraftOrder, bool) {
	items := basket.Consolidate(o.OrderItems)
	items, trimmed := basket.Revalidate(items, cat)

	status := Status(o.Status)
	if !ValidStatus(status) {
		status = StatusRequested
	}

	d := &DraftOrder{
		OrderID:       o.ID,
		CustomerName:  o.CustomerName,
		Email:         deref(o.Email),
		PhoneNumber:   deref(o.PhoneNumber),
		Location:      o.Location,
		Status:        status,
		PaymentMethod: deref(o.PaymentMethod),
		ShippingCost:  o.ShippingCost,
		Notes:         deref(o.Notes),
		Basket:        basket.Basket{Items: items},
	}
	return d, trimmed
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
