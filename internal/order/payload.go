package order

import (
	"math"

	"github.com/andikasp/orderdesk/internal/dairyapi"
)

// BuildPayload assembles the wire payload for create/update. Field
// opsional yang kosong dikirim null eksplisit, bukan di-omit; line item
// dikupas jadi pasangan {productType, quantity} saja.
func BuildPayload(d *DraftOrder, normalizedPhone string) dairyapi.OrderPayload {
	items := make([]dairyapi.PayloadItem, 0, len(d.Basket.Items))
	for _, it := range d.Basket.Items {
		items = append(items, dairyapi.PayloadItem{
			ProductType: it.ProductType,
			Quantity:    it.Quantity,
		})
	}

	shipping := d.ShippingCost
	if shipping < 0 || math.IsNaN(shipping) {
		shipping = 0
	}

	status := d.Status
	if !ValidStatus(status) {
		status = StatusRequested
	}

	return dairyapi.OrderPayload{
		CustomerName:  d.CustomerName,
		Email:         nullIfBlank(d.Email),
		PhoneNumber:   nullIfBlank(normalizedPhone),
		Location:      d.Location,
		Status:        string(status),
		PaymentMethod: nullIfBlank(d.PaymentMethod),
		ShippingCost:  shipping,
		OrderItems:    items,
		Notes:         nullIfBlank(d.Notes),
	}
}

func nullIfBlank(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
