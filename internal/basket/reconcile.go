package basket

import (
	"github.com/andikasp/orderdesk/internal/catalog"
	"github.com/andikasp/orderdesk/internal/dairyapi"
)

// Consolidate merges raw upstream line items (boleh dobel per product
// type) ke bentuk satu-line-per-type yang sama dengan invariant Add.
// Item tanpa detail product type dikelompokkan di key sentinel 0; entry
// itu toh akan gugur di Revalidate karena 0 tidak pernah ada di katalog.
func Consolidate(raw []dairyapi.RawOrderItem) []LineItem {
	var out []LineItem
	index := make(map[int]int)

	for _, r := range raw {
		key := 0
		if r.ProductTypeDetail != nil {
			key = r.ProductTypeDetail.ID
		}
		if i, seen := index[key]; seen {
			out[i].Quantity += r.Quantity.Int()
			continue
		}
		out = append(out, LineItem{ProductType: key, Quantity: r.Quantity.Int()})
		index[key] = len(out) - 1
	}
	return out
}

// Revalidate drops every line that is no longer satisfiable against the
// current catalog. Sengaja drop, bukan clamp: mengecilkan quantity
// diam-diam lebih membingungkan daripada baris yang hilang.
func Revalidate(items []LineItem, cat catalog.Catalog) (valid []LineItem, wasTrimmed bool) {
	for _, it := range items {
		p, ok := cat.Find(it.ProductType)
		if !ok || it.Quantity > p.TotalQuantity {
			wasTrimmed = true
			continue
		}
		valid = append(valid, it)
	}
	return valid, wasTrimmed
}
