package catalog

import "github.com/andikasp/orderdesk/internal/dairyapi"

// AvailableProduct is the aggregated, purchasable view of one product
// type: the sum of every available batch's remaining quantity.
type AvailableProduct struct {
	ProductType   int     `json:"productType"`
	ProductName   string  `json:"productName"`
	TotalQuantity int     `json:"totalQuantity"`
	Image         string  `json:"image"`
	Price         float64 `json:"price"`
	Unit          string  `json:"unit"`
}

type Catalog []AvailableProduct

func (c Catalog) Find(productType int) (AvailableProduct, bool) {
	for _, p := range c {
		if p.ProductType == productType {
			return p, true
		}
	}
	return AvailableProduct{}, false
}

// Aggregate mereduksi daftar batch mentah jadi satu entry per product type.
// Batch ikut dihitung hanya kalau statusnya available dan detail product
// type-nya masih resolvable; sisanya di-skip diam-diam karena data stok
// dari upstream memang tidak sepenuhnya bisa dipercaya.
func Aggregate(batches []dairyapi.StockBatch) Catalog {
	var out Catalog
	index := make(map[int]int) // productType -> posisi di out

	for _, b := range batches {
		if b.Status != dairyapi.StockAvailable || b.ProductTypeDetail == nil {
			continue
		}
		i, seen := index[b.ProductType]
		if !seen {
			name := b.ProductTypeDetail.ProductName
			if name == "" {
				name = "Unknown"
			}
			out = append(out, AvailableProduct{
				ProductType: b.ProductType,
				ProductName: name,
				Image:       b.ProductTypeDetail.Image,
				Price:       b.ProductTypeDetail.Price,
				Unit:        b.ProductTypeDetail.Unit,
			})
			i = len(out) - 1
			index[b.ProductType] = i
		}
		out[i].TotalQuantity += b.Quantity.Int()
	}
	return out
}
