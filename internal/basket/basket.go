package basket

import (
	"errors"
	"fmt"

	"github.com/andikasp/orderdesk/internal/catalog"
)

var (
	ErrInvalidInput    = errors.New("select a product and enter a quantity")
	ErrProductNotFound = errors.New("product is no longer available")
	ErrNoSuchLine      = errors.New("no such line item")
)

// InsufficientStockError membawa sisa stok supaya pesan ke user bisa
// menyebut angkanya, seperti detail rejected di service inventory.
type InsufficientStockError struct {
	ProductType int
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, only %d available",
		e.ProductType, e.Requested, e.Available)
}

// LineItem is one draft order line. Invariant: satu product type maksimal
// satu line; quantity selalu >= 1.
type LineItem struct {
	ProductType int `json:"productType"`
	Quantity    int `json:"quantity"`
}

type Basket struct {
	Items []LineItem `json:"items"`
}

func (b *Basket) find(productType int) int {
	for i, it := range b.Items {
		if it.ProductType == productType {
			return i
		}
	}
	return -1
}

// Add upserts a line for productType. Quantity yang diminta digabung
// dengan line yang sudah ada (tidak pernah jadi baris duplikat) dan
// hasil gabungannya dicek terhadap stok tersedia. Kalau gagal, basket
// tidak berubah sama sekali.
func (b *Basket) Add(productType, qty int, cat catalog.Catalog) error {
	if productType <= 0 || qty <= 0 {
		return ErrInvalidInput
	}
	p, ok := cat.Find(productType)
	if !ok {
		return ErrProductNotFound
	}

	target := qty
	i := b.find(productType)
	if i >= 0 {
		target += b.Items[i].Quantity
	}
	if target > p.TotalQuantity {
		return &InsufficientStockError{
			ProductType: productType,
			Requested:   target,
			Available:   p.TotalQuantity,
		}
	}

	if i >= 0 {
		b.Items[i].Quantity = target
	} else {
		b.Items = append(b.Items, LineItem{ProductType: productType, Quantity: target})
	}
	return nil
}

// Increment adds exactly one unit to the line at index, bounded by stock.
func (b *Basket) Increment(index int, cat catalog.Catalog) error {
	if index < 0 || index >= len(b.Items) {
		return ErrNoSuchLine
	}
	it := b.Items[index]
	p, ok := cat.Find(it.ProductType)
	if !ok {
		// stoknya bisa hilang di tengah sesi edit
		return ErrProductNotFound
	}
	if it.Quantity+1 > p.TotalQuantity {
		return &InsufficientStockError{
			ProductType: it.ProductType,
			Requested:   it.Quantity + 1,
			Available:   p.TotalQuantity,
		}
	}
	b.Items[index].Quantity++
	return nil
}

// Decrement removes one unit; at quantity 1 the line is deleted outright.
// Line dengan quantity 0 bukan state yang valid.
func (b *Basket) Decrement(index int) error {
	if index < 0 || index >= len(b.Items) {
		return ErrNoSuchLine
	}
	if b.Items[index].Quantity <= 1 {
		return b.Remove(index)
	}
	b.Items[index].Quantity--
	return nil
}

func (b *Basket) Remove(index int) error {
	if index < 0 || index >= len(b.Items) {
		return ErrNoSuchLine
	}
	b.Items = append(b.Items[:index], b.Items[index+1:]...)
	return nil
}
