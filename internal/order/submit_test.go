package order

import (
	"context"
	"testing"

	"github.com/andikasp/orderdesk/internal/basket"
	"github.com/andikasp/orderdesk/internal/catalog"
	"github.com/andikasp/orderdesk/internal/dairyapi"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUpstream struct {
	createCalls int
	updateCalls int
	lastPayload dairyapi.OrderPayload
	lastID      int
	resp        *dairyapi.Order
	err         error
}

func (f *fakeUpstream) CreateOrder(_ context.Context, p dairyapi.OrderPayload) (*dairyapi.Order, error) {
	f.createCalls++
	f.lastPayload = p
	return f.resp, f.err
}

func (f *fakeUpstream) UpdateOrder(_ context.Context, id int, p dairyapi.OrderPayload) (*dairyapi.Order, error) {
	f.updateCalls++
	f.lastID = id
	f.lastPayload = p
	return f.resp, f.err
}

type fakeRefresher struct{ calls int }

func (f *fakeRefresher) Refresh(context.Context) (catalog.Catalog, error) {
	f.calls++
	return nil, nil
}

func newSubmitter(up *fakeUpstream, ref *fakeRefresher) *Submitter {
	return &Submitter{
		Upstream: up,
		Catalog:  ref,
		Service:  "orderdesk-test",
		Logger:   zap.NewNop(),
	}
}

func validDraft() *DraftOrder {
	d := NewDraft()
	d.CustomerName = "Bu Sari"
	d.Location = "Jl. Melati 3"
	d.Basket.Items = []basket.LineItem{{ProductType: 7, Quantity: 2}}
	return d
}

func stockedCatalog() catalog.Catalog {
	return catalog.Catalog{{ProductType: 7, TotalQuantity: 10}}
}

func TestSubmitEmptyBasketMakesNoNetworkCall(t *testing.T) {
	up := &fakeUpstream{}
	s := newSubmitter(up, &fakeRefresher{})

	d := validDraft()
	d.Basket.Items = nil

	_, err := s.Submit(context.Background(), "draft-1", d, stockedCatalog())
	require.ErrorIs(t, err, ErrEmptyBasket)
	require.Zero(t, up.createCalls)
	require.Zero(t, up.updateCalls)
}

func TestSubmitInvalidPhoneBlocks(t *testing.T) {
	up := &fakeUpstream{}
	s := newSubmitter(up, &fakeRefresher{})

	d := validDraft()
	d.PhoneNumber = "123"

	_, err := s.Submit(context.Background(), "draft-1", d, stockedCatalog())
	require.ErrorIs(t, err, ErrInvalidPhone)
	require.Zero(t, up.createCalls)
}

func TestSubmitEditPathStaleStock(t *testing.T) {
	up := &fakeUpstream{}
	s := newSubmitter(up, &fakeRefresher{})

	d := validDraft()
	d.OrderID = 5
	d.Basket.Items = []basket.LineItem{{ProductType: 7, Quantity: 20}} // > 10

	_, err := s.Submit(context.Background(), "draft-1", d, stockedCatalog())
	require.ErrorIs(t, err, ErrStaleStock)
	require.Zero(t, up.updateCalls)
}

func TestSubmitCreateSuccessRefreshesCatalog(t *testing.T) {
	up := &fakeUpstream{resp: &dairyapi.Order{ID: 99}}
	ref := &fakeRefresher{}
	s := newSubmitter(up, ref)

	d := validDraft()
	d.PhoneNumber = "81234567890"

	res, err := s.Submit(context.Background(), "draft-1", d, stockedCatalog())
	require.NoError(t, err)
	require.Equal(t, 99, res.OrderID)
	require.False(t, res.Idempotent)
	require.Equal(t, 1, up.createCalls)
	require.Equal(t, 1, ref.calls)

	// payload membawa nomor yang sudah dinormalisasi
	require.NotNil(t, up.lastPayload.PhoneNumber)
	require.Equal(t, "+6281234567890", *up.lastPayload.PhoneNumber)
}

func TestSubmitUpdateUsesPut(t *testing.T) {
	up := &fakeUpstream{resp: &dairyapi.Order{ID: 5}}
	s := newSubmitter(up, &fakeRefresher{})

	d := validDraft()
	d.OrderID = 5

	res, err := s.Submit(context.Background(), "draft-1", d, stockedCatalog())
	require.NoError(t, err)
	require.Equal(t, 5, res.OrderID)
	require.Equal(t, 1, up.updateCalls)
	require.Equal(t, 5, up.lastID)
	require.Zero(t, up.createCalls)
}

func TestSubmitUpstreamFailurePreservesDraft(t *testing.T) {
	up := &fakeUpstream{err: &dairyapi.APIError{Status: 200, Message: "stok tidak cukup"}}
	ref := &fakeRefresher{}
	s := newSubmitter(up, ref)

	d := validDraft()
	before := append([]basket.LineItem(nil), d.Basket.Items...)

	_, err := s.Submit(context.Background(), "draft-1", d, stockedCatalog())
	var apiErr *dairyapi.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "stok tidak cukup", apiErr.Message)
	require.Equal(t, before, d.Basket.Items)
	require.Zero(t, ref.calls) // tidak ada refresh kalau gagal
}
