package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/andikasp/orderdesk/internal/audit"
	"github.com/andikasp/orderdesk/internal/basket"
	"github.com/andikasp/orderdesk/internal/catalog"
	"github.com/andikasp/orderdesk/internal/dairyapi"
	"github.com/andikasp/orderdesk/internal/order"
	"github.com/andikasp/orderdesk/internal/session"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type OrderFetcher interface {
	FetchOrders(ctx context.Context) ([]dairyapi.Order, error)
	FetchOrder(ctx context.Context, id int) (*dairyapi.Order, error)
}

type AuditReader interface {
	Recent(ctx context.Context, limit int) ([]audit.Row, error)
}

// DeskHandler exposes the order desk: catalog, draft baskets, submit.
type DeskHandler struct {
	Catalog   *catalog.Service
	Sessions  *session.Store
	Upstream  OrderFetcher
	Submitter *order.Submitter
	Audit     AuditReader
	Logger    *zap.Logger
}

func (h *DeskHandler) Register(r *chi.Mux) {
	r.Get("/catalog", h.getCatalog)
	r.Get("/orders", h.listOrders)

	r.Post("/drafts", h.createDraft)
	r.Get("/drafts/{id}", h.getDraft)
	r.Put("/drafts/{id}", h.updateDraft)
	r.Delete("/drafts/{id}", h.deleteDraft)
	r.Post("/drafts/{id}/refresh", h.refreshDraft)

	r.Post("/drafts/{id}/items", h.addItem)
	r.Post("/drafts/{id}/items/{index}/increment", h.incrementItem)
	r.Post("/drafts/{id}/items/{index}/decrement", h.decrementItem)
	r.Delete("/drafts/{id}/items/{index}", h.removeItem)

	r.Post("/drafts/{id}/submit", h.submitDraft)

	if h.Audit != nil {
		r.Get("/submissions", h.listSubmissions)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

type draftResp struct {
	DraftID string            `json:"draftId"`
	Draft   *order.DraftOrder `json:"draft"`
	Warning string            `json:"warning,omitempty"`
}

func (h *DeskHandler) getCatalog(w http.ResponseWriter, r *http.Request) {
	cat, err := h.Catalog.Snapshot(r.Context())
	if err != nil {
		h.Logger.Error("catalog snapshot", zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// orderView tambahkan tampilan item yang sudah dikonsolidasi di samping
// line item mentah upstream.
type orderView struct {
	dairyapi.Order
	Items []basket.LineItem `json:"items"`
}

func (h *DeskHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	os, err := h.Upstream.FetchOrders(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	views := make([]orderView, 0, len(os))
	for _, o := range os {
		views = append(views, orderView{Order: o, Items: basket.Consolidate(o.OrderItems)})
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *DeskHandler) createDraft(w http.ResponseWriter, r *http.Request) {
	cat, err := h.Catalog.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	var (
		draft   *order.DraftOrder
		warning string
	)
	if from := r.URL.Query().Get("from"); from != "" {
		id, err := strconv.Atoi(from)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid order id")
			return
		}
		existing, err := h.Upstream.FetchOrder(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		var trimmed bool
		draft, trimmed = order.HydrateFromOrder(existing, cat)
		if trimmed {
			warning = "some items were removed due to insufficient stock"
		}
	} else {
		draft = order.NewDraft()
	}

	sess := h.Sessions.Create(draft, cat, warning)
	writeJSON(w, http.StatusCreated, draftResp{DraftID: sess.ID, Draft: draft, Warning: warning})
}

func (h *DeskHandler) getSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "id")
	sess, ok := h.Sessions.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "draft not found")
		return nil, false
	}
	return sess, true
}

func (h *DeskHandler) getDraft(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.getSession(w, r)
	if !ok {
		return
	}
	_ = sess.Update(func(s *session.Session) error {
		writeJSON(w, http.StatusOK, draftResp{DraftID: s.ID, Draft: s.Draft, Warning: s.Warning})
		return nil
	})
}

type draftUpdateReq struct {
	CustomerName  string  `json:"customerName"`
	Email         string  `json:"email"`
	PhoneNumber   string  `json:"phoneNumber"`
	Location      string  `json:"location"`
	Status        string  `json:"status"`
	PaymentMethod string  `json:"paymentMethod"`
	ShippingCost  float64 `json:"shippingCost"`
	Notes         string  `json:"notes"`
}

func (h *DeskHandler) updateDraft(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.getSession(w, r)
	if !ok {
		return
	}
	var req draftUpdateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Status != "" && !order.ValidStatus(order.Status(req.Status)) {
		writeError(w, http.StatusUnprocessableEntity, "invalid status")
		return
	}

	_ = sess.Update(func(s *session.Session) error {
		d := s.Draft
		d.CustomerName = req.CustomerName
		d.Email = req.Email
		d.PhoneNumber = req.PhoneNumber
		d.Location = req.Location
		if req.Status != "" {
			d.Status = order.Status(req.Status)
		}
		d.PaymentMethod = req.PaymentMethod
		d.ShippingCost = req.ShippingCost
		d.Notes = req.Notes
		writeJSON(w, http.StatusOK, draftResp{DraftID: s.ID, Draft: d, Warning: s.Warning})
		return nil
	})
}

func (h *DeskHandler) deleteDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.Sessions.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

// refreshDraft re-snapshots the catalog and, untuk draft edit, jalankan
// revalidasi ulang; baris yang tidak kebagian stok dibuang dengan warning.
func (h *DeskHandler) refreshDraft(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.getSession(w, r)
	if !ok {
		return
	}
	cat, err := h.Catalog.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	_ = sess.Update(func(s *session.Session) error {
		s.Catalog = cat
		if s.Draft.OrderID > 0 {
			valid, trimmed := basket.Revalidate(s.Draft.Basket.Items, cat)
			if trimmed {
				s.Draft.Basket.Items = valid
				s.Warning = "some items were removed due to insufficient stock"
			}
		}
		writeJSON(w, http.StatusOK, draftResp{DraftID: s.ID, Draft: s.Draft, Warning: s.Warning})
		return nil
	})
}

type addItemReq struct {
	ProductType int `json:"productType"`
	Quantity    int `json:"quantity"`
}

func (h *DeskHandler) addItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.getSession(w, r)
	if !ok {
		return
	}
	var req addItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	h.mutateBasket(w, sess, func(s *session.Session) error {
		return s.Draft.Basket.Add(req.ProductType, req.Quantity, s.Catalog)
	})
}

func (h *DeskHandler) incrementItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.getSession(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid index")
		return
	}
	h.mutateBasket(w, sess, func(s *session.Session) error {
		return s.Draft.Basket.Increment(index, s.Catalog)
	})
}

func (h *DeskHandler) decrementItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.getSession(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid index")
		return
	}
	h.mutateBasket(w, sess, func(s *session.Session) error {
		return s.Draft.Basket.Decrement(index)
	})
}

func (h *DeskHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.getSession(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid index")
		return
	}
	h.mutateBasket(w, sess, func(s *session.Session) error {
		return s.Draft.Basket.Remove(index)
	})
}

func (h *DeskHandler) mutateBasket(w http.ResponseWriter, sess *session.Session, op func(*session.Session) error) {
	_ = sess.Update(func(s *session.Session) error {
		if err := op(s); err != nil {
			writeBasketError(w, err)
			return nil
		}
		writeJSON(w, http.StatusOK, draftResp{DraftID: s.ID, Draft: s.Draft})
		return nil
	})
}

func writeBasketError(w http.ResponseWriter, err error) {
	var stock *basket.InsufficientStockError
	switch {
	case errors.As(err, &stock):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":     err.Error(),
			"available": stock.Available,
		})
	case errors.Is(err, basket.ErrProductNotFound), errors.Is(err, basket.ErrNoSuchLine):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, basket.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *DeskHandler) submitDraft(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.getSession(w, r)
	if !ok {
		return
	}

	// Stock bound dicek terhadap snapshot paling baru; ambil dulu.
	cat, err := h.Catalog.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	var (
		res       *order.Result
		submitErr error
	)
	_ = sess.Update(func(s *session.Session) error {
		s.Catalog = cat
		res, submitErr = h.Submitter.Submit(r.Context(), s.ID, s.Draft, s.Catalog)
		return nil
	})

	if submitErr != nil {
		h.writeSubmitError(w, submitErr)
		return
	}

	// sukses: draft selesai, sesi dibuang
	h.Sessions.Delete(sess.ID)
	writeJSON(w, http.StatusOK, res)
}

func (h *DeskHandler) writeSubmitError(w http.ResponseWriter, err error) {
	var apiErr *dairyapi.APIError
	switch {
	case errors.Is(err, order.ErrEmptyBasket), errors.Is(err, order.ErrInvalidPhone):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, order.ErrStaleStock):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &apiErr):
		writeError(w, http.StatusBadGateway, apiErr.Message)
	default:
		h.Logger.Error("submit", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *DeskHandler) listSubmissions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := h.Audit.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
