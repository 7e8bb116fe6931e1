package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/andikasp/orderdesk/internal/dairyapi"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is one submission attempt, successful or not. Best-effort log:
// kegagalan nulis audit tidak boleh memblokir user.
type Entry struct {
	DraftID string
	Method  string // create | update
	OrderID *int   // upstream order id, nil kalau gagal
	Success bool
	Message string
	Payload dairyapi.OrderPayload
}

type Row struct {
	ID        int64     `json:"id"`
	DraftID   string    `json:"draftId"`
	Method    string    `json:"method"`
	OrderID   *int      `json:"orderId"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Record(ctx context.Context, e Entry) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return err
	}
	_, err = r.DB.Exec(ctx, `
		INSERT INTO order_submissions(draft_id, method, upstream_order_id, success, message, payload)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.DraftID, e.Method, e.OrderID, e.Success, e.Message, payload,
	)
	return err
}

func (r *Repo) Recent(ctx context.Context, limit int) ([]Row, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.DB.Query(ctx, `
		SELECT id, draft_id, method, upstream_order_id, success, message, created_at
		FROM order_submissions
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var x Row
		if err := rows.Scan(&x.ID, &x.DraftID, &x.Method, &x.OrderID, &x.Success, &x.Message, &x.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, rows.Err()
}
