// Package postgres implements the record store for incoming quote requests.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkessler/panelwerk/internal/domain"
)

// Quote request lifecycle states. A request is created as new, becomes
// submitted once the ERP accepted the sales quote, and exported once the
// manufacturing document was produced. Failed marks a submission attempt
// that exhausted its retry budget.
const (
	RequestStatusNew       = "new"
	RequestStatusSubmitted = "submitted"
	RequestStatusExported  = "exported"
	RequestStatusFailed    = "failed"
)

// QuoteRequest is one persisted configurator request: the validated
// configuration plus the price snapshot taken at creation time.
type QuoteRequest struct {
	ID                uuid.UUID            `json:"id"`
	CustomerName      string               `json:"customerName"`
	CustomerNumber    string               `json:"customerNumber"`
	CustomerEmail     string               `json:"customerEmail"`
	CustomerReference string               `json:"customerReference"`
	ProductID         string               `json:"productId"`
	ProductName       string               `json:"productName"`
	Configuration     domain.Configuration `json:"configuration"`
	Price             domain.PriceResult   `json:"price"`
	Status            string               `json:"status"`
	ERPQuoteID        string               `json:"erpQuoteId"`
	ERPQuoteNumber    string               `json:"erpQuoteNumber"`
	CreatedAt         time.Time            `json:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

// QuoteRequestStore persists quote requests in PostgreSQL. The pool handle
// is injected explicitly; there is no package-level client.
type QuoteRequestStore struct {
	db *pgxpool.Pool
}

// NewQuoteRequestStore creates a store over the given pool.
func NewQuoteRequestStore(db *pgxpool.Pool) *QuoteRequestStore {
	return &QuoteRequestStore{db: db}
}

// Create inserts a new quote request record.
func (s *QuoteRequestStore) Create(ctx context.Context, qr *QuoteRequest) error {
	const op = "quote_request.create"

	cfgJSON, err := json.Marshal(qr.Configuration)
	if err != nil {
		return domain.Internal(err, op, "failed to encode configuration")
	}
	priceJSON, err := json.Marshal(qr.Price)
	if err != nil {
		return domain.Internal(err, op, "failed to encode price")
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO quote_requests (
			id, customer_name, customer_number, customer_email, customer_reference,
			product_id, product_name, configuration, price, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`,
		qr.ID, qr.CustomerName, qr.CustomerNumber, qr.CustomerEmail, qr.CustomerReference,
		qr.ProductID, qr.ProductName, cfgJSON, priceJSON, qr.Status, qr.CreatedAt,
	)
	if err != nil {
		return domain.Internal(err, op, "failed to save quote request")
	}
	return nil
}

// Get retrieves one quote request by id.
func (s *QuoteRequestStore) Get(ctx context.Context, id uuid.UUID) (*QuoteRequest, error) {
	const op = "quote_request.get"

	row := s.db.QueryRow(ctx, `
		SELECT id, customer_name, customer_number, customer_email, customer_reference,
		       product_id, product_name, configuration, price, status,
		       erp_quote_id, erp_quote_number, created_at, updated_at
		FROM quote_requests
		WHERE id = $1`,
		id,
	)

	qr, err := scanQuoteRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound(op, "quote request", id.String())
		}
		return nil, domain.Internal(err, op, "failed to load quote request")
	}
	return qr, nil
}

// List returns quote requests newest first.
func (s *QuoteRequestStore) List(ctx context.Context, limit, offset int32) ([]QuoteRequest, error) {
	const op = "quote_request.list"

	rows, err := s.db.Query(ctx, `
		SELECT id, customer_name, customer_number, customer_email, customer_reference,
		       product_id, product_name, configuration, price, status,
		       erp_quote_id, erp_quote_number, created_at, updated_at
		FROM quote_requests
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list quote requests")
	}
	defer rows.Close()

	var out []QuoteRequest
	for rows.Next() {
		qr, err := scanQuoteRequest(rows)
		if err != nil {
			return nil, domain.Internal(err, op, "failed to scan quote request")
		}
		out = append(out, *qr)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, op, "failed to list quote requests")
	}
	return out, nil
}

// UpdateStatus moves a request to a new lifecycle state, recording the ERP
// quote reference when one exists.
func (s *QuoteRequestStore) UpdateStatus(ctx context.Context, id uuid.UUID, status, erpQuoteID, erpQuoteNumber string) error {
	const op = "quote_request.update_status"

	tag, err := s.db.Exec(ctx, `
		UPDATE quote_requests
		SET status = $2,
		    erp_quote_id = CASE WHEN $3 = '' THEN erp_quote_id ELSE $3 END,
		    erp_quote_number = CASE WHEN $4 = '' THEN erp_quote_number ELSE $4 END,
		    updated_at = now()
		WHERE id = $1`,
		id, status, erpQuoteID, erpQuoteNumber,
	)
	if err != nil {
		return domain.Internal(err, op, "failed to update quote request status")
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound(op, "quote request", id.String())
	}
	return nil
}

// scanQuoteRequest reads one row into a QuoteRequest, decoding the JSONB
// columns.
func scanQuoteRequest(row pgx.Row) (*QuoteRequest, error) {
	var (
		qr        QuoteRequest
		cfgJSON   []byte
		priceJSON []byte
	)

	err := row.Scan(
		&qr.ID, &qr.CustomerName, &qr.CustomerNumber, &qr.CustomerEmail, &qr.CustomerReference,
		&qr.ProductID, &qr.ProductName, &cfgJSON, &priceJSON, &qr.Status,
		&qr.ERPQuoteID, &qr.ERPQuoteNumber, &qr.CreatedAt, &qr.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(cfgJSON, &qr.Configuration); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(priceJSON, &qr.Price); err != nil {
		return nil, err
	}
	return &qr, nil
}
