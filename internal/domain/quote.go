package domain

import (
	"time"

	"github.com/google/uuid"
)

// Quote-related domain errors.
var (
	ErrCurrencyMismatch      = &Error{Code: EINVALID, Message: "Line item currency does not match quote currency"}
	ErrInvalidQuantity       = &Error{Code: EINVALID, Message: "Quantity must be positive"}
	ErrLineItemNotFound      = &Error{Code: ENOTFOUND, Message: "Line item not found on quote"}
	ErrEmptyQuote            = &Error{Code: EINVALID, Message: "Quote has no line items"}
	ErrQuoteAlreadySubmitted = &Error{Code: ECONFLICT, Message: "Quote has already been submitted"}
)

// QuoteStatus is the lifecycle state of a quote.
// Transitions: Draft -> Ready on first line item, Ready -> Draft when the
// last line item is removed, Ready -> Submitted on submission. Submitted is
// terminal.
type QuoteStatus string

const (
	QuoteStatusDraft     QuoteStatus = "draft"
	QuoteStatusReady     QuoteStatus = "ready"
	QuoteStatusSubmitted QuoteStatus = "submitted"
)

// PriceResult is the outcome of pricing one configuration. Computed, never
// mutated. Details carries a diagnostic breakdown keyed by the documented
// set: area_m2, chargeable_area_m2, thickness_factor, base_price_per_m2.
type PriceResult struct {
	UnitPrice  float64            `json:"unitPrice"`
	TotalPrice float64            `json:"totalPrice"`
	Currency   string             `json:"currency"`
	ItemNumber string             `json:"itemNumber,omitempty"`
	Quantity   int                `json:"quantity"`
	Details    map[string]float64 `json:"details,omitempty"`
}

// QuoteLineItem is one priced configuration entry within a quote.
// LineTotal is always recomputed as Round2(UnitPrice * Quantity); it is
// never stored independently of its inputs.
type QuoteLineItem struct {
	ID            uuid.UUID     `json:"id"`
	ProductID     string        `json:"productId"`
	ProductName   string        `json:"productName"`
	Configuration Configuration `json:"configuration"`
	Quantity      int           `json:"quantity"`
	UnitPrice     float64       `json:"unitPrice"`
	LineTotal     float64       `json:"lineTotal"`
	Description   string        `json:"description"`
	Currency      string        `json:"currency"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// QuoteTotals is the roll-up over a quote's line items.
// Invariant: Total == Round2(Subtotal + Tax).
type QuoteTotals struct {
	Subtotal  float64 `json:"subtotal"`
	Tax       float64 `json:"tax"`
	Total     float64 `json:"total"`
	Currency  string  `json:"currency"`
	LineCount int     `json:"lineCount"`
}

// Quote is the aggregate root combining line items, totals, and the status
// lifecycle. All operations are pure: they return a new Quote value and
// never mutate the receiver, keeping totals recomputation co-located with
// every change.
type Quote struct {
	ID        uuid.UUID       `json:"id"`
	LineItems []QuoteLineItem `json:"lineItems"`
	Totals    QuoteTotals     `json:"totals"`
	Status    QuoteStatus     `json:"status"`
	TaxRate   float64         `json:"taxRate"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// NewQuote creates an empty draft quote in the given currency.
// The tax rate is zero: quotes are priced net, tax is applied downstream
// by the ERP.
func NewQuote(id uuid.UUID, currency string) Quote {
	now := time.Now().UTC()
	return Quote{
		ID:        id,
		Status:    QuoteStatusDraft,
		Totals:    QuoteTotals{Currency: currency},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Currency returns the quote's currency code.
func (q Quote) Currency() string {
	return q.Totals.Currency
}

// AddLineItem appends a priced configuration as a new line item and returns
// the updated quote. An empty quote adopts the price's currency; adding to
// an empty quote never fails on currency grounds. Once the quote carries
// line items, a price in a different currency fails with
// ErrCurrencyMismatch.
func (q Quote) AddLineItem(productID, productName string, cfg Configuration, price PriceResult) (Quote, error) {
	if q.Status == QuoteStatusSubmitted {
		return Quote{}, ErrQuoteAlreadySubmitted
	}
	if len(q.LineItems) > 0 && price.Currency != q.Currency() {
		return Quote{}, ErrCurrencyMismatch
	}

	qty := price.Quantity
	if qty <= 0 {
		qty = cfg.Quantity
	}

	item := QuoteLineItem{
		ID:            uuid.New(),
		ProductID:     productID,
		ProductName:   productName,
		Configuration: cfg,
		Quantity:      qty,
		UnitPrice:     Round2(price.UnitPrice),
		LineTotal:     Round2(price.UnitPrice * float64(qty)),
		Description:   cfg.Describe(qty),
		Currency:      price.Currency,
		CreatedAt:     time.Now().UTC(),
	}

	next := q
	if len(q.LineItems) == 0 {
		next.Totals.Currency = price.Currency
	}
	next.LineItems = append(append([]QuoteLineItem(nil), q.LineItems...), item)
	next.recompute()
	return next, nil
}

// RemoveLineItem filters out the line item with the given id and returns
// the updated quote. Removing the last line item demotes the quote back to
// draft. Removing an unknown id is a no-op.
func (q Quote) RemoveLineItem(lineItemID uuid.UUID) Quote {
	kept := make([]QuoteLineItem, 0, len(q.LineItems))
	for _, li := range q.LineItems {
		if li.ID != lineItemID {
			kept = append(kept, li)
		}
	}

	next := q
	next.LineItems = kept
	next.recompute()
	return next
}

// UpdateLineItemQuantity sets a new quantity on one line item, recomputing
// its total, description, and the quote totals. The unit price is held
// constant: there is no live re-pricing on quantity edits.
func (q Quote) UpdateLineItemQuantity(lineItemID uuid.UUID, quantity int) (Quote, error) {
	if quantity <= 0 {
		return Quote{}, ErrInvalidQuantity
	}

	found := false
	items := make([]QuoteLineItem, len(q.LineItems))
	for i, li := range q.LineItems {
		if li.ID == lineItemID {
			li.Quantity = quantity
			li.LineTotal = Round2(li.UnitPrice * float64(quantity))
			li.Description = li.Configuration.Describe(quantity)
			found = true
		}
		items[i] = li
	}
	if !found {
		return Quote{}, ErrLineItemNotFound
	}

	next := q
	next.LineItems = items
	next.recompute()
	return next, nil
}

// MarkSubmitted transitions a ready quote to the terminal submitted state.
func (q Quote) MarkSubmitted() (Quote, error) {
	if q.Status == QuoteStatusSubmitted {
		return Quote{}, ErrQuoteAlreadySubmitted
	}
	if len(q.LineItems) == 0 {
		return Quote{}, ErrEmptyQuote
	}

	next := q
	next.Status = QuoteStatusSubmitted
	next.UpdatedAt = time.Now().UTC()
	return next, nil
}

// recompute rebuilds totals and status from the line item list.
// Called after every mutation so the invariants hold at all times:
// subtotal == Round2(sum of line totals), total == Round2(subtotal + tax).
func (q *Quote) recompute() {
	var sum float64
	for _, li := range q.LineItems {
		sum += li.LineTotal
	}

	subtotal := Round2(sum)
	tax := Round2(subtotal * q.TaxRate)

	q.Totals = QuoteTotals{
		Subtotal:  subtotal,
		Tax:       tax,
		Total:     Round2(subtotal + tax),
		Currency:  q.Totals.Currency,
		LineCount: len(q.LineItems),
	}

	if q.Status != QuoteStatusSubmitted {
		if len(q.LineItems) == 0 {
			q.Status = QuoteStatusDraft
		} else {
			q.Status = QuoteStatusReady
		}
	}
	q.UpdatedAt = time.Now().UTC()
}
