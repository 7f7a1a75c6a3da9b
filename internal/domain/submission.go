package domain

// SubmissionContract is the currency-neutral shape a quote is reduced to
// before being mapped to a specific external system's payload. The
// indirection lets the external schema change without touching the quote
// aggregate.
type SubmissionContract struct {
	CustomerID string           `json:"customerId"`
	Currency   string           `json:"currency"`
	Lines      []SubmissionLine `json:"lines"`
	Subtotal   float64          `json:"subtotal"`
	Tax        float64          `json:"tax"`
	Total      float64          `json:"total"`
}

// SubmissionLine is one quote line in submission shape. LineNumber is
// 1-based and assigned in quote order.
type SubmissionLine struct {
	LineNumber  int     `json:"lineNumber"`
	ItemNumber  string  `json:"itemNumber"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	LineAmount  float64 `json:"lineAmount"`
	Currency    string  `json:"currency"`
}

// PrepareForSubmission reduces the quote to a submission contract for the
// given customer. Fails on an empty quote and on a quote that has already
// been submitted; re-submission is not supported. Monetary fields are
// copied as-is, they were rounded when the lines were built.
func (q Quote) PrepareForSubmission(customerID string) (SubmissionContract, error) {
	if q.Status == QuoteStatusSubmitted {
		return SubmissionContract{}, ErrQuoteAlreadySubmitted
	}
	if len(q.LineItems) == 0 {
		return SubmissionContract{}, ErrEmptyQuote
	}

	lines := make([]SubmissionLine, len(q.LineItems))
	for i, li := range q.LineItems {
		lines[i] = SubmissionLine{
			LineNumber:  i + 1,
			ItemNumber:  li.ProductID,
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			LineAmount:  li.LineTotal,
			Currency:    li.Currency,
		}
	}

	return SubmissionContract{
		CustomerID: customerID,
		Currency:   q.Currency(),
		Lines:      lines,
		Subtotal:   q.Totals.Subtotal,
		Tax:        q.Totals.Tax,
		Total:      q.Totals.Total,
	}, nil
}
