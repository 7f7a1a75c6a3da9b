package erp

import (
	"context"
	"fmt"

	"github.com/mkessler/panelwerk/internal/domain"
)

// salesQuoteLine is the ERP's sales quote line shape.
type salesQuoteLine struct {
	LineNumber   int     `json:"lineNumber"`
	ItemNumber   string  `json:"itemNumber"`
	Description  string  `json:"description"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unitPrice"`
	LineAmount   float64 `json:"lineAmount"`
	CurrencyCode string  `json:"currencyCode"`
}

// salesQuoteRequest is the POST /salesQuotes payload.
type salesQuoteRequest struct {
	CustomerNumber  string           `json:"customerNumber"`
	CurrencyCode    string           `json:"currencyCode"`
	SalesQuoteLines []salesQuoteLine `json:"salesQuoteLines"`
}

// CreatedQuote is the ERP's view of a submitted sales quote.
type CreatedQuote struct {
	ID             string `json:"id"`
	Number         string `json:"number"`
	Status         string `json:"status"`
	CustomerNumber string `json:"customerNumber"`
	CurrencyCode   string `json:"currencyCode"`
	CreatedAt      string `json:"createdDateTime"`
}

// QuoteService submits sales quotes to the ERP.
type QuoteService struct {
	client *Client
}

// NewQuoteService creates a sales quote submission service.
func NewQuoteService(client *Client) *QuoteService {
	return &QuoteService{client: client}
}

// Submit maps a submission contract to the ERP's sales quote shape and
// posts it. Line numbering and monetary fields are copied 1:1 from the
// contract; the contract lines are already rounded and 1-based.
//
// Rejections that reflect business state rather than transport problems
// (unknown customer or item, malformed payload) come back re-wrapped with a
// business-meaningful message instead of raw ERP detail.
func (s *QuoteService) Submit(ctx context.Context, contract domain.SubmissionContract) (*CreatedQuote, error) {
	lines := make([]salesQuoteLine, len(contract.Lines))
	for i, l := range contract.Lines {
		lines[i] = salesQuoteLine{
			LineNumber:   l.LineNumber,
			ItemNumber:   l.ItemNumber,
			Description:  l.Description,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			LineAmount:   l.LineAmount,
			CurrencyCode: l.Currency,
		}
	}

	payload := salesQuoteRequest{
		CustomerNumber:  contract.CustomerID,
		CurrencyCode:    contract.Currency,
		SalesQuoteLines: lines,
	}

	var created CreatedQuote
	if err := s.client.Post(ctx, "/salesQuotes", payload, &created); err != nil {
		if apiErr, ok := AsAPIError(err); ok {
			switch apiErr.Kind {
			case KindNotFound:
				return nil, &APIError{
					Kind:       KindNotFound,
					StatusCode: apiErr.StatusCode,
					Message:    fmt.Sprintf("customer %q or a quoted item is not known to the ERP", contract.CustomerID),
					Details:    apiErr.Details,
				}
			case KindBadRequest:
				return nil, &APIError{
					Kind:       KindBadRequest,
					StatusCode: apiErr.StatusCode,
					Message:    "the ERP rejected the sales quote: customer or product not found, or the payload is invalid",
					Details:    apiErr.Details,
				}
			}
		}
		return nil, err
	}

	return &created, nil
}
