package erp

import (
	"context"
	"fmt"

	"github.com/mkessler/panelwerk/internal/domain"
)

// PriceQuery identifies the item and context a price is requested for.
// Attributes is a typed map of optional pricing dimensions; the documented
// key set is "surface_structure" and "edge_processing". Unknown keys are
// passed through untouched.
type PriceQuery struct {
	ItemNumber     string
	Quantity       int
	CustomerNumber string
	VariantCode    string
	Attributes     map[string]string
}

// PriceService resolves prices from the ERP item catalog.
type PriceService struct {
	items    *ItemService
	currency string
}

// NewPriceService creates a price lookup service. Prices are quoted in the
// given currency, which must match the company's local currency in the ERP.
func NewPriceService(items *ItemService, currency string) *PriceService {
	return &PriceService{items: items, currency: currency}
}

// GetPrice fetches the item's base unit price and extends it by quantity.
// Unlike a browse lookup, a missing item is an error here: pricing requires
// a known item.
func (s *PriceService) GetPrice(ctx context.Context, q PriceQuery) (*domain.PriceResult, error) {
	if q.Quantity <= 0 {
		return nil, &APIError{
			Kind:    KindBadRequest,
			Message: "price lookup requires a positive quantity",
		}
	}

	item, found, err := s.items.FindByNumber(ctx, q.ItemNumber)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &APIError{
			Kind:    KindNotFound,
			Message: fmt.Sprintf("item %q not found: pricing requires a known item", q.ItemNumber),
		}
	}

	unitPrice := domain.Round2(item.UnitPrice)
	return &domain.PriceResult{
		UnitPrice:  unitPrice,
		TotalPrice: domain.Round2(unitPrice * float64(q.Quantity)),
		Currency:   s.currency,
		ItemNumber: item.Number,
		Quantity:   q.Quantity,
	}, nil
}
