package erp

import (
	"context"
	"fmt"
	"net/url"
)

// Item is a sellable product as exposed by the ERP items endpoint.
type Item struct {
	ID          string  `json:"id"`
	Number      string  `json:"number"`
	DisplayName string  `json:"displayName"`
	Type        string  `json:"type"`
	Blocked     bool    `json:"blocked"`
	UnitPrice   float64 `json:"unitPrice"`
}

type itemList struct {
	Value []Item `json:"value"`
}

// ItemService looks up products in the ERP.
type ItemService struct {
	client *Client
}

// NewItemService creates an item lookup service over the given client.
func NewItemService(client *Client) *ItemService {
	return &ItemService{client: client}
}

// List returns all items.
func (s *ItemService) List(ctx context.Context) ([]Item, error) {
	var list itemList
	if err := s.client.Get(ctx, "/items", nil, &list); err != nil {
		return nil, err
	}
	return list.Value, nil
}

// FindByNumber looks up a single item by its item number. The filter is
// applied server-side. Absence is an expected outcome for a lookup, so a
// missing item is reported through the bool, not an error.
func (s *ItemService) FindByNumber(ctx context.Context, number string) (*Item, bool, error) {
	query := url.Values{}
	query.Set("$filter", fmt.Sprintf("number eq '%s'", escapeODataString(number)))

	var list itemList
	if err := s.client.Get(ctx, "/items", query, &list); err != nil {
		if apiErr, ok := AsAPIError(err); ok && apiErr.Kind == KindNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	if len(list.Value) == 0 {
		return nil, false, nil
	}

	item := list.Value[0]
	return &item, true, nil
}

// FindByID looks up a single item by its ERP id, with the same
// absence-as-value handling as FindByNumber.
func (s *ItemService) FindByID(ctx context.Context, id string) (*Item, bool, error) {
	var item Item
	if err := s.client.Get(ctx, fmt.Sprintf("/items(%s)", id), nil, &item); err != nil {
		if apiErr, ok := AsAPIError(err); ok && apiErr.Kind == KindNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &item, true, nil
}

// escapeODataString doubles single quotes for use inside an OData string
// literal.
func escapeODataString(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '\'' {
			out = append(out, '\'')
		}
		out = append(out, r)
	}
	return string(out)
}
