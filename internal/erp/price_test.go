package erp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func priceServer(t *testing.T, handler http.HandlerFunc) (*PriceService, func()) {
	t.Helper()
	server := httptest.NewServer(handler)
	client := testClient(t, server.URL, nil)
	return NewPriceService(NewItemService(client), "EUR"), server.Close
}

func Test_PriceService_GetPrice(t *testing.T) {
	svc, done := priceServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"value":[{"id":"a1","number":"PLT-18","unitPrice":83.0}]}`))
	})
	defer done()

	result, err := svc.GetPrice(context.Background(), PriceQuery{
		ItemNumber: "PLT-18",
		Quantity:   5,
	})

	require.NoError(t, err)
	assert.Equal(t, 83.00, result.UnitPrice)
	assert.Equal(t, 415.00, result.TotalPrice)
	assert.Equal(t, "EUR", result.Currency)
	assert.Equal(t, "PLT-18", result.ItemNumber)
	assert.Equal(t, 5, result.Quantity)
}

func Test_PriceService_GetPrice_RoundsMoney(t *testing.T) {
	svc, done := priceServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"value":[{"id":"a1","number":"PLT-18","unitPrice":33.333}]}`))
	})
	defer done()

	result, err := svc.GetPrice(context.Background(), PriceQuery{ItemNumber: "PLT-18", Quantity: 3})

	require.NoError(t, err)
	assert.Equal(t, 33.33, result.UnitPrice)
	assert.Equal(t, 99.99, result.TotalPrice, "total extends the rounded unit price")
}

func Test_PriceService_GetPrice_UnknownItemIsNotFound(t *testing.T) {
	svc, done := priceServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"value":[]}`))
	})
	defer done()

	_, err := svc.GetPrice(context.Background(), PriceQuery{ItemNumber: "NOPE", Quantity: 1})

	require.Error(t, err)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, KindNotFound, apiErr.Kind, "pricing requires a known item, absence becomes an error here")
	assert.Contains(t, apiErr.Message, "NOPE")
}

func Test_PriceService_GetPrice_RequiresPositiveQuantity(t *testing.T) {
	svc := NewPriceService(nil, "EUR")

	for _, qty := range []int{0, -1} {
		_, err := svc.GetPrice(context.Background(), PriceQuery{ItemNumber: "PLT-18", Quantity: qty})

		require.Error(t, err)
		apiErr, ok := AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, KindBadRequest, apiErr.Kind)
	}
}
