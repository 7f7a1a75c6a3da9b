package erp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, serverURL string, mutate func(cfg *Config)) *Client {
	t.Helper()

	cfg := Config{
		BaseURL:     serverURL,
		CompanyID:   "11111111-2222-3333-4444-555555555555",
		AccessToken: "test-token",
	}
	if mutate != nil {
		mutate(&cfg)
	}

	client, err := NewClient(cfg)
	require.NoError(t, err)
	return client
}

func Test_NewClient_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing base URL", Config{CompanyID: "c", AccessToken: "t"}},
		{"missing company ID", Config{BaseURL: "https://erp.example.com", AccessToken: "t"}},
		{"missing credential", Config{BaseURL: "https://erp.example.com", CompanyID: "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.cfg)
			assert.Error(t, err)
		})
	}
}

func Test_NewClient_APIKeyIsAcceptedCredential(t *testing.T) {
	_, err := NewClient(Config{
		BaseURL:   "https://erp.example.com",
		CompanyID: "c",
		APIKey:    "key",
	})
	assert.NoError(t, err)
}

func Test_Client_RequestShape(t *testing.T) {
	var gotPath, gotAuth, gotAccept, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"value":[]}`))
	}))
	defer server.Close()

	client := testClient(t, server.URL, nil)

	var out itemList
	err := client.Get(context.Background(), "/items", nil, &out)
	require.NoError(t, err)

	assert.Equal(t, "/api/v2.0/companies(11111111-2222-3333-4444-555555555555)/items", gotPath)
	assert.Empty(t, gotQuery)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "application/json", gotAccept)
}

func Test_Client_RetriesServerErrorsUpToBudget(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := testClient(t, server.URL, nil)

	start := time.Now()
	err := client.Get(context.Background(), "/items", nil, nil)
	elapsed := time.Since(start)

	require.Error(t, err)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, KindServerError, apiErr.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)

	assert.Equal(t, int32(3), attempts.Load(), "default budget is three attempts total")
	// Backoff after attempt 1 is 200ms, after attempt 2 is 400ms.
	assert.GreaterOrEqual(t, elapsed, 600*time.Millisecond)
}

func Test_Client_DoesNotRetryNonRetryableFailures(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound} {
		var attempts atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts.Add(1)
			w.WriteHeader(status)
		}))

		client := testClient(t, server.URL, nil)
		err := client.Get(context.Background(), "/items", nil, nil)
		server.Close()

		require.Error(t, err, "status %d", status)
		assert.Equal(t, int32(1), attempts.Load(), "status %d must not be retried", status)
	}
}

func Test_Client_SucceedsAfterTransientFailure(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"id": "abc"})
	}))
	defer server.Close()

	client := testClient(t, server.URL, nil)

	var out struct {
		ID string `json:"id"`
	}
	err := client.Get(context.Background(), "/items(abc)", nil, &out)

	require.NoError(t, err)
	assert.Equal(t, "abc", out.ID)
	assert.Equal(t, int32(3), attempts.Load())
}

func Test_Client_DisableRetries(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testClient(t, server.URL, func(cfg *Config) {
		cfg.DisableRetries = true
	})

	err := client.Get(context.Background(), "/items", nil, nil)

	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load())
}

func Test_Client_EmptySuccessBodyYieldsEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := testClient(t, server.URL, nil)

	var out itemList
	err := client.Get(context.Background(), "/items", nil, &out)

	require.NoError(t, err)
	assert.Empty(t, out.Value)
}

func Test_Client_NonJSONSuccessBodyYieldsEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("OK"))
	}))
	defer server.Close()

	client := testClient(t, server.URL, nil)

	var out itemList
	err := client.Get(context.Background(), "/items", nil, &out)

	require.NoError(t, err)
	assert.Empty(t, out.Value)
}

func Test_Client_PostSendsJSONBody(t *testing.T) {
	var gotContentType string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"q-1"}`))
	}))
	defer server.Close()

	client := testClient(t, server.URL, nil)

	var out struct {
		ID string `json:"id"`
	}
	err := client.Post(context.Background(), "/salesQuotes", map[string]string{"customerNumber": "C-1"}, &out)

	require.NoError(t, err)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "C-1", gotBody["customerNumber"])
	assert.Equal(t, "q-1", out.ID)
}

func Test_Client_TimeoutIsClassified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := testClient(t, server.URL, func(cfg *Config) {
		cfg.Timeout = 50 * time.Millisecond
		cfg.DisableRetries = true
	})

	err := client.Get(context.Background(), "/items", nil, nil)

	require.Error(t, err)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, KindTimeout, apiErr.Kind)
	assert.Equal(t, 0, apiErr.StatusCode)
}

func Test_Client_ConnectionFailureIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	client := testClient(t, serverURL, func(cfg *Config) {
		cfg.DisableRetries = true
	})

	err := client.Get(context.Background(), "/items", nil, nil)

	require.Error(t, err)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, KindNetworkError, apiErr.Kind)
}

func Test_Client_QueryIsEncoded(t *testing.T) {
	var gotFilter string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFilter = r.URL.Query().Get("$filter")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"value":[]}`))
	}))
	defer server.Close()

	client := testClient(t, server.URL, nil)

	query := map[string][]string{"$filter": {"number eq 'PLT-18'"}}
	var out itemList
	err := client.Get(context.Background(), "/items", query, &out)

	require.NoError(t, err)
	assert.Equal(t, "number eq 'PLT-18'", gotFilter)
}
