package erp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind classifies an API failure into a closed set. Every failure on the
// submission path, HTTP or transport level, is reduced to one of these so
// callers never branch on raw transport errors. Keep the set in sync with
// Kind.String and Kind.Retryable.
type Kind int

const (
	KindUnknown Kind = iota
	KindAuthenticationFailed
	KindAuthorizationFailed
	KindNotFound
	KindBadRequest
	KindRateLimitExceeded
	KindServerError
	KindNetworkError
	KindTimeout
)

// String returns the stable wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindAuthenticationFailed:
		return "authentication_failed"
	case KindAuthorizationFailed:
		return "authorization_failed"
	case KindNotFound:
		return "not_found"
	case KindBadRequest:
		return "bad_request"
	case KindRateLimitExceeded:
		return "rate_limit_exceeded"
	case KindServerError:
		return "server_error"
	case KindNetworkError:
		return "network_error"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Retryable reports whether automatic re-attempt is permitted for the kind.
// True exactly for network errors, timeouts, server errors, and rate limits.
func (k Kind) Retryable() bool {
	switch k {
	case KindNetworkError, KindTimeout, KindServerError, KindRateLimitExceeded:
		return true
	}
	return false
}

// APIError is the uniform error surfaced by the client and the services
// built on it. StatusCode is zero when the failure happened before an HTTP
// response existed. Details carries the parsed response body when one was
// available; nothing else from the transport leaks to callers.
type APIError struct {
	Kind       Kind
	StatusCode int
	Message    string
	Details    map[string]any
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("erp: %s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("erp: %s: %s", e.Kind, e.Message)
}

// AsAPIError extracts an *APIError from err, if present.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// classifyStatus maps an HTTP status code to an error kind.
func classifyStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuthenticationFailed
	case status == http.StatusForbidden:
		return KindAuthorizationFailed
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusBadRequest:
		return KindBadRequest
	case status == http.StatusTooManyRequests:
		return KindRateLimitExceeded
	case status >= 500:
		return KindServerError
	default:
		return KindUnknown
	}
}

// ClassifyResponse builds an APIError from a non-2xx HTTP response. The
// body is attached as parsed details when it is JSON; otherwise its text
// becomes the message.
func ClassifyResponse(status int, body []byte) *APIError {
	apiErr := &APIError{
		Kind:       classifyStatus(status),
		StatusCode: status,
		Message:    http.StatusText(status),
	}

	if len(body) == 0 {
		return apiErr
	}

	var details map[string]any
	if err := json.Unmarshal(body, &details); err == nil {
		apiErr.Details = details
		if msg := errorMessageFromBody(details); msg != "" {
			apiErr.Message = msg
		}
		return apiErr
	}

	apiErr.Message = string(body)
	return apiErr
}

// ClassifyTransport builds an APIError from a transport-level failure:
// deadline expiry becomes a timeout, everything else a network error.
func ClassifyTransport(err error) *APIError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &APIError{Kind: KindTimeout, Message: "request deadline exceeded"}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &APIError{Kind: KindTimeout, Message: "request deadline exceeded"}
	}

	return &APIError{Kind: KindNetworkError, Message: err.Error()}
}

// errorMessageFromBody digs the human-readable message out of the ERP's
// OData error envelope: {"error": {"code": ..., "message": ...}}.
func errorMessageFromBody(details map[string]any) string {
	inner, ok := details["error"].(map[string]any)
	if !ok {
		return ""
	}
	msg, _ := inner["message"].(string)
	return msg
}
