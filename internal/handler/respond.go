package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mkessler/panelwerk/internal/domain"
	"github.com/mkessler/panelwerk/internal/erp"
)

// errorResponse is the standard JSON error body.
type errorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// respondError maps domain and ERP errors to HTTP responses. The response
// never carries transport internals; ERP failures surface their classified
// kind and optional details payload only.
func respondError(w http.ResponseWriter, err error) {
	if apiErr, ok := erp.AsAPIError(err); ok {
		respondJSON(w, erpErrorStatus(apiErr), errorResponse{
			Error:   apiErr.Message,
			Code:    apiErr.Kind.String(),
			Details: apiErr.Details,
		})
		return
	}

	respondJSON(w, domainErrorStatus(err), errorResponse{
		Error: domain.ErrorMessage(err),
		Code:  domain.ErrorCode(err),
	})
}

func domainErrorStatus(err error) int {
	switch domain.ErrorCode(err) {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EUNAVAILABLE:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// erpErrorStatus maps a classified upstream failure to the status this API
// answers with. Business rejections (unknown customer/item, bad payload)
// are the caller's problem; everything else is an upstream fault.
func erpErrorStatus(apiErr *erp.APIError) int {
	switch apiErr.Kind {
	case erp.KindBadRequest, erp.KindNotFound:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}
