package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
)

const maxRequestBody = 1 << 20

// Envelope — общий формат ответа API.
type Envelope struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

// ToHTTPResponse сопоставляет ошибку со статусом. Текст внутренних ошибок наружу не уходит.
func ToHTTPResponse(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrUnauthenticated):
		return http.StatusUnauthorized, e.ErrUnauthenticated.Error()
	case errors.Is(err, e.ErrUnauthorized):
		return http.StatusForbidden, e.ErrUnauthorized.Error()
	case errors.Is(err, e.ErrConfigurationMissing):
		return http.StatusPreconditionFailed, e.ErrConfigurationMissing.Error()
	case errors.Is(err, e.ErrRunInProgress):
		return http.StatusConflict, e.ErrRunInProgress.Error()
	case errors.Is(err, e.ErrOrderAlreadyFulfilled):
		return http.StatusConflict, e.ErrOrderAlreadyFulfilled.Error()
	case errors.Is(err, e.ErrInvalidRequest),
		errors.Is(err, e.ErrUnknownProvider),
		errors.Is(err, e.ErrUnknownAction):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, e.ErrStatusBadRequest):
		return http.StatusBadRequest, e.ErrStatusBadRequest.Error()
	case errors.Is(err, e.ErrNotFound):
		return http.StatusNotFound, e.ErrNotFound.Error()
	case errors.Is(err, e.ErrTransportFailure), errors.Is(err, e.ErrParseFailure):
		return http.StatusBadGateway, supplierFailureMessage(err)
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

// supplierFailureMessage отдаёт наружу только вид сбоя; цепочка операций и тело ответа поставщика остаются в логе.
func supplierFailureMessage(err error) string {
	var rejection *domain.FulfillmentError
	switch {
	case errors.As(err, &rejection) && rejection.Status != 0:
		return fmt.Sprintf("supplier %s rejected the order with status %d", rejection.Provider, rejection.Status)
	case errors.As(err, &rejection):
		return fmt.Sprintf("supplier %s did not accept the order", rejection.Provider)
	case errors.Is(err, e.ErrParseFailure):
		return e.ErrParseFailure.Error()
	default:
		return e.ErrTransportFailure.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	writeJSON(w, code, Envelope{Success: false, Error: NewErrorResponse(code, msg)})
}

func WriteSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Envelope{Success: true, Data: data})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decodeJSON читает тело запроса в dst. Пустое тело допустимо, если allowEmpty.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return nil
		}
		return e.Invalid("malformed json body: %v", err)
	}
	return nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, e.Invalid("%s must be an integer", name)
	}
	return v, nil
}
