package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	apperrors "github.com/jrsteele09/tenant-dashboard/internal/errors"
	"github.com/rs/zerolog/hlog"
	"google.golang.org/api/googleapi"
)

type errorResponse struct {
	Error string `json:"error"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status and a message safe to show the user.
// Unexpected errors are logged and reported as "internal error".
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		hlog.FromRequest(r).Err(err).Str("path", r.URL.Path).Msg("procedure failed")
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func errorStatus(err error) (int, string) {
	var gerr *googleapi.Error
	switch {
	case errors.Is(err, apperrors.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrInvalidState):
		return http.StatusBadRequest, apperrors.ErrInvalidState.Error()
	case errors.Is(err, apperrors.ErrInvalidTenantDomain):
		return http.StatusUnauthorized, apperrors.ErrInvalidTenantDomain.Error()
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, apperrors.ErrInvalidCredentials.Error()
	case errors.Is(err, apperrors.ErrInvalidSession):
		return http.StatusUnauthorized, apperrors.ErrInvalidSession.Error()
	case apperrors.IsForbidden(err):
		return http.StatusForbidden, forbiddenMessage(err)
	case apperrors.IsNotFound(err):
		return http.StatusNotFound, notFoundMessage(err)
	case errors.Is(err, apperrors.ErrDuplicateDomain):
		return http.StatusConflict, apperrors.ErrDuplicateDomain.Error()
	case errors.Is(err, apperrors.ErrDuplicateClient):
		return http.StatusConflict, apperrors.ErrDuplicateClient.Error()
	case errors.Is(err, apperrors.ErrGoogleNotConnected):
		return http.StatusConflict, apperrors.ErrGoogleNotConnected.Error()
	case errors.Is(err, apperrors.ErrGoogleReauthRequired):
		return http.StatusConflict, apperrors.ErrGoogleReauthRequired.Error()
	case errors.Is(err, apperrors.ErrTokenExchange):
		return http.StatusBadGateway, apperrors.ErrTokenExchange.Error()
	case errors.As(err, &gerr):
		return http.StatusBadGateway, "google API request failed"
	case errors.Is(err, apperrors.ErrGoogleNotConfigured):
		return http.StatusInternalServerError, apperrors.ErrGoogleNotConfigured.Error()
	}
	return http.StatusInternalServerError, apperrors.ErrInternal.Error()
}

func forbiddenMessage(err error) string {
	for _, target := range []error{
		apperrors.ErrConnectGoogleForbidden,
		apperrors.ErrDisconnectGoogleForbidden,
		apperrors.ErrTenantMismatch,
	} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return apperrors.ErrAdminRequired.Error()
}

func notFoundMessage(err error) string {
	for _, target := range []error{
		apperrors.ErrTenantNotFound,
		apperrors.ErrClientNotFound,
		apperrors.ErrSessionNotFound,
	} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return apperrors.ErrMetricNotFound.Error()
}

// decodeRequest reads a JSON body into v. An empty body leaves v unchanged.
func decodeRequest(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "%s must be %s", typeErr.Field, jsonKind(typeErr.Type))
	}
	return apperrors.Wrapf(apperrors.ErrInvalidRequest, "malformed JSON body")
}

func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "a whole number"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Slice, reflect.Array:
		return "an array"
	default:
		return "an object"
	}
}

// sessionToken prefers the token in the body and falls back to the
// Authorization bearer header.
func sessionToken(r *http.Request, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}
