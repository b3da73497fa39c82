// Package httputil centralizes JSON encoding and error translation so every
// handler returns the same envelope.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"meldeflow/pkg/apperrors"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the wire envelope for failures. error_description is omitted
// for internal errors so implementation details never leak to callers.
type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteError translates a domain error into the JSON error envelope.
func WriteError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	body := errorBody{Error: string(code)}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) && code != apperrors.CodeInternal {
		body.ErrorDescription = appErr.Message
	}
	WriteJSON(w, apperrors.HTTPStatus(code), body)
}

// Decode unmarshals the request body into T, reporting a bad_request error to
// the client on failure. The bool result tells the handler whether to proceed.
func Decode[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		WriteError(w, apperrors.New(apperrors.CodeBadRequest, "invalid JSON body"))
		return v, false
	}
	return v, true
}
