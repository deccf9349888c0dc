package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	kerrors "github.com/matzehuels/kintree/pkg/errors"
)

// MaxBodyBytes bounds request bodies read by DecodeJSON.
const MaxBodyBytes = 1 << 20

// ErrorResponse is the body written by WriteError.
type ErrorResponse struct {
	Code    kerrors.Code `json:"code"`
	Message string       `json:"message"`
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// WriteError writes err as an ErrorResponse and returns the status used.
func WriteError(w http.ResponseWriter, err error) int {
	status := StatusFor(err)
	resp := ErrorResponse{Code: kerrors.GetCode(err), Message: kerrors.UserMessage(err)}
	if resp.Code == "" {
		resp.Code = kerrors.ErrCodeInternal
		resp.Message = "internal error"
	}
	_ = WriteJSON(w, status, resp)
	return status
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(err error) int {
	if kerrors.IsValidation(err) {
		return http.StatusBadRequest
	}
	switch kerrors.GetCode(err) {
	case kerrors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case kerrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case kerrors.ErrCodeForbidden:
		return http.StatusForbidden
	case kerrors.ErrCodeNotFound, kerrors.ErrCodeMemberNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// DecodeJSON decodes a single JSON value from the request body into v.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return kerrors.New(kerrors.ErrCodeInvalidInput, "request body is required")
		}
		return kerrors.Wrap(kerrors.ErrCodeInvalidInput, err, "invalid request body")
	}
	if dec.More() {
		return kerrors.New(kerrors.ErrCodeInvalidInput, "request body must contain a single JSON value")
	}
	return nil
}
