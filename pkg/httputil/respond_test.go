package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	kerrors "github.com/matzehuels/kintree/pkg/errors"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{kerrors.New(kerrors.ErrCodeInvalidMember, "x"), http.StatusBadRequest},
		{kerrors.New(kerrors.ErrCodeInvalidPosition, "x"), http.StatusBadRequest},
		{kerrors.New(kerrors.ErrCodeUnauthorized, "x"), http.StatusUnauthorized},
		{kerrors.New(kerrors.ErrCodeForbidden, "x"), http.StatusForbidden},
		{kerrors.New(kerrors.ErrCodeMemberNotFound, "x"), http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", kerrors.New(kerrors.ErrCodeNotFound, "x")), http.StatusNotFound},
		{kerrors.New(kerrors.ErrCodeStorage, "x"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode kerrors.Code
		wantMsg  string
	}{
		{"coded", kerrors.New(kerrors.ErrCodeForbidden, "no <access>"), kerrors.ErrCodeForbidden, "no <access>"},
		{"plain", errors.New("dial tcp 10.0.0.1:5432: refused"), kerrors.ErrCodeInternal, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			status := WriteError(rec, tt.err)
			if status != rec.Code {
				t.Errorf("returned %d, wrote %d", status, rec.Code)
			}
			var body ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Code != tt.wantCode || body.Message != tt.wantMsg {
				t.Errorf("body = %+v", body)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type point struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"x":1,"y":2}`, false},
		{"empty", ``, true},
		{"unknown field", `{"x":1,"z":2}`, true},
		{"trailing", `{"x":1}{"y":2}`, true},
		{"wrong type", `{"x":"one"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(tt.body))
			var p point
			err := DecodeJSON(req, &p)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeJSON() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !kerrors.Is(err, kerrors.ErrCodeInvalidInput) {
				t.Errorf("code = %q", kerrors.GetCode(err))
			}
		})
	}
}
