package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastBackoff(t *testing.T) {
	t.Helper()
	old := backoffBase
	backoffBase = time.Millisecond
	t.Cleanup(func() { backoffBase = old })
}

func TestRetryWithBackoff(t *testing.T) {
	fastBackoff(t)
	transient := Retryable(errors.New("database is locked"))
	permanent := errors.New("constraint failed")

	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantErr   error
	}{
		{"success", []error{nil}, 1, nil},
		{"recovers", []error{transient, nil}, 2, nil},
		{"permanent", []error{permanent}, 1, permanent},
		{"exhausted", []error{transient, transient, transient, nil}, 3, transient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(context.Background(), func() error {
				err := tt.errs[calls]
				calls++
				return err
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if !errors.Is(err, tt.wantErr) && err != tt.wantErr {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryWithBackoffCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RetryWithBackoff(ctx, func() error { return Retryable(errors.New("busy")) })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestIsRetryable(t *testing.T) {
	base := errors.New("boom")
	if IsRetryable(base) {
		t.Error("plain error reported retryable")
	}
	wrapped := Retryable(base)
	if !IsRetryable(wrapped) || !errors.Is(wrapped, base) {
		t.Error("Retryable lost its cause")
	}
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) != nil")
	}
}
