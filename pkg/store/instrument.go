package store

import (
	"context"
	"time"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/observability"
)

// instrumented reports every call of the wrapped store to the registered
// observability.StoreHooks.
type instrumented struct {
	Store
	driver string
}

// Instrument wraps s so that each operation is reported under driver.
func Instrument(s Store, driver string) Store {
	return &instrumented{Store: s, driver: driver}
}

// Unwrap returns the underlying store.
func (s *instrumented) Unwrap() Store { return s.Store }

func (s *instrumented) observe(ctx context.Context, op string, start time.Time, err error) error {
	observability.Store().OnStoreOperation(ctx, s.driver, op, time.Since(start), err)
	return err
}

func (s *instrumented) List(ctx context.Context) ([]family.Member, error) {
	start := time.Now()
	ms, err := s.Store.List(ctx)
	return ms, s.observe(ctx, "list", start, err)
}

func (s *instrumented) Get(ctx context.Context, id string) (family.Member, error) {
	start := time.Now()
	m, err := s.Store.Get(ctx, id)
	return m, s.observe(ctx, "get", start, err)
}

func (s *instrumented) Create(ctx context.Context, m family.Member) (family.Member, error) {
	start := time.Now()
	created, err := s.Store.Create(ctx, m)
	return created, s.observe(ctx, "create", start, err)
}

func (s *instrumented) Update(ctx context.Context, m family.Member) error {
	start := time.Now()
	return s.observe(ctx, "update", start, s.Store.Update(ctx, m))
}

func (s *instrumented) Delete(ctx context.Context, id string) error {
	start := time.Now()
	return s.observe(ctx, "delete", start, s.Store.Delete(ctx, id))
}

func (s *instrumented) SetPosition(ctx context.Context, id string, x, y float64) error {
	start := time.Now()
	return s.observe(ctx, "set_position", start, s.Store.SetPosition(ctx, id, x, y))
}

func (s *instrumented) ClearPositions(ctx context.Context) error {
	start := time.Now()
	return s.observe(ctx, "clear_positions", start, s.Store.ClearPositions(ctx))
}
