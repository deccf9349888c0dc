package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/graph"
	"github.com/matzehuels/kintree/pkg/httputil"
	"github.com/matzehuels/kintree/pkg/observability"
	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/session"
	"github.com/matzehuels/kintree/pkg/store"
)

func seed() []family.Member {
	return []family.Member{
		{ID: "a", Name: "Arthur", AddedBy: "alice"},
		{ID: "b", Name: "Beatrice", SpouseID: "a", AddedBy: "alice"},
		{ID: "c", Name: "Carl", ParentID: "a", Parent2ID: "b", AddedBy: "alice"},
	}
}

type fixture struct {
	srv     *httptest.Server
	store   store.Store
	session *session.Session
}

func newFixture(t *testing.T, s store.Store, metrics *observability.Metrics) *fixture {
	t.Helper()
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(nil, nil, logger)
	sess, err := session.Open(context.Background(), session.NewMemoryStore(), "test", runner.LayoutFunc(pipeline.Options{}))
	if err != nil {
		t.Fatalf("session.Open: %v", err)
	}
	api := New(Config{
		Service: store.NewService(s, logger),
		Runner:  runner,
		Session: sess,
		Metrics: metrics,
		Logger:  logger,
	})
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, store: s, session: sess}
}

func (f *fixture) do(t *testing.T, method, path, actor, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, r)
	if err != nil {
		t.Fatal(err)
	}
	if actor != "" {
		req.Header.Set(ActorHeader, actor)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func wantStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, want %d (body %s)", resp.StatusCode, want, bytes.TrimSpace(body))
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(), nil)
	resp := f.do(t, http.MethodGet, "/healthz", "", "")
	wantStatus(t, resp, http.StatusOK)
}

func TestListMembers(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(seed()...), nil)
	resp := f.do(t, http.MethodGet, "/api/members", "", "")
	wantStatus(t, resp, http.StatusOK)

	ms := decode[[]family.Member](t, resp)
	if len(ms) != 3 {
		t.Fatalf("got %d members, want 3", len(ms))
	}
	if ms[0].Name != "Arthur" || ms[2].Name != "Carl" {
		t.Errorf("members not sorted by name: %v, %v", ms[0].Name, ms[2].Name)
	}
}

func TestListMembersEmpty(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(), nil)
	resp := f.do(t, http.MethodGet, "/api/members", "", "")
	wantStatus(t, resp, http.StatusOK)
	body, _ := io.ReadAll(resp.Body)
	if got := string(bytes.TrimSpace(body)); got != "[]" {
		t.Errorf("body = %s, want []", got)
	}
}

func TestGetLayoutRecomputesOnlyOnChange(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(seed()...), nil)

	resp := f.do(t, http.MethodGet, "/api/layout", "", "")
	wantStatus(t, resp, http.StatusOK)
	if got := resp.Header.Get("X-Layout-Recomputed"); got != "true" {
		t.Errorf("first request recomputed = %q, want true", got)
	}
	l := decode[graph.Layout](t, resp)
	if l.MemberCount() != 3 {
		t.Errorf("MemberCount = %d, want 3", l.MemberCount())
	}

	resp = f.do(t, http.MethodGet, "/api/layout", "", "")
	if got := resp.Header.Get("X-Layout-Recomputed"); got != "false" {
		t.Errorf("second request recomputed = %q, want false", got)
	}

	resp = f.do(t, http.MethodPost, "/api/members", "alice", `{"name":"Dora","parent_id":"c"}`)
	wantStatus(t, resp, http.StatusCreated)

	resp = f.do(t, http.MethodGet, "/api/layout", "", "")
	if got := resp.Header.Get("X-Layout-Recomputed"); got != "true" {
		t.Errorf("after create recomputed = %q, want true", got)
	}
	if l := decode[graph.Layout](t, resp); l.MemberCount() != 4 {
		t.Errorf("MemberCount = %d, want 4", l.MemberCount())
	}
}

func TestUpdatePosition(t *testing.T) {
	s := store.NewMemoryStore(seed()...)
	f := newFixture(t, s, nil)

	// Any actor may move any member.
	resp := f.do(t, http.MethodPut, "/api/members/c/position", "bob", `{"x":10,"y":20}`)
	wantStatus(t, resp, http.StatusOK)
	n := decode[graph.Node](t, resp)
	if n.ID != "c" || n.X != 10 || n.Y != 20 || !n.Custom {
		t.Errorf("node = %+v, want c at (10,20) custom", n)
	}

	m, err := s.Get(context.Background(), "c")
	if err != nil {
		t.Fatal(err)
	}
	if !m.HasCustomPosition() || *m.PositionX != 10 || *m.PositionY != 20 {
		t.Errorf("stored member = %+v, want custom (10,20)", m)
	}

	resp = f.do(t, http.MethodGet, "/api/layout", "", "")
	if got := resp.Header.Get("X-Layout-Recomputed"); got != "false" {
		t.Errorf("recomputed after move = %q, want false", got)
	}
	l := decode[graph.Layout](t, resp)
	got, _ := l.Node("c")
	if got.X != 10 || got.Y != 20 {
		t.Errorf("served node = (%v,%v), want (10,20)", got.X, got.Y)
	}
}

func TestUpdatePositionErrors(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		actor  string
		body   string
		status int
		code   string
	}{
		{"no actor", "c", "", `{"x":1,"y":2}`, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"missing y", "c", "bob", `{"x":1}`, http.StatusBadRequest, "INVALID_POSITION"},
		{"empty body", "c", "bob", "", http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown field", "c", "bob", `{"x":1,"y":2,"z":3}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown member", "zz", "bob", `{"x":1,"y":2}`, http.StatusNotFound, "MEMBER_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, store.NewMemoryStore(seed()...), nil)
			resp := f.do(t, http.MethodPut, "/api/members/"+tt.id+"/position", tt.actor, tt.body)
			wantStatus(t, resp, tt.status)
			er := decode[httputil.ErrorResponse](t, resp)
			if string(er.Code) != tt.code {
				t.Errorf("code = %s, want %s", er.Code, tt.code)
			}
		})
	}
}

type failingPositions struct {
	*store.MemoryStore
}

func (failingPositions) SetPosition(context.Context, string, float64, float64) error {
	return errors.New("disk on fire")
}

func TestUpdatePositionRevertsOnStoreFailure(t *testing.T) {
	f := newFixture(t, failingPositions{store.NewMemoryStore(seed()...)}, nil)

	resp := f.do(t, http.MethodGet, "/api/layout", "", "")
	before := decode[graph.Layout](t, resp)
	orig, _ := before.Node("c")

	resp = f.do(t, http.MethodPut, "/api/members/c/position", "bob", `{"x":999,"y":999}`)
	wantStatus(t, resp, http.StatusInternalServerError)

	resp = f.do(t, http.MethodGet, "/api/layout", "", "")
	after := decode[graph.Layout](t, resp)
	got, _ := after.Node("c")
	if got != orig {
		t.Errorf("node after failed move = %+v, want %+v", got, orig)
	}
}

func TestMemberOwnership(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(seed()...), nil)

	resp := f.do(t, http.MethodPut, "/api/members/c", "mallory", `{"name":"Karl"}`)
	wantStatus(t, resp, http.StatusForbidden)

	resp = f.do(t, http.MethodDelete, "/api/members/c", "mallory", "")
	wantStatus(t, resp, http.StatusForbidden)

	resp = f.do(t, http.MethodPut, "/api/members/c", "alice", `{"name":"Karl","parent_id":"a"}`)
	wantStatus(t, resp, http.StatusOK)
	if m := decode[family.Member](t, resp); m.Name != "Karl" || m.ID != "c" {
		t.Errorf("updated = %+v", m)
	}

	resp = f.do(t, http.MethodDelete, "/api/members/c", "alice", "")
	wantStatus(t, resp, http.StatusNoContent)

	resp = f.do(t, http.MethodGet, "/api/members/c", "", "")
	wantStatus(t, resp, http.StatusNotFound)
}

func TestCreateMemberValidation(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(seed()...), nil)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"missing name", `{"birth_date":"1950-01-01"}`, http.StatusBadRequest},
		{"unknown parent", `{"name":"Eve","parent_id":"nobody"}`, http.StatusBadRequest},
		{"ok", `{"name":"Eve","spouse_id":"c"}`, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.do(t, http.MethodPost, "/api/members", "alice", tt.body)
			wantStatus(t, resp, tt.status)
		})
	}
}

func TestResetLayout(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(seed()...), nil)

	resp := f.do(t, http.MethodPut, "/api/members/a/position", "bob", `{"x":-500,"y":40}`)
	wantStatus(t, resp, http.StatusOK)

	resp = f.do(t, http.MethodPost, "/api/layout/reset", "", "")
	wantStatus(t, resp, http.StatusUnauthorized)

	resp = f.do(t, http.MethodPost, "/api/layout/reset", "bob", "")
	wantStatus(t, resp, http.StatusOK)
	l := decode[graph.Layout](t, resp)
	for _, n := range l.Nodes {
		if n.Custom {
			t.Errorf("node %s still custom after reset", n.ID)
		}
	}
	ms, _ := f.store.List(context.Background())
	for _, m := range ms {
		if m.PositionX != nil || m.CustomPosition {
			t.Errorf("member %s kept its position", m.ID)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	m := observability.NewMetrics("kintree")
	observability.Register(m)
	t.Cleanup(observability.Reset)

	f := newFixture(t, store.NewMemoryStore(seed()...), m)
	f.do(t, http.MethodGet, "/api/members/a", "", "")

	resp := f.do(t, http.MethodGet, "/metrics", "", "")
	wantStatus(t, resp, http.StatusOK)
	body, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(body, []byte(`kintree_http_requests_total{method="GET",route="/api/members/{id}",status="200"}`)) {
		t.Errorf("metrics missing request counter:\n%s", body)
	}
}

func TestLayoutSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering is slow")
	}
	f := newFixture(t, store.NewMemoryStore(seed()...), nil)
	resp := f.do(t, http.MethodGet, "/api/layout.svg", "", "")
	wantStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(body, []byte("<svg")) {
		t.Errorf("body is not SVG")
	}
}
