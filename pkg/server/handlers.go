package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/kintree/pkg/buildinfo"
	kerrors "github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/graph"
	"github.com/matzehuels/kintree/pkg/httputil"
	"github.com/matzehuels/kintree/pkg/render"
	"github.com/matzehuels/kintree/pkg/session"
)

// positionRequest is the body of PUT /api/members/{id}/position.
type positionRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, struct {
		Status string         `json:"status"`
		Build  buildinfo.Info `json:"build"`
	}{"ok", buildinfo.Current()})
}

func (s *Server) listMembers(w http.ResponseWriter, r *http.Request) {
	ms, err := s.cfg.Service.Members(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if ms == nil {
		ms = []family.Member{}
	}
	httputil.WriteJSON(w, http.StatusOK, ms)
}

func (s *Server) getMember(w http.ResponseWriter, r *http.Request) {
	m, err := s.cfg.Service.Member(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m)
}

func (s *Server) createMember(w http.ResponseWriter, r *http.Request) {
	var m family.Member
	if err := httputil.DecodeJSON(r, &m); err != nil {
		s.fail(w, r, err)
		return
	}
	created, err := s.cfg.Service.CreateMember(r.Context(), m, actor(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.invalidate(r.Context())
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (s *Server) updateMember(w http.ResponseWriter, r *http.Request) {
	var m family.Member
	if err := httputil.DecodeJSON(r, &m); err != nil {
		s.fail(w, r, err)
		return
	}
	m.ID = chi.URLParam(r, "id")
	updated, err := s.cfg.Service.UpdateMember(r.Context(), m, actor(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.invalidate(r.Context())
	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteMember(w http.ResponseWriter, r *http.Request) {
	if err := s.cfg.Service.DeleteMember(r.Context(), chi.URLParam(r, "id"), actor(r)); err != nil {
		s.fail(w, r, err)
		return
	}
	s.invalidate(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) updatePosition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	who := actor(r)

	var req positionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.X == nil || req.Y == nil {
		s.fail(w, r, kerrors.New(kerrors.ErrCodeInvalidPosition, "invalid position coordinates"))
		return
	}
	x, y := *req.X, *req.Y
	if err := kerrors.ValidateMemberID(id); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := kerrors.ValidateActor(who); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := kerrors.ValidateCoordinates(x, y); err != nil {
		s.fail(w, r, err)
		return
	}

	// The drag is applied to the served layout first and reverted if the
	// store rejects it.
	if _, _, err := s.currentLayout(ctx); err != nil {
		s.fail(w, r, err)
		return
	}
	err := s.cfg.Session.Move(ctx, id, x, y, func(ctx context.Context) error {
		return s.cfg.Service.UpdateMemberPosition(ctx, id, x, y, who)
	})
	if errors.Is(err, session.ErrUnknownNode) {
		err = kerrors.Wrap(kerrors.ErrCodeMemberNotFound, err, "family member not found: %s", id)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	n, _ := s.cfg.Session.Layout().Node(id)
	httputil.WriteJSON(w, http.StatusOK, n)
}

func (s *Server) getLayout(w http.ResponseWriter, r *http.Request) {
	l, recomputed, err := s.currentLayout(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("X-Layout-Recomputed", strconv.FormatBool(recomputed))
	httputil.WriteJSON(w, http.StatusOK, l)
}

func (s *Server) getLayoutSVG(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l, recomputed, err := s.currentLayout(ctx)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts := s.cfg.Layout
	opts.Formats = []string{render.FormatSVG}
	opts.Detailed = r.URL.Query().Get("detailed") == "true"
	artifacts, _, err := s.cfg.Runner.Render(ctx, *l, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("X-Layout-Recomputed", strconv.FormatBool(recomputed))
	w.WriteHeader(http.StatusOK)
	w.Write(artifacts[render.FormatSVG])
}

func (s *Server) resetLayout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.cfg.Service.ResetTreeLayout(ctx, actor(r)); err != nil {
		s.fail(w, r, err)
		return
	}
	s.invalidate(ctx)
	l, _, err := s.currentLayout(ctx)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, l)
}

// currentLayout loads the members and returns the session layout,
// recomputing only on material change.
func (s *Server) currentLayout(ctx context.Context) (*graph.Layout, bool, error) {
	ms, err := s.cfg.Service.Members(ctx)
	if err != nil {
		return nil, false, err
	}
	l, recomputed, err := s.cfg.Session.Refresh(ctx, ms)
	if err != nil {
		return nil, false, kerrors.Wrap(kerrors.ErrCodeInternal, err, "failed to compute layout")
	}
	return l, recomputed, nil
}

func (s *Server) invalidate(ctx context.Context) {
	if err := s.cfg.Session.Invalidate(ctx); err != nil {
		s.logger.Warn("failed to invalidate session", "tree", s.cfg.Session.Tree(), "error", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := httputil.WriteError(w, err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
}

func actor(r *http.Request) string {
	return r.Header.Get(ActorHeader)
}
