package server

import (
	"encoding/json"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/virtgrid/pkg/buildinfo"
	"github.com/matzehuels/virtgrid/pkg/errors"
	"github.com/matzehuels/virtgrid/pkg/geom"
	pkgio "github.com/matzehuels/virtgrid/pkg/io"
	"github.com/matzehuels/virtgrid/pkg/pipeline"
	"github.com/matzehuels/virtgrid/pkg/scroll"
	"github.com/matzehuels/virtgrid/pkg/session"
	"github.com/matzehuels/virtgrid/pkg/store"
)

// =============================================================================
// Requests and responses
// =============================================================================

type createRequest struct {
	Items      []pkgio.Item  `json:"items"`
	Viewport   geom.Size     `json:"viewport"`
	Scroll     geom.Position `json:"scroll"`
	Overscan   *float64      `json:"overscan,omitempty"`
	BucketSize float64       `json:"bucket_size,omitempty"`
}

type updateRequest struct {
	Viewport *geom.Size     `json:"viewport,omitempty"`
	Scroll   *geom.Position `json:"scroll,omitempty"`
	Overscan *float64       `json:"overscan,omitempty"`
}

type itemsRequest struct {
	Items []pkgio.Item `json:"items"`
}

type scrollRequest struct {
	Key       string           `json:"key"`
	Alignment scroll.Alignment `json:"alignment"`
	Behavior  string           `json:"behavior,omitempty"`
	Padding   float64          `json:"padding,omitempty"`

	// Apply scrolls the session to the target before responding.
	Apply bool `json:"apply,omitempty"`
}

type stateResponse struct {
	Canvas   geom.Size     `json:"canvas"`
	Visible  []string      `json:"visible"`
	Viewport geom.Size     `json:"viewport"`
	Scroll   geom.Position `json:"scroll"`
	Overscan float64       `json:"overscan"`
}

type sessionResponse struct {
	ID         string        `json:"id"`
	LayoutHash string        `json:"layout_hash"`
	CacheHit   bool          `json:"cache_hit,omitempty"`
	State      stateResponse `json:"state"`
}

type updateResponse struct {
	Changed bool          `json:"changed"`
	State   stateResponse `json:"state"`
}

type scrollResponse struct {
	Target scroll.Target  `json:"target"`
	State  *stateResponse `json:"state,omitempty"`
}

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func stateOf(s *session.Store) stateResponse {
	st := s.State()
	v := s.Viewport()
	visible := slices.Clone(st.VisibleKeys)
	slices.Sort(visible)
	if visible == nil {
		visible = []string{}
	}
	return stateResponse{
		Canvas:   st.CanvasSize,
		Visible:  visible,
		Viewport: v.Size,
		Scroll:   v.Scroll,
		Overscan: v.Overscan,
	}
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.sessions.Len()})
}

func (s *Server) version(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !s.decode(w, r, &req) {
		return
	}
	layout := pkgio.Layout{Items: req.Items}
	if err := layout.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	st, result, err := s.runner.Open(r.Context(), layout,
		pipeline.Options{BucketSize: req.BucketSize},
		pipeline.ViewOptions{Viewport: req.Viewport, Scroll: req.Scroll, Overscan: req.Overscan})
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess := s.sessions.Create(st, result.LayoutHash)
	s.logger.Info("session created", "id", sess.ID, "items", result.Stats.Items, "cache_hit", result.CacheHit)

	resp := sessionResponse{ID: sess.ID, LayoutHash: sess.LayoutHash, CacheHit: result.CacheHit}
	_ = sess.Do(func(st *session.Store) error {
		resp.State = stateOf(st)
		return nil
	})
	w.Header().Set("Location", "/sessions/"+sess.ID)
	s.writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	resp := sessionResponse{ID: sess.ID, LayoutHash: sess.LayoutHash}
	_ = sess.Do(func(st *session.Store) error {
		resp.State = stateOf(st)
		return nil
	})
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) updateSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req updateRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Viewport != nil {
		if err := errors.ValidateSize(req.Viewport.Width, req.Viewport.Height); err != nil {
			s.writeError(w, err)
			return
		}
	}
	if req.Overscan != nil {
		if err := errors.ValidateOverscan(*req.Overscan); err != nil {
			s.writeError(w, err)
			return
		}
	}

	var resp updateResponse
	_ = sess.Do(func(st *session.Store) error {
		resp.Changed = st.Set(store.Update[string, geom.Box]{
			ViewportSize:   req.Viewport,
			ScrollPosition: req.Scroll,
			Overscan:       req.Overscan,
		})
		resp.State = stateOf(st)
		return nil
	})
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) replaceItems(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req itemsRequest
	if !s.decode(w, r, &req) {
		return
	}
	layout := pkgio.Layout{Items: req.Items}
	if err := layout.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	var resp updateResponse
	_ = sess.Do(func(st *session.Store) error {
		resp.Changed = st.Set(store.Update[string, geom.Box]{Items: layout.Collection()})
		resp.State = stateOf(st)
		return nil
	})
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) scrollTo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req scrollRequest
	if !s.decode(w, r, &req) {
		return
	}
	behavior, err := scroll.ParseBehavior(req.Behavior)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := errors.ValidateOverscan(req.Padding); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "padding"))
		return
	}

	var resp scrollResponse
	err = sess.Do(func(st *session.Store) error {
		target, err := st.ScrollToItem(req.Key, scroll.Options{
			Alignment: req.Alignment,
			Behavior:  behavior,
			Padding:   req.Padding,
		})
		if err != nil {
			return err
		}
		resp.Target = target
		if req.Apply && !target.IsZero() {
			pos := target.Apply(st.Viewport().Scroll)
			st.Set(store.Update[string, geom.Box]{ScrollPosition: &pos})
			state := stateOf(st)
			resp.State = &state
		}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.Delete(id); err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("session deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
		code, msg = errors.ErrCodeInternal, "internal error"
	}
	s.writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
