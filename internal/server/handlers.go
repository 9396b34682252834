package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/topoview/pkg/buildinfo"
	"github.com/matzehuels/topoview/pkg/diagram"
	"github.com/matzehuels/topoview/pkg/errors"
	"github.com/matzehuels/topoview/pkg/httputil"
	"github.com/matzehuels/topoview/pkg/pipeline"
	"github.com/matzehuels/topoview/pkg/projection"
	"github.com/matzehuels/topoview/pkg/render"
	"github.com/matzehuels/topoview/pkg/scene"
	"github.com/matzehuels/topoview/pkg/session"
	"github.com/matzehuels/topoview/pkg/visual"
)

// =============================================================================
// Wire types
// =============================================================================

type createRequest struct {
	VMID      string         `json:"vm_id,omitempty"`
	Request   *scene.Request `json:"request,omitempty"`
	Mode      string         `json:"mode,omitempty"`
	Direction string         `json:"direction,omitempty"`
}

type sessionResponse struct {
	ID        string       `json:"id"`
	ExpiresAt time.Time    `json:"expires_at"`
	View      diagram.View `json:"view"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type directionRequest struct {
	Direction string `json:"direction"`
}

type filterRequest struct {
	Text string `json:"text"`
}

type lockRequest struct {
	Locked bool `json:"locked"`
}

type selectRequest struct {
	NodeID string `json:"node_id"`
}

type selectResponse struct {
	Node *visual.Node `json:"node"`
}

type positionRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// =============================================================================
// Session context
// =============================================================================

type ctxKey struct{}

func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.opts.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
	})
}

func sessionFrom(r *http.Request) *session.Session {
	return r.Context().Value(ctxKey{}).(*session.Session)
}

func (s *Server) writeView(w http.ResponseWriter, status int, sess *session.Session) {
	httputil.WriteJSON(w, status, sessionResponse{
		ID:        sess.ID,
		ExpiresAt: sess.ExpiresAt,
		View:      sess.Diagram.View(),
	})
}

// writeLoadError reports a failed load. Retrieval failures leave the
// session in the error state and are reported through the view, so only
// stale loads and cancelled requests reach the client as errors.
func (s *Server) writeLoadError(w http.ResponseWriter, err error) {
	if stderrors.Is(err, diagram.ErrStale) {
		httputil.WriteError(w, errors.Wrap(errors.ErrCodeInvalidState, err, "load superseded"))
		return
	}
	httputil.WriteError(w, err)
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: buildinfo.Version})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var body createRequest
	if err := httputil.DecodeJSON(r.Body, &body); err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req scene.Request
	switch {
	case body.Request != nil:
		req = *body.Request
	case body.VMID != "":
		req = s.opts.NewRequest(body.VMID)
	default:
		httputil.WriteError(w, errors.New(errors.ErrCodeInvalidInput, "vm_id or request is required"))
		return
	}
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	mode := s.opts.Mode
	if body.Mode != "" {
		m, err := projection.ParseMode(body.Mode)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		mode = m
	}
	dir := s.opts.Direction
	if body.Direction != "" {
		d, err := visual.ParseDirection(body.Direction)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		dir = d
	}

	ctrl := diagram.New(diagram.Options{
		Fetcher:   s.opts.Fetcher,
		Runner:    s.opts.Runner,
		Mode:      mode,
		Direction: dir,
		Logger:    s.logger,
	})
	sess := session.New(ctrl)
	if err := s.opts.Sessions.Set(r.Context(), sess); err != nil {
		httputil.WriteError(w, err)
		return
	}
	s.logger.Info("session created", "session", sess.ID, "start", req.StartID, "mode", mode)

	if err := ctrl.Load(r.Context(), req); err != nil && ctrl.State() != diagram.StateError {
		s.writeLoadError(w, err)
		return
	}
	s.writeView(w, http.StatusCreated, sess)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	s.writeView(w, http.StatusOK, sessionFrom(r))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := s.opts.Sessions.Delete(r.Context(), sess.ID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := sess.Diagram.Reload(r.Context()); err != nil && sess.Diagram.State() != diagram.StateError {
		s.writeLoadError(w, err)
		return
	}
	s.writeView(w, http.StatusOK, sess)
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	var body modeRequest
	if err := httputil.DecodeJSON(r.Body, &body); err != nil {
		httputil.WriteError(w, err)
		return
	}
	m, err := projection.ParseMode(body.Mode)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	sess := sessionFrom(r)
	if err := sess.Diagram.SetMode(r.Context(), m); err != nil {
		httputil.WriteError(w, err)
		return
	}
	s.writeView(w, http.StatusOK, sess)
}

func (s *Server) handleDirection(w http.ResponseWriter, r *http.Request) {
	var body directionRequest
	if err := httputil.DecodeJSON(r.Body, &body); err != nil {
		httputil.WriteError(w, err)
		return
	}
	d, err := visual.ParseDirection(body.Direction)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	sess := sessionFrom(r)
	if err := sess.Diagram.SetDirection(r.Context(), d); err != nil {
		httputil.WriteError(w, err)
		return
	}
	s.writeView(w, http.StatusOK, sess)
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	var body filterRequest
	if err := httputil.DecodeJSON(r.Body, &body); err != nil {
		httputil.WriteError(w, err)
		return
	}
	sess := sessionFrom(r)
	sess.Diagram.SetFilter(body.Text)
	s.writeView(w, http.StatusOK, sess)
}

func (s *Server) handleLock(w http.ResponseWriter, r *http.Request) {
	var body lockRequest
	if err := httputil.DecodeJSON(r.Body, &body); err != nil {
		httputil.WriteError(w, err)
		return
	}
	sess := sessionFrom(r)
	sess.Diagram.SetLocked(body.Locked)
	s.writeView(w, http.StatusOK, sess)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var body selectRequest
	if err := httputil.DecodeJSON(r.Body, &body); err != nil {
		httputil.WriteError(w, err)
		return
	}
	n, err := sessionFrom(r).Diagram.Select(body.NodeID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, selectResponse{Node: n})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var body positionRequest
	if err := httputil.DecodeJSON(r.Body, &body); err != nil {
		httputil.WriteError(w, err)
		return
	}
	sess := sessionFrom(r)
	if err := sess.Diagram.MoveNode(chi.URLParam(r, "node"), visual.Position{X: body.X, Y: body.Y}); err != nil {
		httputil.WriteError(w, err)
		return
	}
	s.writeView(w, http.StatusOK, sess)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	v := sessionFrom(r).Diagram.View()
	if v.Result == nil {
		httputil.WriteError(w, errors.New(errors.ErrCodeInvalidState, "diagram is %s", v.State))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(render.RenderSVG(v.Result, render.WithSelected(v.Selected)))
}

var exportContentTypes = map[string]string{
	pipeline.FormatJSON:     "application/json",
	pipeline.FormatSVG:      "image/svg+xml",
	pipeline.FormatDOT:      "text/vnd.graphviz",
	pipeline.FormatGraphviz: "image/svg+xml",
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		httputil.WriteError(w, err)
		return
	}
	v := sessionFrom(r).Diagram.View()
	if v.Result == nil {
		httputil.WriteError(w, errors.New(errors.ErrCodeInvalidState, "diagram is %s", v.State))
		return
	}
	data, err := s.opts.Runner.Render(r.Context(), v.Result, format)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", exportContentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	refresh := r.URL.Query().Get("refresh") == "true"
	doc, err := s.opts.Documents.GenerateDocument(r.Context(), chi.URLParam(r, "vm"), refresh)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, doc)
}
