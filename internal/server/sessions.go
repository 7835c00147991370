package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/spiderfy/pkg/document"
	errs "github.com/matzehuels/spiderfy/pkg/errors"
	"github.com/matzehuels/spiderfy/pkg/pipeline"
	"github.com/matzehuels/spiderfy/pkg/session"
	"github.com/matzehuels/spiderfy/pkg/spider"
)

type createSessionRequest struct {
	Anchor     document.Anchor    `json:"anchor"`
	Markers    []*session.Marker  `json:"markers"`
	Params     *spider.Parameters `json:"params,omitempty"`
	TTLSeconds int                `json:"ttl_seconds,omitempty"`
}

// updateSessionRequest leaves omitted fields unchanged. Parameters are
// merged onto the session's current ones.
type updateSessionRequest struct {
	Anchor  *document.Anchor   `json:"anchor,omitempty"`
	Markers *[]*session.Marker `json:"markers,omitempty"`
	Params  *spider.Parameters `json:"params,omitempty"`
}

type updateSessionResponse struct {
	Relaid  bool             `json:"relaid"`
	Session *session.Session `json:"session"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	params := spider.DefaultParameters()
	req := createSessionRequest{Params: &params}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Params == nil {
		req.Params = &params
	}
	if err := validateSessionInput(req.Markers, *req.Params); err != nil {
		writeError(w, r, err)
		return
	}
	if req.TTLSeconds < 0 {
		writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "ttl_seconds must not be negative"))
		return
	}

	ttl := s.opts.SessionTTL
	if req.TTLSeconds > 0 {
		ttl = time.Duration(req.TTLSeconds) * time.Second
	}

	sess := session.New(req.Anchor, req.Markers, *req.Params, ttl)
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		writeError(w, r, err)
		return
	}
	s.logger.Debug("session created", "id", sess.ID, "markers", len(sess.Markers), "mode", sess.Layout.Mode)
	w.Header().Set("Location", "/v1/sessions/"+sess.ID)
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}

	params := sess.Params
	req := updateSessionRequest{Params: &params}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Params == nil {
		req.Params = &params
	}

	markers := currentMarkers(sess)
	if req.Markers != nil {
		markers = *req.Markers
	}
	if err := validateSessionInput(markers, *req.Params); err != nil {
		writeError(w, r, err)
		return
	}

	relaid := sess.Update(markers, *req.Params)
	if req.Anchor != nil {
		sess.MoveTo(*req.Anchor)
	}
	sess.Touch(s.opts.SessionTTL)

	if err := s.sessions.Set(r.Context(), sess); err != nil {
		writeError(w, r, err)
		return
	}
	s.logger.Debug("session updated", "id", sess.ID, "relaid", relaid, "version", sess.Version)
	writeJSON(w, http.StatusOK, updateSessionResponse{Relaid: relaid, Session: sess})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errs.ValidateSessionID(id); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		writeError(w, r, sessionError(err, id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSessionDocument(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Document())
}

func (s *Server) handleSessionRender(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, r, err)
		return
	}
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}

	opts := pipeline.Options{Formats: []string{format}}
	if err := renderOptionsFromQuery(r.URL.Query(), &opts); err != nil {
		writeError(w, r, err)
		return
	}
	artifacts, hit, err := s.runner.RenderWithCacheInfo(r.Context(), sess.Document(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeArtifact(w, format, artifacts[format], hit)
}

// loadSession fetches the session named in the URL, writing the error
// response itself when it fails.
func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "id")
	if err := errs.ValidateSessionID(id); err != nil {
		writeError(w, r, err)
		return nil, false
	}
	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, sessionError(err, id))
		return nil, false
	}
	return sess, true
}

func currentMarkers(sess *session.Session) []*session.Marker {
	out := make([]*session.Marker, len(sess.Markers))
	for i := range sess.Markers {
		out[i] = &sess.Markers[i]
	}
	return out
}

func validateSessionInput(markers []*session.Marker, p spider.Parameters) error {
	if err := errs.ValidateCount(len(markers)); err != nil {
		return err
	}
	return errs.ValidateParameters(p)
}

// sessionError maps store errors to API error codes.
func sessionError(err error, id string) error {
	switch {
	case errs.GetCode(err) != "":
		return err
	case errors.Is(err, session.ErrNotFound):
		return errs.Wrap(errs.ErrCodeSessionNotFound, err, "session %s", id)
	case errors.Is(err, session.ErrExpired):
		return errs.Wrap(errs.ErrCodeSessionExpired, err, "session %s", id)
	}
	return err
}
