package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/ladderkit/pkg/buildinfo"
	perrors "github.com/matzehuels/ladderkit/pkg/errors"
	lio "github.com/matzehuels/ladderkit/pkg/io"
	"github.com/matzehuels/ladderkit/pkg/ladder"
	"github.com/matzehuels/ladderkit/pkg/pipeline"
	"github.com/matzehuels/ladderkit/pkg/session"
)

// sessionView is the response body of every session request.
type sessionView struct {
	ID        string       `json:"id"`
	Rung      *ladder.Rung `json:"rung"`
	Dragging  bool         `json:"dragging"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// selection is returned by select and drag/move.
type selection struct {
	Selected string       `json:"selected,omitempty"`
	Rung     *ladder.Rung `json:"rung"`
}

type selectRequest struct {
	ID    string        `json:"id,omitempty"`
	Point *ladder.Point `json:"point,omitempty"`
}

type removeRequest struct {
	IDs []string `json:"ids"`
}

type dragStartRequest struct {
	ID string `json:"id"`
}

func view(sess *session.Session) sessionView {
	return sessionView{
		ID:        sess.ID,
		Rung:      sess.Rung(),
		Dragging:  sess.Dragging(),
		ExpiresAt: sess.ExpiresAt,
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string         `json:"status"`
		Build  buildinfo.Info `json:"build"`
	}{"ok", buildinfo.Current()})
}

// createSession starts a session on the rung in the body, or on an empty
// rung when the body is empty.
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		s.writeError(w, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "read body"))
		return
	}
	var rung *ladder.Rung
	if len(body) > 0 {
		if rung, err = lio.ReadRung(bytes.NewReader(body)); err != nil {
			if perrors.GetCode(err) != perrors.ErrCodeInvalidFormat {
				err = perrors.Wrap(perrors.ErrCodeInvalidInput, err, "invalid rung")
			}
			s.writeError(w, err)
			return
		}
	}
	sess, err := session.New(rung, s.opts.SessionTTL, s.opts.Edit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.register(r.Context(), sess); err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("session created", "session", sess.ID)
	writeJSON(w, http.StatusCreated, view(sess))
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, false, func(sess *session.Session) (any, error) {
		return view(sess), nil
	})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	e, err := s.acquire(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer e.mu.Unlock()
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	s.forget(id, e)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) showPlaceholders(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, true, func(sess *session.Session) (any, error) {
		if _, err := sess.ShowPlaceholders(); err != nil {
			return nil, err
		}
		return view(sess), nil
	})
}

func (s *Server) hidePlaceholders(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, true, func(sess *session.Session) (any, error) {
		sess.HidePlaceholders()
		return view(sess), nil
	})
}

// selectPlaceholder selects a placeholder by id, or the one nearest to a
// point.
func (s *Server) selectPlaceholder(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.withSession(w, r, true, func(sess *session.Session) (any, error) {
		switch {
		case req.ID != "":
			if !sess.Select(req.ID) {
				return nil, perrors.New(perrors.ErrCodeNodeNotFound, "placeholder %s not shown", req.ID)
			}
			return selection{Selected: req.ID, Rung: sess.Rung()}, nil
		case req.Point != nil:
			n, _ := sess.SelectNearest(*req.Point)
			return selection{Selected: n.ID, Rung: sess.Rung()}, nil
		default:
			return nil, perrors.New(perrors.ErrCodeInvalidInput, "select needs an id or a point")
		}
	})
}

func (s *Server) addElement(w http.ResponseWriter, r *http.Request) {
	var el session.Element
	if !s.decode(w, r, &el) {
		return
	}
	s.withSession(w, r, true, func(sess *session.Session) (any, error) {
		if _, err := sess.Add(r.Context(), el); err != nil {
			return nil, err
		}
		return view(sess), nil
	})
}

func (s *Server) removeElements(w http.ResponseWriter, r *http.Request) {
	var req removeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		s.writeError(w, perrors.New(perrors.ErrCodeInvalidInput, "no element ids given"))
		return
	}
	s.withSession(w, r, true, func(sess *session.Session) (any, error) {
		if _, err := sess.Remove(r.Context(), req.IDs...); err != nil {
			return nil, err
		}
		return view(sess), nil
	})
}

func (s *Server) dragStart(w http.ResponseWriter, r *http.Request) {
	var req dragStartRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.withSession(w, r, false, func(sess *session.Session) (any, error) {
		if _, err := sess.DragStart(r.Context(), req.ID); err != nil {
			return nil, err
		}
		return view(sess), nil
	})
}

func (s *Server) dragMove(w http.ResponseWriter, r *http.Request) {
	var p ladder.Point
	if !s.decode(w, r, &p) {
		return
	}
	s.withSession(w, r, false, func(sess *session.Session) (any, error) {
		if !sess.Dragging() {
			return nil, perrors.New(perrors.ErrCodeConflict, "no drag in progress")
		}
		n, _ := sess.DragMove(p)
		return selection{Selected: n.ID, Rung: sess.Rung()}, nil
	})
}

func (s *Server) dragDrop(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, true, func(sess *session.Session) (any, error) {
		if _, err := sess.Drop(r.Context()); err != nil {
			return nil, err
		}
		return view(sess), nil
	})
}

func (s *Server) dragCancel(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, true, func(sess *session.Session) (any, error) {
		if _, err := sess.Cancel(r.Context()); err != nil {
			return nil, err
		}
		return view(sess), nil
	})
}

// export renders the committed rung of a session in one format.
func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, err)
		return
	}
	opts := s.opts.Export
	opts.Formats = []string{format}
	opts.Detailed, _ = strconv.ParseBool(r.URL.Query().Get("detailed"))

	e, err := s.acquire(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	snapshot := e.sess.Snapshot()
	e.mu.Unlock()

	res, err := s.runner.Export(r.Context(), snapshot, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

var contentTypes = map[string]string{
	pipeline.FormatXML:  "application/xml",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
}

// withSession runs fn on the locked session named in the URL and writes its
// result. With persist set, the session is written back to the store after
// fn succeeds.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, persist bool, fn func(*session.Session) (any, error)) {
	e, err := s.acquire(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer e.mu.Unlock()

	out, err := fn(e.sess)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if persist && !e.sess.Dragging() {
		if err := s.persist(r.Context(), e.sess); err != nil {
			s.writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) persist(ctx context.Context, sess *session.Session) error {
	if err := s.store.Set(ctx, sess); err != nil {
		s.logger.Error("session write failed", "session", sess.ID, "error", err)
		return err
	}
	return nil
}

// decode reads a JSON body into v, writing a 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "decode request"))
		return false
	}
	return true
}

// errorBody is the response body of a failed request.
type errorBody struct {
	Code    perrors.Code `json:"code"`
	Message string       `json:"message"`
}

// statusOf maps an error code to an HTTP status.
func statusOf(code perrors.Code) int {
	switch code {
	case perrors.ErrCodeInvalidInput, perrors.ErrCodeInvalidElement, perrors.ErrCodeInvalidVariable,
		perrors.ErrCodeInvalidBlock, perrors.ErrCodeInvalidFormat, perrors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case perrors.ErrCodeNotFound, perrors.ErrCodeNodeNotFound, perrors.ErrCodeFileNotFound,
		perrors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case perrors.ErrCodeConflict:
		return http.StatusConflict
	case perrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := perrors.GetCode(err)
	if code == "" {
		code = perrors.ErrCodeInternal
	}
	status := statusOf(code)
	msg := perrors.UserMessage(err)
	if status == http.StatusInternalServerError {
		var broken *perrors.BrokenGraphError
		if errors.As(err, &broken) {
			s.logger.Error("broken graph", "node", broken.NodeID, "reason", broken.Reason)
		} else {
			s.logger.Error("request failed", "error", err)
		}
	}
	writeJSON(w, status, errorBody{Code: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
