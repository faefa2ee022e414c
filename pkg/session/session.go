package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	perrors "github.com/matzehuels/ladderkit/pkg/errors"
	"github.com/matzehuels/ladderkit/pkg/ladder"
	"github.com/matzehuels/ladderkit/pkg/ladder/drag"
	"github.com/matzehuels/ladderkit/pkg/ladder/edit"
	"github.com/matzehuels/ladderkit/pkg/ladder/layout"
	"github.com/matzehuels/ladderkit/pkg/ladder/placeholder"
	"github.com/matzehuels/ladderkit/pkg/observability"
)

// Session is the single owner of one rung while it is being edited.
//
// It holds the committed rung and, on top of it, at most one transient
// overlay: the placeholders of a pending insertion, or a drag in progress.
// Every mutation replaces the committed rung with the one returned by the
// editing engine, so [Session.Snapshot] can hand out undo states without
// copying on each edit.
//
// A Session is not safe for concurrent use; callers serialize access.
type Session struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time

	committed *ladder.Rung
	view      *ladder.Rung
	drag      *drag.Drag
	opts      edit.Options
	ttl       time.Duration
}

// New starts a session on r, laid out with opts.Layout so that placeholder
// positions match the geometry the caller shows. A nil rung starts from an
// empty one.
func New(r *ladder.Rung, ttl time.Duration, opts edit.Options) (*Session, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if r == nil {
		r = ladder.NewRung(ladder.NewID("rung"), ladder.Size{})
	} else if err := r.Validate(); err != nil {
		return nil, err
	}
	laid, err := layout.Compute(r, opts.Layout)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
		committed: laid,
		opts:      opts,
		ttl:       ttl,
	}, nil
}

// SetOptions sets the layout configuration applied after every edit. The
// committed rung keeps its current geometry until the next edit.
func (s *Session) SetOptions(opts edit.Options) { s.opts = opts }

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Rung returns the rung to display: the drag overlay while dragging, the
// rung with placeholders while an insertion is pending, the committed rung
// otherwise.
func (s *Session) Rung() *ladder.Rung {
	switch {
	case s.drag != nil:
		return s.drag.Rung()
	case s.view != nil:
		return s.view
	}
	return s.committed
}

// Snapshot returns a copy of the committed rung, free of any overlay.
func (s *Session) Snapshot() *ladder.Rung { return s.committed.Clone() }

// Dragging reports whether a drag is in progress.
func (s *Session) Dragging() bool { return s.drag != nil }

// Replace swaps the committed rung for r, dropping any overlay.
func (s *Session) Replace(r *ladder.Rung) error {
	if err := r.Validate(); err != nil {
		return err
	}
	laid, err := layout.Compute(r, s.opts.Layout)
	if err != nil {
		return err
	}
	s.commit(laid)
	return nil
}

// ShowPlaceholders renders insertion slots around the committed rung's
// elements and returns the resulting view.
func (s *Session) ShowPlaceholders() (*ladder.Rung, error) {
	if s.drag != nil {
		return nil, perrors.New(perrors.ErrCodeConflict, "a drag is in progress")
	}
	view, err := placeholder.Render(s.committed)
	if err != nil {
		return nil, err
	}
	s.view = view
	return view, nil
}

// HidePlaceholders drops a pending insertion.
func (s *Session) HidePlaceholders() { s.view = nil }

// Select marks the placeholder id of the current overlay as selected.
func (s *Session) Select(id string) bool {
	if s.drag != nil {
		return s.drag.Select(id)
	}
	if s.view == nil {
		return false
	}
	view, ok := placeholder.Select(s.view, id)
	if ok {
		s.view = view
	}
	return ok
}

// SelectNearest selects the placeholder of the current overlay nearest to p.
func (s *Session) SelectNearest(p ladder.Point) (ladder.Node, bool) {
	if s.drag != nil {
		return s.drag.Move(p)
	}
	if s.view == nil {
		return ladder.Node{}, false
	}
	view, ok := placeholder.SelectNearest(s.view, p)
	if !ok {
		return ladder.Node{}, false
	}
	s.view = view
	return placeholder.Selected(view)
}

// Add inserts el at the selected placeholder and commits the result. With no
// placeholders shown or none selected, Add leaves the session unchanged and
// returns the displayed rung.
func (s *Session) Add(ctx context.Context, el Element) (*ladder.Rung, error) {
	if s.drag != nil {
		return nil, perrors.New(perrors.ErrCodeConflict, "a drag is in progress")
	}
	if s.view == nil {
		return s.Rung(), nil
	}
	n, err := el.Node()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	opts := s.opts
	opts.Bindings = el.Bindings
	out, err := edit.Add(s.view, n, opts)
	s.record(ctx, "add", out, start, err)
	if err != nil {
		return nil, err
	}
	if out == s.view {
		return s.view, nil
	}
	s.commit(out)
	return out, nil
}

// Remove deletes the given elements one after the other and commits the
// result.
func (s *Session) Remove(ctx context.Context, ids ...string) (*ladder.Rung, error) {
	if s.drag != nil {
		return nil, perrors.New(perrors.ErrCodeConflict, "a drag is in progress")
	}
	start := time.Now()
	out, err := edit.RemoveAll(s.committed, ids, s.opts)
	s.record(ctx, "remove", out, start, err)
	if err != nil {
		return nil, err
	}
	s.commit(out)
	return out, nil
}

// DragStart begins dragging element id. Ids that are not draggable leave
// the session unchanged.
func (s *Session) DragStart(ctx context.Context, id string) (*ladder.Rung, error) {
	if s.drag != nil {
		return nil, perrors.New(perrors.ErrCodeConflict, "a drag is in progress")
	}
	d, err := drag.Start(s.committed, id, s.opts)
	if err != nil {
		return nil, err
	}
	if d.State() != drag.Dragging {
		return s.Rung(), nil
	}
	s.view = nil
	s.drag = d
	return d.Rung(), nil
}

// DragMove selects the placeholder nearest to the pointer.
func (s *Session) DragMove(p ladder.Point) (ladder.Node, bool) {
	if s.drag == nil {
		return ladder.Node{}, false
	}
	return s.drag.Move(p)
}

// Drop ends the drag at the selected placeholder and commits the result.
func (s *Session) Drop(ctx context.Context) (*ladder.Rung, error) {
	return s.endDrag(ctx, "drop", (*drag.Drag).Drop)
}

// Cancel ends the drag and puts the element back.
func (s *Session) Cancel(ctx context.Context) (*ladder.Rung, error) {
	return s.endDrag(ctx, "cancel", (*drag.Drag).Cancel)
}

func (s *Session) endDrag(ctx context.Context, op string, end func(*drag.Drag) (*ladder.Rung, error)) (*ladder.Rung, error) {
	if s.drag == nil {
		return s.committed, nil
	}
	start := time.Now()
	out, err := end(s.drag)
	s.record(ctx, op, out, start, err)
	if err != nil {
		return nil, err
	}
	s.drag = nil
	s.commit(out)
	return out, nil
}

func (s *Session) commit(r *ladder.Rung) {
	s.committed = r
	s.view = nil
	s.touch()
}

func (s *Session) touch() {
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}
	s.UpdatedAt = time.Now()
	s.ExpiresAt = s.UpdatedAt.Add(s.ttl)
}

func (s *Session) record(ctx context.Context, op string, r *ladder.Rung, start time.Time, err error) {
	nodes := 0
	if r != nil {
		nodes = len(r.Nodes)
	}
	observability.Editor().OnEdit(ctx, op, nodes, time.Since(start), err)
}

// record is the stored form of a session. A drag in progress is not
// stored: a session read back from a store has no drag.
type record struct {
	ID        string        `json:"id"`
	Rung      *ladder.Rung  `json:"rung"`
	View      *ladder.Rung  `json:"view,omitempty"`
	TTL       time.Duration `json:"ttl"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// MarshalJSON encodes the committed rung and any pending placeholders.
func (s *Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(record{
		ID:        s.ID,
		Rung:      s.committed,
		View:      s.view,
		TTL:       s.ttl,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		ExpiresAt: s.ExpiresAt,
	})
}

// UnmarshalJSON decodes a stored session.
func (s *Session) UnmarshalJSON(b []byte) error {
	var rec record
	if err := json.Unmarshal(b, &rec); err != nil {
		return err
	}
	if rec.Rung == nil {
		return perrors.New(perrors.ErrCodeInvalidFormat, "session %s has no rung", rec.ID)
	}
	*s = Session{
		ID:        rec.ID,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
		ExpiresAt: rec.ExpiresAt,
		committed: rec.Rung,
		view:      rec.View,
		ttl:       rec.TTL,
	}
	return nil
}
