package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	perrors "github.com/matzehuels/ladderkit/pkg/errors"
	lio "github.com/matzehuels/ladderkit/pkg/io"
	"github.com/matzehuels/ladderkit/pkg/ladder"
	"github.com/matzehuels/ladderkit/pkg/ladder/edit"
	"github.com/matzehuels/ladderkit/pkg/ladder/laddertest"
	"github.com/matzehuels/ladderkit/pkg/ladder/placeholder"
	"github.com/matzehuels/ladderkit/pkg/observability"
	"github.com/matzehuels/ladderkit/pkg/session"
)

type testServer struct {
	t     *testing.T
	srv   *Server
	http  *httptest.Server
	store *session.MemoryStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := session.NewMemoryStore()
	srv := New(store, nil, Options{Logger: log.New(&bytes.Buffer{})})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &testServer{t: t, srv: srv, http: ts, store: store}
}

func (ts *testServer) do(method, path string, body any, out any) int {
	ts.t.Helper()
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case []byte:
		rd = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			ts.t.Fatal(err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.http.URL+path, rd)
	if err != nil {
		ts.t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		ts.t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			ts.t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (ts *testServer) create(r *ladder.Rung) sessionView {
	ts.t.Helper()
	var body any
	if r != nil {
		var buf bytes.Buffer
		if err := lio.WriteRung(r, &buf); err != nil {
			ts.t.Fatal(err)
		}
		body = buf.Bytes()
	}
	var v sessionView
	if status := ts.do(http.MethodPost, "/sessions", body, &v); status != http.StatusCreated {
		ts.t.Fatalf("create: status %d", status)
	}
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	var body struct {
		Status string `json:"status"`
	}
	if status := ts.do(http.MethodGet, "/healthz", nil, &body); status != http.StatusOK || body.Status != "ok" {
		t.Errorf("healthz = %d %q", status, body.Status)
	}
}

func TestCreateAndGet(t *testing.T) {
	ts := newTestServer(t)
	created := ts.create(laddertest.Chain(t, "a"))
	if created.ID == "" || created.Rung == nil {
		t.Fatalf("create returned %+v", created)
	}

	var got sessionView
	if status := ts.do(http.MethodGet, "/sessions/"+created.ID, nil, &got); status != http.StatusOK {
		t.Fatalf("get: status %d", status)
	}
	if diff := cmp.Diff(laddertest.PowerPairs(created.Rung), laddertest.PowerPairs(got.Rung)); diff != "" {
		t.Errorf("rung (-created +got):\n%s", diff)
	}

	stored, err := ts.store.Get(context.Background(), created.ID)
	if err != nil || stored == nil {
		t.Fatalf("session not stored: %v", err)
	}
}

func TestEditFlow(t *testing.T) {
	ts := newTestServer(t)
	id := ts.create(nil).ID
	base := "/sessions/" + id

	var v sessionView
	if status := ts.do(http.MethodPost, base+"/placeholders", nil, &v); status != http.StatusOK {
		t.Fatalf("placeholders: status %d", status)
	}
	if len(v.Rung.Placeholders()) == 0 {
		t.Fatal("no placeholders shown")
	}

	ph := placeholder.ID(ladder.RightRailID, ladder.SideLeft)
	var sel selection
	if status := ts.do(http.MethodPost, base+"/select", selectRequest{ID: ph}, &sel); status != http.StatusOK {
		t.Fatalf("select: status %d", status)
	}
	if sel.Selected != ph {
		t.Errorf("selected %q", sel.Selected)
	}

	el := session.Element{Kind: ladder.KindCoil, Variant: "set", Variable: "Motor"}
	if status := ts.do(http.MethodPost, base+"/elements", el, &v); status != http.StatusOK {
		t.Fatalf("add: status %d", status)
	}
	els := v.Rung.Elements()
	if len(els) != 1 || els[0].Kind != ladder.KindCoil {
		t.Fatalf("elements after add: %+v", els)
	}

	if status := ts.do(http.MethodDelete, base+"/elements", removeRequest{IDs: []string{els[0].ID}}, &v); status != http.StatusOK {
		t.Fatalf("remove: status %d", status)
	}
	if len(v.Rung.Elements()) != 0 {
		t.Error("element still present after remove")
	}

	// Survives eviction from memory.
	ts.srv.mu.Lock()
	delete(ts.srv.live, id)
	ts.srv.mu.Unlock()
	if status := ts.do(http.MethodGet, base, nil, &v); status != http.StatusOK {
		t.Fatalf("reload: status %d", status)
	}
	if len(v.Rung.Elements()) != 0 {
		t.Error("reloaded session is stale")
	}
}

func TestDragFlow(t *testing.T) {
	ts := newTestServer(t)
	id := ts.create(laddertest.Chain(t, "a", "b")).ID
	base := "/sessions/" + id

	var v sessionView
	if status := ts.do(http.MethodPost, base+"/drag/start", dragStartRequest{ID: "a"}, &v); status != http.StatusOK {
		t.Fatalf("start: status %d", status)
	}
	if !v.Dragging {
		t.Fatal("not dragging")
	}

	var target ladder.Node
	for _, n := range v.Rung.Placeholders() {
		if n.ID == placeholder.ID("b", ladder.SideRight) {
			target = n
		}
	}
	var sel selection
	if status := ts.do(http.MethodPost, base+"/drag/move", placeholder.Anchor(target), &sel); status != http.StatusOK {
		t.Fatalf("move: status %d", status)
	}
	if sel.Selected != target.ID {
		t.Errorf("move selected %q, want %q", sel.Selected, target.ID)
	}

	if status := ts.do(http.MethodPost, base+"/drag/drop", nil, &v); status != http.StatusOK {
		t.Fatalf("drop: status %d", status)
	}
	if v.Dragging {
		t.Error("still dragging")
	}
	if diff := cmp.Diff([]string{"a->right-rail", "b->a", "left-rail->b"}, laddertest.PowerPairs(v.Rung)); diff != "" {
		t.Errorf("edges (-want +got):\n%s", diff)
	}
}

func TestDragMoveWithoutDrag(t *testing.T) {
	ts := newTestServer(t)
	id := ts.create(nil).ID
	var e errorBody
	status := ts.do(http.MethodPost, "/sessions/"+id+"/drag/move", ladder.Point{}, &e)
	if status != http.StatusConflict || e.Code != perrors.ErrCodeConflict {
		t.Errorf("status %d, body %+v", status, e)
	}
}

func TestErrors(t *testing.T) {
	ts := newTestServer(t)
	id := ts.create(nil).ID

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   perrors.Code
	}{
		{"unknown session", http.MethodGet, "/sessions/nope", nil, http.StatusNotFound, perrors.ErrCodeSessionNotFound},
		{"unsafe id", http.MethodGet, "/sessions/..%2Fetc", nil, http.StatusBadRequest, perrors.ErrCodeInvalidInput},
		{"bad element", http.MethodPost, "/sessions/" + id + "/elements",
			session.Element{Kind: ladder.KindBlock, Variant: "NOPE"}, http.StatusBadRequest, perrors.ErrCodeInvalidBlock},
		{"malformed body", http.MethodPost, "/sessions/" + id + "/select",
			[]byte("{"), http.StatusBadRequest, perrors.ErrCodeInvalidInput},
		{"empty select", http.MethodPost, "/sessions/" + id + "/select",
			selectRequest{}, http.StatusBadRequest, perrors.ErrCodeInvalidInput},
		{"unknown placeholder", http.MethodPost, "/sessions/" + id + "/select",
			selectRequest{ID: "ph_x_left"}, http.StatusNotFound, perrors.ErrCodeNodeNotFound},
		{"no ids", http.MethodDelete, "/sessions/" + id + "/elements",
			removeRequest{}, http.StatusBadRequest, perrors.ErrCodeInvalidInput},
		{"bad format", http.MethodGet, "/sessions/" + id + "/export.pdf", nil, http.StatusBadRequest, perrors.ErrCodeInvalidInput},
		{"invalid rung", http.MethodPost, "/sessions", []byte(`{"id":"r","nodes":[],"edges":[]}`),
			http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e errorBody
			status := ts.do(tt.method, tt.path, tt.body, &e)
			if status != tt.status {
				t.Errorf("status = %d, want %d (%+v)", status, tt.status, e)
			}
			if tt.code != "" && e.Code != tt.code {
				t.Errorf("code = %s, want %s", e.Code, tt.code)
			}
		})
	}
}

func TestExport(t *testing.T) {
	ts := newTestServer(t)
	id := ts.create(laddertest.Chain(t, "a")).ID

	resp, err := http.Get(ts.http.URL + "/sessions/" + id + "/export.xml")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/xml" {
		t.Errorf("content type %q", ct)
	}
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	if !strings.Contains(buf.String(), "<contact") {
		t.Errorf("export lacks the contact:\n%s", buf.String())
	}
}

func TestDeleteSession(t *testing.T) {
	ts := newTestServer(t)
	id := ts.create(nil).ID
	if status := ts.do(http.MethodDelete, "/sessions/"+id, nil, nil); status != http.StatusNoContent {
		t.Fatalf("delete: status %d", status)
	}
	if status := ts.do(http.MethodGet, "/sessions/"+id, nil, nil); status != http.StatusNotFound {
		t.Errorf("get after delete: status %d", status)
	}
	if ts.srv.Len() != 0 {
		t.Errorf("%d sessions in memory", ts.srv.Len())
	}
}

type routeHooks struct {
	observability.NoopHTTPHooks
	routes []string
}

func (h *routeHooks) OnResponse(_ context.Context, method, route string, _ int, _ time.Duration) {
	h.routes = append(h.routes, method+" "+route)
}

func TestHooksSeeRoutePatterns(t *testing.T) {
	hooks := &routeHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	srv := New(session.NewMemoryStore(), nil, Options{Logger: log.New(&bytes.Buffer{})})
	sess, err := session.New(nil, time.Hour, edit.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := srv.register(context.Background(), sess); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/"+sess.ID+"/export.dot", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	if len(hooks.routes) != 1 {
		t.Fatalf("routes = %v", hooks.routes)
	}
	if strings.Contains(hooks.routes[0], sess.ID) || !strings.Contains(hooks.routes[0], "{id}") {
		t.Errorf("route %q is not a pattern", hooks.routes[0])
	}
}

func TestSweep(t *testing.T) {
	ts := newTestServer(t)
	id := ts.create(nil).ID

	ts.srv.mu.Lock()
	ts.srv.live[id].sess.ExpiresAt = time.Now().Add(-time.Minute)
	ts.srv.mu.Unlock()

	if err := ts.srv.Sweep(context.Background()); err != nil {
		t.Fatal(err)
	}
	if ts.srv.Len() != 0 {
		t.Errorf("expired session kept in memory")
	}
}
