package pipeline

import (
	"bytes"
	"context"
	"encoding/xml"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	perrors "github.com/matzehuels/ladderkit/pkg/errors"
	"github.com/matzehuels/ladderkit/pkg/io"
	"github.com/matzehuels/ladderkit/pkg/ladder"
	"github.com/matzehuels/ladderkit/pkg/ladder/laddertest"
)

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMapCache() *mapCache { return &mapCache{data: map[string][]byte{}} }

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.sets++
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *mapCache) Close() error { return nil }

func quietRunner(c *mapCache) *Runner {
	if c == nil {
		return NewRunner(nil, nil, log.New(&bytes.Buffer{}))
	}
	return NewRunner(c, nil, log.New(&bytes.Buffer{}))
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"xml", false},
		{"json", false},
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"pdf", true},
		{"XML", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	if err := o.Validate(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{FormatXML}, o.Formats); diff != "" {
		t.Errorf("formats (-want +got):\n%s", diff)
	}
	if o.Indent != DefaultIndent || o.Logger == nil {
		t.Errorf("indent %q, logger %v", o.Indent, o.Logger)
	}

	compact := Options{Compact: true, Indent: "\t"}
	compact.SetDefaults()
	if compact.Indent != "" {
		t.Errorf("compact indent = %q", compact.Indent)
	}
}

func TestExportTextFormats(t *testing.T) {
	r := laddertest.Branch(t)
	res, err := quietRunner(nil).Export(context.Background(), r, Options{
		Formats: []string{FormatXML, FormatJSON, FormatDOT},
	})
	if err != nil {
		t.Fatal(err)
	}

	var doc struct {
		XMLName xml.Name
	}
	if err := xml.Unmarshal(res.Artifacts[FormatXML], &doc); err != nil {
		t.Fatalf("xml: %v", err)
	}
	if doc.XMLName.Local != "LD" {
		t.Errorf("xml root = %s, want LD", doc.XMLName.Local)
	}

	back, err := io.ReadRung(bytes.NewReader(res.Artifacts[FormatJSON]))
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	if diff := cmp.Diff(laddertest.PowerPairs(r), laddertest.PowerPairs(back)); diff != "" {
		t.Errorf("json edges (-want +got):\n%s", diff)
	}

	if !strings.HasPrefix(string(res.Artifacts[FormatDOT]), "digraph") {
		t.Errorf("dot output: %.40s", res.Artifacts[FormatDOT])
	}
	if res.Stats.NodeCount != len(r.Nodes) || res.Stats.Rungs != 1 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if len(res.CacheHits) != 0 {
		t.Errorf("cache hits without a cache: %v", res.CacheHits)
	}
}

func TestExportRejectsInvalidRung(t *testing.T) {
	r := laddertest.Chain(t, "a")
	r.Unwire(r.Edges[0].ID)
	_, err := quietRunner(nil).Export(context.Background(), r, Options{})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	_, err := quietRunner(nil).Export(context.Background(), laddertest.Chain(t), Options{Formats: []string{"pdf"}})
	if perrors.GetCode(err) != perrors.ErrCodeInvalidInput {
		t.Errorf("err = %v", err)
	}
}

func TestExportCachesSVG(t *testing.T) {
	ctx := context.Background()
	c := newMapCache()
	runner := quietRunner(c)
	r := laddertest.Chain(t, "a")

	first, err := runner.Export(ctx, r, Options{Formats: []string{FormatSVG}})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(first.Artifacts[FormatSVG], []byte("<svg")) {
		t.Fatal("svg output missing <svg> tag")
	}
	if len(first.CacheHits) != 0 || c.sets != 1 {
		t.Fatalf("first run: hits %v, sets %d", first.CacheHits, c.sets)
	}

	second, err := runner.Export(ctx, r, Options{Formats: []string{FormatSVG}})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{FormatSVG}, second.CacheHits); diff != "" {
		t.Errorf("second run hits (-want +got):\n%s", diff)
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached svg differs")
	}

	refreshed, err := runner.Export(ctx, r, Options{Formats: []string{FormatSVG}, Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(refreshed.CacheHits) != 0 {
		t.Errorf("refresh used the cache")
	}
}

func TestExportDiagram(t *testing.T) {
	d := ladder.NewDiagram("Main")
	d.AppendRung(laddertest.Chain(t, "a"))
	second := laddertest.Chain(t, "b")
	second.ID = "rung2"
	d.AppendRung(second)

	res, err := quietRunner(nil).ExportDiagram(context.Background(), d, Options{
		Formats: []string{FormatXML, FormatJSON},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.Rungs != 2 {
		t.Errorf("rungs = %d", res.Stats.Rungs)
	}
	if !bytes.Contains(res.Artifacts[FormatXML], []byte(`name="Main"`)) {
		t.Error("pou name missing from xml")
	}
	back, err := io.ReadDiagram(bytes.NewReader(res.Artifacts[FormatJSON]))
	if err != nil {
		t.Fatal(err)
	}
	if len(back.Rungs) != 2 {
		t.Errorf("json has %d rungs", len(back.Rungs))
	}

	if _, err := quietRunner(nil).ExportDiagram(context.Background(), d, Options{Formats: []string{FormatSVG}}); err == nil {
		t.Error("svg of a whole diagram accepted")
	}
}

func TestPickRung(t *testing.T) {
	d := ladder.NewDiagram("Main")
	d.AppendRung(laddertest.Chain(t, "a"))

	if r, err := PickRung(d, ""); err != nil || r != d.Rungs[0] {
		t.Errorf("PickRung(only) = %v, %v", r, err)
	}
	if _, err := PickRung(d, "nope"); perrors.GetCode(err) != perrors.ErrCodeNotFound {
		t.Errorf("missing rung: %v", err)
	}
	other := laddertest.Chain(t, "b")
	other.ID = "rung2"
	d.AppendRung(other)
	if _, err := PickRung(d, ""); perrors.GetCode(err) != perrors.ErrCodeInvalidInput {
		t.Errorf("ambiguous rung: %v", err)
	}
	if r, err := PickRung(d, "rung2"); err != nil || r.ID != "rung2" {
		t.Errorf("PickRung(rung2) = %v, %v", r, err)
	}
}

func TestLoadRung(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rung.json")
	if err := io.ExportRung(laddertest.Chain(t, "a"), path); err != nil {
		t.Fatal(err)
	}
	r, d, err := LoadRung(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Rungs) != 1 || r.ID != "rung" {
		t.Errorf("loaded %d rungs, id %s", len(d.Rungs), r.ID)
	}
}
