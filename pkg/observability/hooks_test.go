package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	NoopEditorHooks{}.OnEdit(ctx, "add", 5, time.Millisecond, nil)

	p := NoopPipelineHooks{}
	p.OnLayout(ctx, 12, time.Millisecond, nil)
	p.OnExport(ctx, "xml", 2048, time.Millisecond, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "svg")
	c.OnCacheMiss(ctx, "svg")
	c.OnCacheSet(ctx, "svg", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/sessions/{id}/elements")
	h.OnResponse(ctx, "POST", "/sessions/{id}/elements", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Editor().(NoopEditorHooks); !ok {
		t.Error("Editor() should return NoopEditorHooks by default")
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	editor := &recordingEditorHooks{}
	SetEditorHooks(editor)
	Editor().OnEdit(context.Background(), "remove", 3, 0, nil)
	if len(editor.ops) != 1 || editor.ops[0] != "remove" {
		t.Errorf("recorded ops = %v", editor.ops)
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Editor().(NoopEditorHooks); !ok {
		t.Error("Reset() should restore NoopEditorHooks")
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)
	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}

	editor := &recordingEditorHooks{}
	SetEditorHooks(editor)
	SetEditorHooks(nil)
	if Editor() != editor {
		t.Error("SetEditorHooks(nil) should be ignored")
	}
}

// Test implementations
type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }

type recordingEditorHooks struct {
	ops []string
}

func (h *recordingEditorHooks) OnEdit(_ context.Context, op string, _ int, _ time.Duration, _ error) {
	h.ops = append(h.ops, op)
}
