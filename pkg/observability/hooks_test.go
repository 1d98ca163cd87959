package observability

import (
	"context"
	"testing"
	"time"
)

type recordingCacheHooks struct {
	hits, misses, sets int
}

func (h *recordingCacheHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *recordingCacheHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *recordingCacheHooks) OnCacheSet(context.Context, string, int) { h.sets++ }

type recordingLintHooks struct {
	starts, completes int
}

func (h *recordingLintHooks) OnRunStart(context.Context, string, int) { h.starts++ }
func (h *recordingLintHooks) OnRunComplete(context.Context, string, int, int, int, time.Duration) {
	h.completes++
}

func TestDefaultHooksAreNoop(t *testing.T) {
	Reset()

	// Must not panic.
	ctx := context.Background()
	Cache().OnCacheHit(ctx, "pypi:")
	Cache().OnCacheMiss(ctx, "pypi:")
	Cache().OnCacheSet(ctx, "pypi:", 42)
	Lint().OnRunStart(ctx, "requirements.txt", 3)
	Lint().OnRunComplete(ctx, "requirements.txt", 1, 0, 0, time.Millisecond)
	Registry().OnFetchStart(ctx, "requests")
	Registry().OnFetchComplete(ctx, "requests", time.Millisecond, nil)
}

func TestSetCacheHooks(t *testing.T) {
	t.Cleanup(Reset)

	rec := &recordingCacheHooks{}
	SetCacheHooks(rec)

	ctx := context.Background()
	Cache().OnCacheHit(ctx, "pypi:")
	Cache().OnCacheMiss(ctx, "pypi:")
	Cache().OnCacheMiss(ctx, "pypi:")
	Cache().OnCacheSet(ctx, "pypi:", 10)

	if rec.hits != 1 || rec.misses != 2 || rec.sets != 1 {
		t.Errorf("hits=%d misses=%d sets=%d", rec.hits, rec.misses, rec.sets)
	}
}

func TestSetLintHooks(t *testing.T) {
	t.Cleanup(Reset)

	rec := &recordingLintHooks{}
	SetLintHooks(rec)

	ctx := context.Background()
	Lint().OnRunStart(ctx, "requirements.txt", 5)
	Lint().OnRunComplete(ctx, "requirements.txt", 0, 1, 0, time.Millisecond)

	if rec.starts != 1 || rec.completes != 1 {
		t.Errorf("starts=%d completes=%d", rec.starts, rec.completes)
	}
}

func TestSetNilHookKeepsPrevious(t *testing.T) {
	t.Cleanup(Reset)

	rec := &recordingCacheHooks{}
	SetCacheHooks(rec)
	SetCacheHooks(nil)

	Cache().OnCacheHit(context.Background(), "pypi:")
	if rec.hits != 1 {
		t.Errorf("hits = %d, nil registration should be ignored", rec.hits)
	}
}

func TestReset(t *testing.T) {
	rec := &recordingCacheHooks{}
	SetCacheHooks(rec)
	Reset()

	Cache().OnCacheHit(context.Background(), "pypi:")
	if rec.hits != 0 {
		t.Errorf("hits = %d after Reset", rec.hits)
	}
}
