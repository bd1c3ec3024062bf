package quotes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
)

func TestTodayFetchesAndCaches(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/today" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(`[{"q":"Breathe.","a":"Anon"}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, zap.NewNop().Sugar())
	q := c.Today(context.Background())
	if q.Text != "Breathe." || q.Author != "Anon" {
		t.Fatalf("unexpected quote: %+v", q)
	}

	// Second call on the same day must hit the cache.
	_ = c.Today(context.Background())
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("want 1 upstream hit, got %d", hits)
	}
}

func TestTodayFallsBackOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, zap.NewNop().Sugar())
	if q := c.Today(context.Background()); q != Fallback {
		t.Fatalf("want fallback quote, got %+v", q)
	}
}

func TestTodayKeepsStaleCacheOnError(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[{"q":"Keep going.","a":"Anon"}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, zap.NewNop().Sugar())
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	fail.Store(true)
	if err := c.Refresh(context.Background()); err == nil {
		t.Fatalf("refresh must surface upstream failure")
	}
	if q := c.Today(context.Background()); q.Text != "Keep going." {
		t.Fatalf("stale cache must survive a failed refresh, got %+v", q)
	}
}

func TestRefreshRejectsEmptyPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL, zap.NewNop().Sugar())
	if err := c.Refresh(context.Background()); err == nil {
		t.Fatalf("empty payload must be an error")
	}
}
