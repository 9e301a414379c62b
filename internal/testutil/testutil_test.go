package testutil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
)

func TestClockHelpers(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := NowAt(now)(); !got.Equal(now) {
		t.Fatalf("expected fixed time, got %v", got)
	}
}

func TestFixturesHelper(t *testing.T) {
	p := SamplePlayer("p9")
	if p.ID != "p9" || p.Name == "" || !p.Category.Valid() {
		t.Fatalf("unexpected player fixture %+v", p)
	}
	team := SampleTeam("t9", "p9")
	if team.ID != "t9" || !team.HasPlayer("p9") {
		t.Fatalf("unexpected team fixture %+v", team)
	}

	s := SeedMemoryStore(t)
	list, err := s.ListPlayers(context.Background())
	if err != nil || len(list) != 10 {
		t.Fatalf("expected 10 seeded players, got %d err %v", len(list), err)
	}
	t1, err := s.GetTeam(context.Background(), "t1")
	if err != nil || len(t1.PlayerIDs) != 4 {
		t.Fatalf("expected seeded team t1, got %+v err %v", t1, err)
	}

	ids := &SequenceIDs{}
	if a, b := ids.NewID(), ids.NewID(); a != "id-1" || b != "id-2" {
		t.Fatalf("unexpected sequence %s %s", a, b)
	}
}

func TestServeHelpers(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	rr := Serve(handler, http.MethodPost, "/test", strings.NewReader("{}"))
	AssertStatus(t, rr, http.StatusCreated)
	var body map[string]bool
	DecodeJSON(t, rr, &body)
	if !body["ok"] {
		t.Fatalf("expected ok=true")
	}

	req := httptest.NewRequest(http.MethodGet, "/req", nil)
	rr2 := ServeRequest(handler, req)
	AssertStatus(t, rr2, http.StatusCreated)
}

func TestServeJSONAndErrorCode(t *testing.T) {
	var contentType string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"match is not live","code":"NOT_LIVE"}`))
	})

	rr := ServeJSON(handler, http.MethodPut, "/matches/m1/score", `{"scoringSide":1}`)
	if contentType != "application/json" {
		t.Fatalf("expected json content type, got %q", contentType)
	}
	AssertErrorCode(t, rr, http.StatusConflict, "NOT_LIVE")

	ServeJSON(handler, http.MethodPut, "/matches/m1/undo", "")
	if contentType != "" {
		t.Fatalf("expected no content type without a body, got %q", contentType)
	}
}

func TestSnapshotHelpers(t *testing.T) {
	w := NewTempWriter(t, 5)
	date := time.Now().UTC().Format(time.DateOnly)
	WriteSnapshot(t, w, date)
	path := SnapshotPath(w, date)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected snapshot file, got %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected snapshot contents")
	}
}

func TestWriteSnapshotPayloadHandlesNilWriter(t *testing.T) {
	if err := writeSnapshotPayload(nil, "2024-01-01"); err == nil {
		t.Fatalf("expected error for nil writer")
	}
}

func TestServerStubs(t *testing.T) {
	p := &StubPoller{Err: errors.New("stop")}
	p.Start(context.Background())
	if err := p.Stop(context.Background()); !errors.Is(err, p.Err) {
		t.Fatalf("expected stop error")
	}
	if _, err := p.RefreshNow(context.Background()); err != nil {
		t.Fatalf("unexpected refresh error: %v", err)
	}
	if p.StartCalls != 1 || p.StopCalls != 1 || p.RefreshCalls != 1 {
		t.Fatalf("unexpected call counts %+v", p)
	}

	sh := &StubHTTPServer{ListenErr: errors.New("boom"), ShutdownErr: errors.New("down")}
	sh.HandlerVal = http.NewServeMux()
	_ = sh.ListenAndServe()
	_ = sh.Shutdown(context.Background())
	_ = sh.Handler()
	_ = sh.Addr()
	if sh.ListenCalls != 1 || sh.ShutdownCalls != 1 {
		t.Fatalf("expected listen/shutdown calls, got %+v", sh)
	}

	b := &BlockingHTTPServer{Unblock: make(chan struct{}), HandlerVal: http.NewServeMux()}
	if err := b.ListenAndServe(); err != nil {
		t.Fatalf("expected nil listen error for blocking server")
	}
	done := make(chan error, 1)
	go func() { done <- b.Shutdown(context.Background()) }()
	close(b.Unblock)
	_ = b.Handler()
	if b.Addr() != b.AddrVal {
		t.Fatalf("expected blocking server addr passthrough")
	}
	if err := <-done; err != nil {
		t.Fatalf("expected nil shutdown err, got %v", err)
	}
	if b.ShutdownCalls != 1 {
		t.Fatalf("expected shutdown called once")
	}

	e := &ErrHTTPServer{}
	_ = e.ListenAndServe()
	_ = e.Shutdown(context.Background())
	_ = e.Handler()
	if e.Addr() == "" {
		t.Fatalf("expected addr from ErrHTTPServer")
	}
	if e.ShutdownCalls != 1 {
		t.Fatalf("expected shutdown call for ErrHTTPServer")
	}

	c := &CloseableHTTPServer{}
	_ = c.ListenAndServe()
	_ = c.Shutdown(context.Background())
	_ = c.Handler()
	if c.Addr() == "" {
		t.Fatalf("expected addr from CloseableHTTPServer")
	}
	if c.ShutdownCalls != 1 {
		t.Fatalf("expected shutdown call for CloseableHTTPServer")
	}

	// verify Status passthrough
	if p.Status() != p.StatusVal {
		t.Fatalf("expected status passthrough")
	}
}

func TestLoggerAndMetricsHelpers(t *testing.T) {
	logger, buf := NewBufferLogger()
	logger.Info("hello", "k", "v")
	if buf.Len() == 0 {
		t.Fatalf("expected buffered log output")
	}
	rec, shutdown := NewRecorderWithShutdown()
	if rec == nil || shutdown == nil {
		t.Fatalf("expected recorder and shutdown")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("expected nil shutdown error, got %v", err)
	}
}
