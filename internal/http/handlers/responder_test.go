package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/preston-bernstein/tabletennis-scoring-service/internal/errors"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/testutil"
)

func TestWriteErrorIncludesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc123")
	logger, _ := testutil.NewBufferLogger()

	rr := testutil.ServeRequest(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusTeapot, "TEAPOT", "boom", logger)
	}), req)

	testutil.AssertStatus(t, rr, http.StatusTeapot)
	if got := rr.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("expected content type json, got %s", got)
	}
	body := decodeError(t, rr)
	if body.RequestID != "abc123" || body.Code != "TEAPOT" || body.Error != "boom" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestWriteJSONLogsEncodeError(t *testing.T) {
	logger, buf := testutil.NewBufferLogger()
	testutil.Serve(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, make(chan int), logger)
	}), http.MethodGet, "/encode-error", nil)

	if !strings.Contains(buf.String(), "failed to encode response") {
		t.Fatalf("expected encode failure logged, got %q", buf.String())
	}
}

func TestWriteDomainError(t *testing.T) {
	cases := []struct {
		err       error
		status    int
		code      string
		retryable bool
	}{
		{apperrors.New(apperrors.CodeRotationCap, "capped"), http.StatusBadRequest, "ROTATION_CAP", false},
		{apperrors.New(apperrors.CodeNotLive, "not live"), http.StatusConflict, "NOT_LIVE", false},
		{fmt.Errorf("save: %w", apperrors.ErrVersionConflict), http.StatusConflict, "VERSION_CONFLICT", true},
		{apperrors.NotFound("match", "m1"), http.StatusNotFound, "NOT_FOUND", false},
		{errors.New("disk on fire"), http.StatusInternalServerError, codeInternal, false},
	}
	for _, tc := range cases {
		rr := testutil.Serve(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeDomainError(w, r, tc.err, nil)
		}), http.MethodGet, "/", nil)
		testutil.AssertStatus(t, rr, tc.status)
		body := decodeError(t, rr)
		if body.Code != tc.code || body.Retryable != tc.retryable {
			t.Fatalf("%v: unexpected body %+v", tc.err, body)
		}
		if strings.Contains(body.Error, "disk on fire") {
			t.Fatalf("internal error detail leaked: %q", body.Error)
		}
	}
}

func TestDecodeJSON(t *testing.T) {
	var dest struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ana"}`))
	if err := decodeJSON(req, &dest); err != nil || dest.Name != "Ana" {
		t.Fatalf("expected decode, got %+v err %v", dest, err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	if err := decodeJSON(req, &dest); err != nil {
		t.Fatalf("expected empty body to be accepted, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nme":"Ana"}`))
	if err := decodeJSON(req, &dest); apperrors.CodeOf(err) != apperrors.CodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT for unknown field, got %v", err)
	}
}
