package fakebackend_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/attribution/internal/fakebackend"
)

func post(t *testing.T, url string, body any) (int, map[string]any) {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "req-1")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestBackend_RecordsCalls(t *testing.T) {
	t.Parallel()

	b := fakebackend.New()
	srv := httptest.NewServer(b.Handler())
	defer srv.Close()

	for _, p := range fakebackend.Paths {
		code, env := post(t, srv.URL+p, map[string]any{"token": "tok"})
		assert.Equal(t, http.StatusOK, code, p)
		assert.EqualValues(t, 200, env["status"], p)
	}

	calls := b.Calls()
	require.Len(t, calls, len(fakebackend.Paths))
	assert.Equal(t, "req-1", calls[0].RequestID)
	assert.Equal(t, "tok", calls[0].Body["token"])

	require.Len(t, b.CallsTo(fakebackend.PathSignup), 1)
	b.Reset()
	assert.Empty(t, b.Calls())
}

func TestBackend_ConfiguredResponses(t *testing.T) {
	t.Parallel()

	b := fakebackend.New().WithDeeplink("app://promo", true)
	b.Fail(fakebackend.PathCaptureEvent, http.StatusBadRequest, "bad event")
	srv := httptest.NewServer(b.Handler())
	defer srv.Close()

	_, env := post(t, srv.URL+fakebackend.PathSignup, map[string]any{})
	data, ok := env["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "app://promo", data["deeplink"])
	assert.Equal(t, true, data["trigger"])

	code, env := post(t, srv.URL+fakebackend.PathCaptureEvent, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "bad event", env["msg"])
}

func TestBackend_TokenCheck(t *testing.T) {
	t.Parallel()

	b := fakebackend.New(fakebackend.WithToken("good"))
	srv := httptest.NewServer(b.Handler())
	defer srv.Close()

	code, env := post(t, srv.URL+fakebackend.PathInit, map[string]any{"token": "bad"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.EqualValues(t, 401, env["status"])

	code, _ = post(t, srv.URL+fakebackend.PathInit, map[string]any{"token": "good"})
	assert.Equal(t, http.StatusOK, code)
}

func TestBackend_RejectsMalformedBody(t *testing.T) {
	t.Parallel()

	b := fakebackend.New()
	srv := httptest.NewServer(b.Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+fakebackend.PathInit, "application/json", bytes.NewBufferString("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, b.Calls())
}

func TestServe(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	addrCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- fakebackend.Serve(ctx, "127.0.0.1:0", fakebackend.New().Handler(), nil, func(addr string) { addrCh <- addr })
	}()

	var addr string
	select {
	case addr = <-addrCh:
	case <-time.After(2 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://" + addr + fakebackend.PathHealth)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
