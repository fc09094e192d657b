package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	pkgredis "github.com/saborlabs/cardapio-backend/pkg/redis"
)

type memoryIdempotencyStore struct {
	data map[string]string
}

func (s *memoryIdempotencyStore) IdempotencyKey(scope, key string) string {
	return "idem:" + scope + ":" + key
}

func (s *memoryIdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	raw, ok := s.data[key]
	if !ok {
		return "", pkgredis.ErrNotFound
	}
	return raw, nil
}

func (s *memoryIdempotencyStore) SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	if s.data == nil {
		s.data = map[string]string{}
	}
	if _, ok := s.data[key]; ok {
		return false, nil
	}
	s.data[key] = value
	return true, nil
}

func commitRequest(key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/loja/cantina/checkout/commit", strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	handler := Idempotency(&memoryIdempotencyStore{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"order_id":"abc"}}`))
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, commitRequest("k1", `{"total":100}`))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, commitRequest("k1", `{"total":100}`))

	if calls.Load() != 1 {
		t.Fatalf("handler calls = %d", calls.Load())
	}
	if second.Code != http.StatusCreated {
		t.Fatalf("replay status = %d", second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("replay body = %q, want %q", second.Body.String(), first.Body.String())
	}
}

func TestIdempotencyRejectsReusedKeyWithDifferentBody(t *testing.T) {
	t.Parallel()

	handler := Idempotency(&memoryIdempotencyStore{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, commitRequest("k1", `{"total":100}`))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, commitRequest("k1", `{"total":999}`))

	if second.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", second.Code)
	}
}

func TestIdempotencyRequiresKeyOnGuardedRoutes(t *testing.T) {
	t.Parallel()

	handler := Idempotency(&memoryIdempotencyStore{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a key")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, commitRequest("", `{}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestIdempotencyIgnoresUnguardedRoutes(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	handler := Idempotency(&memoryIdempotencyStore{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/menu", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if calls.Load() != 2 {
		t.Fatalf("handler calls = %d", calls.Load())
	}
}
