package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/offgriddoc/cablebuilder/pkg/errors"
)

type fakeStore struct {
	data   map[string]string
	getErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	f.data[key] = str
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func requestWithPattern(method, url, pattern string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, url, body)
	rc := chi.NewRouteContext()
	rc.RoutePatterns = []string{pattern}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func cartRequest(body, key string) *http.Request {
	req := requestWithPattern(http.MethodPost, "/api/add-to-cart", "/api/add-to-cart", strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req
}

func TestMatchRule(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		pattern string
		ok      bool
	}{
		{"add to cart", http.MethodPost, "/api/add-to-cart", true},
		{"prices", http.MethodPost, "/api/prices", false},
		{"wrong method", http.MethodGet, "/api/add-to-cart", false},
		{"empty", http.MethodPost, "", false},
	}

	for _, tt := range tests {
		rule, ok := matchRule(tt.method, tt.pattern)
		if ok != tt.ok {
			t.Fatalf("%s: expected ok=%v got %v", tt.name, tt.ok, ok)
		}
		if ok && rule.ttl != checkoutIdempotencyTTL {
			t.Fatalf("%s: expected ttl=%v got %v", tt.name, checkoutIdempotencyTTL, rule.ttl)
		}
	}
}

func TestIdempotencyMiddlewarePassesThroughWithoutKey(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		resp := httptest.NewRecorder()
		mw(handler).ServeHTTP(resp, cartRequest(`{"items":[]}`, ""))
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", resp.Code)
		}
	}
	if calls != 2 {
		t.Fatalf("handler executed %d times, expected 2", calls)
	}
	if len(store.data) != 0 {
		t.Fatalf("nothing should be stored without a key")
	}
}

func TestIdempotencyMiddlewareReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"checkoutUrl":"https://shop.example/c/1"}`))
	})

	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, cartRequest(`{"items":[1]}`, "abc"))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected first response 200 got %d", resp.Code)
	}

	rec := httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, cartRequest(`{"items":[1]}`, "abc"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected replay status 200 got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("expected content-type header preserved")
	}
	if strings.TrimSpace(rec.Body.String()) != `{"checkoutUrl":"https://shop.example/c/1"}` {
		t.Fatalf("expected stored body got %s", rec.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler executed %d times, expected 1", calls)
	}
	if _, ok := store.data["fake:POST|/api/add-to-cart:abc"]; !ok {
		t.Fatalf("expected record under scoped key, got %v", store.data)
	}
}

func TestIdempotencyMiddlewareScopesBySession(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := cartRequest(`{}`, "k1")
	req = req.WithContext(WithBuilderSession(req.Context(), "s-1"))
	mw(handler).ServeHTTP(httptest.NewRecorder(), req)

	if _, ok := store.data["fake:s-1|POST|/api/add-to-cart:k1"]; !ok {
		t.Fatalf("expected session scoped key, got %v", store.data)
	}
}

func TestIdempotencyMiddlewareSkipsServerErrors(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	mw(handler).ServeHTTP(httptest.NewRecorder(), cartRequest(`{}`, "retry"))
	mw(handler).ServeHTTP(httptest.NewRecorder(), cartRequest(`{}`, "retry"))

	if calls != 2 {
		t.Fatalf("expected retry to reach handler, calls=%d", calls)
	}
}

func TestIdempotencyMiddlewareDetectsBodyChange(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mw(handler).ServeHTTP(httptest.NewRecorder(), cartRequest(`{"foo":"bar"}`, "xyz"))

	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, cartRequest(`{"foo":"diff"}`, "xyz"))

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	if payload.Error != "idempotency key reused with different request body" {
		t.Fatalf("unexpected storefront error %q", payload.Error)
	}
}

func TestIdempotencyMiddlewareStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("connection refused")
	mw := Idempotency(store, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run when the store is unreachable")
	})

	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, cartRequest(`{}`, "k"))
	if resp.Code != pkgerrors.MetadataFor(pkgerrors.CodeDependency).HTTPStatus {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestIdempotencyMiddlewareNilStore(t *testing.T) {
	mw := Idempotency(nil, nil)
	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	mw(handler).ServeHTTP(httptest.NewRecorder(), cartRequest(`{}`, "k"))
	if !called {
		t.Fatalf("expected pass-through without a store")
	}
}
