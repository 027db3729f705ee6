package apiapp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestServerAuthMiddlewareRejectsBadKey(t *testing.T) {
	mw := ServerAuthMiddleware("fleet-secret", zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/ingest/servers/srv-1/chat", nil)
	req.Header.Set("X-Server-Key", "wrong-key")
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called on invalid server key")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusForbidden)
	}
}

func TestServerAuthMiddlewareRejectsMissingKey(t *testing.T) {
	mw := ServerAuthMiddleware("fleet-secret", zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/ingest/servers/srv-1/chat", nil)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called without a server key")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusForbidden)
	}
}

func TestServerAuthMiddlewarePassesValidKey(t *testing.T) {
	mw := ServerAuthMiddleware("fleet-secret", zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/ingest/servers/srv-1/chat", nil)
	req.Header.Set("X-Server-Key", "fleet-secret")
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestStaffAuthMiddlewareRejectsMissingBearer(t *testing.T) {
	mw := StaffAuthMiddleware("staff-token", zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/servers", nil)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called without a bearer token")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestStaffAuthMiddlewareRejectsWrongToken(t *testing.T) {
	mw := StaffAuthMiddleware("staff-token", zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/servers", nil)
	req.Header.Set("Authorization", "Bearer other-token")
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called with a wrong token")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestStaffAuthMiddlewarePassesValidToken(t *testing.T) {
	mw := StaffAuthMiddleware("staff-token", zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/servers", nil)
	req.Header.Set("Authorization", "Bearer staff-token")
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}
