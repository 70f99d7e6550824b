package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crickarena/fantasy-cricket/internal/domain/user"
	"github.com/crickarena/fantasy-cricket/internal/usecase"
)

type stubVerifier struct {
	principal user.Principal
	err       error
}

func (s stubVerifier) VerifyAccessToken(_ context.Context, _ string) (user.Principal, error) {
	return s.principal, s.err
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	handler := RequireAuth(stubVerifier{}, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/leagues/mine", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestRequireAuth_AttachesPrincipal(t *testing.T) {
	verifier := stubVerifier{principal: user.Principal{UserID: "user-1"}}
	var seen user.Principal
	handler := RequireAuth(verifier, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = principalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/leagues/mine", nil)
	req.Header.Set("Authorization", "Bearer token-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if seen.UserID != "user-1" {
		t.Fatalf("expected principal user-1, got %q", seen.UserID)
	}
}

func TestRequireAuth_VerifierError(t *testing.T) {
	verifier := stubVerifier{err: fmt.Errorf("%w: token expired", usecase.ErrUnauthorized)}
	handler := RequireAuth(verifier, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/leagues/mine", nil)
	req.Header.Set("Authorization", "Bearer stale")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestRequireInternalJobToken(t *testing.T) {
	handler := RequireInternalJobToken("secret-token", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/sheet-sync", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/sheet-sync", nil)
	req.Header.Set("X-Internal-Job-Token", "secret-token")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 with token, got %d", rec.Code)
	}
}

func TestRequireInternalJobToken_Unconfigured(t *testing.T) {
	handler := RequireInternalJobToken("", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/sheet-sync", nil)
	req.Header.Set("X-Internal-Job-Token", "anything")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
}
