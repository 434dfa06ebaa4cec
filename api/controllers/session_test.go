package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type fakeSessionManager struct {
	token string
}

func (f *fakeSessionManager) SetToken(ctx context.Context, token string) error {
	f.token = token
	return nil
}

func (f *fakeSessionManager) ClearToken(ctx context.Context) error {
	f.token = ""
	return nil
}

func (f *fakeSessionManager) IsAuthenticated(ctx context.Context) bool {
	return f.token != ""
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	manager := &fakeSessionManager{}

	rec := httptest.NewRecorder()
	SessionStatus(manager, nil)(rec, httptest.NewRequest(http.MethodGet, "/v1/session", nil))
	if !strings.Contains(rec.Body.String(), `"authenticated":false`) {
		t.Fatalf("fresh session must be anonymous: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	SessionSet(manager, nil)(rec, httptest.NewRequest(http.MethodPut, "/v1/session", strings.NewReader(`{"token":"tok-1"}`)))
	if rec.Code != http.StatusOK || manager.token != "tok-1" {
		t.Fatalf("set: status = %d token = %q", rec.Code, manager.token)
	}
	if !strings.Contains(rec.Body.String(), `"authenticated":true`) {
		t.Fatalf("set must report authenticated: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	SessionClear(manager, nil)(rec, httptest.NewRequest(http.MethodDelete, "/v1/session", nil))
	if rec.Code != http.StatusOK || manager.token != "" {
		t.Fatalf("clear: status = %d token = %q", rec.Code, manager.token)
	}
}

func TestSessionSetRequiresToken(t *testing.T) {
	t.Parallel()

	manager := &fakeSessionManager{}
	rec := httptest.NewRecorder()
	SessionSet(manager, nil)(rec, httptest.NewRequest(http.MethodPut, "/v1/session", strings.NewReader(`{}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}
