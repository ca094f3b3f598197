package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinicore/clinicore/internal/platform/access"
)

func auditContext(e *echo.Echo, method, target string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, nil)
	ctx := access.WithActor(req.Context(), access.Actor{ID: "acct-1", Role: "practitioner", Authenticated: true})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAudit_RecordsEntry(t *testing.T) {
	var recorded []AuditEntry
	recorder := AuditRecorderFunc(func(entry AuditEntry) error {
		recorded = append(recorded, entry)
		return nil
	})

	e := echo.New()
	c, _ := auditContext(e, http.MethodGet, "/api/v1/patients/abc-123")
	c.Set("request_id", "req-1")

	mw := Audit(zerolog.Nop(), recorder)
	h := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(recorded) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(recorded))
	}
	entry := recorded[0]
	if entry.ActorID != "acct-1" || entry.ActorRole != "practitioner" {
		t.Errorf("unexpected actor: %+v", entry)
	}
	if entry.Resource != "patients" || entry.ResourceID != "abc-123" {
		t.Errorf("resource = %q/%q, want patients/abc-123", entry.Resource, entry.ResourceID)
	}
	if entry.Action != "read" {
		t.Errorf("action = %q, want read", entry.Action)
	}
	if entry.RequestID != "req-1" {
		t.Errorf("request_id = %q, want req-1", entry.RequestID)
	}
}

func TestAudit_SkipsNonAPIRoutes(t *testing.T) {
	var recorded []AuditEntry
	recorder := AuditRecorderFunc(func(entry AuditEntry) error {
		recorded = append(recorded, entry)
		return nil
	})

	e := echo.New()
	c, _ := auditContext(e, http.MethodGet, "/health")

	mw := Audit(zerolog.Nop(), recorder)
	h := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recorded) != 0 {
		t.Errorf("expected no audit entries for /health, got %d", len(recorded))
	}
}

func TestAudit_MethodActions(t *testing.T) {
	cases := []struct {
		method string
		want   string
	}{
		{http.MethodGet, "read"},
		{http.MethodPost, "create"},
		{http.MethodPut, "update"},
		{http.MethodPatch, "update"},
		{http.MethodDelete, "delete"},
	}
	for _, tc := range cases {
		if got := methodToAction(tc.method); got != tc.want {
			t.Errorf("methodToAction(%s) = %q, want %q", tc.method, got, tc.want)
		}
	}
}

func TestAudit_RecorderFailureDoesNotFailRequest(t *testing.T) {
	recorder := AuditRecorderFunc(func(entry AuditEntry) error {
		return echo.ErrInternalServerError
	})

	e := echo.New()
	c, rec := auditContext(e, http.MethodGet, "/api/v1/appointments")

	mw := Audit(zerolog.Nop(), recorder)
	h := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
