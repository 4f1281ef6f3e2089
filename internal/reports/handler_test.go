package reports

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yojana-dates/yojana-backend/internal/auditlog"
	"github.com/yojana-dates/yojana-backend/internal/registration"
)

type fakeSource struct{ rows []registration.Registration }

func (f fakeSource) ListAll(context.Context) ([]registration.Registration, error) {
	return f.rows, nil
}

type fakeAudit struct{ actions []string }

func (f *fakeAudit) LogAction(_ context.Context, action, _ string, _ map[string]interface{}, _, _ string) error {
	f.actions = append(f.actions, action)
	return nil
}

func (f *fakeAudit) GetAuditLogs(context.Context, auditlog.AuditLogFilter) (*auditlog.PaginatedAuditLogs, error) {
	return &auditlog.PaginatedAuditLogs{}, nil
}

func TestExportHandlerFiltersAndAttaches(t *testing.T) {
	gin.SetMode(gin.TestMode)

	paid := sampleRow()
	pending := sampleRow()
	pending.ID = "pending-1"
	pending.PaymentConfirmed = false

	audit := &fakeAudit{}
	h := NewHandler(fakeSource{rows: []registration.Registration{paid, pending}}, NewExporter(time.UTC), audit, time.UTC, zerolog.Nop())
	h.now = func() time.Time { return exportNow }

	r := gin.New()
	r.GET("/admin/export", h.Export)

	req := httptest.NewRequest(http.MethodGet, "/admin/export?payment=pending", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="yojana_registrations_2026-02-14-09-05-07.csv"` {
		t.Fatalf("content-disposition = %s", cd)
	}
	lines := strings.Split(w.Body.String(), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[1], `"pending-1",`) {
		t.Fatalf("body = %q", w.Body.String())
	}
	if len(audit.actions) != 1 || audit.actions[0] != ActionExported {
		t.Fatalf("audit = %v", audit.actions)
	}
}

func TestExportHandlerRejectsFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(fakeSource{}, NewExporter(time.UTC), nil, time.UTC, zerolog.Nop())

	r := gin.New()
	r.GET("/admin/export", h.Export)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/export?format=docx", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}
