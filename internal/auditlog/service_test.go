package auditlog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeRepo struct {
	created []AuditLog
	filter  AuditLogFilter
	total   int64
	err     error
}

func (f *fakeRepo) Create(_ context.Context, log *AuditLog) error {
	f.created = append(f.created, *log)
	return f.err
}

func (f *fakeRepo) GetByFilter(_ context.Context, filter AuditLogFilter) ([]AuditLog, int64, error) {
	f.filter = filter
	if f.err != nil {
		return nil, 0, f.err
	}
	return []AuditLog{}, f.total, nil
}

func TestLogActionDefaults(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo).(*service)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600)) }

	if err := svc.LogAction(context.Background(), "REGISTRATION_CREATED", "r1", nil, "10.0.0.1", ""); err != nil {
		t.Fatal(err)
	}
	got := repo.created[0]
	if got.Status != StatusSuccess || got.Details == nil || got.CreatedAt.Location() != time.UTC || got.CreatedAt.Hour() != 11 {
		t.Fatalf("log = %+v", got)
	}
}

func TestGetAuditLogsClampsPaging(t *testing.T) {
	repo := &fakeRepo{total: 41}
	svc := NewService(repo)

	res, err := svc.GetAuditLogs(context.Background(), AuditLogFilter{Page: 0, Limit: 500})
	if err != nil {
		t.Fatal(err)
	}
	if repo.filter.Page != 1 || repo.filter.Limit != 20 {
		t.Fatalf("filter = %+v", repo.filter)
	}
	if res.TotalPages != 3 || res.Total != 41 {
		t.Fatalf("res = %+v", res)
	}
}

func TestBuildMongoFilter(t *testing.T) {
	q := buildMongoFilter(AuditLogFilter{Action: "EMAIL.", Status: StatusFailure})
	rx, ok := q["action"].(primitive.Regex)
	if !ok || rx.Pattern != `EMAIL\.` || rx.Options != "i" {
		t.Fatalf("action = %#v", q["action"])
	}
	if q["status"] != StatusFailure {
		t.Fatalf("status = %v", q["status"])
	}
	if _, ok := q["registrationId"]; ok {
		t.Fatal("empty registrationId filtered")
	}
}

func TestHandlerGetAuditLogs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeRepo{total: 1}
	r := gin.New()
	r.GET("/admin/audit-logs", NewHandler(NewService(repo), zerolog.Nop()).GetAuditLogs)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/audit-logs?action=LOGIN&page=2&limit=5", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if repo.filter.Action != "LOGIN" || repo.filter.Page != 2 || repo.filter.Limit != 5 {
		t.Fatalf("filter = %+v", repo.filter)
	}
	var body struct {
		Success bool               `json:"success"`
		Data    PaginatedAuditLogs `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || !body.Success || body.Data.Limit != 5 {
		t.Fatalf("body = %s", w.Body)
	}

	repo.err = errors.New("db down")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/audit-logs", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
}
