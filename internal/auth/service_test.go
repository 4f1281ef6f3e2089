package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/yojana-dates/yojana-backend/middleware"
)

const testSecret = "test-secret"

type auditCall struct{ action, status string }

type fakeAudit struct{ calls []auditCall }

func (f *fakeAudit) LogAction(_ context.Context, action, _ string, _ map[string]interface{}, _, status string) error {
	f.calls = append(f.calls, auditCall{action, status})
	return nil
}

func newTestService(t *testing.T) (*service, *fakeAudit) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	audit := &fakeAudit{}
	svc := NewService("admin", string(hash), testSecret, time.Hour, audit).(*service)
	return svc, audit
}

func TestLoginIssuesAdminToken(t *testing.T) {
	svc, audit := newTestService(t)
	fixed := time.Now().Truncate(time.Second)
	svc.now = func() time.Time { return fixed }

	tok, err := svc.Login(context.Background(), LoginInput{Username: "admin", Password: "s3cret-pass"}, "10.0.0.1")
	if err != nil {
		t.Fatal(err)
	}
	if !tok.ExpiresAt.Equal(fixed.Add(time.Hour)) {
		t.Fatalf("expiresAt = %s", tok.ExpiresAt)
	}

	parsed, err := jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) { return []byte(testSecret), nil })
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["role"] != "admin" || claims["sub"] != "admin" {
		t.Fatalf("claims = %v", claims)
	}
	if len(audit.calls) != 1 || audit.calls[0] != (auditCall{ActionAdminLogin, "success"}) {
		t.Fatalf("audit = %v", audit.calls)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, audit := newTestService(t)
	for _, in := range []LoginInput{
		{Username: "admin", Password: "wrong"},
		{Username: "root", Password: "s3cret-pass"},
	} {
		if _, err := svc.Login(context.Background(), in, ""); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("%+v: err = %v", in, err)
		}
	}
	if len(audit.calls) != 2 || audit.calls[1].status != "failure" {
		t.Fatalf("audit = %v", audit.calls)
	}
}

func TestLoginTokenPassesAdminAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _ := newTestService(t)

	r := gin.New()
	r.POST("/admin/login", NewHandler(svc).Login)
	admin := r.Group("/admin", middleware.AdminAuth(testSecret))
	admin.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("admin")) })

	body, _ := json.Marshal(LoginInput{Username: "admin", Password: "s3cret-pass"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/login", bytes.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body)
	}
	var res struct {
		Data Token `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+res.Data.Token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "admin" {
		t.Fatalf("ping: %d %s", w.Code, w.Body)
	}
}

func TestLoginHandlerErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _ := newTestService(t)
	r := gin.New()
	r.POST("/admin/login", NewHandler(svc).Login)

	for body, want := range map[string]int{
		`{"username":"admin"}`:                    http.StatusBadRequest,
		`{"username":"admin","password":"nope"}`: http.StatusUnauthorized,
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/login", bytes.NewBufferString(body)))
		if w.Code != want {
			t.Errorf("%s: %d, want %d", body, w.Code, want)
		}
	}
}
