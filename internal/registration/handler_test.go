package registration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter() (*gin.Engine, *memRepo) {
	gin.SetMode(gin.TestMode)
	svc, repo, _ := newTestService()
	h := NewHandler(svc)

	r := gin.New()
	g := r.Group("/registrations")
	g.GET("", h.ListRegistrations)
	g.POST("", h.CreateRegistration)
	g.GET("/:id", h.GetRegistration)
	g.PATCH("/:id", h.UpdateRegistration)
	g.DELETE("/:id", h.DeleteRegistration)
	return r, repo
}

type response struct {
	Success  bool            `json:"success"`
	Error    string          `json:"error"`
	Data     json.RawMessage `json:"data"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}

func call(t *testing.T, r http.Handler, method, path string, body any) (int, response) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatal(err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var res response
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return w.Code, res
}

func TestHandlerCreateAndGet(t *testing.T) {
	r, _ := newTestRouter()

	code, res := call(t, r, http.MethodPost, "/registrations", validRaw())
	if code != http.StatusCreated || !res.Success {
		t.Fatalf("create: %d %+v", code, res)
	}
	var created Registration
	if err := json.Unmarshal(res.Data, &created); err != nil {
		t.Fatal(err)
	}

	code, res = call(t, r, http.MethodGet, "/registrations/"+created.ID, nil)
	if code != http.StatusOK {
		t.Fatalf("get: %d %+v", code, res)
	}
	var got Registration
	_ = json.Unmarshal(res.Data, &got)
	if got.Name != "Asha Rai" {
		t.Fatalf("got = %+v", got)
	}
}

func TestHandlerCreateReversedDates(t *testing.T) {
	r, repo := newTestRouter()
	raw := validRaw()
	raw["endDateTime"] = "2026-12-24T10:00:00.000Z"

	code, res := call(t, r, http.MethodPost, "/registrations", raw)
	if code != http.StatusBadRequest || res.Success || res.Error != "endDateTime must be after startDateTime" {
		t.Fatalf("%d %+v", code, res)
	}
	if len(repo.order) != 0 {
		t.Fatal("record stored")
	}
}

func TestHandlerBadJSON(t *testing.T) {
	r, _ := newTestRouter()
	code, res := call(t, r, http.MethodPost, "/registrations", "{not json")
	if code != http.StatusBadRequest || res.Error != "Invalid JSON body" {
		t.Fatalf("%d %+v", code, res)
	}
}

func TestHandlerListPaging(t *testing.T) {
	r, _ := newTestRouter()
	for i := 0; i < 3; i++ {
		call(t, r, http.MethodPost, "/registrations", validRaw())
	}

	code, res := call(t, r, http.MethodGet, "/registrations?limit=2&page=2", nil)
	if code != http.StatusOK || res.Total != 3 || res.Page != 2 || res.PageSize != 2 {
		t.Fatalf("%d %+v", code, res)
	}
	var rows []Registration
	_ = json.Unmarshal(res.Data, &rows)
	if len(rows) != 1 {
		t.Fatalf("rows = %d", len(rows))
	}
}

func TestHandlerPatchAndDelete(t *testing.T) {
	r, repo := newTestRouter()
	_, res := call(t, r, http.MethodPost, "/registrations", validRaw())
	var created Registration
	_ = json.Unmarshal(res.Data, &created)

	code, res := call(t, r, http.MethodPatch, "/registrations/"+created.ID, map[string]any{"name": ""})
	if code != http.StatusBadRequest || res.Error != "Name must be at least 2 chars" {
		t.Fatalf("patch empty name: %d %+v", code, res)
	}

	code, _ = call(t, r, http.MethodPatch, "/registrations/"+created.ID, map[string]any{"paymentConfirmed": true})
	if code != http.StatusOK || !repo.byID[created.ID].PaymentConfirmed {
		t.Fatalf("patch payment: %d", code)
	}

	code, res = call(t, r, http.MethodDelete, "/registrations/missing", nil)
	if code != http.StatusNotFound || res.Error != "Registration not found" {
		t.Fatalf("delete missing: %d %+v", code, res)
	}

	code, res = call(t, r, http.MethodDelete, "/registrations/"+created.ID, nil)
	if code != http.StatusOK || !res.Success || len(repo.order) != 0 {
		t.Fatalf("delete: %d %+v", code, res)
	}
}
