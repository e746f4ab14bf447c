package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/seiya-matsuoka/csv-to-insert-generator/internal/config"
	"github.com/seiya-matsuoka/csv-to-insert-generator/internal/convert"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           8080,
			RequestTimeout: 10 * time.Second,
		},
		Convert: config.ConvertConfig{
			MaxBodyBytes: 1 << 20,
			MaxErrors:    100,
		},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		Rate:    config.RateLimitConfig{Enabled: false},
		Logging: config.LoggingConfig{Level: "error", Format: "text"},
	}
	return NewServer(cfg)
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "ok")
	}
}

func TestConvert_Success(t *testing.T) {
	s := newTestServer(t)

	body := `{"csvText":"#table=users\n#types=int,text\nid,name\n1,Alice\n","fileName":"users.csv"}`
	rec := doJSON(t, s, http.MethodPost, "/api/convert", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp ConvertResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(resp.SQLText, "INSERT INTO users (id, name) VALUES (1, 'Alice');") {
		t.Errorf("unexpected sqlText:\n%s", resp.SQLText)
	}
	if !strings.HasPrefix(resp.OutputFileName, "insert_users_") || !strings.HasSuffix(resp.OutputFileName, ".sql") {
		t.Errorf("unexpected outputFileName: %q", resp.OutputFileName)
	}
	if _, err := time.Parse(time.RFC3339, resp.GeneratedAt); err != nil {
		t.Errorf("generatedAt %q is not RFC3339: %v", resp.GeneratedAt, err)
	}
}

func TestConvert_ValidationFailure(t *testing.T) {
	s := newTestServer(t)

	body := `{"csvText":"#table=users\n#types=int\nid\nabc\n","fileName":"users.csv"}`
	rec := doJSON(t, s, http.MethodPost, "/api/convert", body)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}

	var resp ConvertFailure
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", resp.Errors)
	}
	e := resp.Errors[0]
	if e.FileLine != 4 || e.ColumnName != "id" || e.Type != "int" || e.Input != "abc" {
		t.Errorf("unexpected error detail: %+v", e)
	}
	if resp.Truncated {
		t.Error("unexpected truncation")
	}
}

func TestConvert_BlankCSVText(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/convert", `{"csvText":"   ","fileName":"x.csv"}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestConvert_InvalidJSON(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/convert", `{"csvText": `)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestConvert_BodyTooLarge(t *testing.T) {
	s := newTestServer(t)
	s.cfg.Convert.MaxBodyBytes = 64

	big := strings.Repeat("x", 256)
	rec := doJSON(t, s, http.MethodPost, "/api/convert", `{"csvText":"`+big+`"}`)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
	}
}

func TestDownloadTemplate(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/template", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="template.csv"`) {
		t.Errorf("Content-Disposition = %q", cd)
	}

	// The shipped template must itself convert cleanly.
	tplReq, err := convert.NewRequest(rec.Body.String(), "template.csv")
	if err != nil {
		t.Fatalf("template is blank: %v", err)
	}
	result := convert.NewPipeline().Convert(tplReq)
	if !result.OK() {
		t.Errorf("template does not pass its own pipeline: %v", result.Errors)
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
	}
	for header, val := range want {
		if got := rec.Header().Get(header); got != val {
			t.Errorf("%s = %q, want %q", header, got, val)
		}
	}
}

func TestCORS_Preflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/convert", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Access-Control-Allow-Origin = %q, want allowed origin echoed", got)
	}
}

func TestRateLimit_Exceeded(t *testing.T) {
	limiter := newRateLimiter(2, time.Minute)
	handler := limiter.middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("expected Retry-After header")
	}
}
