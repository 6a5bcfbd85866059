package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	mw "github.com/5w1tchy/library-api/internal/api/middlewares"
)

func TestRequestID_GeneratedAndEchoed(t *testing.T) {
	var inHandler string
	h := mw.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inHandler = mw.GetRequestID(r)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	rid := rec.Header().Get("X-Request-ID")
	if rid == "" {
		t.Fatal("response must carry X-Request-ID")
	}
	if inHandler != rid {
		t.Fatalf("handler saw %q, response has %q", inHandler, rid)
	}
}

func TestRequestID_KeepsValidClientID(t *testing.T) {
	h := mw.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "client-abc.123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "client-abc.123" {
		t.Fatalf("valid client id must be kept, got %q", got)
	}
}

func TestRequestID_ReplacesGarbageClientID(t *testing.T) {
	var inHandler string
	h := mw.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inHandler = mw.GetRequestID(r)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "bad id with spaces\n")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	got := rec.Header().Get("X-Request-ID")
	if got == "" || strings.Contains(got, " ") {
		t.Fatalf("garbage id must be replaced, got %q", got)
	}
	if !regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`).MatchString(got) {
		t.Fatalf("generated id has unexpected characters: %q", got)
	}
	if inHandler != got {
		t.Fatalf("context id %q must match the response id %q", inHandler, got)
	}
}

func TestRecovery_TurnsPanicInto500(t *testing.T) {
	h := mw.Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "boom") {
		t.Fatal("panic value must not leak to the client")
	}
}

func TestResponseTime_HeaderSetBeforeBody(t *testing.T) {
	h := mw.ResponseTimeMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Header().Get("X-Response-Time") == "" {
		t.Fatal("X-Response-Time must be set")
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := mw.SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	for header, want := range map[string]string{
		"X-Frame-Options":        "DENY",
		"X-Content-Type-Options": "nosniff",
		"Referrer-Policy":        "no-referrer",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if csp := rec.Header().Get("Content-Security-Policy"); !strings.Contains(csp, "'unsafe-inline'") {
		t.Errorf("CSP must allow the bundled IDE assets, got %q", csp)
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be set over plain HTTP")
	}
}

func TestBodySizeLimit_RejectsOversizedPost(t *testing.T) {
	t.Setenv("MAX_BODY_SIZE", "32")

	h := mw.BodySizeLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 1024)
		if _, err := r.Body.Read(buf); err != nil {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	body := strings.NewReader(strings.Repeat("x", 128))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/graphql", body))

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("want 413, got %d", rec.Code)
	}
}

func TestBodySizeLimit_IgnoresGet(t *testing.T) {
	h := mw.BodySizeLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
}
