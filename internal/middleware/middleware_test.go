package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"video-tagger/internal/logging"
	"video-tagger/internal/metrics"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	if err := logging.Setup(logging.Options{Writers: []io.Writer{&buf}}); err != nil {
		t.Fatalf("logging.Setup: %v", err)
	}
	t.Cleanup(func() { _ = logging.Setup(logging.Options{}) })
	return &buf
}

func TestResponseWriterCapturesStatusAndBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusInternalServerError)
	rw.Write([]byte("missing"))

	if rw.statusCode != http.StatusNotFound {
		t.Errorf("statusCode = %d, want first value 404", rw.statusCode)
	}
	if rw.bytesWritten != 7 {
		t.Errorf("bytesWritten = %d, want 7", rw.bytesWritten)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("recorder code = %d", rec.Code)
	}
}

func TestLoggerMiddleware(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		config        LoggingConfig
		expectLogging bool
	}{
		{"Logs API requests", "/api/files", DefaultLoggingConfig(), true},
		{"Logs health checks when enabled", "/health", LoggingConfig{LogHealthChecks: true}, true},
		{"Skips health checks when disabled", "/health", LoggingConfig{LogHealthChecks: false}, false},
		{"Skips configured prefixes", "/metrics", LoggingConfig{SkipPaths: []string{"/metrics"}, LogHealthChecks: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t)
			handler := Logger(tt.config)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte("ok"))
			}))

			req := httptest.NewRequest(http.MethodGet, tt.path, http.NoBody)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("Expected status 200, got %d", w.Code)
			}
			logged := strings.Contains(buf.String(), "http ")
			if logged != tt.expectLogging {
				t.Errorf("logged = %v, want %v: %q", logged, tt.expectLogging, buf.String())
			}
		})
	}
}

func TestLoggerLineContents(t *testing.T) {
	buf := captureLogs(t)
	handler := Logger(DefaultLoggingConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	req := httptest.NewRequest(http.MethodDelete, "/api/tags/file?path=%2Fv%2Fa.mp4", http.NoBody)
	req.Header.Set("X-Forwarded-For", "10.0.0.9, 10.0.0.1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	for _, want := range []string{"WRN", "10.0.0.9", "DELETE", "/api/tags/file", "path=%2Fv%2Fa.mp4", " 500 "} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %q missing %q", line, want)
		}
	}
}

func TestSanitizeLogField(t *testing.T) {
	tests := map[string]string{
		"plain":            "plain",
		"a\nb\rc":          "a b c",
		"nul\x00byte":      "nulbyte",
		"\x1b[31mred":      "[31mred",
		"tab\tkept\x07bel": "tab\tkeptbel",
	}
	for in, want := range tests {
		if got := sanitizeLogField(in); got != want {
			t.Errorf("sanitizeLogField(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.RemoteAddr = "192.168.1.5:5555"
	if got := getClientIP(req); got != "192.168.1.5" {
		t.Errorf("RemoteAddr ip = %q", got)
	}
	req.Header.Set("X-Real-IP", "172.16.0.2")
	if got := getClientIP(req); got != "172.16.0.2" {
		t.Errorf("X-Real-IP ip = %q", got)
	}
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Metrics(DefaultMetricsConfig()))
	r.HandleFunc("/api/tags/{name}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {}).Methods(http.MethodGet)

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/tags/{name}", "404")
	before := testutil.ToFloat64(counter)

	for _, name := range []string{"cat", "dog", "bird"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/tags/"+name, http.NoBody))
	}

	if got := testutil.ToFloat64(counter) - before; got != 3 {
		t.Errorf("recorded %v requests under the route template, want 3", got)
	}

	health := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/health", "200")
	before = testutil.ToFloat64(health)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	if got := testutil.ToFloat64(health) - before; got != 0 {
		t.Errorf("health check was recorded")
	}
}

func TestRouteLabelUnmatched(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/nowhere", http.NoBody)
	if got := routeLabel(req); got != "unmatched" {
		t.Errorf("routeLabel = %q", got)
	}
}

func jsonHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, body)
	})
}

func TestCompressionMiddleware(t *testing.T) {
	large := "[" + strings.Repeat(`"tag",`, 400) + `"tag"]`

	tests := []struct {
		name           string
		body           string
		acceptEncoding string
		wantGzip       bool
	}{
		{"Compresses large JSON", large, "gzip, deflate", true},
		{"Leaves small JSON alone", `["a"]`, "gzip", false},
		{"Respects missing Accept-Encoding", large, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Compression(DefaultCompressionConfig())(jsonHandler(tt.body))
			req := httptest.NewRequest(http.MethodGet, "/api/tags/top", http.NoBody)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != http.StatusCreated {
				t.Errorf("status = %d, want 201", w.Code)
			}

			gotGzip := w.Header().Get("Content-Encoding") == "gzip"
			if gotGzip != tt.wantGzip {
				t.Fatalf("gzip = %v, want %v", gotGzip, tt.wantGzip)
			}

			body := w.Body.Bytes()
			if gotGzip {
				zr, err := gzip.NewReader(bytes.NewReader(body))
				if err != nil {
					t.Fatalf("gzip.NewReader: %v", err)
				}
				body, err = io.ReadAll(zr)
				if err != nil {
					t.Fatalf("read gzip body: %v", err)
				}
			}
			if string(body) != tt.body {
				t.Errorf("body mismatch: got %d bytes, want %d", len(body), len(tt.body))
			}
		})
	}
}

func TestCompressionSkipsNonJSON(t *testing.T) {
	handler := Compression(DefaultCompressionConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, strings.Repeat("x", 4096))
	}))

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Header().Get("Content-Encoding") != "" {
		t.Error("text/plain response should not be compressed")
	}
	if w.Body.Len() != 4096 {
		t.Errorf("body length = %d", w.Body.Len())
	}
}

func BenchmarkLoggingMiddleware(b *testing.B) {
	handler := Logger(LoggingConfig{SkipPaths: []string{"/"}})(jsonHandler(`{}`))
	req := httptest.NewRequest(http.MethodGet, "/api/files", http.NoBody)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
}
