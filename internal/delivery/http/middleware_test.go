package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestIsAllowedOrigin(t *testing.T) {
	tests := []struct {
		name           string
		origin         string
		allowedOrigins []string
		want           bool
	}{
		{
			name:           "exact match",
			origin:         "https://brands.example.com",
			allowedOrigins: []string{"https://brands.example.com"},
			want:           true,
		},
		{
			name:           "wildcard match",
			origin:         "http://localhost:5173",
			allowedOrigins: []string{"http://localhost:*"},
			want:           true,
		},
		{
			name:           "multiple allowed origins - matches first",
			origin:         "http://localhost:3000",
			allowedOrigins: []string{"http://localhost:*", "http://localhost:3000"},
			want:           true,
		},
		{
			name:           "multiple allowed origins - matches second",
			origin:         "http://localhost:3000",
			allowedOrigins: []string{"https://brands.example.com", "http://localhost:3000"},
			want:           true,
		},
		{
			name:           "no match",
			origin:         "http://evil.com",
			allowedOrigins: []string{"http://localhost:*"},
			want:           false,
		},
		{
			name:           "empty origin",
			origin:         "",
			allowedOrigins: []string{"http://localhost:*"},
			want:           false,
		},
		{
			name:           "empty allowed list",
			origin:         "https://brands.example.com",
			allowedOrigins: []string{},
			want:           false,
		},
		{
			name:           "partial wildcard match",
			origin:         "https://brands.example.com",
			allowedOrigins: []string{"https://brands.*"},
			want:           true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isAllowedOrigin(tt.origin, tt.allowedOrigins)
			if got != tt.want {
				t.Errorf("isAllowedOrigin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		origin         string
		allowedOrigins []string
		method         string
		wantStatus     int
		checkHeaders   bool
		wantCORS       bool
	}{
		{
			name:           "allowed origin - GET request",
			origin:         "http://localhost:5173",
			allowedOrigins: []string{"http://localhost:*"},
			method:         "GET",
			wantStatus:     http.StatusOK,
			checkHeaders:   true,
			wantCORS:       true,
		},
		{
			name:           "allowed origin - OPTIONS request",
			origin:         "http://localhost:5173",
			allowedOrigins: []string{"http://localhost:*"},
			method:         "OPTIONS",
			wantStatus:     http.StatusNoContent,
			checkHeaders:   true,
			wantCORS:       true,
		},
		{
			name:           "disallowed origin",
			origin:         "http://evil.com",
			allowedOrigins: []string{"http://localhost:*"},
			method:         "GET",
			wantStatus:     http.StatusOK,
			checkHeaders:   true,
			wantCORS:       false,
		},
		{
			name:           "no origin header",
			origin:         "",
			allowedOrigins: []string{"http://localhost:*"},
			method:         "GET",
			wantStatus:     http.StatusOK,
			checkHeaders:   true,
			wantCORS:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup router
			router := gin.New()
			router.Use(CORSMiddleware(tt.allowedOrigins))
			router.GET("/test", func(c *gin.Context) {
				c.String(http.StatusOK, "OK")
			})

			// Create request
			req := httptest.NewRequest(tt.method, "/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}

			// Record response
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			// Check status
			if w.Code != tt.wantStatus {
				t.Errorf("Status = %d, want %d", w.Code, tt.wantStatus)
			}

			// Check CORS headers
			if tt.checkHeaders {
				corsHeader := w.Header().Get("Access-Control-Allow-Origin")
				if tt.wantCORS {
					if corsHeader != tt.origin {
						t.Errorf("Access-Control-Allow-Origin = %s, want %s", corsHeader, tt.origin)
					}
					if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
						t.Errorf("Access-Control-Allow-Credentials not set to true")
					}
				} else {
					if corsHeader != "" {
						t.Errorf("Access-Control-Allow-Origin should not be set for disallowed origin, got %s", corsHeader)
					}
				}
			}
		})
	}
}

func TestCORSMiddleware_PreflightRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(CORSMiddleware([]string{"http://localhost:*"}))
	router.POST("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	// Create preflight request
	req := httptest.NewRequest("OPTIONS", "/test", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Should return 204 No Content
	if w.Code != http.StatusNoContent {
		t.Errorf("Preflight status = %d, want %d", w.Code, http.StatusNoContent)
	}

	// Check CORS headers
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Errorf("Access-Control-Allow-Origin not set correctly")
	}
	if w.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Errorf("Access-Control-Allow-Methods not set")
	}
	if w.Header().Get("Access-Control-Allow-Headers") == "" {
		t.Errorf("Access-Control-Allow-Headers not set")
	}
	if w.Header().Get("Access-Control-Max-Age") == "" {
		t.Errorf("Access-Control-Max-Age not set")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(perMinute int) *gin.Engine {
		router := gin.New()
		router.Use(RateLimitMiddleware(perMinute))
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, "OK")
		})
		return router
	}

	request := func(router *gin.Engine, remoteAddr string) int {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	t.Run("blocks after burst is spent", func(t *testing.T) {
		router := newRouter(2)

		if code := request(router, "10.0.0.1:1234"); code != http.StatusOK {
			t.Errorf("first request status = %d, want %d", code, http.StatusOK)
		}
		if code := request(router, "10.0.0.1:1234"); code != http.StatusOK {
			t.Errorf("second request status = %d, want %d", code, http.StatusOK)
		}
		if code := request(router, "10.0.0.1:1234"); code != http.StatusTooManyRequests {
			t.Errorf("third request status = %d, want %d", code, http.StatusTooManyRequests)
		}
	})

	t.Run("limits are per client ip", func(t *testing.T) {
		router := newRouter(1)

		if code := request(router, "10.0.0.1:1234"); code != http.StatusOK {
			t.Errorf("ip 1 status = %d, want %d", code, http.StatusOK)
		}
		if code := request(router, "10.0.0.2:1234"); code != http.StatusOK {
			t.Errorf("ip 2 status = %d, want %d", code, http.StatusOK)
		}
	})

	t.Run("zero disables limiting", func(t *testing.T) {
		router := newRouter(0)

		for i := 0; i < 20; i++ {
			if code := request(router, "10.0.0.1:1234"); code != http.StatusOK {
				t.Fatalf("request %d status = %d, want %d", i, code, http.StatusOK)
			}
		}
	})
}

func TestLoggerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	original := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = original }()

	router := gin.New()
	router.Use(LoggerMiddleware())
	router.GET("/missing", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	req := httptest.NewRequest("GET", "/missing", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	for _, want := range []string{`"level":"warn"`, `"path":"/missing"`, `"status":404`, `"method":"GET"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log line %s missing %s", out, want)
		}
	}
}
