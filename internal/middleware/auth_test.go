package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/cleanwave/cleanwave-backend/internal/models"
	"github.com/cleanwave/cleanwave-backend/pkg/utils"
)

func testToken(t *testing.T, role models.UserRole) string {
	t.Helper()
	user := &models.User{Email: "worker@cleanwave.test", Role: role}
	user.ID = 42
	token, err := utils.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return token
}

func authedRouter(handler gin.HandlerFunc, mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/probe", append(mw, handler)...)
	return r
}

func probe(c *gin.Context) {
	c.JSON(200, gin.H{
		"userId":   c.GetUint("userId"),
		"userRole": c.GetString("userRole"),
	})
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := authedRouter(probe, AuthMiddleware())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	r.ServeHTTP(w, req)

	if w.Code != 401 {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
}

func TestAuthMiddlewareRejectsGarbageToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := authedRouter(probe, AuthMiddleware())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)

	if w.Code != 401 {
		t.Fatalf("expected 401 for garbage token, got %d", w.Code)
	}
}

func TestAuthMiddlewareAcceptsBearerHeader(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := authedRouter(probe, AuthMiddleware())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, models.RoleCleaner))
	r.ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200 with valid token, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAuthMiddlewareAcceptsQueryToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := authedRouter(probe, AuthMiddleware())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe?token="+testToken(t, models.RoleDriver), nil)
	r.ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200 with query token, got %d", w.Code)
	}
}

func TestOptionalAuthNeverRejects(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := authedRouter(probe, OptionalAuthMiddleware())

	for _, header := range []string{"", "Bearer not-a-token"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)

		if w.Code != 200 {
			t.Fatalf("optional auth aborted request (header %q): %d", header, w.Code)
		}
	}
}

func TestOptionalAuthAttachesIdentity(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	var gotID uint
	r := authedRouter(func(c *gin.Context) {
		gotID = c.GetUint("userId")
		c.Status(200)
	}, OptionalAuthMiddleware())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, models.RoleCustomer))
	r.ServeHTTP(w, req)

	if gotID != 42 {
		t.Fatalf("expected userId 42 attached, got %d", gotID)
	}
}

func TestRequireRole(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := authedRouter(probe, AuthMiddleware(), RequireRole("admin"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, models.RoleCleaner))
	r.ServeHTTP(w, req)

	if w.Code != 403 {
		t.Fatalf("expected 403 for wrong role, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, models.RoleAdmin))
	r.ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200 for admin, got %d", w.Code)
	}
}
