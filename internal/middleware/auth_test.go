package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/marhabatours/api/internal/helpers"
	"github.com/marhabatours/api/internal/models"
)

const testSecret = "middleware-test-secret"

type stubResolver struct {
	users map[primitive.ObjectID]*models.User
}

func (s *stubResolver) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return u, nil
}

func newAuthRouter(t *testing.T) (*gin.Engine, *stubResolver) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	resolver := &stubResolver{users: make(map[primitive.ObjectID]*models.User)}
	r := gin.New()

	protected := r.Group("/", Authenticate(testSecret, resolver))
	protected.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": CurrentUser(c).ID.Hex()})
	})
	protected.GET("/admin", RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	r.GET("/maybe", OptionalAuthenticate(testSecret, resolver), func(c *gin.Context) {
		if user := CurrentUser(c); user != nil {
			c.JSON(http.StatusOK, gin.H{"who": user.Email})
			return
		}
		c.JSON(http.StatusOK, gin.H{"who": "anonymous"})
	})

	return r, resolver
}

func (s *stubResolver) add(role string, active bool) (*models.User, string) {
	u := &models.User{
		ID:       primitive.NewObjectID(),
		Email:    "u@example.com",
		Role:     role,
		IsActive: active,
	}
	s.users[u.ID] = u
	token, err := helpers.NewAccessToken(testSecret, u.ID.Hex(), u.Role, time.Hour)
	if err != nil {
		panic(err)
	}
	return u, token
}

func TestAuthenticateBearerHeader(t *testing.T) {
	r, resolver := newAuthRouter(t)
	user, token := resolver.add(models.RoleUser, true)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if want := user.ID.Hex(); !strings.Contains(w.Body.String(), want) {
		t.Errorf("body %q missing user id %q", w.Body.String(), want)
	}
}

func TestAuthenticateCookieFallback(t *testing.T) {
	r, resolver := newAuthRouter(t)
	_, token := resolver.add(models.RoleUser, true)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestAuthenticateRejections(t *testing.T) {
	r, resolver := newAuthRouter(t)

	_, deactivatedToken := resolver.add(models.RoleUser, false)

	// token for an identity that no longer exists
	ghostID := primitive.NewObjectID()
	ghostToken, err := helpers.NewAccessToken(testSecret, ghostID.Hex(), models.RoleUser, time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	expiredUser, _ := resolver.add(models.RoleUser, true)
	expiredToken, err := helpers.NewAccessToken(testSecret, expiredUser.ID.Hex(), models.RoleUser, -time.Minute)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	cases := []struct {
		name  string
		token string
	}{
		{"no token", ""},
		{"garbage token", "garbage"},
		{"expired token", expiredToken},
		{"deleted identity", ghostToken},
		{"deactivated account", deactivatedToken},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if tc.token != "" {
			req.Header.Set("Authorization", "Bearer "+tc.token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", tc.name, w.Code)
		}
	}
}

func TestRequireRole(t *testing.T) {
	r, resolver := newAuthRouter(t)
	_, userToken := resolver.add(models.RoleUser, true)
	_, adminToken := resolver.add(models.RoleAdmin, true)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("non-admin: status = %d, want 403", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("admin: status = %d, want 200", w.Code)
	}
}

func TestOptionalAuthenticate(t *testing.T) {
	r, resolver := newAuthRouter(t)
	_, token := resolver.add(models.RoleUser, true)

	// anonymous passes through
	req := httptest.NewRequest(http.MethodGet, "/maybe", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "anonymous") {
		t.Errorf("anonymous: status = %d, body %s", w.Code, w.Body.String())
	}

	// a bad token also passes through instead of erroring
	req = httptest.NewRequest(http.MethodGet, "/maybe", nil)
	req.Header.Set("Authorization", "Bearer nonsense")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "anonymous") {
		t.Errorf("bad token: status = %d, body %s", w.Code, w.Body.String())
	}

	// a valid one attaches the identity
	req = httptest.NewRequest(http.MethodGet, "/maybe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "u@example.com") {
		t.Errorf("valid token: status = %d, body %s", w.Code, w.Body.String())
	}
}

