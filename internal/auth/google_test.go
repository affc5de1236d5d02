package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	sharedauth "cv-backend/internal/shared/auth"
	"cv-backend/internal/users"
)

func newTestService(t *testing.T, provider *httptest.Server) (*GoogleService, *sharedauth.Signer, *users.Service) {
	t.Helper()
	signer, err := sharedauth.NewSigner("test-secret", false)
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	profiles := users.NewService(users.NewMemoryRepo())
	svc := NewGoogleService("client", "secret", "http://api.local/callback", "http://ui.local/login", signer, profiles)
	if provider != nil {
		svc.oauthConfig.Endpoint = oauth2.Endpoint{
			AuthURL:  provider.URL + "/auth",
			TokenURL: provider.URL + "/token",
		}
	}
	return svc, signer, profiles
}

func newRouter(svc *GoogleService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	svc.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestCallbackIssuesSessionToken(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"at","token_type":"Bearer","expires_in":3600}`))
		case "/userinfo":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"42","email":"taro@example.com","name":"Taro"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer provider.Close()

	orig := userInfoURL
	userInfoURL = provider.URL + "/userinfo"
	defer func() { userInfoURL = orig }()

	svc, signer, profiles := newTestService(t, provider)
	svc.stateStore.put("state-1", time.Now().Add(time.Minute))
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?state=state-1&code=abc", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d: %s", resp.Code, resp.Body.String())
	}
	loc, err := url.Parse(resp.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	if !strings.HasPrefix(loc.String(), "http://ui.local/login") {
		t.Fatalf("unexpected redirect %s", loc)
	}
	claims, err := signer.Verify(loc.Query().Get("token"))
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if claims.Subject != "google:42" || claims.Email != "taro@example.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	user, err := profiles.GetByID(context.Background(), "google:42")
	if err != nil || user.Name != "Taro" {
		t.Fatalf("expected stored profile, got %+v err=%v", user, err)
	}

	// state is single use
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?state=state-1&code=abc", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on replayed state, got %d", resp.Code)
	}
}

func TestStartRedirectsToProvider(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	router := newRouter(svc)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/start", nil))
	if resp.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.Code)
	}
	if !strings.Contains(resp.Header().Get("Location"), "state=") {
		t.Fatalf("expected state in redirect, got %s", resp.Header().Get("Location"))
	}
}

func TestStartNotConfigured(t *testing.T) {
	signer, _ := sharedauth.NewSigner("", false)
	svc := NewGoogleService("", "", "", "", signer, nil)
	router := newRouter(svc)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/start", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}

func TestStateStoreExpiry(t *testing.T) {
	store := newStateStore()
	store.put("old", time.Now().Add(-time.Second))
	if store.consume("old") {
		t.Fatalf("expired state must be rejected")
	}
	if store.consume("unknown") {
		t.Fatalf("unknown state must be rejected")
	}
}
