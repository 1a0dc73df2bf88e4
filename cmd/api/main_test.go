package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/creatorhub/creatorhub-api/internal/config"
	"github.com/creatorhub/creatorhub-api/internal/domain/subscriberlist"
	"github.com/creatorhub/creatorhub-api/internal/middleware"
	"github.com/creatorhub/creatorhub-api/internal/pkg/jwt"
)

func testRouter(t *testing.T) (http.Handler, *jwt.Service) {
	t.Helper()
	tokens := jwt.NewService("test-secret", time.Minute)
	cfg := &config.Config{AllowedOrigins: []string{"*"}}

	svc := subscriberlist.NewService(nil, nil, nil, 0)
	h := subscriberlist.NewHandler(svc, subscriberlist.NewDispatcher(svc, nil, 1))

	return newRouter(cfg, routerDeps{
		auth:  middleware.Auth(tokens),
		lists: h,
	}), tokens
}

func TestPublicRoutes(t *testing.T) {
	router, _ := testRouter(t)

	for _, path := range []string{"/health", "/metrics", "/api/v1/ping"} {
		t.Run(path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rr.Code)
			}
		})
	}
}

func TestListRoutesRequireCreatorToken(t *testing.T) {
	router, tokens := testRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/lists", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}

	fanToken, _ := tokens.GenerateAccessToken(7, middleware.RoleFan, false)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/lists", nil)
	req.Header.Set("Authorization", "Bearer "+fanToken)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for fan, got %d", rr.Code)
	}

	bannedToken, _ := tokens.GenerateAccessToken(8, middleware.RoleCreator, true)
	req = httptest.NewRequest(http.MethodGet, "/api/v1/lists", nil)
	req.Header.Set("Authorization", "Bearer "+bannedToken)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for banned creator, got %d", rr.Code)
	}
}
