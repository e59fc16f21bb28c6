package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/embed-login/internal/api/dto"
	httptransport "github.com/spec-kit/embed-login/internal/api/http"
	"github.com/spec-kit/embed-login/internal/api/http/handlers"
	"github.com/spec-kit/embed-login/internal/auth"
	"github.com/spec-kit/embed-login/internal/credentials"
	"github.com/spec-kit/embed-login/internal/events"
	"github.com/spec-kit/embed-login/internal/observability"
	"github.com/spec-kit/embed-login/internal/ratelimit"
	"github.com/spec-kit/embed-login/internal/service"
	"github.com/spec-kit/embed-login/internal/session"
	"github.com/spec-kit/embed-login/internal/vendor"
)

type fakeVendor struct {
	status  atomic.Int32
	calls   atomic.Int32
	lastUID atomic.Value
}

func newFakeVendor(t *testing.T) (*fakeVendor, string) {
	t.Helper()
	fv := &fakeVendor{}
	fv.status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fv.calls.Add(1)
		var body struct {
			UserID string `json:"userId"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		fv.lastUID.Store(body.UserID)
		status := int(fv.status.Load())
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"refreshToken": "vendor-" + body.UserID})
	}))
	t.Cleanup(srv.Close)
	return fv, srv.URL
}

type testServer struct {
	app    *fiber.App
	vendor *fakeVendor
}

func newTestServer(t *testing.T, perMinute int) testServer {
	t.Helper()
	fv, vendorURL := newFakeVendor(t)

	creds, err := credentials.NewStore(credentials.DefaultCredentials())
	require.NoError(t, err)
	tokens := auth.NewTokenManager("test-secret", 24*time.Hour)
	sessions := session.NewManager(session.NewMemoryStore(nil), 24*time.Hour)
	client := vendor.NewClient(vendor.Config{BaseURL: vendorURL, ReleaseID: "rel-1", Timeout: 2 * time.Second}, nil)
	metrics := observability.NewMetrics()

	svc := service.NewAuthService(service.AuthDependencies{
		Credentials: creds,
		Bearer:      tokens,
		Sessions:    sessions,
		Trader:      client,
		Dispatcher:  events.NewInMemoryDispatcher(),
		Metrics:     metrics,
	})
	release := dto.ReleaseResponse{ReleaseID: "rel-1", EmbedScriptURL: "http://embed.local/embed-script.js"}
	cookie := auth.CookieConfig{Name: "session", Secure: true, MaxAge: sessions.TTL()}

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Metrics:        metrics,
		Timeout:        5 * time.Second,
		AllowedOrigins: []string{"*"},
		Limiter:        ratelimit.NewMemoryLimiter(perMinute, nil),
	})
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler("embed-login", "test", nil),
		Metrics:  handlers.NewMetricsHandler(metrics),
		Auth:     handlers.NewAuthHandler(svc, "/login"),
		Vendor:   handlers.NewVendorHandler(svc, client, release, "/login"),
		Sessions: handlers.NewSessionHandler(svc, cookie, handlers.SessionPaths{Login: "/ssr/login", Landing: "/ssr/protected", Home: "/ssr/"}),
		Pages:    handlers.NewPagesHandler(svc, release, nil),
		BearerGuard: auth.NewGuard(auth.GuardConfig{
			Verifier: tokens, Extract: auth.BearerToken, LoginPath: "/login", LandingPath: "/",
		}, nil),
		SessionGuard: auth.NewGuard(auth.GuardConfig{
			Verifier: sessions, Extract: auth.CookieValue("session"),
			LoginPath: "/ssr/login", LandingPath: "/ssr/", ReturnTo: true, CookieSecure: true,
		}, nil),
	})
	return testServer{app: app, vendor: fv}
}

func (s testServer) do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func formRequest(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	return req
}

type errorBody struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, body []byte) errorBody {
	t.Helper()
	var out errorBody
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func bearerLogin(t *testing.T, s testServer) dto.AuthResponse {
	t.Helper()
	resp, body := s.do(t, jsonRequest(http.MethodPost, "/api/auth", `{"username":"alice","password":"password123"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out dto.AuthResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func withBearer(req *http.Request, token string) *http.Request {
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	return req
}

func TestBearerFlow(t *testing.T) {
	s := newTestServer(t, 1000)

	login := bearerLogin(t, s)
	assert.True(t, login.Success)
	assert.Equal(t, "alice", login.User.ID)
	assert.Equal(t, "Alice Johnson", login.User.Name)
	assert.NotEmpty(t, login.Token)

	resp, body := s.do(t, withBearer(httptest.NewRequest(http.MethodGet, "/api/me", nil), login.Token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me dto.MeResponse
	require.NoError(t, json.Unmarshal(body, &me))
	assert.Equal(t, "alice", me.User.Username)

	resp, body = s.do(t, withBearer(httptest.NewRequest(http.MethodGet, "/api/divinci/get-jwt", nil), login.Token))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var vt dto.VendorTokenResponse
	require.NoError(t, json.Unmarshal(body, &vt))
	assert.Equal(t, "vendor-alice", vt.JWT)
	assert.False(t, vt.Mock)
	assert.Equal(t, int32(1), s.vendor.calls.Load())
	assert.Equal(t, "alice", s.vendor.lastUID.Load())

	resp, body = s.do(t, withBearer(httptest.NewRequest(http.MethodGet, "/api/auth/refresh", nil), login.Token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var refreshed dto.AuthResponse
	require.NoError(t, json.Unmarshal(body, &refreshed))
	assert.True(t, refreshed.ExpiresAt.After(login.ExpiresAt))

	resp, body = s.do(t, withBearer(httptest.NewRequest(http.MethodGet, "/api/auth", nil), login.Token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var status dto.AuthStatusResponse
	require.NoError(t, json.Unmarshal(body, &status))
	assert.True(t, status.Authenticated)

	resp, _ = s.do(t, withBearer(httptest.NewRequest(http.MethodDelete, "/api/auth", nil), login.Token))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBearerRejections(t *testing.T) {
	s := newTestServer(t, 1000)

	resp, body := s.do(t, jsonRequest(http.MethodPost, "/api/auth", `{"username":"alice","password":"wrongpass"}`))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeError(t, body).Error.Code)

	resp, body = s.do(t, jsonRequest(http.MethodPost, "/api/auth", `{"username":"al ice","password":"password123"}`))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeError(t, body).Error.Code)

	resp, body = s.do(t, jsonRequest(http.MethodPost, "/api/auth", `{"username":"alice"}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", decodeError(t, body).Error.Code)

	resp, body = s.do(t, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	e := decodeError(t, body)
	assert.Equal(t, "UNAUTHENTICATED", e.Error.Code)
	assert.Equal(t, "/login", e.Error.Details["redirectTo"])

	resp, _ = s.do(t, withBearer(httptest.NewRequest(http.MethodGet, "/api/divinci/get-jwt", nil), "a.b.c"))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, s.vendor.calls.Load())

	login := bearerLogin(t, s)
	resp, body = s.do(t, withBearer(jsonRequest(http.MethodPost, "/api/auth", `{"username":"alice","password":"password123"}`), login.Token))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	e = decodeError(t, body)
	assert.Equal(t, "ALREADY_AUTHENTICATED", e.Error.Code)
	assert.Equal(t, "/", e.Error.Details["redirectTo"])
}

func TestBearerTradeFailure(t *testing.T) {
	s := newTestServer(t, 1000)
	login := bearerLogin(t, s)
	s.vendor.status.Store(http.StatusInternalServerError)

	resp, body := s.do(t, withBearer(httptest.NewRequest(http.MethodGet, "/api/divinci/get-jwt", nil), login.Token))
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	e := decodeError(t, body)
	assert.Equal(t, "TRADE_FAILED", e.Error.Code)
	assert.Contains(t, e.Error.Details["details"], "500")
	assert.Equal(t, int32(1), s.vendor.calls.Load())
}

func TestReleaseAndDebugEndpoints(t *testing.T) {
	s := newTestServer(t, 1000)

	resp, body := s.do(t, httptest.NewRequest(http.MethodGet, "/api/divinci/release", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"releaseId":"rel-1","embedScriptUrl":"http://embed.local/embed-script.js"}`, string(body))

	resp, body = s.do(t, httptest.NewRequest(http.MethodGet, "/api/debug/tokens", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var debug dto.DebugTokensResponse
	require.NoError(t, json.Unmarshal(body, &debug))
	assert.Nil(t, debug.CurrentUser)
	assert.False(t, debug.TokenPresent)
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	return nil
}

func TestSessionFlow(t *testing.T) {
	s := newTestServer(t, 1000)

	resp, _ := s.do(t, httptest.NewRequest(http.MethodGet, "/ssr/protected?from=home", nil))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/ssr/login", resp.Header.Get(fiber.HeaderLocation))
	var returnTo *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "return_to" {
			returnTo = c
		}
	}
	require.NotNil(t, returnTo)

	req := formRequest("/ssr/auth/login", url.Values{"username": {"alice"}, "password": {"password123"}})
	req.AddCookie(&http.Cookie{Name: returnTo.Name, Value: returnTo.Value})
	resp, _ = s.do(t, req)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/ssr/protected?from=home", resp.Header.Get(fiber.HeaderLocation))
	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, 86400, cookie.MaxAge)

	req = httptest.NewRequest(http.MethodGet, "/ssr/protected", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: cookie.Value})
	resp, body := s.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page dto.PageView
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, "alice", page.User.ID)
	require.NotNil(t, page.Chat)
	assert.Equal(t, "vendor-alice", page.Chat.JWT)
	assert.Equal(t, "rel-1", page.Chat.ReleaseID)
	assert.Empty(t, page.Error)

	req = httptest.NewRequest(http.MethodGet, "/ssr/login", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: cookie.Value})
	resp, _ = s.do(t, req)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/ssr/", resp.Header.Get(fiber.HeaderLocation))

	req = httptest.NewRequest(http.MethodPost, "/ssr/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: cookie.Value})
	resp, _ = s.do(t, req)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/ssr/", resp.Header.Get(fiber.HeaderLocation))
	cleared := sessionCookie(resp)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)

	req = httptest.NewRequest(http.MethodGet, "/ssr/api/me", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: cookie.Value})
	resp, body = s.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "/ssr/login", decodeError(t, body).Error.Details["redirectTo"])
}

func TestSessionLoginFailureRendersLoginPage(t *testing.T) {
	s := newTestServer(t, 1000)

	resp, body := s.do(t, formRequest("/ssr/auth/login", url.Values{"username": {"alice"}, "password": {"wrongpass"}}))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Nil(t, sessionCookie(resp))
	var page dto.PageView
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, "login", page.Page)
	assert.Equal(t, "Invalid username or password", page.Error)
	assert.Equal(t, "alice", page.Username)
}

func TestProtectedPageDegradesOnTradeFailure(t *testing.T) {
	s := newTestServer(t, 1000)

	resp, _ := s.do(t, jsonRequest(http.MethodPost, "/ssr/auth/login", `{"username":"bob","password":"secret456"}`))
	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)

	s.vendor.status.Store(http.StatusServiceUnavailable)
	req := httptest.NewRequest(http.MethodGet, "/ssr/protected", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: cookie.Value})
	resp, body := s.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page dto.PageView
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, "bob", page.User.ID)
	assert.Nil(t, page.Chat)
	assert.Equal(t, "Failed to load chat. Please try again.", page.Error)

	req = httptest.NewRequest(http.MethodGet, "/ssr/api/get-jwt", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: cookie.Value})
	resp, _ = s.do(t, req)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestRateLimitAndHeaders(t *testing.T) {
	s := newTestServer(t, 2)

	for i := 0; i < 2; i++ {
		resp, _ := s.do(t, httptest.NewRequest(http.MethodGet, "/api/auth", nil))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "nosniff", resp.Header.Get(fiber.HeaderXContentTypeOptions))
		assert.Equal(t, "SAMEORIGIN", resp.Header.Get(fiber.HeaderXFrameOptions))
		assert.Equal(t, "strict-origin-when-cross-origin", resp.Header.Get(fiber.HeaderReferrerPolicy))
	}

	resp, body := s.do(t, httptest.NewRequest(http.MethodGet, "/api/auth", nil))
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get(fiber.HeaderRetryAfter))
	assert.Equal(t, "RATE_LIMITED", decodeError(t, body).Error.Code)

	resp, _ = s.do(t, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = s.do(t, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCORSPreflightAllowsLogoutAndBearer(t *testing.T) {
	s := newTestServer(t, 1000)

	req := httptest.NewRequest(http.MethodOptions, "/api/auth", nil)
	req.Header.Set(fiber.HeaderOrigin, "http://spa.local")
	req.Header.Set(fiber.HeaderAccessControlRequestMethod, http.MethodDelete)
	req.Header.Set(fiber.HeaderAccessControlRequestHeaders, "Authorization")
	resp, _ := s.do(t, req)

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderAccessControlAllowMethods), http.MethodDelete)
	assert.Contains(t, resp.Header.Get(fiber.HeaderAccessControlAllowHeaders), fiber.HeaderAuthorization)
	assert.Contains(t, resp.Header.Get(fiber.HeaderAccessControlAllowHeaders), fiber.HeaderContentType)
}

func TestUnknownRouteIsStructured(t *testing.T) {
	s := newTestServer(t, 1000)
	resp, body := s.do(t, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, body).Error.Code)
}
