package http_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/spec-kit/helpdesk/internal/api/http"
	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/service"
	"github.com/spec-kit/helpdesk/web"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Config{
		App:     config.AppConfig{Name: "helpdesk-test", Env: "development", Version: "test"},
		Store:   config.StoreConfig{DataDir: dir},
		Session: config.SessionConfig{CookieName: "helpdesk_session", TTLMinutes: 60},
		Auth:    config.AuthConfig{JWTSecret: "test-secret", TokenTTLMinutes: 60, BcryptCost: bcrypt.MinCost},
	}

	logger := zap.NewNop()
	userRepo := repository.NewUserRepository(persistence.NewJSONStore(dir, "users.json"))
	ticketRepo := repository.NewTicketRepository(persistence.NewJSONStore(dir, "tickets.json"))

	sessions := auth.NewSessionManager(cfg.Session, nil)
	authService, err := service.NewAuthService(cfg, userRepo, logger)
	require.NoError(t, err)
	ticketService := service.NewTicketService(ticketRepo)

	app := fiber.New(fiber.Config{
		Views:       web.Engine(),
		ViewsLayout: "layouts/main",
	})
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:      logger,
		Metrics:     observability.NewMetrics(),
		Development: true,
	})
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Pages:          handlers.NewPagesHandler(sessions, ticketService),
		Auth:           handlers.NewAuthHandler(authService, sessions),
		Tickets:        handlers.NewTicketsHandler(ticketService, sessions),
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dir),
		AuthMiddleware: auth.NewMiddleware(sessions, authService.TokenManager(), userRepo),
	})
	return app
}

func ajaxForm(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	return req
}

func plainForm(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	return req
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v), "body: %s", data)
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == "helpdesk_session" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

// loginDemo authenticates the seeded demo account over AJAX and returns the
// session cookie plus the bearer token.
func loginDemo(t *testing.T, app *fiber.App) (*http.Cookie, string) {
	t.Helper()
	resp, err := app.Test(ajaxForm(http.MethodPost, "/login", url.Values{
		"email":    {"test@example.com"},
		"password": {"test123"},
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		Session struct {
			Token string `json:"token"`
			User  struct {
				ID    string `json:"id"`
				Email string `json:"email"`
			} `json:"user"`
		} `json:"session"`
	}
	decodeBody(t, resp, &body)
	require.True(t, body.Success)
	require.Len(t, body.Session.Token, 64)
	require.Equal(t, "test@example.com", body.Session.User.Email)
	return sessionCookie(t, resp), body.Token
}

func TestSignup_AjaxSuccess(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(ajaxForm(http.MethodPost, "/signup", url.Values{
		"name":     {"Alice"},
		"email":    {"alice@example.com"},
		"password": {"supersafe"},
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success  bool   `json:"success"`
		Message  string `json:"message"`
		Redirect string `json:"redirect"`
		Token    string `json:"token"`
	}
	decodeBody(t, resp, &body)
	assert.True(t, body.Success)
	assert.Equal(t, "Account created successfully!", body.Message)
	assert.Equal(t, "/dashboard", body.Redirect)
	assert.NotEmpty(t, body.Token)
	assert.NotNil(t, sessionCookie(t, resp))
}

func TestSignup_DuplicateEmailConflicts(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(ajaxForm(http.MethodPost, "/signup", url.Values{
		"name": {"Demo Again"}, "email": {"test@example.com"}, "password": {"whatever1"},
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "Email already exists", body.Error)
}

func TestSignup_ShortPasswordRejected(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(ajaxForm(http.MethodPost, "/signup", url.Values{
		"name": {"Bob"}, "email": {"bob@example.com"}, "password": {"short"},
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, resp, &body)
	assert.Contains(t, body.Error, "at least 6 characters")
}

func TestLogin_MissingFields(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(ajaxForm(http.MethodPost, "/login", url.Values{"email": {"test@example.com"}}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin_WrongCredentials(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(ajaxForm(http.MethodPost, "/login", url.Values{
		"email": {"test@example.com"}, "password": {"not-the-password"},
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "Invalid email or password", body.Error)
}

func TestLogin_FormPostRedirects(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(plainForm(http.MethodPost, "/login", url.Values{
		"email": {"test@example.com"}, "password": {"test123"},
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func TestDashboard_RequiresAuth(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestDashboard_RendersForSession(t *testing.T) {
	app := newTestApp(t)
	cookie, _ := loginDemo(t, app)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	page, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(page), "Dashboard")
}

func TestLoginPage_RedirectsWhenAuthenticated(t *testing.T) {
	app := newTestApp(t)
	cookie, _ := loginDemo(t, app)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(cookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func TestTickets_CreateGetUpdateDeleteFlow(t *testing.T) {
	app := newTestApp(t)
	cookie, _ := loginDemo(t, app)

	// Create.
	req := ajaxForm(http.MethodPost, "/tickets/create", url.Values{
		"title": {"Printer broken"}, "status": {"open"},
	})
	req.AddCookie(cookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var created struct {
		Success bool `json:"success"`
		Ticket  struct {
			ID       string `json:"id"`
			Priority string `json:"priority"`
			Status   string `json:"status"`
		} `json:"ticket"`
	}
	decodeBody(t, resp, &created)
	require.True(t, created.Success)
	assert.True(t, strings.HasPrefix(created.Ticket.ID, "ticket_"))
	assert.Equal(t, "medium", created.Ticket.Priority)

	// Get.
	req = httptest.NewRequest(http.MethodGet, "/tickets/get/"+created.Ticket.ID, nil)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.AddCookie(cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Update.
	req = ajaxForm(http.MethodPost, "/tickets/update", url.Values{
		"ticketId": {created.Ticket.ID}, "title": {"Printer broken"}, "status": {"closed"},
	})
	req.AddCookie(cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Stats reflect the closed ticket.
	req = httptest.NewRequest(http.MethodGet, "/tickets/stats", nil)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.AddCookie(cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	var stats struct {
		Total  int `json:"total"`
		Open   int `json:"open"`
		Closed int `json:"closed"`
	}
	decodeBody(t, resp, &stats)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 0, stats.Open)
	assert.Equal(t, 1, stats.Closed)

	// Delete, then the second delete is a 404.
	form := url.Values{"ticketId": {created.Ticket.ID}}
	req = ajaxForm(http.MethodPost, "/tickets/delete", form)
	req.AddCookie(cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req = ajaxForm(http.MethodPost, "/tickets/delete", form)
	req.AddCookie(cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTickets_OwnershipIsolationOverHTTP(t *testing.T) {
	app := newTestApp(t)
	ownerCookie, _ := loginDemo(t, app)

	req := ajaxForm(http.MethodPost, "/tickets/create", url.Values{
		"title": {"secret"}, "status": {"open"},
	})
	req.AddCookie(ownerCookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var created struct {
		Ticket struct {
			ID string `json:"id"`
		} `json:"ticket"`
	}
	decodeBody(t, resp, &created)

	// Second account.
	resp, err = app.Test(ajaxForm(http.MethodPost, "/signup", url.Values{
		"name": {"Mallory"}, "email": {"mallory@example.com"}, "password": {"password1"},
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	otherCookie := sessionCookie(t, resp)

	req = httptest.NewRequest(http.MethodGet, "/tickets/get/"+created.Ticket.ID, nil)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.AddCookie(otherCookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTickets_BearerTokenAuth(t *testing.T) {
	app := newTestApp(t)
	_, token := loginDemo(t, app)

	req := httptest.NewRequest(http.MethodGet, "/tickets/stats", nil)
	req.Header.Set(fiber.HeaderAuthorization, fmt.Sprintf("Bearer %s", token))
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogout_ClearsSession(t *testing.T) {
	app := newTestApp(t)
	cookie, _ := loginDemo(t, app)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(cookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestUnknownPathRenders404(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/no/such/page", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	page, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(page), "404")
}

func TestHealthEndpoints(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
