package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-events-admin/internal/models"
	"github.com/noah-isme/sma-events-admin/internal/repository"
	"github.com/noah-isme/sma-events-admin/internal/service"
	"github.com/noah-isme/sma-events-admin/internal/session"
	"github.com/noah-isme/sma-events-admin/pkg/config"
	"github.com/noah-isme/sma-events-admin/pkg/database"
)

type responseEnvelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Status  int    `json:"status"`
	} `json:"error"`
	Meta struct {
		Messages []session.Message `json:"messages"`
	} `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

type auditSpy struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (a *auditSpy) Record(_ context.Context, entry models.AuditLog) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

func (a *auditSpy) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

type testApp struct {
	router *gin.Engine
	db     *sqlx.DB
	audit  *auditSpy
}

// newTestApp wires the real stack on a throwaway SQLite database.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "app.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db, nil))

	organizers := repository.NewOrganizerRepository(db)
	events := repository.NewEventRepository(db)
	students := repository.NewStudentRepository(db)
	bookings := repository.NewBookingRepository(db)

	creds := service.NewCredentialService(4)
	metrics := service.NewMetricsService()
	validate := service.NewValidator()

	authSvc := service.NewAuthService(organizers, creds, validate, nil, metrics)
	eventSvc := service.NewEventService(events, organizers, validate, nil, metrics)
	studentSvc := service.NewStudentService(students, creds, validate, nil, metrics)
	importSvc := service.NewImportService(students, db, creds, nil, service.ImportConfig{}, nil, metrics)
	exportSvc := service.NewExportService(eventSvc, nil)
	bookingSvc := service.NewBookingService(bookings, events, students, organizers, validate, nil, metrics)

	sessions := session.NewManager(session.NewMemoryStore(), session.Config{CookieName: "sessionid", Secret: "test-secret", TTL: time.Hour}, nil)
	logger := zap.NewNop()
	audit := &auditSpy{}

	router := NewRouter(RouterConfig{MaxMultipartMemory: 1 << 20}, Handlers{
		Auth:     NewAuthHandler(authSvc, sessions, logger),
		Admin:    NewAdminHandler(eventSvc, importSvc, exportSvc, bookingSvc, sessions, 1<<20, logger),
		Events:   NewEventHandler(eventSvc, sessions, logger),
		Students: NewStudentHandler(studentSvc, sessions, logger),
		Health:   NewHealthHandler(metrics, map[string]Check{"database": db.PingContext}),
	}, sessions, metrics, audit, logger)

	return &testApp{router: router, db: db, audit: audit}
}

// browser keeps cookies between requests the way a user agent would.
type browser struct {
	handler http.Handler
	cookies map[string]*http.Cookie
}

func newBrowser(h http.Handler) *browser {
	return &browser{handler: h, cookies: make(map[string]*http.Cookie)}
}

func (b *browser) do(method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, ck := range b.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	b.handler.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 || ck.Value == "" {
			delete(b.cookies, ck.Name)
			continue
		}
		b.cookies[ck.Name] = ck
	}
	return rec
}

func (b *browser) get(target string) *httptest.ResponseRecorder {
	return b.do(http.MethodGet, target, nil, "")
}

func (b *browser) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	return b.do(http.MethodPost, target, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

func (b *browser) signupAndLogin(t *testing.T, username, email, password string) {
	t.Helper()
	rec := b.postForm("/signup", url.Values{"username": {username}, "email": {email}, "password": {password}})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	rec = b.postForm("/login", url.Values{"username": {username}, "password": {password}})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
}
