package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	manager *Manager
	store   *MemoryStore
	engine  *gin.Engine
}

func newHarness() *harness {
	gin.SetMode(gin.TestMode)
	store := NewMemoryStore()
	m := NewManager(store, Config{CookieName: "sid", Secret: "s3cret", TTL: time.Hour}, nil)
	r := gin.New()
	r.Use(m.Middleware())
	r.POST("/login", func(c *gin.Context) {
		if err := m.Establish(c, c.Query("u")); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		_ = m.AddMessage(c, LevelSuccess, "Login Successful")
		c.Status(http.StatusOK)
	})
	r.GET("/whoami", func(c *gin.Context) {
		s := m.From(c)
		c.JSON(http.StatusOK, gin.H{"user": s.Data.Username, "auth": s.Authenticated(), "messages": m.PopMessages(c)})
	})
	r.GET("/logout", func(c *gin.Context) {
		_ = m.Clear(c)
		_ = m.AddMessage(c, LevelInfo, "You have been logged out.")
		c.Status(http.StatusOK)
	})
	return &harness{manager: m, store: store, engine: r}
}

func (h *harness) do(method, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	return w
}

// lastCookie returns the final Set-Cookie for name, which is what a browser keeps.
func lastCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	var found *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == name {
			found = ck
		}
	}
	return found
}

func TestManagerLoginFlow(t *testing.T) {
	h := newHarness()

	w := h.do(http.MethodGet, "/whoami", nil)
	assert.JSONEq(t, `{"user":"","auth":false,"messages":null}`, w.Body.String())

	w = h.do(http.MethodPost, "/login?u=alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	ck := lastCookie(w, "sid")
	require.NotNil(t, ck)
	assert.True(t, ck.HttpOnly)

	w = h.do(http.MethodGet, "/whoami", []*http.Cookie{ck})
	assert.JSONEq(t, `{"user":"alice","auth":true,"messages":[{"level":"success","text":"Login Successful"}]}`, w.Body.String())

	// Messages are shown once.
	w = h.do(http.MethodGet, "/whoami", []*http.Cookie{ck})
	assert.JSONEq(t, `{"user":"alice","auth":true,"messages":null}`, w.Body.String())
}

func TestManagerLogoutInvalidatesOldCookie(t *testing.T) {
	h := newHarness()
	w := h.do(http.MethodPost, "/login?u=alice", nil)
	loginCookie := lastCookie(w, "sid")

	w = h.do(http.MethodGet, "/logout", []*http.Cookie{loginCookie})
	fresh := lastCookie(w, "sid")
	require.NotNil(t, fresh)

	w = h.do(http.MethodGet, "/whoami", []*http.Cookie{loginCookie})
	assert.JSONEq(t, `{"user":"","auth":false,"messages":null}`, w.Body.String())

	w = h.do(http.MethodGet, "/whoami", []*http.Cookie{fresh})
	assert.JSONEq(t, `{"user":"","auth":false,"messages":[{"level":"info","text":"You have been logged out."}]}`, w.Body.String())

	// Logging out twice is harmless.
	w = h.do(http.MethodGet, "/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestManagerRejectsForgedCookie(t *testing.T) {
	h := newHarness()
	forged, err := NewTokenCodec("wrong").Encode("whatever", time.Hour)
	require.NoError(t, err)

	w := h.do(http.MethodGet, "/whoami", []*http.Cookie{{Name: "sid", Value: forged}})
	assert.JSONEq(t, `{"user":"","auth":false,"messages":null}`, w.Body.String())
}

func TestManagerRotatesIDOnLogin(t *testing.T) {
	h := newHarness()
	w := h.do(http.MethodGet, "/logout", nil)
	anon := lastCookie(w, "sid")
	anonID, err := h.manager.codec.Decode(anon.Value)
	require.NoError(t, err)

	w = h.do(http.MethodPost, "/login?u=alice", []*http.Cookie{anon})
	loggedID, err := h.manager.codec.Decode(lastCookie(w, "sid").Value)
	require.NoError(t, err)
	assert.NotEqual(t, anonID, loggedID)

	_, err = h.store.Load(context.Background(), anonID)
	assert.ErrorIs(t, err, ErrNotFound)
}
