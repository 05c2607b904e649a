package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const contextKey = "session"

// Config controls the session cookie.
type Config struct {
	CookieName string
	Secret     string
	TTL        time.Duration
	Secure     bool
}

// Manager loads the session for each request and writes changes back to the
// store and cookie as soon as they happen, so they are in place before the
// handler writes its response.
type Manager struct {
	store  Store
	codec  *TokenCodec
	cfg    Config
	logger *zap.Logger
}

func NewManager(store Store, cfg Config, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "sessionid"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 14 * 24 * time.Hour
	}
	return &Manager{store: store, codec: NewTokenCodec(cfg.Secret), cfg: cfg, logger: logger}
}

// Middleware attaches the caller's session. Missing, tampered or expired
// cookies yield an anonymous session.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextKey, m.load(c))
		c.Next()
	}
}

func (m *Manager) load(c *gin.Context) *Session {
	raw, err := c.Cookie(m.cfg.CookieName)
	if err != nil || raw == "" {
		return &Session{}
	}
	id, err := m.codec.Decode(raw)
	if err != nil {
		m.logger.Debug("rejecting session cookie", zap.Error(err))
		return &Session{}
	}
	data, err := m.store.Load(c.Request.Context(), id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.logger.Warn("failed to load session", zap.Error(err))
		}
		return &Session{}
	}
	return &Session{ID: id, Data: *data}
}

// From returns the request's session, never nil.
func (m *Manager) From(c *gin.Context) *Session {
	if v, ok := c.Get(contextKey); ok {
		if s, ok := v.(*Session); ok {
			return s
		}
	}
	s := &Session{}
	c.Set(contextKey, s)
	return s
}

// Establish logs the organizer in under a fresh session id. Pending flash
// messages carry over.
func (m *Manager) Establish(c *gin.Context, username string) error {
	s := m.From(c)
	if s.ID != "" {
		if err := m.store.Delete(c.Request.Context(), s.ID); err != nil {
			m.logger.Warn("failed to drop previous session", zap.Error(err))
		}
	}
	s.ID = uuid.NewString()
	s.Data.LoggedIn = true
	s.Data.Username = username
	return m.save(c, s)
}

// Clear removes the session record and expires the cookie. Calling it on an
// anonymous session is a no-op beyond the cookie.
func (m *Manager) Clear(c *gin.Context) error {
	s := m.From(c)
	var err error
	if s.ID != "" {
		err = m.store.Delete(c.Request.Context(), s.ID)
	}
	*s = Session{}
	m.setCookie(c, "", -1)
	return err
}

// AddMessage queues a flash message for the next page.
func (m *Manager) AddMessage(c *gin.Context, level, text string) error {
	s := m.From(c)
	s.Data.Messages = append(s.Data.Messages, Message{Level: level, Text: text})
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return m.save(c, s)
}

// PopMessages returns and clears the pending flash messages.
func (m *Manager) PopMessages(c *gin.Context) []Message {
	s := m.From(c)
	if len(s.Data.Messages) == 0 {
		return nil
	}
	messages := s.Data.Messages
	s.Data.Messages = nil
	if err := m.save(c, s); err != nil {
		m.logger.Warn("failed to persist consumed messages", zap.Error(err))
	}
	return messages
}

func (m *Manager) save(c *gin.Context, s *Session) error {
	if err := m.store.Save(c.Request.Context(), s.ID, &s.Data, m.cfg.TTL); err != nil {
		return err
	}
	token, err := m.codec.Encode(s.ID, m.cfg.TTL)
	if err != nil {
		return err
	}
	m.setCookie(c, token, int(m.cfg.TTL/time.Second))
	return nil
}

func (m *Manager) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cfg.CookieName, value, maxAge, "/", "", m.cfg.Secure, true)
}
