package web

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Zachkp/folio/internal/theme"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	visitorCookie = "folio_vid"

	// Client hint carrying prefers-color-scheme, e.g. `"dark"`.
	colorSchemeHint = "Sec-CH-Prefers-Color-Scheme"

	// Form field with the page's matchMedia result, for browsers that do not
	// send the client hint.
	systemField = "system"
)

// cookieStorage stores the theme choice in the visitor's browser, the
// server-rendered equivalent of localStorage.
type cookieStorage struct {
	c       *gin.Context
	maxAge  time.Duration
	secure  bool
	written map[string]string
}

func (cs *cookieStorage) Get(_ context.Context, key string) (string, error) {
	if v, ok := cs.written[key]; ok {
		return v, nil
	}
	v, err := cs.c.Cookie(key)
	if err != nil || v == "" {
		return "", theme.ErrNotFound
	}
	return v, nil
}

func (cs *cookieStorage) Set(_ context.Context, key, value string) error {
	if cs.written == nil {
		cs.written = make(map[string]string)
	}
	cs.written[key] = value
	cs.c.SetSameSite(http.SameSiteLaxMode)
	cs.c.SetCookie(key, value, int(cs.maxAge/time.Second), "/", "", cs.secure, false)
	return nil
}

// MemoryPreferences keeps per-visitor choices in process memory. Choices are
// lost on restart.
type MemoryPreferences struct {
	mu       sync.Mutex
	visitors map[string]*theme.MemoryStorage
}

func NewMemoryPreferences() *MemoryPreferences {
	return &MemoryPreferences{visitors: make(map[string]*theme.MemoryStorage)}
}

// DeletePreferences forgets a visitor's choices.
func (m *MemoryPreferences) DeletePreferences(_ context.Context, visitorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.visitors, visitorID)
	return nil
}

func (m *MemoryPreferences) Preferences(visitorID string) theme.Storage {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.visitors[visitorID]
	if !ok {
		s = theme.NewMemoryStorage()
		m.visitors[visitorID] = s
	}
	return s
}

// visitorIDMiddleware assigns each browser a random id used to key
// server-side preferences.
func visitorIDMiddleware(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(visitorCookie)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(visitorCookie, id, 3600*24*365, "/", "", secure, true)
		}
		c.Set(visitorCookie, id)
		c.Next()
	}
}

func visitorID(c *gin.Context) string {
	return c.GetString(visitorCookie)
}

// requestSignal reads the color-scheme client hint, falling back to the
// "system" form field posted by the page. Without either the signal reports
// no preference.
func requestSignal(c *gin.Context) *theme.SchemeSignal {
	signal := theme.NewSchemeSignal()
	if mode, err := theme.ParseMode(strings.Trim(c.GetHeader(colorSchemeHint), `"`)); err == nil {
		signal.Set(mode)
	} else if mode, err := theme.ParseMode(c.PostForm(systemField)); err == nil {
		signal.Set(mode)
	}
	return signal
}

func (s *Server) storageFor(c *gin.Context) theme.Storage {
	if s.opts.Preferences != nil {
		return s.opts.Preferences.Preferences(visitorID(c))
	}
	return &cookieStorage{c: c, maxAge: s.opts.ThemeMaxAge, secure: s.opts.SecureCookies}
}

// preference resolves the theme for this request. The caller must Close it.
func (s *Server) preference(c *gin.Context) (*theme.Preference, *theme.SchemeSignal) {
	signal := requestSignal(c)
	p := theme.New(c.Request.Context(), s.storageFor(c), signal, s.logger)
	return p, signal
}

// askForColorScheme requests the client hint on subsequent requests.
func askForColorScheme(c *gin.Context) {
	c.Header("Accept-CH", colorSchemeHint)
	c.Header("Vary", colorSchemeHint+", Cookie")
	c.Header("Critical-CH", colorSchemeHint)
}

func (s *Server) handleThemeToggle(c *gin.Context) {
	p, _ := s.preference(c)
	defer p.Close()
	mode := p.Toggle(c.Request.Context())

	if c.GetHeader("HX-Request") == "true" {
		c.Header("HX-Refresh", "true")
		c.JSON(http.StatusOK, gin.H{"mode": mode, "stored": true})
		return
	}
	back := "/"
	if ref := c.Request.Referer(); ref != "" && sameOrigin(c.Request, ref) {
		back = ref
	}
	c.Redirect(http.StatusSeeOther, back)
}

// handleThemeSystem receives prefers-color-scheme changes reported by the
// page's matchMedia listener.
func (s *Server) handleThemeSystem(c *gin.Context) {
	mode, err := theme.ParseMode(c.PostForm("mode"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, signal := s.preference(c)
	defer p.Close()

	signal.Set(mode)

	_, stored := p.Stored()
	c.JSON(http.StatusOK, gin.H{"mode": p.Active(), "stored": stored})
}

// preferenceForgetter is implemented by backends that can drop a visitor's
// stored choices.
type preferenceForgetter interface {
	DeletePreferences(ctx context.Context, visitorID string) error
}

// handleForgetPreferences clears the stored theme choice so the OS
// preference applies again.
func (s *Server) handleForgetPreferences(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(theme.StorageKey, "", -1, "/", "", s.opts.SecureCookies, false)

	if f, ok := s.opts.Preferences.(preferenceForgetter); ok {
		if err := f.DeletePreferences(c.Request.Context(), visitorID(c)); err != nil {
			s.logger.Error("forgetting preferences", zap.Error(err))
			c.String(http.StatusInternalServerError, "Sorry, your preferences could not be removed. Please try again later.")
			return
		}
	}
	c.Redirect(http.StatusSeeOther, "/privacy?forgotten=1")
}

func sameOrigin(r *http.Request, ref string) bool {
	host := r.Host
	return strings.HasPrefix(ref, "http://"+host+"/") || strings.HasPrefix(ref, "https://"+host+"/") ||
		ref == "http://"+host || ref == "https://"+host
}
