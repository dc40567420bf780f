// Package web serves the portfolio over HTTP with gin.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Zachkp/folio/internal/contact"
	"github.com/Zachkp/folio/internal/logging"
	"github.com/Zachkp/folio/internal/profile"
	"github.com/Zachkp/folio/internal/store"
	"github.com/Zachkp/folio/internal/theme"
	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// PreferenceBackend hands out per-visitor theme storage kept on the server.
type PreferenceBackend interface {
	Preferences(visitorID string) theme.Storage
}

// Analytics records visits and summarizes them for the admin pages.
type Analytics interface {
	RecordVisit(ctx context.Context, v store.Visit) error
	CleanupVisits(ctx context.Context, retention time.Duration) (int64, error)
	Stats(ctx context.Context) (*store.Stats, error)
}

// Exporter prints a URL to PDF.
type Exporter interface {
	Export(ctx context.Context, url string) ([]byte, error)
}

// Options configures a Server. Only Profiles is required.
type Options struct {
	Profiles *profile.Holder

	// Preferences keeps theme choices server-side. Nil keeps them in the
	// visitor's "theme" cookie.
	Preferences PreferenceBackend
	ThemeMaxAge time.Duration

	Analytics Analytics
	Mailer    *contact.Mailer
	Exporter  Exporter

	// BaseURL is how the exporter's browser reaches this server.
	BaseURL string
	// ImagesDir is served under /images.
	ImagesDir string

	AdminUsername string
	AdminPassword string
	SecureCookies bool

	Logger *zap.Logger
}

// Server is the HTTP surface.
type Server struct {
	opts     Options
	engine   *gin.Engine
	logger   *zap.Logger
	markdown goldmark.Markdown
	admin    *adminAuth
	searches *projectSearches
	tracking sync.WaitGroup
}

// New builds the gin engine and registers every route.
func New(opts Options) (*Server, error) {
	if opts.Profiles == nil {
		return nil, fmt.Errorf("web: profiles are required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.ThemeMaxAge <= 0 {
		opts.ThemeMaxAge = 365 * 24 * time.Hour
	}
	if opts.ImagesDir == "" {
		opts.ImagesDir = "./images"
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	s := &Server{
		opts:     opts,
		logger:   opts.Logger.With(zap.String("component", "web")),
		markdown: goldmark.New(),
		searches: newProjectSearches(opts.Profiles),
	}

	admin, err := newAdminAuth(opts.AdminUsername, opts.AdminPassword, s.logger)
	if err != nil {
		return nil, err
	}
	s.admin = admin

	tmpl, err := template.New("").Funcs(s.funcMap()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	r := gin.New()
	r.Use(logging.Middleware(opts.Logger), logging.Recovery(opts.Logger))
	r.Use(visitorIDMiddleware(opts.SecureCookies))
	r.Use(s.visitorTrackingMiddleware())
	r.SetHTMLTemplate(tmpl)

	r.StaticFS("/static", http.FS(static))
	r.Static("/images", opts.ImagesDir)

	r.GET("/", s.handleIndex)
	r.GET("/print", s.handlePrint)
	r.GET("/projects", s.handleProjects)
	r.POST("/theme/toggle", s.handleThemeToggle)
	r.POST("/theme/system", s.handleThemeSystem)
	r.GET("/resume.pdf", s.handleResumePDF)
	r.GET("/contact-form", s.handleContactForm)
	r.POST("/contact", s.handleContact)
	r.GET("/privacy", s.handlePrivacy)
	r.POST("/privacy/forget", s.handleForgetPreferences)
	r.GET("/healthz", s.handleHealth)
	s.setupAdminRoutes(r)

	s.engine = r
	return s, nil
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Close waits for in-flight visit recording to finish.
func (s *Server) Close() {
	s.tracking.Wait()
}

func (s *Server) funcMap() template.FuncMap {
	return template.FuncMap{
		"join": strings.Join,
		"dict": func(kv ...any) (map[string]any, error) {
			if len(kv)%2 != 0 {
				return nil, fmt.Errorf("dict: odd number of arguments")
			}
			m := make(map[string]any, len(kv)/2)
			for i := 0; i < len(kv); i += 2 {
				k, ok := kv[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
				}
				m[k] = kv[i+1]
			}
			return m, nil
		},
		"contactIcon": func(t string) string {
			switch t {
			case profile.ContactEmail:
				return "✉"
			case profile.ContactPhone:
				return "☎"
			case profile.ContactGitHub:
				return "⌥"
			case profile.ContactLinkedIn:
				return "in"
			default:
				return "↗"
			}
		},
	}
}

// renderMarkdown converts profile markdown. Raw HTML in the source is
// dropped by goldmark's default renderer.
func (s *Server) renderMarkdown(src string) template.HTML {
	if src == "" {
		return ""
	}
	var b strings.Builder
	if err := s.markdown.Convert([]byte(src), &b); err != nil {
		s.logger.Warn("rendering markdown", zap.Error(err))
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(b.String())
}
