package web

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/Zachkp/folio/internal/contact"
	"github.com/Zachkp/folio/internal/pdf"
	"github.com/Zachkp/folio/internal/profile"
	"github.com/Zachkp/folio/internal/project"
	"github.com/Zachkp/folio/internal/theme"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type pageData struct {
	Profile       *profile.Profile
	About         template.HTML
	Summary       template.HTML
	EmailContacts []profile.Contact
	JSONLD        template.JS

	Theme       theme.Mode
	ThemeStored bool
	Print       bool

	Projects projectsData

	ContactEnabled bool
	PDFEnabled     bool
	Year           int
}

type projectsData struct {
	Query     string
	Items     []project.Project
	NoMatches bool
}

func (s *Server) filterProjects(query string) projectsData {
	search := s.searches.get(query)
	items, _ := search.Results()
	return projectsData{
		Query:     query,
		Items:     items,
		NoMatches: search.NoMatches(),
	}
}

func (s *Server) page(c *gin.Context, mode theme.Mode, stored, print bool) pageData {
	p := s.opts.Profiles.Get()

	var jsonld template.JS
	if raw, err := p.JSONLD(); err != nil {
		s.logger.Warn("building structured data", zap.Error(err))
	} else {
		jsonld = template.JS(raw)
	}

	return pageData{
		Profile:        p,
		About:          s.renderMarkdown(p.About),
		Summary:        s.renderMarkdown(p.Summary),
		EmailContacts:  p.ContactsOfType(profile.ContactEmail),
		JSONLD:         jsonld,
		Theme:          mode,
		ThemeStored:    stored,
		Print:          print,
		Projects:       s.filterProjects(c.Query("q")),
		ContactEnabled: s.opts.Mailer != nil && s.opts.Mailer.Configured(),
		PDFEnabled:     s.opts.Exporter != nil,
		Year:           time.Now().Year(),
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	p, _ := s.preference(c)
	defer p.Close()
	_, stored := p.Stored()

	askForColorScheme(c)
	c.HTML(http.StatusOK, "index.html", s.page(c, p.Active(), stored, false))
}

// handlePrint always renders light; the print stylesheet assumes it.
func (s *Server) handlePrint(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", s.page(c, theme.Light, false, true))
}

// handleProjects renders only the project grid for HTMX search requests.
func (s *Server) handleProjects(c *gin.Context) {
	c.HTML(http.StatusOK, "projects.html", s.filterProjects(c.Query("q")))
}

func (s *Server) handleResumePDF(c *gin.Context) {
	if s.opts.Exporter == nil {
		c.String(http.StatusNotFound, "PDF export is not enabled")
		return
	}
	data, err := s.opts.Exporter.Export(c.Request.Context(), s.opts.BaseURL+"/print")
	if err != nil {
		s.logger.Error("exporting pdf", zap.Error(err))
		status := http.StatusInternalServerError
		if errors.Is(err, pdf.ErrChromeMissing) {
			status = http.StatusServiceUnavailable
		}
		c.String(status, "Sorry, the PDF could not be generated. Use your browser's print dialog instead.")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+pdf.Filename(s.opts.Profiles.Get().Name)+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// HTMX Contact form endpoint - returns just the form HTML
func (s *Server) handleContactForm(c *gin.Context) {
	c.HTML(http.StatusOK, "contact.html", gin.H{
		"title": "Contact Me",
	})
}

// Handle contact form submission with HTMX
func (s *Server) handleContact(c *gin.Context) {
	var msg contact.Message
	if err := c.ShouldBind(&msg); err != nil {
		c.HTML(http.StatusOK, "contact-error.html", gin.H{
			"error": "Please fill in your name, a valid email address, and a message.",
		})
		return
	}

	if s.opts.Mailer == nil {
		s.renderContactFailure(c, contact.ErrNotConfigured)
		return
	}
	if err := s.opts.Mailer.Send(msg); err != nil {
		s.renderContactFailure(c, err)
		return
	}

	c.HTML(http.StatusOK, "contact-success.html", gin.H{
		"success": "Thank you for your message! I'll get back to you soon.",
	})
}

func (s *Server) renderContactFailure(c *gin.Context, err error) {
	s.logger.Warn("contact form delivery failed", zap.Error(err))
	c.HTML(http.StatusOK, "contact-error.html", gin.H{
		"error": "Sorry, there was an error sending your message. Please try again later.",
	})
}

func (s *Server) handlePrivacy(c *gin.Context) {
	p, _ := s.preference(c)
	defer p.Close()
	_, stored := p.Stored()
	c.HTML(http.StatusOK, "privacy.html", gin.H{
		"title":     "Privacy Policy",
		"theme":     p.Active(),
		"stored":    stored,
		"forgotten": c.Query("forgotten") == "1",
		"tracking":  s.opts.Analytics != nil,
		"retention": "12 months",
	})
}

type pinger interface {
	Ping(ctx context.Context) error
}

func (s *Server) handleHealth(c *gin.Context) {
	deps := gin.H{}
	status := http.StatusOK
	for name, dep := range map[string]any{"analytics": s.opts.Analytics, "preferences": s.opts.Preferences} {
		p, ok := dep.(pinger)
		if !ok || p == nil {
			continue
		}
		if err := p.Ping(c.Request.Context()); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}
	c.JSON(status, gin.H{"status": http.StatusText(status), "dependencies": deps})
}
