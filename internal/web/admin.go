package web

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Zachkp/folio/internal/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const adminCookie = "admin_token"

// adminAuth holds the per-process admin session token and the salt used to
// hash visitor IPs. Both are regenerated on every start.
type adminAuth struct {
	username    string
	password    string
	token       string
	hashingSalt string
	logger      *zap.Logger
}

func newAdminAuth(username, password string, logger *zap.Logger) (*adminAuth, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	salt, err := generateToken()
	if err != nil {
		return nil, err
	}

	a := &adminAuth{
		username:    username,
		password:    password,
		token:       token,
		hashingSalt: salt,
		logger:      logger.With(zap.String("component", "admin")),
	}
	if !a.enabled() {
		a.logger.Info("admin disabled: set ADMIN_USERNAME and ADMIN_PASSWORD to enable")
	} else if gin.Mode() == gin.DebugMode {
		a.logger.Debug("admin access available", zap.String("path", "/admin/login"))
	}
	return a, nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// enabled is false until both credentials are configured. There are no
// default credentials.
func (a *adminAuth) enabled() bool {
	return a.username != "" && a.password != ""
}

func (a *adminAuth) checkCredentials(username, password string) bool {
	if !a.enabled() {
		return false
	}
	u := subtle.ConstantTimeCompare([]byte(username), []byte(a.username))
	p := subtle.ConstantTimeCompare([]byte(password), []byte(a.password))
	return u&p == 1
}

func (a *adminAuth) hashIP(ip string) string {
	return store.HashIP(ip, a.hashingSalt)
}

// Middleware to check admin authentication
func (a *adminAuth) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// visitorTrackingMiddleware records page views with hashed IPs. Static
// assets, admin and privacy pages, health checks, DNT requests, and the
// print view fetched by the PDF exporter are skipped.
func (s *Server) visitorTrackingMiddleware() gin.HandlerFunc {
	skip := []string{"/static/", "/images/", "/admin", "/favicon", "/privacy", "/healthz", "/theme/", "/print"}
	return func(c *gin.Context) {
		if s.opts.Analytics == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		path := c.Request.URL.Path
		for _, prefix := range skip {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}
		if c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		visit := store.Visit{
			HashedIP:  s.admin.hashIP(c.ClientIP()),
			UserAgent: c.GetHeader("User-Agent"),
			Path:      path,
			Timestamp: time.Now().UTC(),
		}
		s.tracking.Add(1)
		go func() {
			defer s.tracking.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.opts.Analytics.RecordVisit(ctx, visit); err != nil {
				s.logger.Warn("recording visitor", zap.Error(err))
			}
		}()
		c.Next()
	}
}

func (s *Server) cleanupVisitors(ctx context.Context) {
	n, err := s.opts.Analytics.CleanupVisits(ctx, store.VisitorRetention)
	if err != nil {
		s.logger.Error("cleaning up old visitor data", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("privacy cleanup removed old visitor records", zap.Int64("rows", n))
	}
}

// Setup all admin routes
func (s *Server) setupAdminRoutes(r *gin.Engine) {
	a := s.admin

	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{
			"title":    "Admin Login",
			"disabled": !a.enabled(),
		})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		if a.checkCredentials(c.PostForm("username"), c.PostForm("password")) {
			c.SetSameSite(http.SameSiteStrictMode)
			c.SetCookie(adminCookie, a.token, 3600*24, "/admin", "", s.opts.SecureCookies, true)
			a.logger.Info("admin login", zap.String("from", a.hashIP(c.ClientIP())))
			c.Redirect(http.StatusFound, "/admin/dashboard")
			return
		}
		a.logger.Warn("failed admin login", zap.String("from", a.hashIP(c.ClientIP())))
		c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
			"title":    "Admin Login",
			"error":    "Invalid credentials",
			"disabled": !a.enabled(),
		})
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", s.opts.SecureCookies, true)
		c.Redirect(http.StatusFound, "/admin/login")
	})

	group := r.Group("/admin")
	group.Use(a.middleware())

	group.GET("/dashboard", func(c *gin.Context) {
		stats, err := s.stats(c.Request.Context())
		if err != nil {
			s.logger.Error("loading admin stats", zap.Error(err))
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load statistics",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
			"stats":    stats,
			"projects": len(s.opts.Profiles.Get().Projects),
		})
	})

	group.GET("/api/stats", func(c *gin.Context) {
		stats, err := s.stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	group.GET("/export/stats", func(c *gin.Context) {
		stats, err := s.stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		a.logger.Info("admin stats exported", zap.String("by", a.hashIP(c.ClientIP())))
		c.JSON(http.StatusOK, stats)
	})

	group.POST("/privacy/cleanup", func(c *gin.Context) {
		if s.opts.Analytics == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "visitor tracking is disabled"})
			return
		}
		s.cleanupVisitors(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup complete"})
	})
}

func (s *Server) stats(ctx context.Context) (*store.Stats, error) {
	if s.opts.Analytics == nil {
		return nil, fmt.Errorf("visitor tracking is disabled")
	}
	return s.opts.Analytics.Stats(ctx)
}

// CleanupLoop runs the retention cleanup now and then daily until ctx ends.
func (s *Server) CleanupLoop(ctx context.Context) {
	if s.opts.Analytics == nil {
		return
	}
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		s.cleanupVisitors(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
