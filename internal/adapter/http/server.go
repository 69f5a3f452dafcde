package adapthttp

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"bodylog/internal/app"
)

// Services bundles the application services the adapter routes to.
type Services struct {
	Profiles *app.ProfileService
	Entries  *app.EntryService
	Stats    *app.StatsService
	Backup   *app.BackupService
	Auth     *app.AuthService
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	profiles *app.ProfileService
	entries  *app.EntryService
	stats    *app.StatsService
	backup   *app.BackupService
	authSvc  *app.AuthService

	metrics     *Metrics
	metricsPath string
	webDir      string
	disableAuth bool
	log         *logrus.Entry
}

// New creates a Server wired to the given application services.
func New(svc Services, webDir string) *Server {
	return &Server{
		profiles: svc.Profiles,
		entries:  svc.Entries,
		stats:    svc.Stats,
		backup:   svc.Backup,
		authSvc:  svc.Auth,
		webDir:   webDir,
		log:      logrus.WithField("component", "http"),
	}
}

// WithMetrics records request metrics in m and serves them under path.
func (s *Server) WithMetrics(m *Metrics, path string) *Server {
	s.metrics = m
	s.metricsPath = path
	return s
}

// WithoutAuth disables the password lock (for tests).
func (s *Server) WithoutAuth() *Server {
	s.disableAuth = true
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	api.HandleFunc("/login", s.handleLogin)
	api.HandleFunc("/logout", s.handleLogout)
	api.HandleFunc("/auth", s.handleAuthStatus)

	locked := http.NewServeMux()
	locked.HandleFunc("/profiles", s.handleProfiles)
	locked.HandleFunc("/profiles/{id}", s.handleProfile)
	locked.HandleFunc("/entries", s.handleEntries)
	locked.HandleFunc("/entries/{profile}/{date}", s.handleEntry)
	locked.HandleFunc("/stats", s.handleStats)
	locked.HandleFunc("/export.json", s.handleExportJSON)
	locked.HandleFunc("/export.csv", s.handleExportCSV)
	locked.HandleFunc("/import", s.handleImport)
	locked.HandleFunc("/wipe", s.handleWipe)
	api.Handle("/", s.authMiddleware(locked))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	if s.metrics != nil && s.metricsPath != "" {
		root.Handle(s.metricsPath, s.metrics.Handler())
	}
	root.Handle("/", spaFromDisk(s.webDir))

	var h http.Handler = withNoCache(root)
	if s.metrics != nil {
		h = s.metricsMiddleware(h)
	}
	return s.recoveryMiddleware(s.loggingMiddleware(h))
}
