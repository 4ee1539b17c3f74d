package web

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/vbonduro/toyinv/internal/gateway"
	"github.com/vbonduro/toyinv/internal/imagestore"
	"github.com/vbonduro/toyinv/internal/inventory"
)

const shutdownTimeout = 10 * time.Second

// Page and fragment template sets. The screen fragment is the unit htmx swaps.
var (
	pageFiles   = []string{"base.html", "pages/toys.html", "partials/screen.html", "partials/toy_card.html", "partials/toy_dialog.html", "partials/notices.html"}
	screenFiles = []string{"partials/screen.html", "partials/toy_card.html", "partials/toy_dialog.html", "partials/notices.html"}
)

type Server struct {
	app        *inventory.App
	collection gateway.Gateway
	images     imagestore.ImageStore
	templates  fs.FS
	router     chi.Router
	tmplFuncs  template.FuncMap
	logger     *slog.Logger
}

// NewServer wires the HTML screen to app and the JSON envelope API to
// collection. images stores uploaded toy pictures.
func NewServer(app *inventory.App, collection gateway.Gateway, images imagestore.ImageStore, tmpl fs.FS, logger *slog.Logger) *Server {
	s := &Server{
		app:        app,
		collection: collection,
		images:     images,
		templates:  tmpl,
		router:     chi.NewRouter(),
		logger:     logger,
		tmplFuncs: template.FuncMap{
			"fieldError": func(errs map[string]string, field string) string { return errs[field] },
		},
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(func(next http.Handler) http.Handler { return requestLogger(s.logger, next) })
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/toys", http.StatusSeeOther)
	})
	r.Get("/healthz", s.handleHealth)
	r.Get("/images/{key}", s.handleGetImage)

	r.Route("/toys", func(r chi.Router) {
		r.Get("/", s.handleToys)
		r.Post("/", s.handleSubmit)
		r.Get("/screen", s.handleScreen)
		r.Get("/events", s.handleEvents)
		r.Post("/refresh", s.handleRefresh)
		r.Get("/new", s.handleNew)
		r.Post("/dialog/cancel", s.handleCancel)
		r.Get("/{id}/edit", s.handleEdit)
		r.Delete("/{id}", s.handleDelete)
	})

	r.Route("/api/toys", func(r chi.Router) {
		r.Get("/", s.handleAPIList)
		r.Post("/", s.handleAPICreate)
		r.Patch("/{id}", s.handleAPIUpdate)
	})
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy",
			"default-src 'self'; "+
				"script-src 'self' 'unsafe-inline' https://unpkg.com; "+
				"style-src 'self' 'unsafe-inline' https://fonts.googleapis.com; "+
				"font-src https://fonts.gstatic.com; "+
				"img-src 'self' data: https:; "+
				"connect-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer for
// flushing and deadlines.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
// Request contexts derive from ctx so open event streams end on shutdown.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// render parses files and executes the named template with the given status.
// Output is buffered so a template failure still yields a clean 500.
func (s *Server) render(w http.ResponseWriter, status int, name string, data any, files ...string) error {
	tmpl, err := template.New("").Funcs(s.tmplFuncs).ParseFS(s.templates, files...)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}

// renderPage executes the full page.
func (s *Server) renderPage(w http.ResponseWriter, status int, data any) error {
	return s.render(w, status, "base", data, pageFiles...)
}

// renderPartial executes the screen fragment only.
func (s *Server) renderPartial(w http.ResponseWriter, status int, data any) error {
	return s.render(w, status, "screen", data, screenFiles...)
}
