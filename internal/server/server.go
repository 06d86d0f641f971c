// Package server is the free-exploration web adapter: a JSON API over
// one import table plus an embedded single-page dashboard that renders
// the charts client-side.
package server

import (
	"embed"
	"io/fs"
	"net/http"

	"wtodash/internal/utils"
	"wtodash/pkg/dataset"
)

//go:embed web
var WebFS embed.FS

type Server struct {
	Table    dataset.Table
	Username string
	Password string
}

func New(table dataset.Table, user, pass string) *Server {
	return &Server{
		Table:    table,
		Username: user,
		Password: pass,
	}
}

func (s *Server) routes() (*http.ServeMux, error) {
	mux := http.NewServeMux()

	// API Group
	mux.HandleFunc("GET /api/imports", s.basicAuth(s.handleImports))
	mux.HandleFunc("GET /api/summary", s.basicAuth(s.handleSummary))
	mux.HandleFunc("GET /api/meta", s.basicAuth(s.handleMeta))

	// Static Files
	webRoot, err := fs.Sub(WebFS, "web")
	if err != nil {
		return nil, err
	}
	fileServer := http.FileServer(http.FS(webRoot))
	mux.Handle("/", s.basicAuthMiddlewareForStatic(fileServer))

	return mux, nil
}

func (s *Server) Start(addr string) error {
	mux, err := s.routes()
	if err != nil {
		return err
	}

	utils.Log.Infof("Starting dashboard server on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) basicAuthMiddlewareForStatic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next.ServeHTTP(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
