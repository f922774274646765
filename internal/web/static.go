package web

import (
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/fittrack/web/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const indexFile = "index.html"

// publicPages are the SPA entry points reachable without a session.
var publicPages = []string{"/", "/ab", "/l", "/r", "/C", "/fp"}

// Handler serves the built single page app.
type Handler struct {
	staticDir  string
	fileServer http.Handler
}

func NewHandler(staticDir string) *Handler {
	return &Handler{
		staticDir:  staticDir,
		fileServer: http.FileServer(http.Dir(staticDir)),
	}
}

func (h *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.handleHealth).Methods("GET").Name("health")
	for _, page := range publicPages {
		r.HandleFunc(page, h.handleIndex).Methods("GET").Name("public-page")
	}
	r.HandleFunc("/rp/{token}", h.handleIndex).Methods("GET").Name("public-page")
}

// SetupFallback must be registered last, it matches every path.
func (h *Handler) SetupFallback(r *mux.Router) {
	r.PathPrefix("/").HandlerFunc(h.handleFallback).Methods("GET", "HEAD").Name("fallback")
}

// Index serves the SPA shell. Used as the gated dashboard content.
func (h *Handler) Index() http.Handler {
	return http.HandlerFunc(h.handleIndex)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "OK")
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if w.Header().Get("Cache-Control") == "" {
		w.Header().Set("Cache-Control", "no-cache")
	}
	http.ServeFile(w, r, filepath.Join(h.staticDir, indexFile))
}

func (h *Handler) handleFallback(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Path
	switch {
	case p == "/api" || strings.HasPrefix(p, "/api/"):
		pkg.WriteMessage(w, http.StatusNotFound, "Not found")
		return
	case p == "/dashboard" || strings.HasPrefix(p, "/dashboard/"):
		// dashboard pages only ever go through the session gate
		http.NotFound(w, r)
		return
	}

	if h.assetExists(p) {
		h.fileServer.ServeHTTP(w, r)
		return
	}

	log.Tracef("static fallback to index for [%s]", p)
	h.handleIndex(w, r)
}

func (h *Handler) assetExists(urlPath string) bool {
	name := filepath.Join(h.staticDir, filepath.FromSlash(path.Clean("/"+urlPath)))
	exists, err := pkg.PathExists(name, false)
	return exists && err == nil
}
