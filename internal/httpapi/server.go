// Package httpapi exposes the category tree and path resolver over JSON.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"storefront/catnav/internal/catalog"
	"storefront/catnav/internal/config"
	"storefront/catnav/internal/domain"
	"storefront/catnav/internal/resolver"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

type Server struct {
	tree     *catalog.Tree
	resolver *resolver.Resolver
	addr     string
	router   chi.Router
}

func NewServer(tree *catalog.Tree, res *resolver.Resolver, cfg config.ServerConfig) *Server {
	s := &Server{
		tree:     tree,
		resolver: res,
		addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/rail", s.handleRail)
		r.Get("/resolve", s.handleResolve)
		r.Get("/children", s.handleChildren)
		r.Get("/breadcrumbs", s.handleBreadcrumbs)
		r.Get("/filters", s.handleFilters)
	})

	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("🚀 API listening on %s", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve API: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("🛑 Shutting down API...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down API: %w", err)
	}
	return nil
}

func (s *Server) handleRail(w http.ResponseWriter, r *http.Request) {
	categories := s.tree.Categories()
	writeJSON(w, r, http.StatusOK, newNodeViews(domain.AsNodes(categories)))
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	path, ok := pathParam(w, r)
	if !ok {
		return
	}

	node := s.resolver.ResolveNode(path)
	if node == nil {
		writeError(w, r, http.StatusNotFound, fmt.Sprintf("no category at %s", path))
		return
	}
	writeJSON(w, r, http.StatusOK, newNodeView(node))
}

func (s *Server) handleChildren(w http.ResponseWriter, r *http.Request) {
	path, ok := pathParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, newNodeViews(s.resolver.ChildrenForDisplay(path)))
}

func (s *Server) handleBreadcrumbs(w http.ResponseWriter, r *http.Request) {
	path, ok := pathParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, newNodeViews(s.resolver.BreadcrumbChain(path)))
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	path, ok := pathParam(w, r)
	if !ok {
		return
	}

	filters, quick := s.resolver.FiltersFor(path)
	if filters == nil {
		filters = []domain.FilterGroup{}
	}
	if quick == nil {
		quick = []domain.QuickFilter{}
	}
	writeJSON(w, r, http.StatusOK, FiltersView{Path: path, Filters: filters, QuickFilters: quick})
}

func pathParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, r, http.StatusBadRequest, "path query parameter is required")
		return "", false
	}
	return path, true
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithField("request_id", requestIDFrom(r.Context())).Warnf("failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorView{Error: msg, RequestID: requestIDFrom(r.Context())})
}
