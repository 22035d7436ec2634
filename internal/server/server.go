// Package server serves a built site and, in dev mode, keeps connected
// browsers in sync with the sources through a websocket hub.
//
// Watcher batches arrive through HandleChanges. Component edits trigger a
// rescan of the registry; the registry's change events are turned into
// update_component messages so open previews swap their custom element
// without a reload. Any other change rebuilds the site and asks browsers to
// reload. Build failures are pushed as an error overlay instead.
package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/conneroisu/livedocs/internal/build"
	"github.com/conneroisu/livedocs/internal/config"
	builderrors "github.com/conneroisu/livedocs/internal/errors"
	"github.com/conneroisu/livedocs/internal/logging"
	"github.com/conneroisu/livedocs/internal/types"
	"github.com/conneroisu/livedocs/internal/version"
	"github.com/conneroisu/livedocs/internal/watcher"
)

const (
	// HMRPath is the websocket endpoint.
	HMRPath = "/__hmr"
	// HealthPath reports server and last-build status as JSON.
	HealthPath = "/__health"
)

//go:embed assets/hmr.js
var hmrClient []byte

// SiteBuilder rebuilds the whole site.
type SiteBuilder interface {
	Build(ctx context.Context) (*build.Result, error)
}

// ComponentIndex is the registry surface the dev server drives.
type ComponentIndex interface {
	Scan(ctx context.Context, root string) (int, error)
	Watch() <-chan types.ComponentEvent
	UnWatch(ch <-chan types.ComponentEvent)
	GenerateArtifact(name, tag string) (*types.Artifact, error)
}

// Option configures a Server.
type Option func(*Server)

// WithHotReload enables the hot-reload endpoints and change handling.
func WithHotReload(b SiteBuilder, components ComponentIndex) Option {
	return func(s *Server) {
		s.builder = b
		s.components = components
	}
}

// BuildStatus describes the most recent dev rebuild.
type BuildStatus struct {
	Time     time.Time `json:"time"`
	Duration string    `json:"duration"`
	Pages    int       `json:"pages"`
	Errors   []string  `json:"errors,omitempty"`
}

// Server serves the output directory.
type Server struct {
	cfg    *config.Config
	logger logging.Logger
	hub    *Hub

	builder    SiteBuilder
	components ComponentIndex
	events     <-chan types.ComponentEvent

	// buildMutex serializes rebuilds; status is read under statusMutex.
	buildMutex  sync.Mutex
	statusMutex sync.RWMutex
	status      *BuildStatus

	httpServer   *http.Server
	serverMutex  sync.RWMutex
	shutdownOnce sync.Once
}

// New creates a server for cfg.
func New(cfg *config.Config, logger logging.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		cfg:    cfg,
		logger: logger.WithComponent("server"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.hotReload() {
		s.hub = NewHub(logger, originPatterns(cfg.Server.Host)...)
		s.events = s.components.Watch()
	}

	return s
}

// originPatterns lists the page origins allowed to open the hot-reload
// socket besides the socket's own host.
func originPatterns(host string) []string {
	patterns := []string{"localhost:*", "127.0.0.1:*"}
	if host != "" && host != "localhost" && host != "127.0.0.1" && !strings.ContainsAny(host, ":[]*?") {
		patterns = append(patterns, host+":*")
	}
	return patterns
}

func (s *Server) hotReload() bool {
	return s.builder != nil && s.components != nil
}

// Hub returns the hot-reload hub, or nil when hot reload is disabled.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Addr is the configured listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Server.Host, strconv.Itoa(s.cfg.Server.Port))
}

// URL is the address a browser should open.
func (s *Server) URL() string {
	return "http://" + s.Addr() + s.cfg.Docs.BaseURL
}

// Handler returns the routing for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(HealthPath, s.handleHealth)
	if s.hotReload() {
		mux.Handle(HMRPath, s.hub)
		mux.HandleFunc(build.HMRScriptPath, s.handleClientScript)
	}
	mux.Handle("/", s.staticHandler())

	return s.addMiddleware(mux)
}

func (s *Server) staticHandler() http.Handler {
	files := http.FileServer(http.Dir(s.cfg.Docs.Output))
	prefix := strings.TrimSuffix(s.cfg.Docs.BaseURL, "/")
	if prefix == "" {
		return files
	}
	return http.StripPrefix(prefix, files)
}

func (s *Server) addMiddleware(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.hotReload() {
			w.Header().Set("Cache-Control", "no-store")
		}
		start := time.Now()
		handler.ServeHTTP(w, r)
		s.logger.Debug(r.Context(), "Request", "method", r.Method, "path", r.URL.Path,
			"duration", time.Since(start).String())
	})
}

func (s *Server) handleClientScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	_, _ = w.Write(hmrClient)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := map[string]interface{}{
		"status":     "healthy",
		"version":    version.GetShortVersion(),
		"hot_reload": s.hotReload(),
	}
	if s.hub != nil {
		health["clients"] = s.hub.ClientCount()
	}
	if status := s.LastBuild(); status != nil {
		health["last_build"] = status
		if len(status.Errors) > 0 {
			health["status"] = "degraded"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(health); err != nil {
		s.logger.Warn(r.Context(), err, "Failed to encode health response")
	}
}

// LastBuild returns the status of the latest dev rebuild, or nil.
func (s *Server) LastBuild() *BuildStatus {
	s.statusMutex.RLock()
	defer s.statusMutex.RUnlock()
	return s.status
}

// Rebuild builds the site and records the outcome. On failure the error
// overlay is pushed to connected browsers.
func (s *Server) Rebuild(ctx context.Context) error {
	if s.builder == nil {
		return errors.New("hot reload is not enabled")
	}
	s.buildMutex.Lock()
	defer s.buildMutex.Unlock()

	return s.rebuild(ctx)
}

func (s *Server) rebuild(ctx context.Context) error {
	start := time.Now()
	result, err := s.builder.Build(ctx)

	collector := builderrors.NewErrorCollector()
	status := &BuildStatus{Time: start, Duration: time.Since(start).String()}
	if result != nil {
		status.Pages = result.Pages
		for _, be := range result.Errors {
			collector.Add(be)
		}
	}
	if err != nil && !collector.HasErrors() {
		collector.Add(builderrors.BuildError{
			Component: "build",
			Message:   "build failed",
			Severity:  builderrors.ErrorSeverityError,
			Err:       err,
		})
	}
	for _, be := range collector.GetAllErrors() {
		status.Errors = append(status.Errors, be.Error())
	}

	s.statusMutex.Lock()
	s.status = status
	s.statusMutex.Unlock()

	if err != nil {
		s.hub.Broadcast(UpdateContentMessage("", collector.ErrorOverlay()))
		return err
	}
	return nil
}

// HandleChanges reacts to one debounced batch of file changes. It is meant
// to be registered as a watcher.ChangeHandler.
func (s *Server) HandleChanges(ctx context.Context, events []watcher.ChangeEvent) error {
	if !s.hotReload() || len(events) == 0 {
		return nil
	}
	s.buildMutex.Lock()
	defer s.buildMutex.Unlock()

	var rescan, reload bool
	for _, event := range events {
		s.logger.Info(ctx, "File changed", "path", event.Path, "kind", event.Kind.String())
		switch event.Kind {
		case watcher.ComponentChanged:
			rescan = true
		case watcher.Created, watcher.Deleted:
			rescan = true
			reload = true
		default:
			reload = true
		}
	}

	var componentEvents []types.ComponentEvent
	if rescan {
		if _, err := s.components.Scan(ctx, s.cfg.Components.Dir); err != nil {
			s.logger.Warn(ctx, err, "Component rescan failed")
		}
		componentEvents = s.drainComponentEvents()
	}

	hadErrors := s.lastBuildFailed()
	if err := s.rebuild(ctx); err != nil {
		s.logger.Error(ctx, err, "Rebuild failed")
		return nil
	}

	if reload || hadErrors {
		s.hub.Broadcast(ReloadMessage())
		return nil
	}

	for _, event := range componentEvents {
		if event.Type == types.EventTypeRemoved || event.Component == nil {
			s.hub.Broadcast(ReloadMessage())
			return nil
		}
	}
	for _, event := range componentEvents {
		name := event.Component.Name
		artifact, err := s.components.GenerateArtifact(name, build.PreviewTag(name))
		if err != nil {
			s.logger.Warn(ctx, err, "Failed to regenerate component", "component", name)
			s.hub.Broadcast(ReloadMessage())
			return nil
		}
		s.hub.Broadcast(UpdateComponentMessage(artifact.TagName, artifact.Code))
	}

	return nil
}

func (s *Server) lastBuildFailed() bool {
	status := s.LastBuild()
	return status != nil && len(status.Errors) > 0
}

// drainComponentEvents collects the events the registry queued during the
// last scan.
func (s *Server) drainComponentEvents() []types.ComponentEvent {
	var out []types.ComponentEvent
	for {
		select {
		case event, ok := <-s.events:
			if !ok {
				return out
			}
			out = append(out, event)
		default:
			return out
		}
	}
}

// Start serves until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:              s.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", server.Addr, err)
	}
	s.logger.Info(ctx, "Serving site", "url", s.URL(), "hot_reload", s.hotReload())

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown closes hot-reload connections and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.hub != nil {
			s.hub.Shutdown()
			s.components.UnWatch(s.events)
		}

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()

		if server != nil {
			shutdownErr = server.Shutdown(ctx)
		}
	})

	return shutdownErr
}
