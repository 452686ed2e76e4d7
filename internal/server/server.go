// Package server exposes the catalog and procedural surfaces over HTTP and
// streams animated cloud decks over websockets.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/ali-sdg/cosmos-walker/internal/archive"
	"github.com/ali-sdg/cosmos-walker/internal/catalog"
	"github.com/ali-sdg/cosmos-walker/internal/guide"
	"github.com/ali-sdg/cosmos-walker/internal/logging"
	"github.com/ali-sdg/cosmos-walker/internal/scatter"
	"github.com/ali-sdg/cosmos-walker/internal/surface"
	"github.com/ali-sdg/cosmos-walker/internal/terrain"
)

const shutdownTimeout = 5 * time.Second

// Config wires the server to its collaborators.
type Config struct {
	Terrain *terrain.Context
	Mesh    surface.Config
	Frame   time.Duration // websocket frame period for animated surfaces
	Guide   *guide.Service
	Images  archive.Finder // nil disables image lookup
	Timeout time.Duration  // per outbound request
	Logger  *logging.Logger
}

// Server serves the HTTP API.
type Server struct {
	router   *mux.Router
	terrain  *terrain.Context
	mesh     surface.Config
	frame    time.Duration
	guide    *guide.Service
	images   archive.Finder
	timeout  time.Duration
	log      *logging.Logger
	upgrader websocket.Upgrader

	mu       sync.Mutex
	surfaces map[string]*surface.MeshExport
}

// New creates a server and registers its routes.
func New(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}
	if cfg.Frame <= 0 {
		cfg.Frame = time.Second / 30
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = guide.DefaultTimeout
	}
	if cfg.Guide == nil {
		cfg.Guide = guide.NewService(nil, guide.DefaultLanguage, log)
	}
	s := &Server{
		router:  mux.NewRouter(),
		terrain: cfg.Terrain,
		mesh:    cfg.Mesh,
		frame:   cfg.Frame,
		guide:   cfg.Guide,
		images:  cfg.Images,
		timeout: cfg.Timeout,
		log:     log.Named("server"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		surfaces: make(map[string]*surface.MeshExport),
	}

	s.router.Use(s.logRequests)
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/bodies", s.handleBodies).Methods(http.MethodGet)
	api.HandleFunc("/bodies/{id}", s.handleBody).Methods(http.MethodGet)
	api.HandleFunc("/bodies/{id}/surface", s.handleSurface).Methods(http.MethodGet)
	api.HandleFunc("/bodies/{id}/info", s.handleInfo).Methods(http.MethodGet)
	s.router.HandleFunc("/ws/bodies/{id}/surface", s.handleSurfaceStream).Methods(http.MethodGet)
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("stopped")
	return nil
}

// BodyView is a catalog entry as served by the API.
type BodyView struct {
	catalog.Body
	Landable bool   `json:"landable"`
	Class    string `json:"class,omitempty"`
}

func viewOf(b catalog.Body) BodyView {
	v := BodyView{Body: b, Landable: b.Kind.Landable()}
	if v.Landable {
		v.Class = terrain.Classify(b).String()
	}
	return v
}

// InfoView is the generated description and archive image of a body.
type InfoView struct {
	Body        string               `json:"body"`
	Description string               `json:"description"`
	Image       *archive.ImageRecord `json:"image"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleBodies(w http.ResponseWriter, r *http.Request) {
	bodies := catalog.All()
	out := make([]BodyView, len(bodies))
	for i, b := range bodies {
		out[i] = viewOf(b)
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBody(w http.ResponseWriter, r *http.Request) {
	b, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, viewOf(b))
}

func (s *Server) handleSurface(w http.ResponseWriter, r *http.Request) {
	b, ok := s.lookupLandable(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, s.surface(b))
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	b, ok := s.lookup(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	info := InfoView{Body: b.ID}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		info.Description = s.guide.Describe(ctx, b)
	}()
	if s.images != nil {
		info.Image = s.images.FindImage(ctx, b.Name)
	}
	wg.Wait()
	s.writeJSON(w, http.StatusOK, info)
}

// surface returns the cached export of b's surface, building it on first use.
func (s *Server) surface(b catalog.Body) *surface.MeshExport {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.surfaces[b.ID]; ok {
		return e
	}
	m := surface.New(s.terrain, s.mesh)
	m.Build(b)
	e := surface.Export(m, s.rocks(b))
	s.surfaces[b.ID] = e
	s.log.Debug("built surface of %s (%d vertices, %d rocks)", b.ID, m.Len(), len(e.Rocks))
	return e
}

// rocks scatters b's rocks from a source derived from the terrain seed and the
// body id, so every request sees the same field.
func (s *Server) rocks(b catalog.Body) []scatter.Instance {
	h := fnv.New64a()
	h.Write([]byte(b.ID))
	src := rand.NewPCG(s.terrain.Field().Seed(), h.Sum64())
	return scatter.New(s.terrain, src).ScatterAll(b, scatter.DefaultLayers())
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (catalog.Body, bool) {
	id := mux.Vars(r)["id"]
	b, ok := catalog.ByID(id)
	if !ok {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("unknown body %q", id)})
		return catalog.Body{}, false
	}
	return b, true
}

func (s *Server) lookupLandable(w http.ResponseWriter, r *http.Request) (catalog.Body, bool) {
	b, ok := s.lookup(w, r)
	if !ok {
		return b, false
	}
	if !b.Kind.Landable() {
		s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: b.DisplayName + " has no walkable surface"})
		return b, false
	}
	return b, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("write response: %v", err)
	}
}

// statusRecorder captures the status code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades through the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond))
	})
}
