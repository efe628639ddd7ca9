package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Versifine/stride/internal/physics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

const (
	defaultMapSize = 512
	maxMapSize     = 2048
)

type Config struct {
	// FrameRate caps how many frames per second are pushed to websocket clients.
	FrameRate   float64
	CORSOrigins []string
}

func DefaultConfig() Config {
	return Config{
		FrameRate:   10,
		CORSOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
	}
}

// Telemetry collects the latest frame and metrics of the demo and serves them over HTTP.
// Observe and Record are called from the frame loop; the handlers read under a lock.
type Telemetry struct {
	cfg     Config
	world   *physics.World
	metrics *Metrics
	hub     *Hub
	frames  *rate.Limiter

	mu   sync.RWMutex
	last Frame
}

func New(world *physics.World, cfg Config) *Telemetry {
	if cfg.FrameRate <= 0 {
		cfg.FrameRate = DefaultConfig().FrameRate
	}
	m := NewMetrics()
	return &Telemetry{
		cfg:     cfg,
		world:   world,
		metrics: m,
		hub:     NewHub(m, cfg.CORSOrigins),
		frames:  rate.NewLimiter(rate.Limit(cfg.FrameRate), 1),
	}
}

func (t *Telemetry) Metrics() *Metrics {
	return t.metrics
}

func (t *Telemetry) Hub() *Hub {
	return t.hub
}

// Observe records one frame and forwards it to websocket clients at the configured rate.
func (t *Telemetry) Observe(f Frame, tick time.Duration) {
	t.mu.Lock()
	t.last = f
	t.mu.Unlock()

	t.metrics.Observe(f, tick)
	if t.hub.ClientCount() > 0 && t.frames.Allow() {
		t.hub.Broadcast("frame", f)
	}
}

// Record counts a bus event and forwards it to websocket clients.
func (t *Telemetry) Record(eventName string, evt any) {
	t.metrics.CountEvent(eventName)
	if t.hub.ClientCount() > 0 {
		t.hub.Broadcast(eventName, evt)
	}
}

func (t *Telemetry) Last() Frame {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

func (t *Telemetry) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: t.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(t.metrics.Registry(), promhttp.HandlerOpts{}))
	r.Get("/state", t.handleState)
	r.Get("/map.png", t.handleMap)
	r.Get("/ws", t.hub.HandleWebSocket)
	return r
}

func (t *Telemetry) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(t.Last()); err != nil {
		slog.Debug("State encode failed", "error", err)
	}
}

func (t *Telemetry) handleMap(w http.ResponseWriter, r *http.Request) {
	if t.world == nil {
		http.Error(w, "no world", http.StatusNotFound)
		return
	}
	size := defaultMapSize
	if s := r.URL.Query().Get("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > maxMapSize {
			http.Error(w, "invalid size", http.StatusBadRequest)
			return
		}
		size = n
	}

	img := RenderMap(t.world, t.Last(), size)
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		slog.Debug("Map encode failed", "error", err)
	}
}

// Run drives the websocket hub until ctx is done.
func (t *Telemetry) Run(ctx context.Context) {
	t.hub.Run(ctx)
}

// Serve listens on addr until ctx is done, then shuts the server down.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("telemetry listen %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	slog.Info("Telemetry listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("telemetry serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("telemetry shutdown: %w", err)
		}
		return nil
	}
}
