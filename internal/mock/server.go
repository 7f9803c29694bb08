package mock

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/studiowebux/taxdesk/internal/logger"
	"github.com/studiowebux/taxdesk/internal/types"
)

const maxLogs = 1000

// Server is an in-memory stand-in for the tax backend
type Server struct {
	config     *Config
	httpServer *http.Server
	listener   net.Listener
	router     chi.Router

	dataMutex sync.RWMutex
	taxes     []types.TaxRecord
	countries []types.Country

	logs      []RequestLog
	logsMutex sync.RWMutex
	notifyCh  chan struct{} // Signalled when a new log arrives

	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewServer creates a new mock server seeded from config
func NewServer(config *Config) *Server {
	if config.Host == "" {
		config.Host = "localhost"
	}

	s := &Server{
		config:    config,
		taxes:     append([]types.TaxRecord(nil), config.Taxes...),
		countries: append([]types.Country(nil), config.Countries...),
		logs:      make([]RequestLog, 0),
		notifyCh:  make(chan struct{}, 100),
		registry:  prometheus.NewRegistry(),
	}

	s.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "taxdesk_mock_requests_total",
		Help: "Requests served by the mock backend.",
	}, []string{"route", "status"})
	s.latency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "taxdesk_mock_request_duration_seconds",
		Help:    "Mock backend response latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	s.registry.MustRegister(s.requests, s.latency)

	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/taxes", s.handleListTaxes)
	r.Put("/taxes/{id}", s.handleUpdateTax)
	r.Get("/countries", s.handleListCountries)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return r
}

// Handler exposes the router, mainly for httptest
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves in the background
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("mock server stopped", "error", err)
		}
	}()

	logger.Info("mock server listening", "address", s.GetAddress())
	return nil
}

// Stop shuts the server down
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// GetAddress returns the base URL clients should use
func (s *Server) GetAddress() string {
	if s.listener != nil {
		return "http://" + s.listener.Addr().String()
	}
	return "http://" + net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
}

// Taxes returns a copy of the current records
func (s *Server) Taxes() []types.TaxRecord {
	s.dataMutex.RLock()
	defer s.dataMutex.RUnlock()
	return append([]types.TaxRecord(nil), s.taxes...)
}

func (s *Server) handleListTaxes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Taxes())
}

func (s *Server) handleListCountries(w http.ResponseWriter, r *http.Request) {
	s.dataMutex.RLock()
	countries := append([]types.Country{}, s.countries...)
	s.dataMutex.RUnlock()

	writeJSON(w, http.StatusOK, countries)
}

func (s *Server) handleUpdateTax(w http.ResponseWriter, r *http.Request) {
	if s.config.FailUpdates {
		writeError(w, http.StatusInternalServerError, "updates are disabled")
		return
	}

	id := chi.URLParam(r, "id")

	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil || patch == nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.dataMutex.Lock()
	defer s.dataMutex.Unlock()

	for i := range s.taxes {
		if s.taxes[i].ID != id {
			continue
		}

		rec, err := mergeTax(s.taxes[i], patch)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if rec.Entity == "" {
			writeError(w, http.StatusBadRequest, "entity is required")
			return
		}

		s.taxes[i] = rec
		writeJSON(w, http.StatusOK, rec)
		return
	}

	writeError(w, http.StatusNotFound, fmt.Sprintf("tax %s not found", id))
}

// mergeTax overlays the sent fields on the stored record. The id stays the
// one from the URL.
func mergeTax(stored types.TaxRecord, patch map[string]json.RawMessage) (types.TaxRecord, error) {
	data, err := json.Marshal(stored)
	if err != nil {
		return types.TaxRecord{}, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return types.TaxRecord{}, err
	}

	id := fields["id"]
	for k, v := range patch {
		fields[k] = v
	}
	fields["id"] = id

	data, err = json.Marshal(fields)
	if err != nil {
		return types.TaxRecord{}, err
	}
	var merged types.TaxRecord
	if err := json.Unmarshal(data, &merged); err != nil {
		return types.TaxRecord{}, fmt.Errorf("invalid tax fields: %w", err)
	}
	return merged, nil
}

// observe applies the configured delay, records metrics and keeps the request log
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		var body []byte
		if s.config.Logging && r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		if s.config.Delay > 0 && r.URL.Path != "/metrics" {
			select {
			case <-time.After(time.Duration(s.config.Delay) * time.Millisecond):
			case <-r.Context().Done():
				return
			}
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.Method + " " + routePattern(r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)

		s.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		s.latency.WithLabelValues(route).Observe(duration.Seconds())

		logger.Debug("mock request", "route", route, "status", status, "duration", duration)

		if s.config.Logging {
			s.logRequest(RequestLog{
				Timestamp: start,
				Method:    r.Method,
				Path:      r.URL.Path,
				Route:     route,
				Body:      string(body),
				Status:    status,
				Duration:  duration,
			})
		}
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// logRequest adds a request to the log
func (s *Server) logRequest(log RequestLog) {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = append(s.logs, log)
	if len(s.logs) > maxLogs {
		s.logs = s.logs[len(s.logs)-maxLogs:]
	}

	select {
	case s.notifyCh <- struct{}{}:
	default:
	}
}

// NotifyChannel returns the notification channel
func (s *Server) NotifyChannel() <-chan struct{} {
	return s.notifyCh
}

// TakeLogs returns the logged requests and empties the log
func (s *Server) TakeLogs() []RequestLog {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	logs := s.logs
	s.logs = make([]RequestLog, 0)
	return logs
}

// FollowLogs writes one line per logged request to w until ctx is done
func (s *Server) FollowLogs(ctx context.Context, w io.Writer) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.notifyCh:
			for _, l := range s.TakeLogs() {
				fmt.Fprintln(w, l.String())
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("mock response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
