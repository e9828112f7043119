package metrics

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	TicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focuswarden_ticks_total",
			Help: "Seconds delivered to running sessions",
		},
		[]string{"mode"},
	)

	SessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focuswarden_sessions_total",
			Help: "Sessions that ended, by how they ended",
		},
		[]string{"mode", "outcome"},
	)

	RemainingSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "focuswarden_remaining_seconds",
			Help: "Seconds left in the active session",
		},
	)

	Running = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "focuswarden_running",
			Help: "1 while the active session is counting down",
		},
	)

	AlarmPending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "focuswarden_alarm_pending",
			Help: "1 while a finished session awaits confirmation",
		},
	)
)

func init() {
	prometheus.MustRegister(
		TicksTotal,
		SessionsTotal,
		RemainingSeconds,
		Running,
		AlarmPending,
	)
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// SetState updates the session gauges.
func SetState(remaining int, running, pending bool) {
	RemainingSeconds.Set(float64(remaining))
	Running.Set(boolGauge(running))
	AlarmPending.Set(boolGauge(pending))
}

// Server is the metrics HTTP server
type Server struct {
	server   *http.Server
	listener net.Listener
	logger   zerolog.Logger
}

func NewServer(addr string, logger zerolog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger.With().Str("component", "metrics").Logger(),
	}
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.logger.Info().Str("addr", ln.Addr().String()).Msg("Starting metrics server")
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("Metrics server error")
		}
	}()
	return nil
}

// Addr is the bound address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.server.Addr
	}
	return s.listener.Addr().String()
}

func (s *Server) Stop() error {
	s.logger.Info().Msg("Stopping metrics server")
	return s.server.Close()
}
