package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"utter/internal/auth"
	"utter/internal/domain"
	"utter/internal/logging"
	"utter/internal/metrics"
	"utter/internal/protocol/wire"
	"utter/internal/relay/directory"
)

// Server accepts device sockets and relays envelopes between them.
type Server struct {
	cfg    Config
	dir    *directory.Directory
	router *Router
	auth   auth.Authenticator
	log    *zap.Logger

	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[*session]struct{}
	wg       sync.WaitGroup
}

// New builds a relay. A nil authenticator trusts every registration.
func New(cfg Config, authn auth.Authenticator, log *zap.Logger) *Server {
	if authn == nil {
		authn = auth.AllowAll{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(logging.Component("relay"))
	dir := directory.New()
	return &Server{
		cfg:    cfg.withDefaults(),
		dir:    dir,
		router: NewRouter(dir, log),
		auth:   authn,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Devices are not browsers; there is no origin to protect.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		sessions: make(map[*session]struct{}),
	}
}

// Directory exposes the device registry.
func (s *Server) Directory() *directory.Directory { return s.dir }

// Handler returns the relay's HTTP surface.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleWS)
	r.Get("/ws", s.handleWS)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Status  string `json:"status"`
		Devices int    `json:"devices"`
	}{Status: "ok", Devices: s.dir.Len()})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		s.log.Debug("upgrade failed", logging.RemoteAddr(r.RemoteAddr), zap.Error(err))
		return
	}

	sess := newSession(s, ws, uuid.NewString())
	if !s.track(sess) {
		_ = ws.Close()
		return
	}
	defer s.untrack(sess)

	metrics.ConnectionsActive.Inc()
	defer metrics.ConnectionsActive.Dec()
	sess.log.Info("connection opened", logging.RemoteAddr(r.RemoteAddr))
	defer sess.log.Info("connection closed")

	sess.Send(wire.Connected(sess.id))
	go sess.writePump()
	sess.readPump()
}

// track returns false once the server is shutting down.
func (s *Server) track(sess *session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions == nil {
		return false
	}
	s.sessions[sess] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(sess *session) {
	s.mu.Lock()
	delete(s.sessions, sess)
	s.mu.Unlock()
	s.wg.Done()
}

// Kick closes the session registered as id. The device is removed from the
// directory once its reader notices the closed socket.
func (s *Server) Kick(id domain.DeviceID) bool {
	c, ok := s.dir.LookupConnection(id)
	if !ok {
		return false
	}
	s.log.Info("kicking device", logging.DeviceID(id.String()))
	c.Close()
	return true
}

// Close tears down every session and waits for their readers to exit.
// Hijacked sockets are not covered by http.Server.Shutdown.
func (s *Server) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = nil
	s.mu.Unlock()

	for sess := range sessions {
		sess.Close()
	}
	s.wg.Wait()
}
