package server

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"utter/internal/domain"
	"utter/internal/logging"
	"utter/internal/metrics"
	"utter/internal/protocol/wire"
)

// session is the relay side of one socket. Only the read goroutine touches
// device; everything else is safe for concurrent use.
type session struct {
	id  string
	srv *Server
	ws  *websocket.Conn
	log *zap.Logger

	send      chan wire.Message
	done      chan struct{}
	closeOnce sync.Once

	device domain.DeviceID
}

func newSession(srv *Server, ws *websocket.Conn, id string) *session {
	return &session{
		id:   id,
		srv:  srv,
		ws:   ws,
		log:  srv.log.With(logging.ConnID(id)),
		send: make(chan wire.Message, srv.cfg.SendBuffer),
		done: make(chan struct{}),
	}
}

func (s *session) ID() string { return s.id }

// Send queues m for the writer. It never blocks: frames for a closing
// session or a full buffer are dropped.
func (s *session) Send(m wire.Message) bool {
	select {
	case <-s.done:
		metrics.SendDrops.Inc()
		return false
	default:
	}
	select {
	case s.send <- m:
		return true
	default:
		metrics.SendDrops.Inc()
		s.log.Warn("send buffer full, dropping frame", logging.MsgType(string(m.Type)))
		return false
	}
}

// Close asks the writer to say goodbye and release the socket.
func (s *session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// registered reports whether this socket currently owns its device id.
func (s *session) registered() bool {
	if s.device == "" {
		return false
	}
	c, ok := s.srv.dir.LookupConnection(s.device)
	return ok && c == s
}

func (s *session) writePump() {
	cfg := s.srv.cfg
	ticker := time.NewTicker(cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = s.ws.Close()
	}()

	for {
		select {
		case m := <-s.send:
			b, err := wire.Encode(m)
			if err != nil {
				s.log.Error("encode frame", zap.Error(err))
				continue
			}
			_ = s.ws.SetWriteDeadline(time.Now().Add(cfg.PongTimeout))
			if err := s.ws.WriteMessage(websocket.TextMessage, b); err != nil {
				s.log.Debug("write failed", zap.Error(err))
				s.Close()
				return
			}
		case <-ticker.C:
			if err := s.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(cfg.PongTimeout)); err != nil {
				s.log.Debug("ping failed", zap.Error(err))
				s.Close()
				return
			}
		case <-s.done:
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = s.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(cfg.CloseTimeout))
			return
		}
	}
}

// readPump runs on the HTTP handler goroutine until the socket dies.
func (s *session) readPump() {
	defer s.teardown()

	cfg := s.srv.cfg
	s.ws.SetReadLimit(cfg.MaxMessageSize)
	_ = s.ws.SetReadDeadline(time.Now().Add(cfg.readWait()))
	s.ws.SetPongHandler(func(string) error {
		s.touch()
		return s.ws.SetReadDeadline(time.Now().Add(cfg.readWait()))
	})
	// Clients ping on their own cadence; answer and count it as activity.
	s.ws.SetPingHandler(func(data string) error {
		s.touch()
		_ = s.ws.SetReadDeadline(time.Now().Add(cfg.readWait()))
		err := s.ws.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(cfg.PongTimeout))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return nil
		}
		return err
	})

	for {
		_, data, err := s.ws.ReadMessage()
		if err != nil {
			var ne net.Error
			switch {
			case errors.As(err, &ne) && ne.Timeout():
				metrics.KeepaliveTimeouts.Inc()
				s.log.Info("keepalive timeout", logging.DeviceID(s.device.String()))
			case websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure):
				s.log.Debug("read failed", zap.Error(err))
			}
			return
		}
		_ = s.ws.SetReadDeadline(time.Now().Add(cfg.readWait()))
		s.touch()
		s.handle(data)
	}
}

func (s *session) touch() {
	if s.device != "" {
		s.srv.dir.Touch(s.device, s)
	}
}

func (s *session) handle(data []byte) {
	m, err := wire.Decode(data)
	if err != nil {
		s.reject(err)
		return
	}

	switch m.Type {
	case wire.TypePing:
		s.Send(wire.Pong())
		return
	case wire.TypePong:
		return
	case wire.TypeRegister:
		s.register(m)
		return
	}

	if !s.registered() {
		s.reject(wire.Errorf(wire.CodeNotRegistered, "register before sending %s", m.Type))
		return
	}

	switch m.Type {
	case wire.TypeGetDevices:
		s.Send(wire.Devices(s.srv.dir.List()))
	case wire.TypeMessage:
		m.Raw = data
		if err := s.srv.router.Route(s, s.device, m); err != nil {
			s.reject(err)
		}
	default:
		s.reject(wire.Errorf(wire.CodeProtocol, "unsupported message type %q", m.Type))
	}
}

func (s *session) register(m wire.Message) {
	switch {
	case m.DeviceID == "":
		s.reject(wire.Errorf(wire.CodeProtocol, "register requires deviceId"))
		metrics.Registrations.WithLabelValues("rejected").Inc()
		return
	case len(m.PublicKey) != 0 && len(m.PublicKey) != 32:
		s.reject(wire.Errorf(wire.CodeProtocol, "publicKey must be 32 bytes"))
		metrics.Registrations.WithLabelValues("rejected").Inc()
		return
	}
	if err := s.srv.auth.Authenticate(m.DeviceID, m.Token); err != nil {
		s.reject(wire.Errorf(wire.CodeUnauthorized, "registration rejected: %v", err))
		metrics.Registrations.WithLabelValues("rejected").Inc()
		return
	}

	if s.device != "" && s.device != m.DeviceID {
		s.srv.dir.UnregisterConn(s.device, s)
	}

	dev := m.Device()
	prev := s.srv.dir.Register(dev, s)
	s.device = dev.ID
	log := s.log.With(logging.DeviceID(dev.ID.String()))

	if prev != nil {
		metrics.Registrations.WithLabelValues("superseded").Inc()
		prev.Send(wire.ErrorMessage(wire.Errorf(wire.CodeNotRegistered, "device %s registered from another connection", dev.ID)))
		log.Info("registration superseded previous connection", zap.String("previous_conn_id", prev.ID()))
	}
	metrics.Registrations.WithLabelValues("ok").Inc()
	metrics.DevicesRegistered.Set(float64(s.srv.dir.Len()))

	if !dev.HasPublicKey() {
		log.Warn("device registered without a public key; it cannot receive messages")
	}
	log.Info("device registered",
		logging.DeviceName(dev.Name),
		zap.String("device_type", dev.Type.String()),
		zap.String("version", dev.Version),
	)

	s.Send(wire.Registered(dev.ID))
	s.srv.router.BroadcastDirectory()
}

func (s *session) reject(err error) {
	m := wire.ErrorMessage(err)
	metrics.ProtocolErrors.WithLabelValues(string(m.Code)).Inc()
	s.log.Debug("rejected frame", zap.String("code", string(m.Code)), zap.String("reason", m.Reason))
	s.Send(m)
}

func (s *session) teardown() {
	s.Close()
	if s.device != "" && s.srv.dir.UnregisterConn(s.device, s) {
		metrics.DevicesRegistered.Set(float64(s.srv.dir.Len()))
		s.log.Info("device unregistered", logging.DeviceID(s.device.String()))
		s.srv.router.BroadcastDirectory()
	}
}
