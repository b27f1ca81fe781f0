package server

import (
	"go.uber.org/zap"

	"utter/internal/domain"
	"utter/internal/logging"
	"utter/internal/metrics"
	"utter/internal/protocol/wire"
	"utter/internal/relay/directory"
)

// Router forwards envelopes between registered sessions. It only reads
// routing metadata and never logs or inspects content.
type Router struct {
	dir *directory.Directory
	log *zap.Logger
}

// NewRouter returns a router over dir.
func NewRouter(dir *directory.Directory, log *zap.Logger) *Router {
	return &Router{dir: dir, log: log.With(logging.Component("router"))}
}

// Route forwards m from the session registered as sender. Unknown
// recipients are reported back as a *wire.ProtocolError and the message is
// dropped. Route never blocks on the recipient.
//
// When m.Raw holds the received frame it is forwarded verbatim, with only
// from added if the sender left it out.
func (r *Router) Route(from directory.Conn, sender domain.DeviceID, m wire.Message) error {
	stamp := m.From == ""
	switch {
	case stamp:
		m.From = sender
	case m.From != sender:
		return wire.Errorf(wire.CodeProtocol, "from %s does not match registered device %s", m.From, sender)
	}
	if err := wire.ValidateEnvelope(m); err != nil {
		return err
	}
	if stamp && len(m.Raw) > 0 {
		raw, err := wire.StampFrom(m.Raw, sender)
		if err != nil {
			return err
		}
		m.Raw = raw
	}

	log := r.log.With(logging.From(sender.String()), logging.To(m.To.String()))

	dst, ok := r.dir.LookupConnection(m.To)
	if !ok {
		metrics.MessagesRouted.WithLabelValues("recipient_unavailable").Inc()
		log.Debug("recipient unavailable")
		return wire.RecipientUnavailable(m.To)
	}
	if !dst.Send(m) {
		metrics.MessagesRouted.WithLabelValues("dropped").Inc()
		log.Info("recipient session not accepting frames")
		return wire.RecipientUnavailable(m.To)
	}

	metrics.MessagesRouted.WithLabelValues("delivered").Inc()
	metrics.EnvelopeBytes.Observe(float64(len(m.Content)))
	log.Debug("envelope forwarded", logging.Bytes(len(m.Content)))
	from.Send(wire.Delivered(m.To, m.Timestamp))
	return nil
}

// BroadcastDirectory pushes the current device list to every registered session.
func (r *Router) BroadcastDirectory() {
	msg := wire.Devices(r.dir.List())
	for _, c := range r.dir.Connections() {
		c.Send(msg)
	}
}
