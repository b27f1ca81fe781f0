package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"utter/internal/domain"
	"utter/internal/logging"
	"utter/internal/protocol/wire"
	"utter/internal/services/message"
)

const inboxSize = 64

// Config configures a Client.
type Config struct {
	RelayURL string
	// Device describes this device. PublicKey is always taken from the
	// identity passed to New.
	Device         domain.Device
	Token          string
	ReconnectDelay time.Duration

	Dialer   Dialer                // defaults to WebSocketDialer
	Messages domain.MessageService // defaults to message.New(identity)
	Targets  domain.TargetStore    // optional; persists the selected target
	Listener Listener              // defaults to NopListener
	Logger   *zap.Logger
}

// Listener receives client events on the client's handler goroutine.
// Implementations must not block.
type Listener interface {
	OnState(s State)
	OnDevices(devices []domain.Device)
	OnMessage(m domain.DecryptedMessage)
	OnError(err error)
}

// NopListener ignores every event. Embed it to implement part of Listener.
type NopListener struct{}

func (NopListener) OnState(State)                     {}
func (NopListener) OnDevices([]domain.Device)         {}
func (NopListener) OnMessage(domain.DecryptedMessage) {}
func (NopListener) OnError(error)                     {}

// Status is a snapshot of the client.
type Status struct {
	State      State
	DeviceID   domain.DeviceID
	Target     domain.Target
	Devices    []domain.Device
	Sent       uint64
	Delivered  uint64
	Received   uint64
	Rejected   uint64
	Failed     uint64
	Reconnects int
	LastError  error
}

// Client keeps a device connected to the relay.
type Client struct {
	cfg      Config
	messages domain.MessageService
	listener Listener
	log      *zap.Logger
	fsm      *FSM

	mu      sync.Mutex
	conn    Conn
	devices []domain.Device
	target  domain.Target
	waiters map[domain.DeviceID][]chan error
	status  Status
	notify  chan struct{}
}

// New builds a client for the device owning id. It does not connect until Run.
func New(cfg Config, id domain.Identity) *Client {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Dialer == nil {
		cfg.Dialer = WebSocketDialer{Logger: cfg.Logger}
	}
	if cfg.Messages == nil {
		cfg.Messages = message.New(id)
	}
	if cfg.Listener == nil {
		cfg.Listener = NopListener{}
	}
	if cfg.Device.Type == "" {
		cfg.Device.Type = domain.DeviceTypeController
	}
	if cfg.Device.Name == "" {
		cfg.Device.Name = cfg.Device.ID.String()
	}
	cfg.Device.PublicKey = id.Public.Slice()

	c := &Client{
		cfg:      cfg,
		messages: cfg.Messages,
		listener: cfg.Listener,
		log: cfg.Logger.With(
			logging.Component("client"),
			logging.DeviceID(cfg.Device.ID.String()),
		),
		waiters: make(map[domain.DeviceID][]chan error),
		notify:  make(chan struct{}),
	}
	c.fsm = NewFSM(c.stateChanged)

	if cfg.Targets != nil {
		t, ok, err := cfg.Targets.LoadTarget()
		switch {
		case err != nil:
			c.log.Warn("could not load saved target", zap.Error(err))
		case ok:
			c.target = t
		}
	}
	return c
}

// Run connects and keeps reconnecting after a fixed delay until ctx ends.
// It returns nil once ctx is cancelled.
func (c *Client) Run(ctx context.Context) error {
	defer c.fire(EventStop)

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			c.fire(EventBackoff)
			t := time.NewTimer(c.cfg.ReconnectDelay)
			select {
			case <-ctx.Done():
				t.Stop()
				return nil
			case <-t.C:
			}
		}

		c.fire(EventDial)
		err := c.runSession(ctx)
		c.fire(EventClosed)
		if ctx.Err() != nil {
			return nil
		}
		c.report(err)
		c.log.Warn("relay connection lost", zap.Error(err), zap.Duration("retry_in", c.cfg.ReconnectDelay))
	}
}

func (c *Client) runSession(ctx context.Context) error {
	conn, err := c.cfg.Dialer.Dial(ctx, c.cfg.RelayURL)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %w", ErrTransport, c.cfg.RelayURL, err)
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	defer c.detach(conn)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Reading stays on its own goroutine so keepalive frames are answered
	// while a message is still being decrypted.
	inbox := make(chan wire.Message, inboxSize)
	readErr := make(chan error, 1)
	go func() {
		defer close(inbox)
		for {
			m, err := conn.Read()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case inbox <- m:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-inbox:
			if !ok {
				select {
				case err := <-readErr:
					return fmt.Errorf("%w: %w", ErrTransport, err)
				default:
					return ErrTransport
				}
			}
			c.handle(conn, m)
		}
	}
}

// detach forgets conn and fails everything still waiting on it.
func (c *Client) detach(conn Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.failWaitersLocked(ErrTransport)
	c.mu.Unlock()
	_ = conn.Close()
}

func (c *Client) handle(conn Conn, m wire.Message) {
	switch m.Type {
	case wire.TypeConnected:
		c.fire(EventOpened)
		c.write(conn, wire.Register(c.cfg.Device, c.cfg.Token))
	case wire.TypeRegistered:
		c.fire(EventRegistered)
		// Registration changes the directory; poll in case the relay does not push.
		c.write(conn, wire.GetDevices())
	case wire.TypeDevices:
		c.updateDevices(m.Devices)
	case wire.TypeMessage:
		c.receive(m)
	case wire.TypeDelivered:
		c.mu.Lock()
		c.status.Delivered++
		c.resolveLocked(m.To, nil)
		c.bumpLocked()
		c.mu.Unlock()
	case wire.TypeError:
		c.relayError(m.Err())
	case wire.TypePing:
		c.write(conn, wire.Pong())
	case wire.TypePong:
	default:
		c.log.Debug("ignoring frame", logging.MsgType(string(m.Type)))
	}
}

func (c *Client) write(conn Conn, m wire.Message) {
	if err := conn.Write(m); err != nil {
		// The reader will notice the broken socket and end the session.
		c.log.Debug("write failed", logging.MsgType(string(m.Type)), zap.Error(err))
	}
}

func (c *Client) updateDevices(all []domain.Device) {
	self := c.cfg.Device.ID
	others := make([]domain.Device, 0, len(all))
	for _, d := range all {
		if d.ID != self {
			others = append(others, d)
		}
	}

	c.mu.Lock()
	c.devices = others
	prev := c.target
	c.target = ReconcileTarget(prev, others, self)
	next := c.target
	c.bumpLocked()
	c.mu.Unlock()

	if next != prev {
		switch {
		case next.DeviceID != "":
			c.log.Info("target bound", logging.DeviceID(next.DeviceID.String()), logging.DeviceName(next.DeviceName))
		default:
			c.log.Info("target offline", logging.DeviceName(next.DeviceName))
		}
		c.saveTarget(next)
	}
	c.listener.OnDevices(others)
}

func (c *Client) receive(m wire.Message) {
	if !m.IsEncrypted() {
		c.reportCounted(fmt.Errorf("%w from %s", ErrPlaintextRejected, m.From), &c.status.Rejected)
		return
	}

	env, err := m.Envelope()
	if err == nil {
		var msg domain.DecryptedMessage
		if msg, err = c.messages.DecryptMessage(env); err == nil {
			c.listener.OnMessage(msg)
			c.mu.Lock()
			c.status.Received++
			c.bumpLocked()
			c.mu.Unlock()
			return
		}
	}
	c.reportCounted(fmt.Errorf("message from %s: %w", m.From, err), &c.status.Failed)
}

func (c *Client) relayError(pe *wire.ProtocolError) {
	switch pe.Code {
	case wire.CodeRecipientUnavailable:
		err := fmt.Errorf("%w: %s", ErrRecipientUnavailable, pe.RecipientID)
		c.mu.Lock()
		c.resolveLocked(pe.RecipientID, err)
		c.mu.Unlock()
		c.report(err)
	case wire.CodeNotRegistered:
		if c.fsm.State() == StateRegistered {
			c.fire(EventSuperseded)
		}
		err := fmt.Errorf("%w: %s", ErrNotRegistered, pe.Message)
		c.mu.Lock()
		c.failWaitersLocked(err)
		c.mu.Unlock()
		c.report(err)
	case wire.CodeUnauthorized:
		c.report(fmt.Errorf("%w: %s", ErrUnauthorized, pe.Message))
	default:
		c.report(pe)
	}
}

// report records err as the last error and forwards it to the listener.
func (c *Client) report(err error) { c.reportCounted(err, nil) }

// reportCounted is report that also bumps counter under the same lock.
func (c *Client) reportCounted(err error, counter *uint64) {
	c.log.Debug("client error", zap.Error(err))
	c.listener.OnError(err)
	c.mu.Lock()
	if counter != nil {
		*counter++
	}
	c.status.LastError = err
	c.bumpLocked()
	c.mu.Unlock()
}

// Send encrypts plaintext for the selected target and hands it to the relay
// without waiting for a delivery verdict.
func (c *Client) Send(plaintext []byte) error {
	_, err := c.send(plaintext, false)
	return err
}

// SendWait sends like Send and then waits for the relay to confirm delivery
// or report the target unavailable.
func (c *Client) SendWait(ctx context.Context, plaintext []byte) error {
	verdict, err := c.send(plaintext, true)
	if err != nil {
		return err
	}
	select {
	case err := <-verdict:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) send(plaintext []byte, wait bool) (<-chan error, error) {
	c.mu.Lock()
	target, conn := c.target, c.conn
	dev, found := c.deviceLocked(target.DeviceID)
	c.mu.Unlock()

	switch {
	case target.DeviceID == "" && target.DeviceName != "":
		return nil, fmt.Errorf("%w: %s is offline", ErrRecipientUnavailable, target.DeviceName)
	case target.DeviceID == "":
		return nil, ErrNoTarget
	case conn == nil || c.fsm.State() != StateRegistered:
		return nil, ErrNotRegistered
	case !found:
		return nil, fmt.Errorf("%w: %s", ErrRecipientUnavailable, target.DeviceID)
	}
	pub, ok := dev.X25519()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoPublicKey, dev.Name)
	}

	env, err := c.messages.EncryptMessage(c.cfg.Device.ID, target.DeviceID, pub, plaintext)
	if err != nil {
		return nil, err
	}

	// Every message queues a waiter, even when nobody reads it, so the relay's
	// delivered and recipient_unavailable replies pair up with messages in order.
	verdict := make(chan error, 1)
	c.mu.Lock()
	c.waiters[target.DeviceID] = append(c.waiters[target.DeviceID], verdict)
	c.mu.Unlock()

	if err := conn.Write(wire.FromEnvelope(env)); err != nil {
		c.mu.Lock()
		c.dropWaiterLocked(target.DeviceID, verdict)
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	c.mu.Lock()
	c.status.Sent++
	c.bumpLocked()
	c.mu.Unlock()
	if !wait {
		return nil, nil
	}
	return verdict, nil
}

// SelectTarget binds the target to a device currently in the directory.
func (c *Client) SelectTarget(id domain.DeviceID) error {
	c.mu.Lock()
	dev, ok := c.deviceLocked(id)
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrRecipientUnavailable, id)
	}
	c.target = domain.Target{DeviceID: dev.ID, DeviceName: dev.Name}
	t := c.target
	c.bumpLocked()
	c.mu.Unlock()

	c.saveTarget(t)
	return nil
}

// SelectTargetByName remembers name as the target and binds it as soon as a
// device with that name is in the directory.
func (c *Client) SelectTargetByName(name string) domain.Target {
	c.mu.Lock()
	c.target = ReconcileTarget(domain.Target{DeviceName: name}, c.devices, c.cfg.Device.ID)
	t := c.target
	c.bumpLocked()
	c.mu.Unlock()

	c.saveTarget(t)
	return t
}

// Target returns the current selection.
func (c *Client) Target() domain.Target {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// RefreshDevices asks the relay for a fresh directory snapshot.
func (c *Client) RefreshDevices() error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil || c.fsm.State() != StateRegistered {
		return ErrNotRegistered
	}
	if err := conn.Write(wire.GetDevices()); err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return nil
}

// State returns the connection state.
func (c *Client) State() State { return c.fsm.State() }

// Status returns a snapshot of the client.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

// Wait blocks until cond holds for the client's status or ctx ends.
func (c *Client) Wait(ctx context.Context, cond func(Status) bool) error {
	for {
		c.mu.Lock()
		st := c.statusLocked()
		changed := c.notify
		c.mu.Unlock()

		if cond(st) {
			return nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Client) statusLocked() Status {
	st := c.status
	st.State = c.fsm.State()
	st.DeviceID = c.cfg.Device.ID
	st.Target = c.target
	st.Devices = append([]domain.Device(nil), c.devices...)
	return st
}

// bumpLocked wakes every Wait caller.
func (c *Client) bumpLocked() {
	close(c.notify)
	c.notify = make(chan struct{})
}

func (c *Client) deviceLocked(id domain.DeviceID) (domain.Device, bool) {
	if id == "" {
		return domain.Device{}, false
	}
	for _, d := range c.devices {
		if d.ID == id {
			return d, true
		}
	}
	return domain.Device{}, false
}

func (c *Client) resolveLocked(id domain.DeviceID, err error) {
	q := c.waiters[id]
	if len(q) == 0 {
		return
	}
	q[0] <- err
	if len(q) == 1 {
		delete(c.waiters, id)
		return
	}
	c.waiters[id] = q[1:]
}

func (c *Client) dropWaiterLocked(id domain.DeviceID, ch chan error) {
	q := c.waiters[id]
	for i, w := range q {
		if w == ch {
			q = append(q[:i], q[i+1:]...)
			break
		}
	}
	if len(q) == 0 {
		delete(c.waiters, id)
		return
	}
	c.waiters[id] = q
}

func (c *Client) failWaitersLocked(err error) {
	for id, q := range c.waiters {
		for _, ch := range q {
			ch <- err
		}
		delete(c.waiters, id)
	}
}

func (c *Client) saveTarget(t domain.Target) {
	if c.cfg.Targets == nil {
		return
	}
	if err := c.cfg.Targets.SaveTarget(t); err != nil {
		c.log.Warn("could not save target", zap.Error(err))
	}
}

func (c *Client) fire(e Event) {
	if _, err := c.fsm.Fire(e); err != nil {
		c.log.Warn("ignored event", zap.Error(err))
	}
}

func (c *Client) stateChanged(from, to State) {
	c.log.Info("connection state", zap.Stringer("from", from), zap.Stringer("to", to))
	c.mu.Lock()
	if to == StateReconnecting {
		c.status.Reconnects++
	}
	c.bumpLocked()
	c.mu.Unlock()
	c.listener.OnState(to)
}
