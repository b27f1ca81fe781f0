package wire

import (
	"encoding/json"

	"utter/internal/domain"
)

// Type discriminates wire messages.
type Type string

const (
	TypeConnected  Type = "connected"
	TypeRegister   Type = "register"
	TypeRegistered Type = "registered"
	TypeGetDevices Type = "get_devices"
	TypeDevices    Type = "devices"
	TypeMessage    Type = "message"
	TypeDelivered  Type = "delivered"
	TypeError      Type = "error"
	TypePing       Type = "ping"
	TypePong       Type = "pong"
)

// Message is the union of every wire frame. Fields irrelevant to Type are
// left zero and omitted from the encoding.
type Message struct {
	Type Type `json:"type"`

	// connected
	ClientID string `json:"clientId,omitempty"`

	// register
	DeviceID   domain.DeviceID   `json:"deviceId,omitempty"`
	DeviceName string            `json:"deviceName,omitempty"`
	DeviceType domain.DeviceType `json:"deviceType,omitempty"`
	ClientType domain.DeviceType `json:"clientType,omitempty"`
	PublicKey  []byte            `json:"publicKey,omitempty"`
	Version    string            `json:"version,omitempty"`
	Platform   string            `json:"platform,omitempty"`
	Arch       string            `json:"arch,omitempty"`
	Token      string            `json:"token,omitempty"`

	// devices
	Devices []domain.Device `json:"devices,omitempty"`

	// message / delivered
	From               domain.DeviceID `json:"from,omitempty"`
	To                 domain.DeviceID `json:"to,omitempty"`
	Content            []byte          `json:"content,omitempty"`
	Nonce              []byte          `json:"nonce,omitempty"`
	EphemeralPublicKey []byte          `json:"ephemeralPublicKey,omitempty"`
	Timestamp          int64           `json:"timestamp,omitempty"`
	Encrypted          bool            `json:"encrypted,omitempty"`

	// error
	Code        ErrorCode       `json:"code,omitempty"`
	Reason      string          `json:"message,omitempty"`
	RecipientID domain.DeviceID `json:"recipientId,omitempty"`

	// Raw, when set, is the frame as received. Encode sends it unchanged so
	// fields unknown to this package survive forwarding.
	Raw []byte `json:"-"`
}

// Encode marshals m into a single text frame.
func Encode(m Message) ([]byte, error) {
	if len(m.Raw) > 0 {
		return m.Raw, nil
	}
	return json.Marshal(m)
}

// Decode parses one frame. Malformed JSON and frames without a type are
// reported as a *ProtocolError.
func Decode(b []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return Message{}, Errorf(CodeProtocol, "malformed message: %v", err)
	}
	if m.Type == "" {
		return Message{}, Errorf(CodeProtocol, "message has no type")
	}
	return m, nil
}

// Connected acknowledges a freshly accepted socket.
func Connected(clientID string) Message {
	return Message{Type: TypeConnected, ClientID: clientID}
}

// Register builds a registration request for dev.
func Register(dev domain.Device, token string) Message {
	return Message{
		Type:       TypeRegister,
		DeviceID:   dev.ID,
		DeviceName: dev.Name,
		DeviceType: dev.Type,
		PublicKey:  dev.PublicKey,
		Version:    dev.Version,
		Platform:   dev.Platform,
		Arch:       dev.Arch,
		Token:      token,
	}
}

// Registered acknowledges a registration.
func Registered(id domain.DeviceID) Message {
	return Message{Type: TypeRegistered, DeviceID: id}
}

// GetDevices requests a directory snapshot.
func GetDevices() Message { return Message{Type: TypeGetDevices} }

// Devices carries a directory snapshot.
func Devices(list []domain.Device) Message {
	return Message{Type: TypeDevices, Devices: list}
}

// Delivered tells a sender its message was handed to the recipient session.
func Delivered(to domain.DeviceID, ts int64) Message {
	return Message{Type: TypeDelivered, To: to, Timestamp: ts}
}

// Ping builds an application-level ping.
func Ping() Message { return Message{Type: TypePing} }

// Pong answers an application-level ping.
func Pong() Message { return Message{Type: TypePong} }

// Device converts a register message into a device record. The legacy
// clientType field is honoured when deviceType is absent.
func (m Message) Device() domain.Device {
	typ := m.DeviceType
	if typ == "" {
		typ = m.ClientType
	}
	name := m.DeviceName
	if name == "" {
		name = string(m.DeviceID)
	}
	return domain.Device{
		ID:        m.DeviceID,
		Name:      name,
		Type:      typ,
		PublicKey: m.PublicKey,
		Version:   m.Version,
		Platform:  m.Platform,
		Arch:      m.Arch,
	}
}
