package types

// DeviceID identifies a device in the relay directory. It is stable for a
// device across reconnects but only unique per live connection.
type DeviceID string

// String returns the string form of the device id.
func (id DeviceID) String() string { return string(id) }

// DeviceType is the role a device plays in the relay.
type DeviceType string

const (
	// DeviceTypeController sends text (for example a phone doing voice capture).
	DeviceTypeController DeviceType = "controller"
	// DeviceTypeTarget receives and consumes delivered text.
	DeviceTypeTarget DeviceType = "target"
)

// String returns the string form of the device type.
func (t DeviceType) String() string { return string(t) }

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }
