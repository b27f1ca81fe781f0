package types

import "time"

// Device is a directory entry describing a connected device.
type Device struct {
	ID        DeviceID   `json:"deviceId"`
	Name      string     `json:"deviceName"`
	Type      DeviceType `json:"deviceType"`
	PublicKey []byte     `json:"publicKey,omitempty"`
	Online    bool       `json:"online"`
	LastSeen  time.Time  `json:"lastSeen"`

	Version  string `json:"version,omitempty"`
	Platform string `json:"platform,omitempty"`
	Arch     string `json:"arch,omitempty"`
}

// HasPublicKey reports whether the device published a usable X25519 key.
// Devices without one cannot receive encrypted messages.
func (d Device) HasPublicKey() bool { return len(d.PublicKey) == 32 }

// X25519 returns the published key as a fixed-size array.
func (d Device) X25519() (X25519Public, bool) {
	var pub X25519Public
	if !d.HasPublicKey() {
		return pub, false
	}
	copy(pub[:], d.PublicKey)
	return pub, true
}
