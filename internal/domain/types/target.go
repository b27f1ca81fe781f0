package types

// Target remembers which device the user sends to. The name is what lets a
// client find the device again after it reconnects under a new id.
type Target struct {
	DeviceID   DeviceID `json:"device_id"`
	DeviceName string   `json:"device_name"`
}

// IsZero reports whether no target is selected or remembered.
func (t Target) IsZero() bool { return t.DeviceID == "" && t.DeviceName == "" }
