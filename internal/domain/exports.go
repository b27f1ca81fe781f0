package domain

import (
	interfaces "utter/internal/domain/interfaces"
	types "utter/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	DeviceID         = types.DeviceID
	DeviceType       = types.DeviceType
	Fingerprint      = types.Fingerprint
	Identity         = types.Identity
	Device           = types.Device
	Envelope         = types.Envelope
	DecryptedMessage = types.DecryptedMessage
	X25519Public     = types.X25519Public
	X25519Private    = types.X25519Private
	Target           = types.Target
)

// Device roles.
const (
	DeviceTypeController = types.DeviceTypeController
	DeviceTypeTarget     = types.DeviceTypeTarget
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	IdentityService = interfaces.IdentityService
	MessageService  = interfaces.MessageService
	IdentityStore   = interfaces.IdentityStore
	TargetStore     = interfaces.TargetStore
)
