package interfaces

import domaintypes "utter/internal/domain/types"

// IdentityStore persists the device identity key pair with owner-only access.
// LoadIdentity returns an error wrapping fs.ErrNotExist when no key is stored.
type IdentityStore interface {
	SaveIdentity(passphrase string, id domaintypes.Identity) error
	LoadIdentity(passphrase string) (domaintypes.Identity, error)
}

// TargetStore persists the selected target across restarts.
type TargetStore interface {
	SaveTarget(t domaintypes.Target) error
	LoadTarget() (domaintypes.Target, bool, error)
}
