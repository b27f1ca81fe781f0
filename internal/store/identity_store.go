package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"utter/internal/crypto"
	"utter/internal/domain"
	"utter/internal/util/memzero"
)

const (
	rawKeyFilename    = "keypair.key"
	sealedKeyFilename = "keypair.key.enc"
)

var (
	// ErrInvalidKeyFile is returned when a stored key has the wrong size.
	ErrInvalidKeyFile = errors.New("invalid identity key file")

	// ErrKeyFormMismatch is returned when the identity exists but was stored
	// with the other passphrase setting: raw when a passphrase was given, or
	// sealed when none was. Generating a new key here would replace the
	// device identity.
	ErrKeyFormMismatch = errors.New("identity key stored in the other form")
)

// IdentityFileStore persists the local identity to disk.
//
// Only the private key is written; the public key is recomputed on load.
type IdentityFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewIdentityFileStore returns an IdentityFileStore rooted at dir.
func NewIdentityFileStore(dir string) *IdentityFileStore {
	return &IdentityFileStore{dir: dir}
}

// SaveIdentity writes the private key. An empty passphrase stores it raw.
func (s *IdentityFileStore) SaveIdentity(passphrase string, id domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := append([]byte(nil), id.Private[:]...)
	defer memzero.Zero(raw)

	if passphrase == "" {
		return writeFile(filepath.Join(s.dir, rawKeyFilename), raw, 0o600)
	}

	N, r, p := scryptParamsDefault()
	ct, err := encrypt(passphrase, raw, N, r, p)
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(s.dir, sealedKeyFilename), ct, 0o600)
}

// LoadIdentity reads (and, with a passphrase, decrypts) the identity.
// A missing key file yields an error matching fs.ErrNotExist.
func (s *IdentityFileStore) LoadIdentity(passphrase string) (domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, other := rawKeyFilename, sealedKeyFilename
	if passphrase != "" {
		name, other = sealedKeyFilename, rawKeyFilename
	}
	path := filepath.Join(s.dir, name)

	b, err := readFile(path)
	if err != nil {
		return domain.Identity{}, err
	}
	if b == nil {
		if _, err := os.Stat(filepath.Join(s.dir, other)); err == nil {
			return domain.Identity{}, fmt.Errorf("load identity %s: %w (found %s)", path, ErrKeyFormMismatch, other)
		}
		return domain.Identity{}, fmt.Errorf("load identity %s: %w", path, fs.ErrNotExist)
	}

	raw := b
	if passphrase != "" {
		if raw, err = decrypt(passphrase, b); err != nil {
			return domain.Identity{}, err
		}
	}
	defer memzero.Zero(raw)

	if len(raw) != len(domain.X25519Private{}) {
		return domain.Identity{}, fmt.Errorf("%w: %d bytes (expected 32)", ErrInvalidKeyFile, len(raw))
	}

	var id domain.Identity
	copy(id.Private[:], raw)
	if id.Public, err = crypto.PublicKey(id.Private); err != nil {
		return domain.Identity{}, err
	}
	return id, nil
}

// Compile-time assertion that IdentityFileStore implements domain.IdentityStore.
var _ domain.IdentityStore = (*IdentityFileStore)(nil)
