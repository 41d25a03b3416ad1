// Package keystore keeps named key pairs on the local filesystem.
//
// Each key is stored as a PKCS#8 "PRIVATE KEY" PEM file (0600) next to its
// SubjectPublicKeyInfo "PUBLIC KEY" PEM file (0644). Metadata for every key lives in
// index.json, which is rewritten atomically on each change.
package keystore

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/certgen/internal/keypair"
	"github.com/wolfeidau/certgen/internal/sigalg"
)

// Sentinel errors
var (
	// ErrKeyNotFound is returned when a key doesn't exist.
	ErrKeyNotFound = errors.New("key not found")

	// ErrKeyExists is returned when trying to create a duplicate.
	ErrKeyExists = errors.New("key already exists")

	// ErrNoDefaultKey is returned when no default is set.
	ErrNoDefaultKey = errors.New("no default key set")

	// ErrInvalidName is returned for names that are not safe to use as file names.
	ErrInvalidName = errors.New("invalid key name")
)

const indexVersion = 1

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

// Entry is the metadata recorded for a stored key.
type Entry struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Algorithm   string    `json:"algorithm" yaml:"algorithm"`
	Fingerprint string    `json:"fingerprint" yaml:"fingerprint"`
	Backend     string    `json:"backend" yaml:"backend"`
	Imported    bool      `json:"imported" yaml:"imported"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// Index is the on-disk layout of index.json.
type Index struct {
	Version    int              `json:"version"`
	DefaultKey string           `json:"default_key,omitempty"`
	Keys       map[string]Entry `json:"keys"`
}

// Store manages key storage on the local filesystem.
type Store struct {
	baseDir string
	opts    []keypair.Option
}

// DefaultDir returns ~/.certgen/keys.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".certgen", "keys"), nil
}

// NewStore opens the key store in baseDir, creating it if needed. If baseDir is empty,
// uses DefaultDir. opts select the backend keys are generated and loaded with.
func NewStore(baseDir string, opts ...keypair.Option) (*Store, error) {
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}

	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create key store directory: %w", err)
	}

	store := &Store{baseDir: baseDir, opts: opts}

	if err := store.ensureIndex(); err != nil {
		return nil, err
	}

	log.Debug().Str("baseDir", baseDir).Msg("key store initialized")

	return store, nil
}

// Dir returns the directory the store writes to.
func (s *Store) Dir() string {
	return s.baseDir
}

// Fingerprint is the base58 encoded SHA-256 digest of the key's SubjectPublicKeyInfo.
func Fingerprint(k keypair.PublicKeyData) string {
	hash := sha256.Sum256(keypair.MarshalSubjectPublicKeyInfo(k))
	return base58.Encode(hash[:])
}

// Create generates a new key pair for alg and stores it. rsaSize picks the modulus of
// RSA keys; zero means 2048 bits and it is ignored for other algorithms.
func (s *Store) Create(name string, alg *sigalg.SignatureAlgorithm, rsaSize keypair.RSAKeySize) (*Entry, error) {
	if err := s.checkAvailable(name); err != nil {
		return nil, err
	}

	log.Info().Str("name", name).Str("algorithm", alg.Name()).Msg("generating new key")

	var (
		kp  *keypair.KeyPair
		err error
	)
	if alg.Family() == sigalg.FamilyRSA && rsaSize != 0 {
		kp, err = keypair.GenerateRSA(alg, rsaSize, s.opts...)
	} else {
		kp, err = keypair.Generate(alg, s.opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	return s.store(name, kp, false)
}

// Import stores an existing private key given as PEM. When alg is nil the algorithm is
// detected; the returned candidates then list every algorithm the key matched, the
// first being the one recorded.
func (s *Store) Import(name string, pemData []byte, alg *sigalg.SignatureAlgorithm) (*Entry, []*sigalg.SignatureAlgorithm, error) {
	if err := s.checkAvailable(name); err != nil {
		return nil, nil, err
	}

	var (
		kp         *keypair.KeyPair
		candidates []*sigalg.SignatureAlgorithm
		err        error
	)
	if alg != nil {
		kp, err = keypair.FromPEMWithAlgorithm(pemData, alg, s.opts...)
		candidates = []*sigalg.SignatureAlgorithm{alg}
	} else {
		kp, err = keypair.FromPEM(pemData, s.opts...)
		if err == nil {
			candidates = keypair.Candidates(kp.SerializeDER(), s.opts...)
		}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	entry, err := s.store(name, kp, true)
	if err != nil {
		return nil, nil, err
	}
	return entry, candidates, nil
}

// Get retrieves key metadata by name.
func (s *Store) Get(name string) (*Entry, error) {
	idx, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	entry, ok := idx.Keys[name]
	if !ok {
		return nil, ErrKeyNotFound
	}

	return &entry, nil
}

// GetDefault retrieves the default key.
// Returns ErrNoDefaultKey if none is set.
func (s *Store) GetDefault() (*Entry, error) {
	idx, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	if idx.DefaultKey == "" {
		return nil, ErrNoDefaultKey
	}

	return s.Get(idx.DefaultKey)
}

// SetDefault sets the default key.
func (s *Store) SetDefault(name string) error {
	idx, err := s.loadIndex()
	if err != nil {
		return err
	}

	if _, ok := idx.Keys[name]; !ok {
		return ErrKeyNotFound
	}

	idx.DefaultKey = name

	if err := s.saveIndex(idx); err != nil {
		return err
	}

	log.Info().Str("name", name).Msg("default key set")

	return nil
}

// List returns all stored keys sorted by name.
func (s *Store) List() ([]Entry, error) {
	idx, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(idx.Keys))
	for _, entry := range idx.Keys {
		entries = append(entries, entry)
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		return strings.Compare(a.Name, b.Name)
	})

	return entries, nil
}

// Delete removes a key and its files.
func (s *Store) Delete(name string) error {
	idx, err := s.loadIndex()
	if err != nil {
		return err
	}

	if _, ok := idx.Keys[name]; !ok {
		return ErrKeyNotFound
	}

	if err := os.Remove(s.privateKeyPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove private key: %w", err)
	}

	if err := os.Remove(s.publicKeyPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove public key: %w", err)
	}

	delete(idx.Keys, name)

	if idx.DefaultKey == name {
		idx.DefaultKey = ""
	}

	if err := s.saveIndex(idx); err != nil {
		return err
	}

	log.Info().Str("name", name).Msg("key deleted")

	return nil
}

// Load reads the private key and reconstructs the key pair with its recorded algorithm.
func (s *Store) Load(name string) (*keypair.KeyPair, error) {
	entry, err := s.Get(name)
	if err != nil {
		return nil, err
	}

	alg, ok := sigalg.ByName(entry.Algorithm)
	if !ok {
		return nil, fmt.Errorf("key %q has unknown algorithm %q", name, entry.Algorithm)
	}

	pemData, err := os.ReadFile(s.privateKeyPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}

	kp, err := keypair.FromPEMWithAlgorithm(pemData, alg, s.opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load private key %q (created with the %s backend): %w", name, entry.Backend, err)
	}

	if fp := Fingerprint(kp); fp != entry.Fingerprint {
		return nil, fmt.Errorf("private key %q does not match recorded fingerprint %s", name, entry.Fingerprint)
	}

	log.Debug().Str("name", name).Str("backend", kp.Backend()).Msg("private key loaded")

	return kp, nil
}

// LoadPublicKeyPEM returns the public key in PEM format.
func (s *Store) LoadPublicKeyPEM(name string) (string, error) {
	if _, err := s.Get(name); err != nil {
		return "", err
	}

	pemData, err := os.ReadFile(s.publicKeyPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to read public key: %w", err)
	}

	return string(pemData), nil
}

func (s *Store) checkAvailable(name string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if _, err := s.Get(name); err == nil {
		return ErrKeyExists
	} else if !errors.Is(err, ErrKeyNotFound) {
		return err
	}
	return nil
}

// store writes the key files for kp and records the entry.
func (s *Store) store(name string, kp *keypair.KeyPair, imported bool) (*Entry, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key id: %w", err)
	}

	fingerprint := Fingerprint(kp)

	log.Debug().
		Str("name", name).
		Str("fingerprint", fingerprint).
		Msg("computed key fingerprint")

	privateKeyPath := s.privateKeyPath(name)
	if err := os.WriteFile(privateKeyPath, []byte(kp.SerializePEM()), 0600); err != nil {
		return nil, fmt.Errorf("failed to write private key: %w", err)
	}

	publicKeyPath := s.publicKeyPath(name)
	// #nosec G306 - public keys are meant to be shared
	if err := os.WriteFile(publicKeyPath, []byte(kp.PublicKeyPEM()), 0644); err != nil {
		os.Remove(privateKeyPath)
		return nil, fmt.Errorf("failed to write public key: %w", err)
	}

	entry := Entry{
		ID:          id.String(),
		Name:        name,
		Algorithm:   kp.Algorithm().Name(),
		Fingerprint: fingerprint,
		Backend:     kp.Backend(),
		Imported:    imported,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.addEntry(entry); err != nil {
		os.Remove(privateKeyPath)
		os.Remove(publicKeyPath)
		return nil, err
	}

	log.Info().
		Str("name", name).
		Str("algorithm", entry.Algorithm).
		Str("fingerprint", fingerprint).
		Str("privateKeyPath", privateKeyPath).
		Msg("key stored")

	return &entry, nil
}

func (s *Store) privateKeyPath(name string) string {
	return filepath.Join(s.baseDir, name+".key")
}

func (s *Store) publicKeyPath(name string) string {
	return filepath.Join(s.baseDir, name+".pub")
}

func (s *Store) indexPath() string {
	return filepath.Join(s.baseDir, "index.json")
}

// ensureIndex creates an empty index if it doesn't exist.
func (s *Store) ensureIndex() error {
	if _, err := os.Stat(s.indexPath()); err == nil {
		return nil
	}

	return s.saveIndex(&Index{
		Version: indexVersion,
		Keys:    make(map[string]Entry),
	})
}

func (s *Store) loadIndex() (*Index, error) {
	data, err := os.ReadFile(s.indexPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}

	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to parse index: %w", err)
	}

	if idx.Version != indexVersion {
		return nil, fmt.Errorf("unsupported index version %d", idx.Version)
	}

	if idx.Keys == nil {
		idx.Keys = make(map[string]Entry)
	}

	return &idx, nil
}

// saveIndex writes the index file atomically.
func (s *Store) saveIndex(idx *Index) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	indexPath := s.indexPath()
	tempPath := indexPath + ".tmp"

	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}

	if err := os.Rename(tempPath, indexPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save index: %w", err)
	}

	return nil
}

// addEntry records a new key, making it the default if it is the first one.
func (s *Store) addEntry(entry Entry) error {
	idx, err := s.loadIndex()
	if err != nil {
		return err
	}

	idx.Keys[entry.Name] = entry

	if len(idx.Keys) == 1 {
		idx.DefaultKey = entry.Name
	}

	return s.saveIndex(idx)
}
