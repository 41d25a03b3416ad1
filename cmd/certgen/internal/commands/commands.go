package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wolfeidau/certgen/internal/keypair"
	"github.com/wolfeidau/certgen/internal/keystore"
	"github.com/wolfeidau/certgen/internal/sigalg"
)

type Globals struct {
	Debug   bool
	Version string
	Home    string
	Backend string

	// Stdout receives command output; nil means os.Stdout.
	Stdout io.Writer
}

func (g *Globals) out() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

func (g *Globals) backendName() string {
	if g.Backend == "" {
		return keypair.BackendNative
	}
	return g.Backend
}

// backend resolves the configured backend, defaulting to native.
func (g *Globals) backend() (keypair.Backend, error) {
	return keypair.BackendByName(g.backendName())
}

func (g *Globals) openStore() (*keystore.Store, error) {
	b, err := g.backend()
	if err != nil {
		return nil, err
	}

	store, err := keystore.NewStore(g.Home, keypair.WithBackend(b))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize key store: %w", err)
	}
	return store, nil
}

// loadKey loads name, or the default key when name is empty.
func (g *Globals) loadKey(store *keystore.Store, name string) (*keypair.KeyPair, error) {
	if name == "" {
		entry, err := store.GetDefault()
		if err != nil {
			if errors.Is(err, keystore.ErrNoDefaultKey) {
				return nil, fmt.Errorf("no key given and no default key set\n\nRun 'certgen default <name>' to choose one")
			}
			return nil, err
		}
		name = entry.Name
	}

	kp, err := store.Load(name)
	if err != nil {
		return nil, keyError(name, err)
	}
	return kp, nil
}

func parseAlgorithm(name string) (*sigalg.SignatureAlgorithm, error) {
	alg, ok := sigalg.ByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown algorithm %q\n\nRun 'certgen algorithms' to see supported algorithms", name)
	}
	return alg, nil
}

func keyError(name string, err error) error {
	if errors.Is(err, keystore.ErrKeyNotFound) {
		return fmt.Errorf("key %q not found\n\nRun 'certgen list' to see available keys", name)
	}
	return err
}

func algorithmNames(algs []*sigalg.SignatureAlgorithm) string {
	names := make([]string, len(algs))
	for i, alg := range algs {
		names[i] = alg.Name()
	}
	return strings.Join(names, ", ")
}
