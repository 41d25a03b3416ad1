package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/certgen/internal/keystore"
	"github.com/wolfeidau/certgen/internal/sigalg"
)

// ImportCmd stores an existing PEM private key.
type ImportCmd struct {
	Name      string `arg:"" help:"Name for the key"`
	File      string `arg:"" help:"PEM file holding the private key" type:"existingfile"`
	Algorithm string `help:"Signature algorithm; detected from the key when omitted" short:"a"`
}

func (c *ImportCmd) Run(ctx context.Context, globals *Globals) error {
	var alg *sigalg.SignatureAlgorithm
	if c.Algorithm != "" {
		var err error
		if alg, err = parseAlgorithm(c.Algorithm); err != nil {
			return err
		}
	}

	pemData, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read private key: %w", err)
	}

	store, err := globals.openStore()
	if err != nil {
		return err
	}

	entry, candidates, err := store.Import(c.Name, pemData, alg)
	if err != nil {
		if errors.Is(err, keystore.ErrKeyExists) {
			return fmt.Errorf("key %q already exists", c.Name)
		}
		return fmt.Errorf("failed to import key: %w", err)
	}

	out := globals.out()
	fmt.Fprintf(out, "Imported key: %s\n", entry.Name)
	fmt.Fprintf(out, "Algorithm:    %s\n", entry.Algorithm)
	fmt.Fprintf(out, "Fingerprint:  %s\n", entry.Fingerprint)

	if len(candidates) > 1 {
		log.Warn().
			Str("name", entry.Name).
			Str("candidates", algorithmNames(candidates)).
			Msg("key matches several algorithms")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Warning: the key is valid for %s; recorded %s.\n", algorithmNames(candidates), entry.Algorithm)
		fmt.Fprintf(out, "Re-import with --algorithm to choose another.\n")
	}

	return nil
}
