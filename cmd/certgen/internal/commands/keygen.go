package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/wolfeidau/certgen/internal/certerr"
	"github.com/wolfeidau/certgen/internal/keypair"
	"github.com/wolfeidau/certgen/internal/keystore"
)

// KeygenCmd generates a new key pair in the key store.
type KeygenCmd struct {
	Name       string `arg:"" help:"Name for the key (e.g., intermediate-ca)"`
	Algorithm  string `help:"Signature algorithm" default:"ecdsa-p256-sha256" short:"a"`
	RSABits    int    `name:"rsa-bits" help:"RSA modulus size (2048, 3072 or 4096)" default:"2048"`
	SetDefault bool   `help:"Set as the default key" default:"false"`
}

func (c *KeygenCmd) Run(ctx context.Context, globals *Globals) error {
	alg, err := parseAlgorithm(c.Algorithm)
	if err != nil {
		return err
	}

	size, err := keypair.ParseRSAKeySize(c.RSABits)
	if err != nil {
		return err
	}

	store, err := globals.openStore()
	if err != nil {
		return err
	}

	entry, err := store.Create(c.Name, alg, size)
	if err != nil {
		switch {
		case errors.Is(err, keystore.ErrKeyExists):
			return fmt.Errorf("key %q already exists\n\nTo delete and recreate:\n  certgen delete %s\n  certgen keygen %s", c.Name, c.Name, c.Name)
		case errors.Is(err, certerr.ErrKeyGenerationUnavailable), errors.Is(err, certerr.ErrUnsupportedSignatureAlgorithm):
			return fmt.Errorf("the %s backend cannot generate %s keys: %w", globals.backendName(), alg, err)
		}
		return fmt.Errorf("failed to create key: %w", err)
	}

	if c.SetDefault {
		if err := store.SetDefault(c.Name); err != nil {
			return fmt.Errorf("failed to set default: %w", err)
		}
	}

	publicKeyPEM, err := store.LoadPublicKeyPEM(c.Name)
	if err != nil {
		return fmt.Errorf("failed to load public key: %w", err)
	}

	out := globals.out()
	fmt.Fprintf(out, "Generated key: %s\n", entry.Name)
	fmt.Fprintf(out, "Algorithm:     %s\n", entry.Algorithm)
	fmt.Fprintf(out, "Fingerprint:   %s\n", entry.Fingerprint)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Public Key:")
	fmt.Fprint(out, publicKeyPEM)

	return nil
}
