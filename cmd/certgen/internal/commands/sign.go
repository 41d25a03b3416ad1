package commands

import (
	"context"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/cryptobyte"

	"github.com/wolfeidau/certgen/internal/certerr"
	"github.com/wolfeidau/certgen/internal/keypair"
	"github.com/wolfeidau/certgen/internal/keystore"
)

const pemSignedData = "SIGNED DATA"

// SignCmd signs the raw bytes of a file.
type SignCmd struct {
	Key  string `help:"Key name (default key when omitted)" short:"k"`
	File string `arg:"" help:"File to sign" type:"existingfile"`
	Out  string `help:"Write the signature to this file instead of printing it as base64" short:"o"`
}

func (c *SignCmd) Run(ctx context.Context, globals *Globals) error {
	store, err := globals.openStore()
	if err != nil {
		return err
	}

	kp, err := globals.loadKey(store, c.Key)
	if err != nil {
		return err
	}

	msg, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	sig, err := kp.Sign(msg)
	if err != nil {
		return fmt.Errorf("failed to sign: %w", err)
	}

	log.Debug().
		Str("algorithm", kp.Algorithm().Name()).
		Str("fingerprint", keystore.Fingerprint(kp)).
		Int("signatureLen", len(sig)).
		Msg("signed file")

	return writeOutput(globals, c.Out, sig, false)
}

// EnvelopeCmd wraps the DER elements of a file in a signed envelope: the elements
// become the contents of the to-be-signed SEQUENCE.
type EnvelopeCmd struct {
	Key  string `help:"Key name (default key when omitted)" short:"k"`
	File string `arg:"" help:"File holding concatenated DER elements" type:"existingfile"`
	Out  string `help:"Write the envelope to this file instead of printing it" short:"o"`
	PEM  bool   `name:"pem" help:"Encode the envelope as a SIGNED DATA PEM block"`
}

func (c *EnvelopeCmd) Run(ctx context.Context, globals *Globals) error {
	store, err := globals.openStore()
	if err != nil {
		return err
	}

	kp, err := globals.loadKey(store, c.Key)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	der, err := keypair.SignDER(kp, derElements(content))
	if err != nil {
		return fmt.Errorf("failed to build envelope: %w", err)
	}

	if c.PEM {
		return writeOutput(globals, c.Out, pem.EncodeToMemory(&pem.Block{Type: pemSignedData, Bytes: der}), true)
	}
	return writeOutput(globals, c.Out, der, false)
}

// derElements copies content into the envelope after checking it is a sequence of
// complete DER elements.
func derElements(content []byte) keypair.PayloadWriter {
	return func(b *cryptobyte.Builder) error {
		input := cryptobyte.String(content)
		for n := 0; !input.Empty(); n++ {
			var element cryptobyte.String
			if !input.ReadAnyASN1Element(&element, nil) {
				return certerr.X509(fmt.Sprintf("malformed DER element %d", n))
			}
			b.AddBytes(element)
		}
		return nil
	}
}

// writeOutput writes data to path, or to stdout when path is empty. Binary data sent to
// stdout is base64 encoded.
func writeOutput(globals *Globals, path string, data []byte, text bool) error {
	if path != "" {
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	out := globals.out()
	if text {
		_, err := out.Write(data)
		return err
	}
	_, err := fmt.Fprintln(out, base64.StdEncoding.EncodeToString(data))
	return err
}
