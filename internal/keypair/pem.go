package keypair

import (
	"encoding/pem"
	"fmt"
	"slices"

	"github.com/wolfeidau/certgen/internal/certerr"
)

const (
	pemPrivateKey    = "PRIVATE KEY"
	pemRSAPrivateKey = "RSA PRIVATE KEY"
	pemECPrivateKey  = "EC PRIVATE KEY"
	pemPublicKey     = "PUBLIC KEY"
)

func encodePEM(label string, der []byte) string {
	return string(pem.EncodeToMemory(&pem.Block{Type: label, Bytes: der}))
}

// decodePEM returns the contents of the first PEM block in data, which must carry one
// of labels.
func decodePEM(data []byte, labels ...string) ([]byte, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, certerr.PEM("no PEM block found")
	}
	if !slices.Contains(labels, block.Type) {
		return nil, certerr.PEM(fmt.Sprintf("unexpected PEM block type %q", block.Type))
	}
	return block.Bytes, nil
}

func decodePrivateKeyPEM(data []byte) ([]byte, error) {
	return decodePEM(data, pemPrivateKey, pemECPrivateKey, pemRSAPrivateKey)
}
