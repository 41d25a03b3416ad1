package keypair

import (
	"fmt"

	"github.com/wolfeidau/certgen/internal/certerr"
	"github.com/wolfeidau/certgen/internal/sigalg"
)

// RSAKeySize is the modulus size of a generated RSA key.
type RSAKeySize int

const (
	RSA2048 RSAKeySize = 2048
	RSA3072 RSAKeySize = 3072
	RSA4096 RSAKeySize = 4096
)

// ParseRSAKeySize validates a modulus size given in bits.
func ParseRSAKeySize(bits int) (RSAKeySize, error) {
	switch size := RSAKeySize(bits); size {
	case RSA2048, RSA3072, RSA4096:
		return size, nil
	default:
		return 0, fmt.Errorf("unsupported RSA key size %d (want 2048, 3072 or 4096)", bits)
	}
}

// Generate creates a new random key pair for alg. RSA algorithms use a 2048 bit
// modulus; use GenerateRSA to choose the size. Backends without RSA generation fail
// with certerr.ErrKeyGenerationUnavailable.
func Generate(alg *sigalg.SignatureAlgorithm, opts ...Option) (*KeyPair, error) {
	o := buildOptions(opts)
	b := o.backend

	if !Supports(b, alg) {
		return nil, certerr.ErrUnsupportedSignatureAlgorithm
	}

	switch alg.Family() {
	case sigalg.FamilyEd25519:
		key, err := b.GenerateEd25519()
		if err != nil {
			return nil, certerr.Unspecified(err)
		}
		return assemble(b, edKind{key: key}, alg, key)
	case sigalg.FamilyECDSA:
		key, err := b.GenerateECDSA(alg.Curve())
		if err != nil {
			return nil, certerr.Unspecified(err)
		}
		k, err := newECKind(key)
		if err != nil {
			return nil, err
		}
		return assemble(b, k, alg, key)
	case sigalg.FamilyRSA:
		return generateRSA(b, alg, RSA2048)
	default:
		panic(fmt.Sprintf("keypair: unknown signature algorithm family %v", alg.Family()))
	}
}

// GenerateDefault creates a new ECDSA P-256 key pair.
func GenerateDefault(opts ...Option) (*KeyPair, error) {
	return Generate(sigalg.ECDSAP256WithSHA256, opts...)
}

// GenerateRSA creates a new random RSA key pair of the given size for alg. It fails
// with certerr.ErrKeyGenerationUnavailable when alg is not an RSA algorithm or the
// backend cannot generate RSA keys.
func GenerateRSA(alg *sigalg.SignatureAlgorithm, size RSAKeySize, opts ...Option) (*KeyPair, error) {
	o := buildOptions(opts)

	if alg.Family() != sigalg.FamilyRSA {
		return nil, certerr.ErrKeyGenerationUnavailable
	}
	if _, err := ParseRSAKeySize(int(size)); err != nil {
		return nil, err
	}
	return generateRSA(o.backend, alg, size)
}

func generateRSA(b Backend, alg *sigalg.SignatureAlgorithm, size RSAKeySize) (*KeyPair, error) {
	if !b.Capabilities().RSAGeneration {
		return nil, certerr.ErrKeyGenerationUnavailable
	}

	key, err := b.GenerateRSA(int(size))
	if err != nil {
		return nil, certerr.Unspecified(err)
	}
	return assemble(b, newRSAKind(key, paddingFor(alg)), alg, key)
}

// assemble encodes the freshly generated native key as PKCS#8 and builds the KeyPair.
func assemble(b Backend, k kind, alg *sigalg.SignatureAlgorithm, native any) (*KeyPair, error) {
	der, err := b.MarshalPKCS8(native)
	if err != nil {
		return nil, certerr.Unspecified(err)
	}
	return &KeyPair{kind: k, alg: alg, der: der, backend: b}, nil
}
