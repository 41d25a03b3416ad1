package keypair

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"fmt"

	"github.com/wolfeidau/certgen/internal/sigalg"
)

// Capabilities describes what a Backend can do beyond the baseline every backend
// provides (PKCS#8 parsing, P-256/P-384/Ed25519 generation and signing).
type Capabilities struct {
	// RSAGeneration reports whether new RSA keys can be generated.
	RSAGeneration bool
	// LegacyFormats reports whether SEC 1 and PKCS #1 private keys are accepted.
	LegacyFormats bool
	// P521 reports whether ECDSA over P-521 is available.
	P521 bool
}

// EdwardsKey is a backend-native Ed25519 private key.
type EdwardsKey interface {
	// PublicKey returns the 32 byte public key.
	PublicKey() []byte
	// Seed returns the 32 byte RFC 8032 private key seed.
	Seed() []byte
	// Sign returns the deterministic 64 byte signature of msg.
	Sign(msg []byte) []byte
}

// Backend supplies the cryptographic primitives behind a KeyPair. Errors returned by
// a Backend are backend specific; the keypair package converts them at the call site
// and never hands them to callers.
type Backend interface {
	Name() string
	Capabilities() Capabilities

	GenerateECDSA(curve elliptic.Curve) (*ecdsa.PrivateKey, error)
	GenerateEd25519() (EdwardsKey, error)
	GenerateRSA(bits int) (*rsa.PrivateKey, error)

	// ParseECDSA decodes der and fails unless the key is on curve.
	ParseECDSA(der []byte, curve elliptic.Curve) (*ecdsa.PrivateKey, error)
	ParseEd25519(der []byte) (EdwardsKey, error)
	ParseRSA(der []byte) (*rsa.PrivateKey, error)

	// MarshalPKCS8 encodes a key produced by this backend as PKCS#8 DER.
	MarshalPKCS8(key any) ([]byte, error)

	SignECDSA(key *ecdsa.PrivateKey, digest []byte) ([]byte, error)
	// SignRSA signs with PKCS #1 v1.5 padding when pss is nil.
	SignRSA(key *rsa.PrivateKey, hash crypto.Hash, pss *rsa.PSSOptions, digest []byte) ([]byte, error)
}

// Backend names accepted by BackendByName.
const (
	BackendNative   = "native"
	BackendPortable = "portable"
)

// BackendByName returns the backend registered under name.
func BackendByName(name string) (Backend, error) {
	switch name {
	case BackendNative:
		return NativeBackend(), nil
	case BackendPortable:
		return PortableBackend(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want %s or %s)", name, BackendNative, BackendPortable)
	}
}

// Supports reports whether b can generate, parse and sign with alg.
func Supports(b Backend, alg *sigalg.SignatureAlgorithm) bool {
	if alg == sigalg.ECDSAP521WithSHA512 {
		return b.Capabilities().P521
	}
	return true
}

type options struct {
	backend Backend
}

// Option configures key generation and parsing.
type Option func(*options)

// WithBackend selects the backend used to construct the key pair. The default is
// NativeBackend.
func WithBackend(b Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

func buildOptions(opts []Option) options {
	o := options{backend: NativeBackend()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
