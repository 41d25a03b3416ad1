package keypair

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/asn1"
	"errors"
	"fmt"

	circled "github.com/cloudflare/circl/sign/ed25519"
	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

var oidEd25519 = asn1.ObjectIdentifier{1, 3, 101, 112}

var errRSAGeneration = errors.New("portable backend cannot generate RSA keys")

// portableBackend accepts PKCS#8 only and implements Ed25519 with circl, decoding
// its PKCS#8 envelope itself.
type portableBackend struct {
	stdPrimitives
}

// PortableBackend returns the restricted backend: PKCS#8 input only, no RSA key
// generation and no P-521.
func PortableBackend() Backend {
	return portableBackend{}
}

func (portableBackend) Name() string { return BackendPortable }

func (portableBackend) Capabilities() Capabilities {
	return Capabilities{}
}

func (portableBackend) GenerateEd25519() (EdwardsKey, error) {
	_, priv, err := circled.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return newCirclEdwardsKey(priv), nil
}

func (portableBackend) GenerateRSA(int) (*rsa.PrivateKey, error) {
	return nil, errRSAGeneration
}

func (portableBackend) ParseECDSA(der []byte, curve elliptic.Curve) (*ecdsa.PrivateKey, error) {
	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, err
	}
	key, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("PKCS#8 key is %T, not ECDSA", parsed)
	}
	return checkCurve(key, curve)
}

func (portableBackend) ParseRSA(der []byte) (*rsa.PrivateKey, error) {
	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, err
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("PKCS#8 key is %T, not RSA", parsed)
	}
	return key, nil
}

// ParseEd25519 decodes a PKCS#8 v1 or v2 (RFC 5958) Ed25519 private key. When the
// optional public key is present it must match the one derived from the seed.
func (portableBackend) ParseEd25519(der []byte) (EdwardsKey, error) {
	input := cryptobyte.String(der)

	var (
		info, algID, privOctets, seed cryptobyte.String
		version                       int64
		oid                           asn1.ObjectIdentifier
	)
	if !input.ReadASN1(&info, cbasn1.SEQUENCE) || !input.Empty() {
		return nil, errors.New("malformed PKCS#8 envelope")
	}
	if !info.ReadASN1Integer(&version) || (version != 0 && version != 1) {
		return nil, errors.New("unsupported PKCS#8 version")
	}
	if !info.ReadASN1(&algID, cbasn1.SEQUENCE) || !algID.ReadASN1ObjectIdentifier(&oid) {
		return nil, errors.New("malformed PKCS#8 algorithm identifier")
	}
	if !oid.Equal(oidEd25519) || !algID.Empty() {
		return nil, fmt.Errorf("PKCS#8 algorithm %s is not Ed25519", oid)
	}
	if !info.ReadASN1(&privOctets, cbasn1.OCTET_STRING) ||
		!privOctets.ReadASN1(&seed, cbasn1.OCTET_STRING) || !privOctets.Empty() {
		return nil, errors.New("malformed Ed25519 private key")
	}
	if len(seed) != circled.SeedSize {
		return nil, fmt.Errorf("Ed25519 seed is %d bytes, want %d", len(seed), circled.SeedSize)
	}
	if !info.SkipOptionalASN1(cbasn1.Tag(0).ContextSpecific().Constructed()) {
		return nil, errors.New("malformed PKCS#8 attributes")
	}

	var (
		pubBits    cryptobyte.String
		hasPublic  bool
		unusedBits uint8
	)
	if !info.ReadOptionalASN1(&pubBits, &hasPublic, cbasn1.Tag(1).ContextSpecific()) || !info.Empty() {
		return nil, errors.New("malformed PKCS#8 public key")
	}

	key := newCirclEdwardsKey(circled.NewKeyFromSeed(seed))

	if hasPublic {
		if !pubBits.ReadUint8(&unusedBits) || unusedBits != 0 {
			return nil, errors.New("malformed PKCS#8 public key")
		}
		if !bytes.Equal(pubBits, key.pub) {
			return nil, errors.New("PKCS#8 public key does not match private key")
		}
	}

	return key, nil
}

func (portableBackend) MarshalPKCS8(key any) ([]byte, error) {
	switch k := key.(type) {
	case *ecdsa.PrivateKey, *rsa.PrivateKey:
		return x509.MarshalPKCS8PrivateKey(k)
	case circlEdwardsKey:
		var b cryptobyte.Builder
		b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1Int64(0)
			b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
				b.AddASN1ObjectIdentifier(oidEd25519)
			})
			b.AddASN1(cbasn1.OCTET_STRING, func(b *cryptobyte.Builder) {
				b.AddASN1OctetString(k.Seed())
			})
		})
		return b.Bytes()
	default:
		return nil, fmt.Errorf("portable backend cannot encode %T", key)
	}
}

type circlEdwardsKey struct {
	priv circled.PrivateKey
	pub  []byte
}

func newCirclEdwardsKey(priv circled.PrivateKey) circlEdwardsKey {
	pub := priv.Public().(circled.PublicKey)
	return circlEdwardsKey{priv: priv, pub: append([]byte(nil), pub...)}
}

func (k circlEdwardsKey) PublicKey() []byte { return append([]byte(nil), k.pub...) }

func (k circlEdwardsKey) Seed() []byte { return k.priv.Seed() }

func (k circlEdwardsKey) Sign(msg []byte) []byte { return circled.Sign(k.priv, msg) }
