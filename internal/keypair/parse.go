package keypair

import (
	"crypto"
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/wolfeidau/certgen/internal/certerr"
	"github.com/wolfeidau/certgen/internal/sigalg"
)

// FromDERWithAlgorithm parses a private key that the caller asserts belongs to alg.
// Use it when the same bytes could serve several algorithms, such as one RSA key with
// different paddings. PKCS#8 is accepted by every backend; SEC 1 and PKCS #1 only when
// the backend supports legacy formats.
//
// It panics if alg is not in the sigalg catalogue.
func FromDERWithAlgorithm(der []byte, alg *sigalg.SignatureAlgorithm, opts ...Option) (*KeyPair, error) {
	o := buildOptions(opts)
	return fromDER(o.backend, der, alg)
}

// FromPEMWithAlgorithm is FromDERWithAlgorithm for a PEM encoded private key.
func FromPEMWithAlgorithm(data []byte, alg *sigalg.SignatureAlgorithm, opts ...Option) (*KeyPair, error) {
	der, err := decodePrivateKeyPEM(data)
	if err != nil {
		return nil, err
	}
	return FromDERWithAlgorithm(der, alg, opts...)
}

// FromDER parses a private key and detects its algorithm by trying, in order,
// Ed25519, ECDSA P-256, ECDSA P-384, ECDSA P-521 (when the backend supports it) and
// RSA with PKCS #1 SHA-256 padding. The first algorithm whose constructor accepts the
// bytes wins, so the result is a deterministic choice rather than proof of the key's
// intended algorithm; use FromDERWithAlgorithm when that matters.
func FromDER(der []byte, opts ...Option) (*KeyPair, error) {
	o := buildOptions(opts)

	for _, alg := range DetectionOrder(o.backend) {
		kp, err := fromDER(o.backend, der, alg)
		if err != nil {
			continue
		}
		log.Debug().
			Str("algorithm", alg.Name()).
			Str("backend", o.backend.Name()).
			Msg("detected key algorithm")
		return kp, nil
	}

	return nil, certerr.ErrCouldNotParseKeyPair
}

// FromPEM is FromDER for a PEM encoded private key.
func FromPEM(data []byte, opts ...Option) (*KeyPair, error) {
	der, err := decodePrivateKeyPEM(data)
	if err != nil {
		return nil, err
	}
	return FromDER(der, opts...)
}

// Candidates returns every algorithm, in detection order, whose constructor accepts
// der. FromDER picks the first; more than one entry means the detection was a
// tie-break.
func Candidates(der []byte, opts ...Option) []*sigalg.SignatureAlgorithm {
	o := buildOptions(opts)

	var matches []*sigalg.SignatureAlgorithm
	for _, alg := range DetectionOrder(o.backend) {
		if _, err := fromDER(o.backend, der, alg); err == nil {
			matches = append(matches, alg)
		}
	}

	if len(matches) > 1 {
		log.Debug().
			Int("candidates", len(matches)).
			Str("chosen", matches[0].Name()).
			Msg("private key matches more than one algorithm")
	}

	return matches
}

// DetectionOrder is the fixed order FromDER tries algorithms in for backend b.
func DetectionOrder(b Backend) []*sigalg.SignatureAlgorithm {
	order := []*sigalg.SignatureAlgorithm{
		sigalg.Ed25519,
		sigalg.ECDSAP256WithSHA256,
		sigalg.ECDSAP384WithSHA384,
	}
	if b.Capabilities().P521 {
		order = append(order, sigalg.ECDSAP521WithSHA512)
	}
	return append(order, sigalg.RSAWithSHA256)
}

func fromDER(b Backend, der []byte, alg *sigalg.SignatureAlgorithm) (*KeyPair, error) {
	// Parsers that stop after the first element would otherwise drop trailing bytes.
	if !singleElement(der) {
		return nil, rejected(errTrailingData)
	}

	var (
		k      kind
		native any
	)

	switch alg {
	case sigalg.Ed25519:
		key, err := b.ParseEd25519(der)
		if err != nil {
			return nil, rejected(err)
		}
		k, native = edKind{key: key}, key
	case sigalg.ECDSAP256WithSHA256, sigalg.ECDSAP384WithSHA384, sigalg.ECDSAP521WithSHA512:
		if !Supports(b, alg) {
			return nil, certerr.ErrUnsupportedSignatureAlgorithm
		}
		key, err := b.ParseECDSA(der, alg.Curve())
		if err != nil {
			return nil, rejected(err)
		}
		ec, err := newECKind(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", certerr.ErrCouldNotParseKeyPair, err)
		}
		k, native = ec, key
	case sigalg.RSAWithSHA256, sigalg.RSAWithSHA384, sigalg.RSAWithSHA512, sigalg.RSAPSSWithSHA256:
		key, err := b.ParseRSA(der)
		if err != nil {
			return nil, rejected(err)
		}
		k, native = newRSAKind(key, paddingFor(alg)), key
	default:
		panic(fmt.Sprintf("keypair: unknown signature algorithm %v", alg))
	}

	// Legacy encodings are re-encoded so SerializeDER always yields PKCS#8.
	canonical := clone(der)
	if !isPKCS8(der) {
		var err error
		if canonical, err = b.MarshalPKCS8(native); err != nil {
			return nil, certerr.Unspecified(err)
		}
	}

	return &KeyPair{kind: k, alg: alg, der: canonical, backend: b}, nil
}

var errTrailingData = errors.New("input is not a single complete DER element")

// singleElement reports whether der holds exactly one complete DER element.
func singleElement(der []byte) bool {
	input := cryptobyte.String(der)
	var element cryptobyte.String
	return input.ReadAnyASN1Element(&element, nil) && input.Empty()
}

// rejected maps a backend parse failure. The result matches both
// certerr.ErrCouldNotParseKeyPair and certerr.ErrKeyRejected.
func rejected(err error) error {
	return fmt.Errorf("%w: %w", certerr.ErrCouldNotParseKeyPair, certerr.KeyRejected(err))
}

func paddingFor(alg *sigalg.SignatureAlgorithm) rsaPadding {
	switch alg {
	case sigalg.RSAWithSHA256:
		return rsaPadding{hash: crypto.SHA256}
	case sigalg.RSAWithSHA384:
		return rsaPadding{hash: crypto.SHA384}
	case sigalg.RSAWithSHA512:
		return rsaPadding{hash: crypto.SHA512}
	case sigalg.RSAPSSWithSHA256:
		return rsaPadding{
			hash: crypto.SHA256,
			pss:  &rsa.PSSOptions{SaltLength: alg.PSSSaltLength(), Hash: crypto.SHA256},
		}
	default:
		panic(fmt.Sprintf("keypair: %v is not an RSA signature algorithm", alg))
	}
}

// isPKCS8 reports whether der has the outer shape of a PrivateKeyInfo /
// OneAsymmetricKey: SEQUENCE { INTEGER, SEQUENCE, OCTET STRING, ... }.
func isPKCS8(der []byte) bool {
	input := cryptobyte.String(der)
	var (
		info    cryptobyte.String
		version int64
	)
	if !input.ReadASN1(&info, cbasn1.SEQUENCE) || !input.Empty() {
		return false
	}
	if !info.ReadASN1Integer(&version) {
		return false
	}
	return info.SkipASN1(cbasn1.SEQUENCE) && info.PeekASN1Tag(cbasn1.OCTET_STRING)
}
