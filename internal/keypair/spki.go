package keypair

import (
	"bytes"
	"encoding/asn1"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/wolfeidau/certgen/internal/certerr"
	"github.com/wolfeidau/certgen/internal/sigalg"
)

// PublicKeyData is anything that exposes a public key and the algorithm it belongs to.
type PublicKeyData interface {
	// PublicKeyRaw returns the algorithm native encoding of the public key.
	PublicKeyRaw() []byte
	// Algorithm returns the signature algorithm of the key.
	Algorithm() *sigalg.SignatureAlgorithm
}

// MarshalSubjectPublicKeyInfo encodes k as
//
//	SubjectPublicKeyInfo ::= SEQUENCE {
//	    algorithm        AlgorithmIdentifier,
//	    subjectPublicKey BIT STRING }
func MarshalSubjectPublicKeyInfo(k PublicKeyData) []byte {
	var b cryptobyte.Builder
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		k.Algorithm().WriteKeyAlgorithmIdentifier(b)
		b.AddASN1(cbasn1.BIT_STRING, func(b *cryptobyte.Builder) {
			b.AddUint8(0)
			b.AddBytes(k.PublicKeyRaw())
		})
	})
	return b.BytesOrPanic()
}

// SubjectPublicKeyInfo is a public key detached from its private half, for example
// one read back from a PEM file or a certificate signing request.
type SubjectPublicKeyInfo struct {
	alg *sigalg.SignatureAlgorithm
	raw []byte
}

var _ PublicKeyData = (*SubjectPublicKeyInfo)(nil)

// NewSubjectPublicKeyInfo copies the public half of k.
func NewSubjectPublicKeyInfo(k PublicKeyData) *SubjectPublicKeyInfo {
	return &SubjectPublicKeyInfo{alg: k.Algorithm(), raw: k.PublicKeyRaw()}
}

// ParseSubjectPublicKeyInfo decodes a DER SubjectPublicKeyInfo. The algorithm is
// resolved by comparing the AlgorithmIdentifier with the catalogue, so an RSA key
// resolves to sigalg.RSAWithSHA256.
func ParseSubjectPublicKeyInfo(der []byte) (*SubjectPublicKeyInfo, error) {
	input := cryptobyte.String(der)

	var (
		spki  cryptobyte.String
		algID cryptobyte.String
		bits  asn1.BitString
	)
	if !input.ReadASN1(&spki, cbasn1.SEQUENCE) {
		return nil, certerr.X509("malformed SubjectPublicKeyInfo")
	}
	if !input.Empty() {
		return nil, certerr.X509("trailing data after SubjectPublicKeyInfo")
	}
	if !spki.ReadASN1Element(&algID, cbasn1.SEQUENCE) {
		return nil, certerr.X509("malformed SubjectPublicKeyInfo algorithm")
	}
	if !spki.ReadASN1BitString(&bits) || !spki.Empty() {
		return nil, certerr.X509("malformed SubjectPublicKeyInfo public key")
	}
	if bits.BitLength%8 != 0 {
		return nil, certerr.X509("SubjectPublicKeyInfo public key is not a whole number of bytes")
	}

	for alg := range sigalg.All() {
		if bytes.Equal(algID, alg.KeyAlgorithmIdentifier()) {
			return &SubjectPublicKeyInfo{alg: alg, raw: clone(bits.Bytes)}, nil
		}
	}

	return nil, certerr.ErrUnsupportedSignatureAlgorithm
}

// ParseSubjectPublicKeyInfoPEM decodes a "PUBLIC KEY" PEM block.
func ParseSubjectPublicKeyInfoPEM(data []byte) (*SubjectPublicKeyInfo, error) {
	der, err := decodePEM(data, pemPublicKey)
	if err != nil {
		return nil, err
	}
	return ParseSubjectPublicKeyInfo(der)
}

func (s *SubjectPublicKeyInfo) Algorithm() *sigalg.SignatureAlgorithm { return s.alg }

func (s *SubjectPublicKeyInfo) PublicKeyRaw() []byte { return clone(s.raw) }

// SubjectPublicKeyInfo re-encodes the key as DER.
func (s *SubjectPublicKeyInfo) SubjectPublicKeyInfo() []byte {
	return MarshalSubjectPublicKeyInfo(s)
}

func (s *SubjectPublicKeyInfo) PublicKeyPEM() string {
	return encodePEM(pemPublicKey, s.SubjectPublicKeyInfo())
}

// Equal reports whether both keys encode to the same SubjectPublicKeyInfo.
func (s *SubjectPublicKeyInfo) Equal(other PublicKeyData) bool {
	return bytes.Equal(s.SubjectPublicKeyInfo(), MarshalSubjectPublicKeyInfo(other))
}
