// Package sigalg is the catalogue of signature algorithms known to certgen.
//
// Each algorithm is a static descriptor compared by pointer identity. The catalogue is
// fixed at compile time and never mutated; All enumerates it in a stable order that the
// key parsing and SubjectPublicKeyInfo decoding code rely on.
package sigalg

import (
	"crypto"
	"crypto/elliptic"
	"encoding/asn1"
	"fmt"
	"iter"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// Family is the backend tag of an algorithm: which kind of key material signs with it.
type Family int

const (
	FamilyRSA Family = iota + 1
	FamilyECDSA
	FamilyEd25519
)

func (f Family) String() string {
	switch f {
	case FamilyRSA:
		return "RSA"
	case FamilyECDSA:
		return "ECDSA"
	case FamilyEd25519:
		return "Ed25519"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

type paramsKind int

const (
	paramsNone paramsKind = iota
	paramsNull
	paramsRSAPSS
)

// SignatureAlgorithm describes one signature algorithm and how it is named in DER.
type SignatureAlgorithm struct {
	name   string
	family Family
	hash   crypto.Hash
	curve  elliptic.Curve

	// keyOIDs are written into the SubjectPublicKeyInfo AlgorithmIdentifier.
	keyOIDs []asn1.ObjectIdentifier
	// signatureOID is written into the signatureAlgorithm of signed structures.
	signatureOID asn1.ObjectIdentifier
	params       paramsKind
	pssSaltLen   int64
}

var (
	oidRSAEncryption   = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 1}
	oidSHA256WithRSA   = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 11}
	oidSHA384WithRSA   = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 12}
	oidSHA512WithRSA   = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 13}
	oidRSASSAPSS       = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 10}
	oidMGF1            = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 8}
	oidSHA256          = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 1}
	oidECPublicKey     = asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1}
	oidCurveP256       = asn1.ObjectIdentifier{1, 2, 840, 10045, 3, 1, 7}
	oidCurveP384       = asn1.ObjectIdentifier{1, 3, 132, 0, 34}
	oidCurveP521       = asn1.ObjectIdentifier{1, 3, 132, 0, 35}
	oidECDSAWithSHA256 = asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 2}
	oidECDSAWithSHA384 = asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 3}
	oidECDSAWithSHA512 = asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 4}
	oidEd25519         = asn1.ObjectIdentifier{1, 3, 101, 112}
)

var (
	// RSAWithSHA256 is RSA PKCS#1 v1.5 with SHA-256.
	RSAWithSHA256 = &SignatureAlgorithm{
		name:         "rsa-sha256",
		family:       FamilyRSA,
		hash:         crypto.SHA256,
		keyOIDs:      []asn1.ObjectIdentifier{oidRSAEncryption},
		signatureOID: oidSHA256WithRSA,
		params:       paramsNull,
	}

	// RSAWithSHA384 is RSA PKCS#1 v1.5 with SHA-384.
	RSAWithSHA384 = &SignatureAlgorithm{
		name:         "rsa-sha384",
		family:       FamilyRSA,
		hash:         crypto.SHA384,
		keyOIDs:      []asn1.ObjectIdentifier{oidRSAEncryption},
		signatureOID: oidSHA384WithRSA,
		params:       paramsNull,
	}

	// RSAWithSHA512 is RSA PKCS#1 v1.5 with SHA-512.
	RSAWithSHA512 = &SignatureAlgorithm{
		name:         "rsa-sha512",
		family:       FamilyRSA,
		hash:         crypto.SHA512,
		keyOIDs:      []asn1.ObjectIdentifier{oidRSAEncryption},
		signatureOID: oidSHA512WithRSA,
		params:       paramsNull,
	}

	// RSAPSSWithSHA256 is RSASSA-PSS with SHA-256, MGF1-SHA-256 and a 32 byte salt.
	RSAPSSWithSHA256 = &SignatureAlgorithm{
		name:         "rsa-pss-sha256",
		family:       FamilyRSA,
		hash:         crypto.SHA256,
		keyOIDs:      []asn1.ObjectIdentifier{oidRSASSAPSS},
		signatureOID: oidRSASSAPSS,
		params:       paramsRSAPSS,
		pssSaltLen:   32,
	}

	// ECDSAP256WithSHA256 is ECDSA over NIST P-256 with SHA-256.
	ECDSAP256WithSHA256 = &SignatureAlgorithm{
		name:         "ecdsa-p256-sha256",
		family:       FamilyECDSA,
		hash:         crypto.SHA256,
		curve:        elliptic.P256(),
		keyOIDs:      []asn1.ObjectIdentifier{oidECPublicKey, oidCurveP256},
		signatureOID: oidECDSAWithSHA256,
	}

	// ECDSAP384WithSHA384 is ECDSA over NIST P-384 with SHA-384.
	ECDSAP384WithSHA384 = &SignatureAlgorithm{
		name:         "ecdsa-p384-sha384",
		family:       FamilyECDSA,
		hash:         crypto.SHA384,
		curve:        elliptic.P384(),
		keyOIDs:      []asn1.ObjectIdentifier{oidECPublicKey, oidCurveP384},
		signatureOID: oidECDSAWithSHA384,
	}

	// ECDSAP521WithSHA512 is ECDSA over NIST P-521 with SHA-512.
	ECDSAP521WithSHA512 = &SignatureAlgorithm{
		name:         "ecdsa-p521-sha512",
		family:       FamilyECDSA,
		hash:         crypto.SHA512,
		curve:        elliptic.P521(),
		keyOIDs:      []asn1.ObjectIdentifier{oidECPublicKey, oidCurveP521},
		signatureOID: oidECDSAWithSHA512,
	}

	// Ed25519 is PureEdDSA over edwards25519 (RFC 8410).
	Ed25519 = &SignatureAlgorithm{
		name:         "ed25519",
		family:       FamilyEd25519,
		keyOIDs:      []asn1.ObjectIdentifier{oidEd25519},
		signatureOID: oidEd25519,
	}
)

var catalogue = [...]*SignatureAlgorithm{
	RSAWithSHA256,
	RSAWithSHA384,
	RSAWithSHA512,
	RSAPSSWithSHA256,
	ECDSAP256WithSHA256,
	ECDSAP384WithSHA384,
	ECDSAP521WithSHA512,
	Ed25519,
}

// All enumerates every known algorithm in catalogue order. The sequence can be ranged
// over any number of times.
func All() iter.Seq[*SignatureAlgorithm] {
	return func(yield func(*SignatureAlgorithm) bool) {
		for _, alg := range catalogue {
			if !yield(alg) {
				return
			}
		}
	}
}

// ByName looks up an algorithm by its catalogue name, e.g. "ecdsa-p256-sha256".
func ByName(name string) (*SignatureAlgorithm, bool) {
	for _, alg := range catalogue {
		if alg.name == name {
			return alg, true
		}
	}
	return nil, false
}

// Name returns the catalogue name.
func (a *SignatureAlgorithm) Name() string { return a.name }

func (a *SignatureAlgorithm) String() string { return a.name }

// Family returns the key family that signs with this algorithm.
func (a *SignatureAlgorithm) Family() Family { return a.family }

// Hash returns the digest applied to the message before signing, or zero for Ed25519.
func (a *SignatureAlgorithm) Hash() crypto.Hash { return a.hash }

// Curve returns the named curve of an ECDSA algorithm and nil otherwise.
func (a *SignatureAlgorithm) Curve() elliptic.Curve { return a.curve }

// IsPSS reports whether the algorithm uses RSASSA-PSS padding.
func (a *SignatureAlgorithm) IsPSS() bool { return a.params == paramsRSAPSS }

// PSSSaltLength is the salt length declared in the RSASSA-PSS parameters.
func (a *SignatureAlgorithm) PSSSaltLength() int { return int(a.pssSaltLen) }

// WriteKeyAlgorithmIdentifier appends the AlgorithmIdentifier used inside a
// SubjectPublicKeyInfo for keys of this algorithm.
func (a *SignatureAlgorithm) WriteKeyAlgorithmIdentifier(b *cryptobyte.Builder) {
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		for _, oid := range a.keyOIDs {
			b.AddASN1ObjectIdentifier(oid)
		}
		a.writeParams(b)
	})
}

// WriteAlgorithmIdentifier appends the AlgorithmIdentifier naming this algorithm as the
// signatureAlgorithm of a signed structure.
func (a *SignatureAlgorithm) WriteAlgorithmIdentifier(b *cryptobyte.Builder) {
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1ObjectIdentifier(a.signatureOID)
		a.writeParams(b)
	})
}

// KeyAlgorithmIdentifier returns the DER of WriteKeyAlgorithmIdentifier.
func (a *SignatureAlgorithm) KeyAlgorithmIdentifier() []byte {
	var b cryptobyte.Builder
	a.WriteKeyAlgorithmIdentifier(&b)
	return b.BytesOrPanic()
}

// AlgorithmIdentifier returns the DER of WriteAlgorithmIdentifier.
func (a *SignatureAlgorithm) AlgorithmIdentifier() []byte {
	var b cryptobyte.Builder
	a.WriteAlgorithmIdentifier(&b)
	return b.BytesOrPanic()
}

func (a *SignatureAlgorithm) writeParams(b *cryptobyte.Builder) {
	switch a.params {
	case paramsNone:
	case paramsNull:
		b.AddASN1NULL()
	case paramsRSAPSS:
		// RFC 4055 section 3.1; trailerField is omitted as required for DER.
		b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1(cbasn1.Tag(0).ContextSpecific().Constructed(), func(b *cryptobyte.Builder) {
				b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
					b.AddASN1ObjectIdentifier(oidSHA256)
				})
			})
			b.AddASN1(cbasn1.Tag(1).ContextSpecific().Constructed(), func(b *cryptobyte.Builder) {
				b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
					b.AddASN1ObjectIdentifier(oidMGF1)
					b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
						b.AddASN1ObjectIdentifier(oidSHA256)
					})
				})
			})
			b.AddASN1(cbasn1.Tag(2).ContextSpecific().Constructed(), func(b *cryptobyte.Builder) {
				b.AddASN1Int64(a.pssSaltLen)
			})
		})
	default:
		panic(fmt.Sprintf("sigalg: unknown parameter kind %d for %s", a.params, a.name))
	}
}
