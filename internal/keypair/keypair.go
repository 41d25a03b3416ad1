// Package keypair holds asymmetric key pairs used to sign certificates, certificate
// signing requests and revocation lists.
//
// A KeyPair is generated or parsed through a Backend, is immutable afterwards and is
// safe for concurrent use. Every byte slice it returns is a copy.
package keypair

import (
	"fmt"
	"iter"

	_ "crypto/sha256"
	_ "crypto/sha512"

	"github.com/wolfeidau/certgen/internal/certerr"
	"github.com/wolfeidau/certgen/internal/sigalg"
)

// KeyPair is a private key together with the signature algorithm it signs with.
type KeyPair struct {
	kind    kind
	alg     *sigalg.SignatureAlgorithm
	der     []byte
	backend Backend
}

var _ SigningKey = (*KeyPair)(nil)

// Algorithm returns the signature algorithm the key pair signs with.
func (kp *KeyPair) Algorithm() *sigalg.SignatureAlgorithm {
	return kp.alg
}

// Backend returns the name of the backend holding the key material.
func (kp *KeyPair) Backend() string {
	return kp.backend.Name()
}

// IsCompatible reports whether the key pair can sign with alg.
func (kp *KeyPair) IsCompatible(alg *sigalg.SignatureAlgorithm) bool {
	return kp.alg == alg
}

// CompatibleAlgorithms enumerates every algorithm the key pair can sign with. This is
// currently only the algorithm it was constructed for.
func (kp *KeyPair) CompatibleAlgorithms() iter.Seq[*sigalg.SignatureAlgorithm] {
	return func(yield func(*sigalg.SignatureAlgorithm) bool) {
		yield(kp.alg)
	}
}

// SerializeDER returns the private key as PKCS#8 DER.
func (kp *KeyPair) SerializeDER() []byte {
	return clone(kp.der)
}

// SerializePEM returns the private key as a PKCS#8 "PRIVATE KEY" PEM block.
func (kp *KeyPair) SerializePEM() string {
	return encodePEM(pemPrivateKey, kp.der)
}

// PublicKeyRaw returns the public key in its algorithm native encoding: the
// uncompressed point for ECDSA, 32 bytes for Ed25519 and a PKCS #1 RSAPublicKey for RSA.
func (kp *KeyPair) PublicKeyRaw() []byte {
	switch k := kp.kind.(type) {
	case ecKind:
		return clone(k.pub)
	case edKind:
		return k.key.PublicKey()
	case rsaKind:
		return clone(k.pub)
	default:
		panic(fmt.Sprintf("keypair: unknown key kind %T", kp.kind))
	}
}

// SubjectPublicKeyInfo returns the public key as an RFC 5280 SubjectPublicKeyInfo.
func (kp *KeyPair) SubjectPublicKeyInfo() []byte {
	return MarshalSubjectPublicKeyInfo(kp)
}

// PublicKeyPEM returns the SubjectPublicKeyInfo as a "PUBLIC KEY" PEM block.
func (kp *KeyPair) PublicKeyPEM() string {
	return encodePEM(pemPublicKey, kp.SubjectPublicKeyInfo())
}

// Sign signs msg with the key pair's algorithm. ECDSA and RSA signatures draw fresh
// randomness on every call, Ed25519 signatures are deterministic.
func (kp *KeyPair) Sign(msg []byte) ([]byte, error) {
	switch k := kp.kind.(type) {
	case ecKind:
		sig, err := kp.backend.SignECDSA(k.key, digest(kp.alg, msg))
		if err != nil {
			return nil, certerr.Unspecified(err)
		}
		return sig, nil
	case edKind:
		return k.key.Sign(msg), nil
	case rsaKind:
		sig, err := kp.backend.SignRSA(k.key, k.padding.hash, k.padding.pss, digest(kp.alg, msg))
		if err != nil {
			return nil, certerr.KeyRejected(err)
		}
		out := make([]byte, k.modulusLen())
		if len(sig) > len(out) {
			return nil, certerr.ErrBackendUnspecified
		}
		copy(out[len(out)-len(sig):], sig)
		return out, nil
	default:
		panic(fmt.Sprintf("keypair: unknown key kind %T", kp.kind))
	}
}

// String describes the key pair without revealing the private key.
func (kp *KeyPair) String() string {
	var desc string
	switch k := kp.kind.(type) {
	case ecKind:
		desc = "ECDSA " + k.key.Curve.Params().Name
	case edKind:
		desc = "Ed25519"
	case rsaKind:
		desc = fmt.Sprintf("RSA %d", k.key.N.BitLen())
	default:
		panic(fmt.Sprintf("keypair: unknown key kind %T", kp.kind))
	}
	return fmt.Sprintf("KeyPair{kind: %s, alg: %s, backend: %s, der: [secret key elided]}",
		desc, kp.alg.Name(), kp.backend.Name())
}

// GoString keeps %#v from printing the private key.
func (kp *KeyPair) GoString() string {
	return kp.String()
}

func digest(alg *sigalg.SignatureAlgorithm, msg []byte) []byte {
	h := alg.Hash().New()
	h.Write(msg)
	return h.Sum(nil)
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
