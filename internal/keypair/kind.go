package keypair

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"

	"github.com/wolfeidau/certgen/internal/certerr"
)

// kind is the closed set of key material variants. Exactly one of ecKind, edKind or
// rsaKind backs every KeyPair; dispatch sites switch over all three and panic on
// anything else.
type kind interface {
	isKind()
}

type ecKind struct {
	key *ecdsa.PrivateKey
	pub []byte
}

type edKind struct {
	key EdwardsKey
}

// rsaPadding is fixed when the key pair is constructed from its declared algorithm.
type rsaPadding struct {
	hash crypto.Hash
	pss  *rsa.PSSOptions
}

type rsaKind struct {
	key     *rsa.PrivateKey
	padding rsaPadding
	pub     []byte
}

func (ecKind) isKind()  {}
func (edKind) isKind()  {}
func (rsaKind) isKind() {}

func newECKind(key *ecdsa.PrivateKey) (ecKind, error) {
	pub, err := key.PublicKey.ECDH()
	if err != nil {
		return ecKind{}, certerr.KeyRejected(err)
	}
	return ecKind{key: key, pub: pub.Bytes()}, nil
}

func newRSAKind(key *rsa.PrivateKey, padding rsaPadding) rsaKind {
	return rsaKind{
		key:     key,
		padding: padding,
		pub:     x509.MarshalPKCS1PublicKey(&key.PublicKey),
	}
}

// modulusLen is the signature length of k, derived from the public modulus.
func (k rsaKind) modulusLen() int {
	return (k.key.N.BitLen() + 7) / 8
}
