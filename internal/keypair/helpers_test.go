package keypair

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/x509"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/certgen/internal/sigalg"
)

var backends = []Backend{NativeBackend(), PortableBackend()}

// verifySignature checks sig over msg using only the public key bytes and the
// algorithm, the same information a relying party has.
func verifySignature(t *testing.T, k PublicKeyData, msg, sig []byte) bool {
	t.Helper()

	alg := k.Algorithm()
	raw := k.PublicKeyRaw()

	switch alg.Family() {
	case sigalg.FamilyEd25519:
		require.Len(t, raw, ed25519.PublicKeySize)
		return ed25519.Verify(ed25519.PublicKey(raw), msg, sig)
	case sigalg.FamilyECDSA:
		pub, err := ecdsa.ParseUncompressedPublicKey(alg.Curve(), raw)
		require.NoError(t, err)
		return ecdsa.VerifyASN1(pub, hashOf(alg.Hash(), msg), sig)
	case sigalg.FamilyRSA:
		pub, err := x509.ParsePKCS1PublicKey(raw)
		require.NoError(t, err)
		if alg.IsPSS() {
			opts := &rsa.PSSOptions{SaltLength: alg.PSSSaltLength(), Hash: alg.Hash()}
			return rsa.VerifyPSS(pub, alg.Hash(), hashOf(alg.Hash(), msg), sig, opts) == nil
		}
		return rsa.VerifyPKCS1v15(pub, alg.Hash(), hashOf(alg.Hash(), msg), sig) == nil
	default:
		t.Fatalf("unexpected family %v", alg.Family())
		return false
	}
}

func hashOf(h crypto.Hash, msg []byte) []byte {
	d := h.New()
	d.Write(msg)
	return d.Sum(nil)
}

// generate creates a key pair, using a 2048 bit modulus for RSA so tests stay quick.
func generate(t *testing.T, alg *sigalg.SignatureAlgorithm, b Backend) *KeyPair {
	t.Helper()

	kp, err := Generate(alg, WithBackend(b))
	require.NoError(t, err)
	return kp
}

// supported lists the algorithms b can generate keys for.
func supported(b Backend) []*sigalg.SignatureAlgorithm {
	var algs []*sigalg.SignatureAlgorithm
	for alg := range sigalg.All() {
		if !Supports(b, alg) {
			continue
		}
		if alg.Family() == sigalg.FamilyRSA && !b.Capabilities().RSAGeneration {
			continue
		}
		algs = append(algs, alg)
	}
	return algs
}

// recordingBackend wraps a backend and records which parse constructors were tried.
type recordingBackend struct {
	Backend
	tried []string
}

func (r *recordingBackend) ParseECDSA(der []byte, curve elliptic.Curve) (*ecdsa.PrivateKey, error) {
	r.tried = append(r.tried, "ecdsa-"+curve.Params().Name)
	return r.Backend.ParseECDSA(der, curve)
}

func (r *recordingBackend) ParseEd25519(der []byte) (EdwardsKey, error) {
	r.tried = append(r.tried, "ed25519")
	return r.Backend.ParseEd25519(der)
}

func (r *recordingBackend) ParseRSA(der []byte) (*rsa.PrivateKey, error) {
	r.tried = append(r.tried, "rsa")
	return r.Backend.ParseRSA(der)
}

// permissiveBackend accepts any input as an RSA key, and as an Ed25519 key when ed is
// set, standing in for a loosely validating backend.
type permissiveBackend struct {
	Backend
	ed     EdwardsKey
	rsaKey *rsa.PrivateKey
}

func (p permissiveBackend) ParseEd25519(der []byte) (EdwardsKey, error) {
	if p.ed == nil {
		return p.Backend.ParseEd25519(der)
	}
	return p.ed, nil
}

func (p permissiveBackend) ParseRSA([]byte) (*rsa.PrivateKey, error) { return p.rsaKey, nil }
