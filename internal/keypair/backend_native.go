package keypair

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"errors"
	"fmt"
)

// stdPrimitives are the crypto/ecdsa and crypto/rsa operations shared by both backends.
type stdPrimitives struct{}

func (stdPrimitives) GenerateECDSA(curve elliptic.Curve) (*ecdsa.PrivateKey, error) {
	return ecdsa.GenerateKey(curve, rand.Reader)
}

func (stdPrimitives) SignECDSA(key *ecdsa.PrivateKey, digest []byte) ([]byte, error) {
	return ecdsa.SignASN1(rand.Reader, key, digest)
}

func (stdPrimitives) SignRSA(key *rsa.PrivateKey, hash crypto.Hash, pss *rsa.PSSOptions, digest []byte) ([]byte, error) {
	if pss != nil {
		return rsa.SignPSS(rand.Reader, key, hash, digest, pss)
	}
	return rsa.SignPKCS1v15(rand.Reader, key, hash, digest)
}

func checkCurve(key *ecdsa.PrivateKey, curve elliptic.Curve) (*ecdsa.PrivateKey, error) {
	if key.Curve != curve {
		return nil, fmt.Errorf("key is on curve %s, want %s", key.Curve.Params().Name, curve.Params().Name)
	}
	return key, nil
}

// nativeBackend is built on crypto/x509 and accepts every format the standard
// library can decode.
type nativeBackend struct {
	stdPrimitives
}

// NativeBackend returns the backend with the broadest support: RSA key generation,
// P-521 and SEC 1 / PKCS #1 private keys in addition to PKCS#8.
func NativeBackend() Backend {
	return nativeBackend{}
}

func (nativeBackend) Name() string { return BackendNative }

func (nativeBackend) Capabilities() Capabilities {
	return Capabilities{RSAGeneration: true, LegacyFormats: true, P521: true}
}

func (nativeBackend) GenerateEd25519() (EdwardsKey, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return nativeEdwardsKey{priv: priv}, nil
}

func (nativeBackend) GenerateRSA(bits int) (*rsa.PrivateKey, error) {
	return rsa.GenerateKey(rand.Reader, bits)
}

func (nativeBackend) ParseECDSA(der []byte, curve elliptic.Curve) (*ecdsa.PrivateKey, error) {
	parsed, pkcs8Err := x509.ParsePKCS8PrivateKey(der)
	if pkcs8Err == nil {
		key, ok := parsed.(*ecdsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("PKCS#8 key is %T, not ECDSA", parsed)
		}
		return checkCurve(key, curve)
	}

	key, err := x509.ParseECPrivateKey(der)
	if err != nil {
		return nil, errors.Join(pkcs8Err, err)
	}
	return checkCurve(key, curve)
}

func (nativeBackend) ParseEd25519(der []byte) (EdwardsKey, error) {
	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, err
	}
	priv, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("PKCS#8 key is %T, not Ed25519", parsed)
	}
	return nativeEdwardsKey{priv: priv}, nil
}

func (nativeBackend) ParseRSA(der []byte) (*rsa.PrivateKey, error) {
	parsed, pkcs8Err := x509.ParsePKCS8PrivateKey(der)
	if pkcs8Err == nil {
		key, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("PKCS#8 key is %T, not RSA", parsed)
		}
		return key, nil
	}

	key, err := x509.ParsePKCS1PrivateKey(der)
	if err != nil {
		return nil, errors.Join(pkcs8Err, err)
	}
	return key, nil
}

func (nativeBackend) MarshalPKCS8(key any) ([]byte, error) {
	switch k := key.(type) {
	case *ecdsa.PrivateKey, *rsa.PrivateKey:
		return x509.MarshalPKCS8PrivateKey(k)
	case nativeEdwardsKey:
		return x509.MarshalPKCS8PrivateKey(k.priv)
	default:
		return nil, fmt.Errorf("native backend cannot encode %T", key)
	}
}

type nativeEdwardsKey struct {
	priv ed25519.PrivateKey
}

func (k nativeEdwardsKey) PublicKey() []byte {
	return append([]byte(nil), k.priv.Public().(ed25519.PublicKey)...)
}

func (k nativeEdwardsKey) Seed() []byte { return k.priv.Seed() }

func (k nativeEdwardsKey) Sign(msg []byte) []byte { return ed25519.Sign(k.priv, msg) }
