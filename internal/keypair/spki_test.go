package keypair

import (
	"crypto"
	"crypto/x509"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/certgen/internal/certerr"
	"github.com/wolfeidau/certgen/internal/sigalg"
)

func TestMarshalSubjectPublicKeyInfo(t *testing.T) {
	t.Run("matches crypto/x509", func(t *testing.T) {
		for _, alg := range []*sigalg.SignatureAlgorithm{
			sigalg.Ed25519,
			sigalg.ECDSAP256WithSHA256,
			sigalg.ECDSAP384WithSHA384,
			sigalg.ECDSAP521WithSHA512,
			sigalg.RSAWithSHA256,
		} {
			kp := generate(t, alg, NativeBackend())

			priv, err := x509.ParsePKCS8PrivateKey(kp.SerializeDER())
			require.NoError(t, err)
			signer, ok := priv.(crypto.Signer)
			require.True(t, ok)

			want, err := x509.MarshalPKIXPublicKey(signer.Public())
			require.NoError(t, err)
			assert.Equal(t, want, kp.SubjectPublicKeyInfo(), alg.Name())
		}
	})

	t.Run("RSA-PSS keys carry the PSS parameters", func(t *testing.T) {
		kp := generate(t, sigalg.RSAPSSWithSHA256, NativeBackend())

		// SEQUENCE, then the key AlgorithmIdentifier.
		spki := kp.SubjectPublicKeyInfo()
		assert.Contains(t, hex.EncodeToString(spki), hex.EncodeToString(sigalg.RSAPSSWithSHA256.KeyAlgorithmIdentifier()))
	})
}

func TestParseSubjectPublicKeyInfo(t *testing.T) {
	t.Run("round trips every algorithm", func(t *testing.T) {
		for _, alg := range supported(NativeBackend()) {
			kp := generate(t, alg, NativeBackend())

			spki, err := ParseSubjectPublicKeyInfo(kp.SubjectPublicKeyInfo())
			require.NoError(t, err, alg.Name())
			assert.Equal(t, kp.PublicKeyRaw(), spki.PublicKeyRaw(), alg.Name())
			assert.Equal(t, kp.SubjectPublicKeyInfo(), spki.SubjectPublicKeyInfo(), alg.Name())
			assert.True(t, spki.Equal(kp), alg.Name())
		}
	})

	t.Run("RSA resolves to the first matching catalogue entry", func(t *testing.T) {
		kp := generate(t, sigalg.RSAWithSHA512, NativeBackend())

		spki, err := ParseSubjectPublicKeyInfo(kp.SubjectPublicKeyInfo())
		require.NoError(t, err)
		assert.Same(t, sigalg.RSAWithSHA256, spki.Algorithm())
		assert.True(t, spki.Equal(kp))

		pss := generate(t, sigalg.RSAPSSWithSHA256, NativeBackend())
		spki, err = ParseSubjectPublicKeyInfo(pss.SubjectPublicKeyInfo())
		require.NoError(t, err)
		assert.Same(t, sigalg.RSAPSSWithSHA256, spki.Algorithm())
	})

	t.Run("verifies signatures from the detached key", func(t *testing.T) {
		kp := generate(t, sigalg.ECDSAP384WithSHA384, PortableBackend())
		msg := []byte("detached")
		sig, err := kp.Sign(msg)
		require.NoError(t, err)

		spki, err := ParseSubjectPublicKeyInfoPEM([]byte(kp.PublicKeyPEM()))
		require.NoError(t, err)
		assert.True(t, verifySignature(t, spki, msg, sig))
		assert.Equal(t, kp.PublicKeyPEM(), spki.PublicKeyPEM())
	})

	t.Run("copies the public half of a key pair", func(t *testing.T) {
		kp := generate(t, sigalg.Ed25519, NativeBackend())

		spki := NewSubjectPublicKeyInfo(kp)
		assert.Same(t, sigalg.Ed25519, spki.Algorithm())
		assert.Equal(t, kp.SubjectPublicKeyInfo(), spki.SubjectPublicKeyInfo())
	})

	t.Run("rejects unknown algorithms", func(t *testing.T) {
		// X25519 key agreement key: 1.3.101.110.
		der, err := hex.DecodeString("302a300506032b656e032100" + "0102030405060708091011121314151617181920212223242526272829303132")
		require.NoError(t, err)

		_, err = ParseSubjectPublicKeyInfo(der)
		require.ErrorIs(t, err, certerr.ErrUnsupportedSignatureAlgorithm)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		kp := generate(t, sigalg.Ed25519, NativeBackend())
		spki := kp.SubjectPublicKeyInfo()

		for name, der := range map[string][]byte{
			"empty":     nil,
			"truncated": spki[:len(spki)-1],
			"trailing":  append(append([]byte(nil), spki...), 0x00),
		} {
			_, err := ParseSubjectPublicKeyInfo(der)
			require.ErrorIs(t, err, certerr.ErrX509, name)
		}
	})

	t.Run("rejects private keys in PEM", func(t *testing.T) {
		kp := generate(t, sigalg.Ed25519, NativeBackend())

		_, err := ParseSubjectPublicKeyInfoPEM([]byte(kp.SerializePEM()))
		require.ErrorIs(t, err, certerr.ErrPEM)
	})
}
