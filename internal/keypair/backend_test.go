package keypair

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// oneAsymmetricKey builds an RFC 5958 v2 Ed25519 private key carrying pub.
func oneAsymmetricKey(seed, pub []byte) []byte {
	var b cryptobyte.Builder
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1Int64(1)
		b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1ObjectIdentifier(oidEd25519)
		})
		b.AddASN1(cbasn1.OCTET_STRING, func(b *cryptobyte.Builder) {
			b.AddASN1OctetString(seed)
		})
		b.AddASN1(cbasn1.Tag(1).ContextSpecific(), func(b *cryptobyte.Builder) {
			b.AddUint8(0)
			b.AddBytes(pub)
		})
	})
	return b.BytesOrPanic()
}

func TestBackendByName(t *testing.T) {
	for _, name := range []string{BackendNative, BackendPortable} {
		b, err := BackendByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, b.Name())
	}

	_, err := BackendByName("hsm")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hsm")
}

func TestCapabilities(t *testing.T) {
	assert.Equal(t, Capabilities{RSAGeneration: true, LegacyFormats: true, P521: true}, NativeBackend().Capabilities())
	assert.Equal(t, Capabilities{}, PortableBackend().Capabilities())
}

func TestPortableBackend_ParseEd25519(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	t.Run("accepts a v2 key with a matching public key", func(t *testing.T) {
		key, err := PortableBackend().ParseEd25519(oneAsymmetricKey(priv.Seed(), pub))
		require.NoError(t, err)
		assert.Equal(t, []byte(pub), key.PublicKey())
		assert.Equal(t, ed25519.Sign(priv, []byte("m")), key.Sign([]byte("m")))
	})

	t.Run("rejects a mismatched public key", func(t *testing.T) {
		other, _, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)

		_, err = PortableBackend().ParseEd25519(oneAsymmetricKey(priv.Seed(), other))
		require.Error(t, err)
	})

	t.Run("rejects a short seed", func(t *testing.T) {
		_, err := PortableBackend().ParseEd25519(oneAsymmetricKey(priv.Seed()[:31], pub))
		require.Error(t, err)
	})

	t.Run("encodes the same PKCS#8 as crypto/x509", func(t *testing.T) {
		want, err := NativeBackend().MarshalPKCS8(nativeEdwardsKey{priv: priv})
		require.NoError(t, err)

		portable, err := PortableBackend().ParseEd25519(want)
		require.NoError(t, err)
		got, err := PortableBackend().MarshalPKCS8(portable)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}
