package sigalg

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestAllOrder(t *testing.T) {
	var names []string
	for alg := range All() {
		names = append(names, alg.Name())
	}

	require.Equal(t, []string{
		"rsa-sha256",
		"rsa-sha384",
		"rsa-sha512",
		"rsa-pss-sha256",
		"ecdsa-p256-sha256",
		"ecdsa-p384-sha384",
		"ecdsa-p521-sha512",
		"ed25519",
	}, names)

	t.Run("restartable", func(t *testing.T) {
		var first, second int
		for range All() {
			first++
		}
		for range All() {
			second++
		}
		require.Equal(t, first, second)
	})

	t.Run("early stop", func(t *testing.T) {
		var seen []*SignatureAlgorithm
		for alg := range All() {
			seen = append(seen, alg)
			if len(seen) == 2 {
				break
			}
		}
		require.Equal(t, []*SignatureAlgorithm{RSAWithSHA256, RSAWithSHA384}, seen)
	})
}

func TestByName(t *testing.T) {
	for alg := range All() {
		got, ok := ByName(alg.Name())
		require.True(t, ok)
		require.Same(t, alg, got)
	}

	_, ok := ByName("dsa-sha1")
	require.False(t, ok)
}

func TestKeyAlgorithmIdentifier(t *testing.T) {
	tests := []struct {
		alg  *SignatureAlgorithm
		want string
	}{
		{RSAWithSHA256, "300d06092a864886f70d0101010500"},
		{RSAWithSHA512, "300d06092a864886f70d0101010500"},
		{ECDSAP256WithSHA256, "301306072a8648ce3d020106082a8648ce3d030107"},
		{ECDSAP384WithSHA384, "301006072a8648ce3d020106052b81040022"},
		{ECDSAP521WithSHA512, "301006072a8648ce3d020106052b81040023"},
		{Ed25519, "300506032b6570"},
		{RSAPSSWithSHA256, "303d06092a864886f70d01010a3030a00d300b0609608648016503040201" +
			"a11a301806092a864886f70d010108300b0609608648016503040201a203020120"},
	}

	for _, tt := range tests {
		t.Run(tt.alg.Name(), func(t *testing.T) {
			require.Equal(t, mustHex(t, tt.want), tt.alg.KeyAlgorithmIdentifier())
		})
	}
}

func TestAlgorithmIdentifier(t *testing.T) {
	tests := []struct {
		alg  *SignatureAlgorithm
		want string
	}{
		{RSAWithSHA256, "300d06092a864886f70d01010b0500"},
		{RSAWithSHA384, "300d06092a864886f70d01010c0500"},
		{RSAWithSHA512, "300d06092a864886f70d01010d0500"},
		{ECDSAP256WithSHA256, "300a06082a8648ce3d040302"},
		{ECDSAP384WithSHA384, "300a06082a8648ce3d040303"},
		{ECDSAP521WithSHA512, "300a06082a8648ce3d040304"},
		{Ed25519, "300506032b6570"},
	}

	for _, tt := range tests {
		t.Run(tt.alg.Name(), func(t *testing.T) {
			require.Equal(t, mustHex(t, tt.want), tt.alg.AlgorithmIdentifier())
		})
	}
}

// The key AlgorithmIdentifier must match what crypto/x509 writes into a PKIX public key.
func TestKeyAlgorithmIdentifierMatchesStdlib(t *testing.T) {
	extractAlgID := func(t *testing.T, spki []byte) []byte {
		t.Helper()
		input := cryptobyte.String(spki)
		var inner, algID cryptobyte.String
		require.True(t, input.ReadASN1(&inner, cbasn1.SEQUENCE))
		require.True(t, inner.ReadASN1Element(&algID, cbasn1.SEQUENCE))
		return algID
	}

	ecKey, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	require.NoError(t, err)
	spki, err := x509.MarshalPKIXPublicKey(&ecKey.PublicKey)
	require.NoError(t, err)
	require.Equal(t, []byte(extractAlgID(t, spki)), ECDSAP384WithSHA384.KeyAlgorithmIdentifier())

	edPub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	spki, err = x509.MarshalPKIXPublicKey(edPub)
	require.NoError(t, err)
	require.Equal(t, []byte(extractAlgID(t, spki)), Ed25519.KeyAlgorithmIdentifier())
}

func TestAccessors(t *testing.T) {
	require.Equal(t, FamilyRSA, RSAPSSWithSHA256.Family())
	require.True(t, RSAPSSWithSHA256.IsPSS())
	require.Equal(t, 32, RSAPSSWithSHA256.PSSSaltLength())
	require.False(t, RSAWithSHA256.IsPSS())

	require.Equal(t, FamilyECDSA, ECDSAP521WithSHA512.Family())
	require.Equal(t, elliptic.P521(), ECDSAP521WithSHA512.Curve())
	require.Nil(t, Ed25519.Curve())

	require.Equal(t, "Ed25519", FamilyEd25519.String())
	require.Equal(t, "Family(9)", Family(9).String())
	require.Equal(t, "ed25519", Ed25519.String())
}
