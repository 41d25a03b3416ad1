package keypair

import (
	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// SigningKey is a key that can sign the DER structures certificates, certificate
// signing requests and revocation lists are made of.
type SigningKey interface {
	PublicKeyData
	// Sign signs msg with the key's algorithm.
	Sign(msg []byte) ([]byte, error)
}

// PayloadWriter writes the contents of a to-be-signed SEQUENCE.
type PayloadWriter func(b *cryptobyte.Builder) error

// SignDER builds the signed envelope shared by X.509 structures:
//
//	SEQUENCE {
//	    tbs                SEQUENCE { payload },
//	    signatureAlgorithm AlgorithmIdentifier,
//	    signature          BIT STRING }
//
// Errors from write and from key.Sign are returned unchanged.
func SignDER(key SigningKey, write PayloadWriter) ([]byte, error) {
	var (
		tbs      cryptobyte.Builder
		writeErr error
	)
	tbs.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		writeErr = write(b)
	})
	if writeErr != nil {
		return nil, writeErr
	}
	tbsDER, err := tbs.Bytes()
	if err != nil {
		return nil, err
	}

	sig, err := key.Sign(tbsDER)
	if err != nil {
		return nil, err
	}

	var b cryptobyte.Builder
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddBytes(tbsDER)
		key.Algorithm().WriteAlgorithmIdentifier(b)
		b.AddASN1(cbasn1.BIT_STRING, func(b *cryptobyte.Builder) {
			b.AddUint8(0)
			b.AddBytes(sig)
		})
	})
	return b.Bytes()
}
