package certerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypedErrorsMatchSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{
			name:     "key rejected",
			err:      &KeyRejectedError{Detail: "bad curve"},
			sentinel: ErrKeyRejected,
			message:  "key rejected by backend: bad curve",
		},
		{
			name:     "pem",
			err:      &PEMError{Detail: "no PEM block found"},
			sentinel: ErrPEM,
			message:  "PEM error: no PEM block found",
		},
		{
			name:     "x509",
			err:      &X509Error{Detail: "trailing bytes"},
			sentinel: ErrX509,
			message:  "X.509 parsing error: trailing bytes",
		},
		{
			name:     "asn1 string",
			err:      &InvalidASN1StringError{Kind: PrintableString, Value: "a@b"},
			sentinel: ErrInvalidASN1String,
			message:  "invalid PrintableString: 'a@b'",
		},
		{
			name:     "ip octets",
			err:      &InvalidIPAddressOctetLengthError{Length: 5},
			sentinel: ErrInvalidIPAddressOctetLength,
			message:  "invalid IP address octet length of 5 bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.err, tt.sentinel)
			require.Equal(t, tt.message, tt.err.Error())

			wrapped := fmt.Errorf("failed to load key: %w", tt.err)
			require.ErrorIs(t, wrapped, tt.sentinel)
		})
	}
}

func TestKeyRejected(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		require.NoError(t, KeyRejected(nil))
	})

	t.Run("keeps detail but not the backend value", func(t *testing.T) {
		backendErr := errors.New("x509: malformed private key")

		err := KeyRejected(backendErr)
		require.ErrorIs(t, err, ErrKeyRejected)
		require.NotErrorIs(t, err, backendErr)

		var rejected *KeyRejectedError
		require.ErrorAs(t, err, &rejected)
		require.Equal(t, "x509: malformed private key", rejected.Detail)
	})

	t.Run("empty detail", func(t *testing.T) {
		require.Equal(t, ErrKeyRejected.Error(), (&KeyRejectedError{}).Error())
	})
}

func TestUnspecified(t *testing.T) {
	require.NoError(t, Unspecified(nil))

	err := Unspecified(errors.New("entropy source failed"))
	require.Equal(t, ErrBackendUnspecified, err)
}
