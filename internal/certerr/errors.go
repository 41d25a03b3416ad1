// Package certerr holds the error taxonomy shared by every certgen package.
//
// Payload-free kinds are sentinel values. Kinds that carry data are typed errors that
// also match their sentinel, so callers only ever need errors.Is and errors.As.
// Backend errors are never exposed: the mapping helpers keep the diagnostic text and
// drop the original value.
package certerr

import (
	"errors"
	"fmt"
)

var (
	// ErrCouldNotParseCertificate is returned when a certificate could not be parsed.
	ErrCouldNotParseCertificate = errors.New("could not parse certificate")

	// ErrCouldNotParseCertificationRequest is returned when a CSR could not be parsed.
	ErrCouldNotParseCertificationRequest = errors.New("could not parse certificate signing request")

	// ErrCouldNotParseKeyPair is returned when key material does not decode as any accepted key.
	ErrCouldNotParseKeyPair = errors.New("could not parse key pair")

	// ErrInvalidASN1String is matched by every *InvalidASN1StringError.
	ErrInvalidASN1String = errors.New("invalid ASN.1 string")

	// ErrInvalidIPAddressOctetLength is matched by every *InvalidIPAddressOctetLengthError.
	ErrInvalidIPAddressOctetLength = errors.New("invalid IP address octet length")

	// ErrKeyGenerationUnavailable is returned when the backend cannot generate keys for the algorithm.
	ErrKeyGenerationUnavailable = errors.New("there is no support for generating keys for the given algorithm")

	// ErrUnsupportedSignatureAlgorithm is returned when an algorithm is not in the catalogue
	// or not supported by the selected backend.
	ErrUnsupportedSignatureAlgorithm = errors.New("the requested signature algorithm is not supported")

	// ErrBackendUnspecified is returned when the backend fails without diagnostic detail.
	ErrBackendUnspecified = errors.New("unspecified backend error")

	// ErrKeyRejected is matched by every *KeyRejectedError.
	ErrKeyRejected = errors.New("key rejected by backend")

	// ErrPEM is matched by every *PEMError.
	ErrPEM = errors.New("PEM error")

	// ErrRemoteKey is reserved for keys hosted outside the process.
	ErrRemoteKey = errors.New("remote key error")

	// ErrTime is returned by document builders when a time value cannot be encoded.
	ErrTime = errors.New("time error")

	// ErrUnsupportedInCSR is returned when a certificate parameter cannot be placed in a CSR.
	ErrUnsupportedInCSR = errors.New("certificate parameter unsupported in CSR")

	// ErrInvalidCRLNextUpdate is returned for a CRL next update that precedes this update.
	ErrInvalidCRLNextUpdate = errors.New("invalid CRL next update parameter")

	// ErrIssuerNotCRLSigner is returned when the CRL issuer's key usage excludes cRLSign.
	ErrIssuerNotCRLSigner = errors.New("CRL issuer must specify no key usage, or key usage including cRLSign")

	// ErrX509 is matched by every *X509Error.
	ErrX509 = errors.New("X.509 parsing error")
)

// ASN1StringKind names the ASN.1 string type that failed validation.
type ASN1StringKind string

const (
	PrintableString ASN1StringKind = "PrintableString"
	UniversalString ASN1StringKind = "UniversalString"
	IA5String       ASN1StringKind = "IA5String"
	TeletexString   ASN1StringKind = "TeletexString"
	BMPString       ASN1StringKind = "BMPString"
)

// InvalidASN1StringError reports a value that is not valid for its ASN.1 string type.
type InvalidASN1StringError struct {
	Kind  ASN1StringKind
	Value string
}

func (e *InvalidASN1StringError) Error() string {
	return fmt.Sprintf("invalid %s: '%s'", e.Kind, e.Value)
}

func (e *InvalidASN1StringError) Is(target error) bool { return target == ErrInvalidASN1String }

// InvalidIPAddressOctetLengthError reports an IP address byte slice that is neither 4 nor 16 bytes.
type InvalidIPAddressOctetLengthError struct {
	Length int
}

func (e *InvalidIPAddressOctetLengthError) Error() string {
	return fmt.Sprintf("invalid IP address octet length of %d bytes", e.Length)
}

func (e *InvalidIPAddressOctetLengthError) Is(target error) bool {
	return target == ErrInvalidIPAddressOctetLength
}

// KeyRejectedError carries the backend's explanation for refusing key material.
type KeyRejectedError struct {
	Detail string
}

func (e *KeyRejectedError) Error() string {
	if e.Detail == "" {
		return ErrKeyRejected.Error()
	}
	return "key rejected by backend: " + e.Detail
}

func (e *KeyRejectedError) Is(target error) bool { return target == ErrKeyRejected }

// PEMError carries the reason PEM framing could not be decoded.
type PEMError struct {
	Detail string
}

func (e *PEMError) Error() string { return "PEM error: " + e.Detail }

func (e *PEMError) Is(target error) bool { return target == ErrPEM }

// X509Error carries a DER/X.509 structure parse failure.
type X509Error struct {
	Detail string
}

func (e *X509Error) Error() string { return "X.509 parsing error: " + e.Detail }

func (e *X509Error) Is(target error) bool { return target == ErrX509 }
