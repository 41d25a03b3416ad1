package certerr

// KeyRejected converts a backend error raised while loading or using key material.
// It returns nil for a nil error.
func KeyRejected(err error) error {
	if err == nil {
		return nil
	}
	return &KeyRejectedError{Detail: err.Error()}
}

// Unspecified converts a backend error whose detail is not meaningful to callers,
// such as a randomness or internal constraint failure. It returns nil for a nil error.
func Unspecified(err error) error {
	if err == nil {
		return nil
	}
	return ErrBackendUnspecified
}

// PEM builds a PEM framing error.
func PEM(detail string) error {
	return &PEMError{Detail: detail}
}

// X509 builds a DER structure parse error.
func X509(detail string) error {
	return &X509Error{Detail: detail}
}
