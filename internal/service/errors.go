package service

import "errors"

var (
	ErrInvalidOptions       = errors.New("invalid challenge options")
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
	ErrMalformed            = errors.New("malformed payload")
	ErrMissingResponse      = errors.New("missing response")
	ErrHashMismatch         = errors.New("hash mismatch")
	ErrSignatureMismatch    = errors.New("signature mismatch")
	ErrExpired              = errors.New("challenge expired")
	ErrNoSolution           = errors.New("no solution in range")
)

// IsConfigError reports whether err comes from server-side misconfiguration
// rather than from what the client submitted.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidOptions) || errors.Is(err, ErrUnsupportedAlgorithm)
}
