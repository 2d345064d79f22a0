package entity

import "time"

type Algorithm string

const (
	SHA256 Algorithm = "SHA-256"
	SHA384 Algorithm = "SHA-384"
	SHA512 Algorithm = "SHA-512"

	DefaultAlgorithm = SHA256
)

func (a Algorithm) Valid() bool {
	switch a {
	case SHA256, SHA384, SHA512:
		return true
	}
	return false
}

const (
	DefaultMaxNumber  int64 = 1_000_000
	DefaultSaltLength       = 12
)

// ChallengeOptions describes one challenge to generate. Zero values of
// Algorithm and SaltLength fall back to the defaults; ExpiresIn == 0 disables expiry.
type ChallengeOptions struct {
	Algorithm  Algorithm
	MaxNumber  int64
	HMACKey    []byte
	ExpiresIn  time.Duration
	SaltLength int
}

// Challenge is sent to the client. The secret number is not part of it.
type Challenge struct {
	Algorithm Algorithm
	Challenge string
	Salt      string
	Signature string
	MaxNumber int64
}

// Solution is what the client sends back.
type Solution struct {
	Algorithm Algorithm
	Challenge string
	Salt      string
	Signature string
	Number    int64
	Took      int64 // ms, informational only
}

// PayloadShape selects the server->client payload layout.
type PayloadShape int

const (
	ShapeCurrent PayloadShape = iota
	ShapeLegacy
)

func (s PayloadShape) String() string {
	if s == ShapeLegacy {
		return "legacy"
	}
	return "current"
}

func ParseShape(s string) (PayloadShape, bool) {
	switch s {
	case "", "current":
		return ShapeCurrent, true
	case "legacy":
		return ShapeLegacy, true
	}
	return ShapeCurrent, false
}
