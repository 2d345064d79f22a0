package service

import (
	crand "crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dayanaadylkhanova/altcha-pow/internal/entity"
)

const expiresParam = "expires"

type Generator struct {
	now  func() time.Time
	rand io.Reader
}

type GeneratorOption func(*Generator)

func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) { g.now = now }
}

// WithRand replaces the random source. It must be a CSPRNG outside of tests.
func WithRand(r io.Reader) GeneratorOption {
	return func(g *Generator) { g.rand = r }
}

func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{now: time.Now, rand: crand.Reader}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Create draws a secret number in [0, MaxNumber] and builds a signed challenge for it.
func (g *Generator) Create(opts entity.ChallengeOptions) (entity.Challenge, error) {
	opts, err := normalizeOptions(opts)
	if err != nil {
		return entity.Challenge{}, err
	}
	n, err := crand.Int(g.rand, new(big.Int).Add(big.NewInt(opts.MaxNumber), big.NewInt(1)))
	if err != nil {
		return entity.Challenge{}, fmt.Errorf("draw number: %w", err)
	}
	return g.create(opts, n.Int64())
}

// CreateWithNumber is Create with a caller-chosen secret number.
func (g *Generator) CreateWithNumber(opts entity.ChallengeOptions, number int64) (entity.Challenge, error) {
	opts, err := normalizeOptions(opts)
	if err != nil {
		return entity.Challenge{}, err
	}
	if number < 0 || number > opts.MaxNumber {
		return entity.Challenge{}, fmt.Errorf("%w: number %d outside [0, %d]", ErrInvalidOptions, number, opts.MaxNumber)
	}
	return g.create(opts, number)
}

func (g *Generator) create(opts entity.ChallengeOptions, number int64) (entity.Challenge, error) {
	raw := make([]byte, opts.SaltLength)
	if _, err := io.ReadFull(g.rand, raw); err != nil {
		return entity.Challenge{}, fmt.Errorf("draw salt: %w", err)
	}
	salt := hex.EncodeToString(raw)
	if opts.ExpiresIn > 0 {
		q := url.Values{}
		q.Set(expiresParam, strconv.FormatInt(g.now().Add(opts.ExpiresIn).Unix(), 10))
		salt += "?" + q.Encode()
	}

	challenge, err := DigestHex(opts.Algorithm, hashInput(salt, number))
	if err != nil {
		return entity.Challenge{}, err
	}
	signature, err := HMACHex(opts.Algorithm, opts.HMACKey, []byte(challenge))
	if err != nil {
		return entity.Challenge{}, err
	}
	return entity.Challenge{
		Algorithm: opts.Algorithm,
		Challenge: challenge,
		Salt:      salt,
		Signature: signature,
		MaxNumber: opts.MaxNumber,
	}, nil
}

func normalizeOptions(opts entity.ChallengeOptions) (entity.ChallengeOptions, error) {
	if opts.Algorithm == "" {
		opts.Algorithm = entity.DefaultAlgorithm
	}
	if !opts.Algorithm.Valid() {
		return opts, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, opts.Algorithm)
	}
	if opts.MaxNumber <= 0 {
		return opts, fmt.Errorf("%w: max number must be positive, got %d", ErrInvalidOptions, opts.MaxNumber)
	}
	if len(opts.HMACKey) == 0 {
		return opts, fmt.Errorf("%w: empty hmac key", ErrInvalidOptions)
	}
	if opts.SaltLength < 0 {
		return opts, fmt.Errorf("%w: negative salt length", ErrInvalidOptions)
	}
	if opts.SaltLength == 0 {
		opts.SaltLength = entity.DefaultSaltLength
	}
	if opts.ExpiresIn < 0 {
		opts.ExpiresIn = 0
	}
	return opts, nil
}

// SaltExpiry extracts the expiry timestamp carried in the salt, if any.
// ok is false when the salt has no expiry; err is set when it has one that does not parse.
func SaltExpiry(salt string) (exp time.Time, ok bool, err error) {
	i := strings.IndexByte(salt, '?')
	if i < 0 {
		return time.Time{}, false, nil
	}
	q, err := url.ParseQuery(salt[i+1:])
	if err != nil {
		return time.Time{}, true, err
	}
	v := q.Get(expiresParam)
	if v == "" {
		return time.Time{}, false, nil
	}
	sec, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, true, err
	}
	return time.Unix(sec, 0), true, nil
}
