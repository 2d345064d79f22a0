package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/dayanaadylkhanova/altcha-pow/internal/entity"
)

// Protocol issues challenges and verifies submitted solutions. It holds no
// per-request state and is safe for concurrent use.
type Protocol struct {
	gen   *Generator
	codec Codec
	ver   *Verifier
}

type ProtocolOption func(*protocolConfig)

type protocolConfig struct {
	shape   entity.PayloadShape
	now     func() time.Time
	genOpts []GeneratorOption
}

func WithShape(shape entity.PayloadShape) ProtocolOption {
	return func(c *protocolConfig) { c.shape = shape }
}

// WithProtocolClock sets the clock used for both expiry stamping and expiry checks.
func WithProtocolClock(now func() time.Time) ProtocolOption {
	return func(c *protocolConfig) {
		c.now = now
		c.genOpts = append(c.genOpts, WithClock(now))
	}
}

func WithGeneratorOptions(opts ...GeneratorOption) ProtocolOption {
	return func(c *protocolConfig) { c.genOpts = append(c.genOpts, opts...) }
}

func NewProtocol(opts ...ProtocolOption) *Protocol {
	cfg := protocolConfig{shape: entity.ShapeCurrent, now: time.Now}
	for _, o := range opts {
		o(&cfg)
	}
	return &Protocol{
		gen:   NewGenerator(cfg.genOpts...),
		codec: NewCodec(cfg.shape),
		ver:   NewVerifier(cfg.now),
	}
}

func (p *Protocol) Codec() Codec { return p.codec }

// NewChallenge generates a challenge without encoding it.
func (p *Protocol) NewChallenge(opts entity.ChallengeOptions) (entity.Challenge, error) {
	return p.gen.Create(opts)
}

// IssueChallenge generates a challenge and returns its transport string.
func (p *Protocol) IssueChallenge(opts entity.ChallengeOptions) (string, error) {
	ch, err := p.gen.Create(opts)
	if err != nil {
		return "", fmt.Errorf("create challenge: %w", err)
	}
	return p.codec.Encode(ch)
}

// Decode parses a submitted payload. A blank payload yields ErrMissingResponse.
func (p *Protocol) Decode(payload string) (entity.Solution, entity.Outcome, error) {
	if strings.TrimSpace(payload) == "" {
		return entity.Solution{}, entity.MissingResponse, ErrMissingResponse
	}
	sol, err := p.codec.Decode(payload)
	if err != nil {
		return entity.Solution{}, entity.Malformed, err
	}
	return sol, entity.Success, nil
}

func (p *Protocol) VerifySolution(sol entity.Solution, hmacKey []byte, enforceExpiry bool) (entity.Outcome, error) {
	return p.ver.Verify(sol, hmacKey, enforceExpiry)
}

// Verify decodes payload and verifies it against hmacKey.
func (p *Protocol) Verify(payload string, hmacKey []byte, enforceExpiry bool) (entity.Outcome, error) {
	sol, outcome, err := p.Decode(payload)
	if err != nil {
		return outcome, err
	}
	return p.ver.Verify(sol, hmacKey, enforceExpiry)
}
