package service

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dayanaadylkhanova/altcha-pow/internal/entity"
)

// MaxPayloadSize bounds the encoded solution accepted by Decode.
const MaxPayloadSize = 4096

// Field order is the wire order.
type currentPayload struct {
	Algorithm string `json:"algorithm"`
	Challenge string `json:"challenge"`
	MaxNumber int64  `json:"maxnumber"`
	Salt      string `json:"salt"`
	Signature string `json:"signature"`
}

type legacyPayload struct {
	Algorithm string `json:"algorithm"`
	Challenge string `json:"challenge"`
	Salt      string `json:"salt"`
	Signature string `json:"signature"`
}

type solutionPayload struct {
	Algorithm *string         `json:"algorithm"`
	Challenge *string         `json:"challenge"`
	Number    json.RawMessage `json:"number"`
	Salt      *string         `json:"salt"`
	Signature *string         `json:"signature"`
	Took      json.RawMessage `json:"took,omitempty"`
}

type Codec struct {
	Shape entity.PayloadShape
}

func NewCodec(shape entity.PayloadShape) Codec { return Codec{Shape: shape} }

// Marshal renders the challenge as JSON in the codec's shape.
func (c Codec) Marshal(ch entity.Challenge) ([]byte, error) {
	var v any
	switch c.Shape {
	case entity.ShapeLegacy:
		v = legacyPayload{
			Algorithm: string(ch.Algorithm),
			Challenge: ch.Challenge,
			Salt:      ch.Salt,
			Signature: ch.Signature,
		}
	default:
		v = currentPayload{
			Algorithm: string(ch.Algorithm),
			Challenge: ch.Challenge,
			MaxNumber: ch.MaxNumber,
			Salt:      ch.Salt,
			Signature: ch.Signature,
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal challenge: %w", err)
	}
	return b, nil
}

// Encode returns base64(Marshal(ch)), suitable for a single form field.
func (c Codec) Encode(ch entity.Challenge) (string, error) {
	b, err := c.Marshal(ch)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// EncodeSolution is the client side of Decode.
func EncodeSolution(sol entity.Solution) (string, error) {
	alg := string(sol.Algorithm)
	p := solutionPayload{
		Algorithm: &alg,
		Challenge: &sol.Challenge,
		Number:    json.RawMessage(strconv.FormatInt(sol.Number, 10)),
		Salt:      &sol.Salt,
		Signature: &sol.Signature,
	}
	if sol.Took > 0 {
		p.Took = json.RawMessage(strconv.FormatInt(sol.Took, 10))
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal solution: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// Decode parses a client solution. Every failure wraps ErrMalformed.
func (c Codec) Decode(s string) (entity.Solution, error) {
	s = strings.TrimSpace(s)
	if len(s) > MaxPayloadSize {
		return entity.Solution{}, fmt.Errorf("%w: payload of %d bytes exceeds %d", ErrMalformed, len(s), MaxPayloadSize)
	}
	raw, err := decodeBase64(s)
	if err != nil {
		return entity.Solution{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	// Unmarshal rejects anything after the object, stray brackets included.
	var p solutionPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return entity.Solution{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch {
	case p.Algorithm == nil:
		return entity.Solution{}, fmt.Errorf("%w: missing algorithm", ErrMalformed)
	case p.Challenge == nil:
		return entity.Solution{}, fmt.Errorf("%w: missing challenge", ErrMalformed)
	case p.Salt == nil:
		return entity.Solution{}, fmt.Errorf("%w: missing salt", ErrMalformed)
	case p.Signature == nil:
		return entity.Solution{}, fmt.Errorf("%w: missing signature", ErrMalformed)
	case len(p.Number) == 0 || string(p.Number) == "null":
		return entity.Solution{}, fmt.Errorf("%w: missing number", ErrMalformed)
	}

	// ParseInt on the raw token rejects strings, fractions and exponents.
	number, err := strconv.ParseInt(string(p.Number), 10, 64)
	if err != nil || number < 0 {
		return entity.Solution{}, fmt.Errorf("%w: number %s is not a non-negative integer", ErrMalformed, truncate(p.Number))
	}
	var took int64
	if len(p.Took) > 0 {
		// diagnostic only, a bad value is ignored
		if v, err := strconv.ParseInt(string(p.Took), 10, 64); err == nil {
			took = v
		}
	}

	return entity.Solution{
		Algorithm: entity.Algorithm(*p.Algorithm),
		Challenge: *p.Challenge,
		Salt:      *p.Salt,
		Signature: *p.Signature,
		Number:    number,
		Took:      took,
	}, nil
}

// decodeBase64 accepts padded standard and unpadded url-safe alphabets.
func decodeBase64(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("empty payload")
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	if b, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.URLEncoding.DecodeString(s)
}

func truncate(b []byte) string {
	const limit = 32
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}

// ParseChallenge reads a challenge in either shape, as raw JSON or as the
// base64 transport string. Clients use it; the server never parses challenges.
func ParseChallenge(data []byte) (entity.Challenge, error) {
	data = bytes.TrimSpace(data)
	if len(data) > MaxPayloadSize {
		return entity.Challenge{}, fmt.Errorf("%w: challenge too large", ErrMalformed)
	}
	if len(data) > 0 && data[0] != '{' {
		raw, err := decodeBase64(string(data))
		if err != nil {
			return entity.Challenge{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		data = raw
	}
	var p currentPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return entity.Challenge{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if p.Algorithm == "" || p.Challenge == "" || p.Signature == "" {
		return entity.Challenge{}, fmt.Errorf("%w: incomplete challenge", ErrMalformed)
	}
	if p.MaxNumber <= 0 {
		p.MaxNumber = entity.DefaultMaxNumber
	}
	return entity.Challenge{
		Algorithm: entity.Algorithm(p.Algorithm),
		Challenge: p.Challenge,
		Salt:      p.Salt,
		Signature: p.Signature,
		MaxNumber: p.MaxNumber,
	}, nil
}
