package service

import (
	"fmt"
	"time"

	"github.com/dayanaadylkhanova/altcha-pow/internal/entity"
)

type Verifier struct {
	now func() time.Time
}

func NewVerifier(now func() time.Time) *Verifier {
	if now == nil {
		now = time.Now
	}
	return &Verifier{now: now}
}

// Verify checks hash, then signature, then expiry. The returned error is for
// logs only and wraps the sentinel matching the outcome.
// The number is not range-checked: only the hash equality proves the work.
func (v *Verifier) Verify(sol entity.Solution, hmacKey []byte, enforceExpiry bool) (entity.Outcome, error) {
	expectedHash, err := DigestHex(sol.Algorithm, hashInput(sol.Salt, sol.Number))
	if err != nil {
		return entity.VerifierError, err
	}
	if !EqualHex(expectedHash, sol.Challenge) {
		return entity.HashMismatch, ErrHashMismatch
	}

	expectedSig, err := HMACHex(sol.Algorithm, hmacKey, []byte(sol.Challenge))
	if err != nil {
		return entity.VerifierError, err
	}
	if !EqualHex(expectedSig, sol.Signature) {
		return entity.SignatureMismatch, ErrSignatureMismatch
	}

	if enforceExpiry {
		exp, ok, err := SaltExpiry(sol.Salt)
		if err != nil {
			return entity.Expired, fmt.Errorf("%w: unreadable expiry: %v", ErrExpired, err)
		}
		if ok && exp.Before(v.now()) {
			return entity.Expired, fmt.Errorf("%w at %s", ErrExpired, exp.UTC().Format(time.RFC3339))
		}
	}
	return entity.Success, nil
}
