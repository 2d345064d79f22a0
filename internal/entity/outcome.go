package entity

import "time"

type Outcome int

const (
	Success Outcome = iota
	MissingResponse
	Malformed
	HashMismatch
	SignatureMismatch
	Expired
	VerifierError
	Replayed
)

var outcomeNames = [...]string{
	Success:           "success",
	MissingResponse:   "missing_response",
	Malformed:         "malformed",
	HashMismatch:      "hash_mismatch",
	SignatureMismatch: "signature_mismatch",
	Expired:           "expired",
	VerifierError:     "verifier_error",
	Replayed:          "replayed",
}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return "unknown"
	}
	return outcomeNames[o]
}

func (o Outcome) OK() bool { return o == Success }

// VerificationEvent is published after every validated submission.
type VerificationEvent struct {
	Outcome    Outcome
	Algorithm  Algorithm
	Took       int64
	OccurredAt time.Time
}
