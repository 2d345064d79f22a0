package form

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dayanaadylkhanova/altcha-pow/internal/entity"
	"github.com/dayanaadylkhanova/altcha-pow/internal/service"
)

// Messages shown to end users. Which check failed is never revealed.
const (
	FailedMessage        = "captcha validation failed"
	NotConfiguredMessage = "captcha not available"
)

func UserMessage(o entity.Outcome) string {
	if o.OK() {
		return ""
	}
	return FailedMessage
}

// Integration is what a host form framework talks to.
type Integration struct {
	log       *slog.Logger
	proto     *service.Protocol
	guard     ReplayGuard
	pub       Publisher
	now       func() time.Time
	replayTTL time.Duration
}

type Option func(*Integration)

func WithReplayGuard(g ReplayGuard, defaultTTL time.Duration) Option {
	return func(i *Integration) {
		i.guard = g
		i.replayTTL = defaultTTL
	}
}

func WithPublisher(p Publisher) Option {
	return func(i *Integration) { i.pub = p }
}

func WithClock(now func() time.Time) Option {
	return func(i *Integration) { i.now = now }
}

func New(log *slog.Logger, proto *service.Protocol, opts ...Option) *Integration {
	i := &Integration{log: log, proto: proto, now: time.Now, replayTTL: 10 * time.Minute}
	for _, o := range opts {
		o(i)
	}
	return i
}

// Challenge creates a fresh challenge. Any error is ErrNotConfigured; the
// specific cause goes to the log.
func (i *Integration) Challenge(s Settings) (entity.Challenge, error) {
	if s.Secret == "" {
		i.log.Error("captcha not configured", "reason", "missing secret")
		return entity.Challenge{}, ErrNotConfigured
	}
	ch, err := i.proto.NewChallenge(s.Options())
	if err != nil {
		i.log.Error("captcha not configured", "reason", err.Error(), "config_error", service.IsConfigError(err))
		return entity.Challenge{}, ErrNotConfigured
	}
	return ch, nil
}

// ChallengeJSON renders a challenge in the settings' payload shape.
func (i *Integration) ChallengeJSON(s Settings) ([]byte, error) {
	ch, err := i.Challenge(s)
	if err != nil {
		return nil, err
	}
	b, err := service.NewCodec(s.Shape).Marshal(ch)
	if err != nil {
		i.log.Error("challenge marshal failed", "err", err)
		return nil, ErrNotConfigured
	}
	return b, nil
}

// PrepareChallenge returns the transport string to embed in the rendered form.
func (i *Integration) PrepareChallenge(s Settings) (string, error) {
	ch, err := i.Challenge(s)
	if err != nil {
		return "", err
	}
	out, err := service.NewCodec(s.Shape).Encode(ch)
	if err != nil {
		i.log.Error("challenge encode failed", "err", err)
		return "", ErrNotConfigured
	}
	return out, nil
}

// ValidateSubmission checks the value the user submitted in s.Field.
func (i *Integration) ValidateSubmission(ctx context.Context, value string, s Settings) entity.Outcome {
	if s.Secret == "" {
		i.log.Error("captcha not configured", "reason", "missing secret")
		return entity.VerifierError
	}

	sol, outcome, err := i.proto.Decode(value)
	if err == nil {
		outcome, err = i.proto.VerifySolution(sol, []byte(s.Secret), s.EnforceExpiry)
	}
	if outcome.OK() && i.guard != nil {
		outcome, err = i.claim(ctx, sol)
	}

	switch {
	case outcome.OK():
		i.log.Debug("captcha verified", "algorithm", string(sol.Algorithm), "took_ms", sol.Took)
	case outcome == entity.VerifierError && errors.Is(err, service.ErrUnsupportedAlgorithm):
		// the algorithm comes from the submission, not from our config
		i.log.Debug("captcha rejected", "outcome", outcome.String(), "reason", errString(err))
	case outcome == entity.VerifierError:
		i.log.Error("captcha verification error", "err", err)
	default:
		i.log.Debug("captcha rejected", "outcome", outcome.String(), "reason", errString(err))
	}
	i.publish(ctx, sol, outcome)
	return outcome
}

func (i *Integration) claim(ctx context.Context, sol entity.Solution) (entity.Outcome, error) {
	ttl := i.replayTTL
	if exp, ok, err := service.SaltExpiry(sol.Salt); err == nil && ok {
		if left := exp.Sub(i.now()); left > 0 {
			ttl = left
		}
	}
	fresh, err := i.guard.Claim(ctx, sol.Challenge, ttl)
	if err != nil {
		return entity.VerifierError, err
	}
	if !fresh {
		return entity.Replayed, errors.New("solution already used")
	}
	return entity.Success, nil
}

func (i *Integration) publish(ctx context.Context, sol entity.Solution, outcome entity.Outcome) {
	if i.pub == nil {
		return
	}
	evt := entity.VerificationEvent{
		Outcome:    outcome,
		Algorithm:  sol.Algorithm,
		Took:       sol.Took,
		OccurredAt: i.now(),
	}
	if err := i.pub.Publish(ctx, evt); err != nil {
		i.log.Warn("verification event publish failed", "err", err)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
