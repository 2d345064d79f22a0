package events

import (
	"context"
	"log/slog"

	"github.com/dayanaadylkhanova/altcha-pow/internal/entity"
)

// Log writes verification events to the structured log when no broker is configured.
type Log struct {
	log *slog.Logger
}

func NewLog(log *slog.Logger) *Log {
	return &Log{log: log}
}

func (p *Log) Publish(ctx context.Context, evt entity.VerificationEvent) error {
	env := newEnvelope(evt)
	p.log.InfoContext(ctx, "captcha verification",
		"event_id", env.EventID,
		"outcome", env.Payload.Outcome,
		"success", env.Payload.Success,
		"algorithm", env.Payload.Algorithm,
		"took_ms", env.Payload.TookMS,
	)
	return nil
}
