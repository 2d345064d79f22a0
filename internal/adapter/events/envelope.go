package events

import (
	"github.com/google/uuid"

	"github.com/dayanaadylkhanova/altcha-pow/internal/entity"
)

const (
	EventTypeVerification = "captcha.verification"
	topicVerification     = "captcha.verification"
)

type envelope struct {
	EventID    string  `json:"event_id"`
	EventType  string  `json:"event_type"`
	OccurredAt int64   `json:"occurred_at"`
	Payload    payload `json:"payload"`
}

type payload struct {
	Outcome   string `json:"outcome"`
	Success   bool   `json:"success"`
	Algorithm string `json:"algorithm,omitempty"`
	TookMS    int64  `json:"took_ms,omitempty"`
}

func newEnvelope(evt entity.VerificationEvent) envelope {
	return envelope{
		EventID:    uuid.NewString(),
		EventType:  EventTypeVerification,
		OccurredAt: evt.OccurredAt.Unix(),
		Payload: payload{
			Outcome:   evt.Outcome.String(),
			Success:   evt.Outcome.OK(),
			Algorithm: string(evt.Algorithm),
			TookMS:    evt.Took,
		},
	}
}
