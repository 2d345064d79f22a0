package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/dayanaadylkhanova/altcha-pow/internal/entity"
)

// Conn is the part of *nats.Conn the publisher uses.
type Conn interface {
	Publish(subject string, data []byte) error
}

var _ Conn = (*nats.Conn)(nil)

type NATS struct {
	conn          Conn
	subjectPrefix string
}

func NewNATS(conn Conn, subjectPrefix string) *NATS {
	if subjectPrefix == "" {
		subjectPrefix = "altcha"
	}
	return &NATS{conn: conn, subjectPrefix: subjectPrefix}
}

func (p *NATS) Subject() string {
	return fmt.Sprintf("%s.%s", p.subjectPrefix, topicVerification)
}

func (p *NATS) Publish(_ context.Context, evt entity.VerificationEvent) error {
	data, err := json.Marshal(newEnvelope(evt))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.conn.Publish(p.Subject(), data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
