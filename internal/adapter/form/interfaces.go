package form

import (
	"context"
	"time"

	"github.com/dayanaadylkhanova/altcha-pow/internal/entity"
)

//go:generate mockgen -source=interfaces.go -destination=./form_mock.go -package=form

type ReplayGuard interface {
	// Claim marks id as used for ttl. It returns false if id was already claimed.
	Claim(ctx context.Context, id string, ttl time.Duration) (bool, error)
}

type Publisher interface {
	Publish(ctx context.Context, evt entity.VerificationEvent) error
}
