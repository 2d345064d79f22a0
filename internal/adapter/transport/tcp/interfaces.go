package tcp

import (
	"context"

	"github.com/dayanaadylkhanova/altcha-pow/internal/adapter/form"
	"github.com/dayanaadylkhanova/altcha-pow/internal/entity"
)

//go:generate mockgen -source=interfaces.go -destination=./server_mock.go -package=tcp

type Captcha interface {
	PrepareChallenge(s form.Settings) (string, error)
	ValidateSubmission(ctx context.Context, value string, s form.Settings) entity.Outcome
}
