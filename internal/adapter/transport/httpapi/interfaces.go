package httpapi

import (
	"context"

	"github.com/dayanaadylkhanova/altcha-pow/internal/adapter/form"
	"github.com/dayanaadylkhanova/altcha-pow/internal/entity"
)

//go:generate mockgen -source=interfaces.go -destination=./httpapi_mock.go -package=httpapi

type Captcha interface {
	ChallengeJSON(s form.Settings) ([]byte, error)
	PrepareChallenge(s form.Settings) (string, error)
	ValidateSubmission(ctx context.Context, value string, s form.Settings) entity.Outcome
}
