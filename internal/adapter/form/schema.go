package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dayanaadylkhanova/altcha-pow/internal/entity"
	"github.com/dayanaadylkhanova/altcha-pow/pkg/config"
)

const (
	FieldCurrent = "altcha"
	FieldLegacy  = "altcha-response"

	KeySecret     = "secret"
	KeyComplexity = "complexity"
	KeyFloating   = "floating"
	KeyExpires    = "expires"
	KeyCompact    = "compact"
	KeyAlgorithm  = "algorithm"

	DefaultComplexity int64 = 100_000
)

var (
	ErrNotConfigured  = errors.New("captcha not configured")
	ErrInvalidSetting = errors.New("invalid captcha setting")
)

type Kind string

const (
	KindString  Kind = "String"
	KindBoolean Kind = "boolean"
	KindInteger Kind = "int"
)

// ConfigProperty describes one setting an operator can set in the host's admin UI.
type ConfigProperty struct {
	Name     string
	Label    string
	Kind     Kind
	HelpText string
}

// Schema lists the settings understood for the given payload shape.
func Schema(shape entity.PayloadShape) []ConfigProperty {
	secret := ConfigProperty{Name: KeySecret, Label: "ALTCHA HMAC Secret", Kind: KindString, HelpText: "HMAC secret key"}
	if shape == entity.ShapeLegacy {
		return []ConfigProperty{
			secret,
			{Name: KeyCompact, Label: "ALTCHA Compact", Kind: KindBoolean, HelpText: "Compact format"},
		}
	}
	return []ConfigProperty{
		secret,
		{Name: KeyComplexity, Label: "ALTCHA Complexity", Kind: KindInteger, HelpText: "Upper bound of the secret number; higher is slower to solve"},
		{Name: KeyFloating, Label: "ALTCHA Floating UI", Kind: KindBoolean, HelpText: "Show the widget as a floating panel"},
		{Name: KeyExpires, Label: "ALTCHA Expiry (seconds)", Kind: KindInteger, HelpText: "Challenge lifetime in seconds, 0 disables expiry"},
	}
}

// Settings is the parsed per-form configuration.
type Settings struct {
	Secret        string
	Complexity    int64
	Algorithm     entity.Algorithm
	Expires       time.Duration
	EnforceExpiry bool
	Floating      bool // UI only
	Compact       bool // UI only
	Shape         entity.PayloadShape
	Field         string
}

func (s Settings) Options() entity.ChallengeOptions {
	return entity.ChallengeOptions{
		Algorithm: s.Algorithm,
		MaxNumber: s.Complexity,
		HMACKey:   []byte(s.Secret),
		ExpiresIn: s.Expires,
	}
}

// ParseSettings reads a host config map. A missing secret is ErrNotConfigured.
func ParseSettings(shape entity.PayloadShape, m map[string]string) (Settings, error) {
	s := Settings{
		Secret:        m[KeySecret],
		Complexity:    DefaultComplexity,
		Algorithm:     entity.DefaultAlgorithm,
		EnforceExpiry: true,
		Shape:         shape,
		Field:         FieldCurrent,
	}
	if shape == entity.ShapeLegacy {
		s.Field = FieldLegacy
	}
	if strings.TrimSpace(s.Secret) == "" {
		return Settings{}, ErrNotConfigured
	}
	if v := strings.TrimSpace(m[KeyComplexity]); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return Settings{}, fmt.Errorf("%w: %s=%q", ErrInvalidSetting, KeyComplexity, v)
		}
		s.Complexity = n
	}
	if v := strings.TrimSpace(m[KeyExpires]); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return Settings{}, fmt.Errorf("%w: %s=%q", ErrInvalidSetting, KeyExpires, v)
		}
		s.Expires = time.Duration(n) * time.Second
	}
	if v := strings.TrimSpace(m[KeyAlgorithm]); v != "" {
		s.Algorithm = entity.Algorithm(v)
	}
	s.Floating, _ = strconv.ParseBool(m[KeyFloating])
	s.Compact, _ = strconv.ParseBool(m[KeyCompact])
	return s, nil
}

// SettingsFromConfig maps the process config onto form settings.
func SettingsFromConfig(c config.AltchaConfig) (Settings, error) {
	shape, ok := entity.ParseShape(c.Shape)
	if !ok {
		return Settings{}, fmt.Errorf("%w: shape=%q", ErrInvalidSetting, c.Shape)
	}
	s, err := ParseSettings(shape, map[string]string{
		KeySecret:     c.Secret,
		KeyComplexity: strconv.FormatInt(c.Complexity, 10),
		KeyExpires:    strconv.FormatInt(ceilSeconds(c.Expires), 10),
		KeyAlgorithm:  c.Algorithm,
		KeyFloating:   strconv.FormatBool(c.Floating),
	})
	if err != nil {
		return Settings{}, err
	}
	if c.Field != "" {
		s.Field = c.Field
	}
	return s, nil
}

// ceilSeconds rounds up so a sub-second expiry never collapses to "no expiry".
func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return int64(d / time.Second)
	}
	return int64((d + time.Second - 1) / time.Second)
}
