package form

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dayanaadylkhanova/altcha-pow/internal/entity"
	"github.com/dayanaadylkhanova/altcha-pow/pkg/config"
)

func TestSchema(t *testing.T) {
	t.Parallel()

	names := func(props []ConfigProperty) []string {
		out := make([]string, 0, len(props))
		for _, p := range props {
			out = append(out, p.Name)
		}
		return out
	}
	if diff := cmp.Diff([]string{"secret", "complexity", "floating", "expires"}, names(Schema(entity.ShapeCurrent))); diff != "" {
		t.Fatalf("current schema (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"secret", "compact"}, names(Schema(entity.ShapeLegacy))); diff != "" {
		t.Fatalf("legacy schema (-want +got):\n%s", diff)
	}
	for _, p := range Schema(entity.ShapeCurrent) {
		if p.Label == "" || p.HelpText == "" || p.Kind == "" {
			t.Fatalf("incomplete property %+v", p)
		}
	}
}

func TestParseSettings(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		shape   entity.PayloadShape
		in      map[string]string
		want    Settings
		wantErr error
	}{
		{
			name:  "defaults",
			shape: entity.ShapeCurrent,
			in:    map[string]string{"secret": "s"},
			want: Settings{Secret: "s", Complexity: DefaultComplexity, Algorithm: entity.SHA256,
				EnforceExpiry: true, Shape: entity.ShapeCurrent, Field: FieldCurrent},
		},
		{
			name:  "full_current",
			shape: entity.ShapeCurrent,
			in:    map[string]string{"secret": "s", "complexity": "5000", "expires": "120", "floating": "true", "algorithm": "SHA-512"},
			want: Settings{Secret: "s", Complexity: 5000, Algorithm: entity.SHA512, Expires: 2 * time.Minute,
				EnforceExpiry: true, Floating: true, Shape: entity.ShapeCurrent, Field: FieldCurrent},
		},
		{
			name:  "legacy",
			shape: entity.ShapeLegacy,
			in:    map[string]string{"secret": "s", "compact": "true"},
			want: Settings{Secret: "s", Complexity: DefaultComplexity, Algorithm: entity.SHA256,
				EnforceExpiry: true, Compact: true, Shape: entity.ShapeLegacy, Field: FieldLegacy},
		},
		{name: "missing_secret", in: map[string]string{}, wantErr: ErrNotConfigured},
		{name: "blank_secret", in: map[string]string{"secret": "   "}, wantErr: ErrNotConfigured},
		{name: "nil_map", in: nil, wantErr: ErrNotConfigured},
		{name: "bad_complexity", in: map[string]string{"secret": "s", "complexity": "lots"}, wantErr: ErrInvalidSetting},
		{name: "zero_complexity", in: map[string]string{"secret": "s", "complexity": "0"}, wantErr: ErrInvalidSetting},
		{name: "negative_expiry", in: map[string]string{"secret": "s", "expires": "-1"}, wantErr: ErrInvalidSetting},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseSettings(tc.shape, tc.in)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("ParseSettings() err = %v; want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSettings() error: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("ParseSettings() (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSettingsFromConfig(t *testing.T) {
	t.Parallel()

	c := config.AltchaConfig{
		Secret:     "s",
		Complexity: 42,
		Algorithm:  "SHA-384",
		Expires:    90 * time.Second,
		Field:      "captcha",
		Shape:      "legacy",
	}
	got, err := SettingsFromConfig(c)
	if err != nil {
		t.Fatalf("SettingsFromConfig() error: %v", err)
	}
	want := Settings{Secret: "s", Complexity: 42, Algorithm: entity.SHA384, Expires: 90 * time.Second,
		EnforceExpiry: true, Shape: entity.ShapeLegacy, Field: "captcha"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("SettingsFromConfig() (-want +got):\n%s", diff)
	}

	// доли секунды не должны отключать срок жизни
	for in, want := range map[time.Duration]time.Duration{
		500 * time.Millisecond:  time.Second,
		1500 * time.Millisecond: 2 * time.Second,
		0:                       0,
	} {
		c.Expires = in
		got, err := SettingsFromConfig(c)
		if err != nil {
			t.Fatalf("expires=%v: SettingsFromConfig() error: %v", in, err)
		}
		if got.Expires != want {
			t.Fatalf("expires=%v: Expires = %v; want %v", in, got.Expires, want)
		}
	}

	c.Shape = "v9"
	if _, err := SettingsFromConfig(c); !errors.Is(err, ErrInvalidSetting) {
		t.Fatalf("bad shape err = %v; want ErrInvalidSetting", err)
	}
}

func TestSettingsOptions(t *testing.T) {
	t.Parallel()

	s := Settings{Secret: "k", Complexity: 7, Algorithm: entity.SHA512, Expires: time.Minute}
	want := entity.ChallengeOptions{Algorithm: entity.SHA512, MaxNumber: 7, HMACKey: []byte("k"), ExpiresIn: time.Minute}
	if diff := cmp.Diff(want, s.Options()); diff != "" {
		t.Fatalf("Options() (-want +got):\n%s", diff)
	}
}
