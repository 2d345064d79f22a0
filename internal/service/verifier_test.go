package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dayanaadylkhanova/altcha-pow/internal/entity"
)

func solvedChallenge(t *testing.T, opts entity.ChallengeOptions, now time.Time) entity.Solution {
	t.Helper()
	ch, err := NewGenerator(WithClock(fixedClock(now))).Create(opts)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	sol, err := Solve(context.Background(), ch, 0, 0)
	if err != nil {
		t.Fatalf("Solve() error: %v", err)
	}
	return sol
}

func flipAt(s string, i int) string {
	b := []byte(s)
	if b[i] == '0' {
		b[i] = '1'
	} else {
		b[i] = '0'
	}
	return string(b)
}

func flipFirst(s string) string { return flipAt(s, 0) }

func TestVerify_Table(t *testing.T) {
	t.Parallel()

	key := []byte("secret123")
	sol := solvedChallenge(t, entity.ChallengeOptions{MaxNumber: 1000, HMACKey: key}, fixedNow)
	v := NewVerifier(fixedClock(fixedNow))

	cases := []struct {
		name    string
		mutate  func(s entity.Solution) entity.Solution
		key     []byte
		want    entity.Outcome
		wantErr error
	}{
		{"ok", func(s entity.Solution) entity.Solution { return s }, key, entity.Success, nil},
		{"tampered_salt", func(s entity.Solution) entity.Solution { s.Salt = flipFirst(s.Salt); return s }, key, entity.HashMismatch, ErrHashMismatch},
		{"tampered_number", func(s entity.Solution) entity.Solution { s.Number++; return s }, key, entity.HashMismatch, ErrHashMismatch},
		{"tampered_challenge", func(s entity.Solution) entity.Solution { s.Challenge = flipFirst(s.Challenge); return s }, key, entity.HashMismatch, ErrHashMismatch},
		{"tampered_signature", func(s entity.Solution) entity.Solution { s.Signature = flipFirst(s.Signature); return s }, key, entity.SignatureMismatch, ErrSignatureMismatch},
		{"truncated_signature", func(s entity.Solution) entity.Solution { s.Signature = s.Signature[:10]; return s }, key, entity.SignatureMismatch, ErrSignatureMismatch},
		{"other_key", func(s entity.Solution) entity.Solution { return s }, []byte("secret124"), entity.SignatureMismatch, ErrSignatureMismatch},
		{"unsupported_algorithm", func(s entity.Solution) entity.Solution { s.Algorithm = "MD5"; return s }, key, entity.VerifierError, ErrUnsupportedAlgorithm},
		{"other_algorithm", func(s entity.Solution) entity.Solution { s.Algorithm = entity.SHA512; return s }, key, entity.HashMismatch, ErrHashMismatch},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := v.Verify(tc.mutate(sol), tc.key, true)
			if got != tc.want {
				t.Fatalf("Verify() = %s; want %s (err %v)", got, tc.want, err)
			}
			if tc.wantErr == nil && err != nil {
				t.Fatalf("Verify() unexpected error: %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("Verify() err = %v; want %v", err, tc.wantErr)
			}
		})
	}
}

func TestVerify_SelfIssuedChallengeRejected(t *testing.T) {
	t.Parallel()

	// клиент сам собрал задачу с number=0, но ключа не знает
	salt := "attacker-salt"
	challenge, _ := DigestHex(entity.SHA256, hashInput(salt, 0))
	forgedSig, _ := HMACHex(entity.SHA256, []byte("guess"), []byte(challenge))
	sol := entity.Solution{Algorithm: entity.SHA256, Challenge: challenge, Salt: salt, Signature: forgedSig, Number: 0}

	got, _ := NewVerifier(nil).Verify(sol, []byte("real-key"), false)
	if got != entity.SignatureMismatch {
		t.Fatalf("Verify() = %s; want signature_mismatch", got)
	}
}

func TestVerify_NumberAboveMaxStillAccepted(t *testing.T) {
	t.Parallel()

	key := []byte("k")
	g := NewGenerator()
	ch, err := g.CreateWithNumber(entity.ChallengeOptions{MaxNumber: 500, HMACKey: key}, 500)
	if err != nil {
		t.Fatalf("CreateWithNumber() error: %v", err)
	}
	sol := entity.Solution{Algorithm: ch.Algorithm, Challenge: ch.Challenge, Salt: ch.Salt, Signature: ch.Signature, Number: 500}
	// maxnumber is not part of the signed material
	if got, err := NewVerifier(nil).Verify(sol, key, false); got != entity.Success {
		t.Fatalf("Verify() = %s (%v); want success", got, err)
	}
}

func TestVerify_Expiry(t *testing.T) {
	t.Parallel()

	key := []byte("k")
	sol := solvedChallenge(t, entity.ChallengeOptions{MaxNumber: 200, HMACKey: key, ExpiresIn: time.Second}, fixedNow)

	cases := []struct {
		name    string
		now     time.Time
		enforce bool
		want    entity.Outcome
	}{
		{"fresh_enforced", fixedNow, true, entity.Success},
		{"at_deadline_enforced", fixedNow.Add(time.Second), true, entity.Success},
		{"past_deadline_enforced", fixedNow.Add(2 * time.Second), true, entity.Expired},
		{"past_deadline_not_enforced", fixedNow.Add(2 * time.Second), false, entity.Success},
		{"long_past_not_enforced", fixedNow.Add(24 * time.Hour), false, entity.Success},
	}
	for _, tc := range cases {
		got, err := NewVerifier(fixedClock(tc.now)).Verify(sol, key, tc.enforce)
		if got != tc.want {
			t.Fatalf("%s: Verify() = %s (%v); want %s", tc.name, got, err, tc.want)
		}
		if tc.want == entity.Expired && !errors.Is(err, ErrExpired) {
			t.Fatalf("%s: err = %v; want ErrExpired", tc.name, err)
		}
	}
}

func TestVerify_HashCheckedBeforeExpiry(t *testing.T) {
	t.Parallel()

	key := []byte("k")
	sol := solvedChallenge(t, entity.ChallengeOptions{MaxNumber: 100, HMACKey: key, ExpiresIn: time.Second}, fixedNow)
	sol.Number++

	got, _ := NewVerifier(fixedClock(fixedNow.Add(time.Hour))).Verify(sol, key, true)
	if got != entity.HashMismatch {
		t.Fatalf("Verify() = %s; want hash_mismatch", got)
	}
}

func TestVerify_EverySingleCharacterFlipFails(t *testing.T) {
	t.Parallel()

	key := []byte("secret123")
	sol := solvedChallenge(t, entity.ChallengeOptions{MaxNumber: 1000, HMACKey: key, ExpiresIn: time.Minute}, fixedNow)
	v := NewVerifier(fixedClock(fixedNow))

	fields := []struct {
		name string
		get  func(s entity.Solution) string
		set  func(s *entity.Solution, v string)
		want entity.Outcome
	}{
		{"salt", func(s entity.Solution) string { return s.Salt }, func(s *entity.Solution, v string) { s.Salt = v }, entity.HashMismatch},
		{"challenge", func(s entity.Solution) string { return s.Challenge }, func(s *entity.Solution, v string) { s.Challenge = v }, entity.HashMismatch},
		{"signature", func(s entity.Solution) string { return s.Signature }, func(s *entity.Solution, v string) { s.Signature = v }, entity.SignatureMismatch},
	}
	for _, f := range fields {
		orig := f.get(sol)
		for i := range orig {
			tampered := sol
			f.set(&tampered, flipAt(orig, i))
			got, _ := v.Verify(tampered, key, true)
			if got != f.want {
				t.Fatalf("%s flipped at %d: Verify() = %s; want %s", f.name, i, got, f.want)
			}
		}
	}
}
