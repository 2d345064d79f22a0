package service

import (
	"errors"
	"testing"

	"github.com/dayanaadylkhanova/altcha-pow/internal/entity"
)

func TestDigestHex_KnownVectors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		alg  entity.Algorithm
		want string
	}{
		{entity.SHA256, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{entity.SHA384, "cb00753f45a35e8bb5a03d699ac65007272c32ab0eded1631a8b605a43ff5bed8086072ba1e7cc2358baeca134c825a7"},
		{entity.SHA512, "ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(string(tc.alg), func(t *testing.T) {
			t.Parallel()
			got, err := DigestHex(tc.alg, []byte("abc"))
			if err != nil {
				t.Fatalf("DigestHex() error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("DigestHex(%s, abc) = %s; want %s", tc.alg, got, tc.want)
			}
		})
	}
}

func TestHMACHex_RFC4231(t *testing.T) {
	t.Parallel()

	got, err := HMACHex(entity.SHA256, []byte("Jefe"), []byte("what do ya want for nothing?"))
	if err != nil {
		t.Fatalf("HMACHex() error: %v", err)
	}
	want := "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843"
	if got != want {
		t.Fatalf("HMACHex() = %s; want %s", got, want)
	}
}

func TestHashEngine_UnsupportedAlgorithm(t *testing.T) {
	t.Parallel()

	for _, alg := range []entity.Algorithm{"", "MD5", "sha-256", "SHA-1"} {
		if _, err := DigestHex(alg, []byte("x")); !errors.Is(err, ErrUnsupportedAlgorithm) {
			t.Fatalf("DigestHex(%q) err = %v; want ErrUnsupportedAlgorithm", alg, err)
		}
		if _, err := HMACHex(alg, []byte("k"), []byte("x")); !errors.Is(err, ErrUnsupportedAlgorithm) {
			t.Fatalf("HMACHex(%q) err = %v; want ErrUnsupportedAlgorithm", alg, err)
		}
	}
}

func TestEqualHex(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		a, b string
		want bool
	}{
		{"equal", "deadbeef", "deadbeef", true},
		{"differ_last", "deadbeef", "deadbeee", false},
		{"prefix", "deadbeef", "dead", false},
		{"both_empty", "", "", true},
		{"case_sensitive", "DEADBEEF", "deadbeef", false},
	}
	for _, tc := range cases {
		if got := EqualHex(tc.a, tc.b); got != tc.want {
			t.Fatalf("%s: EqualHex(%q, %q) = %v; want %v", tc.name, tc.a, tc.b, got, tc.want)
		}
	}
}

func TestHashInput_Format(t *testing.T) {
	t.Parallel()

	got := hashInput("abc?expires=10", 42)
	if want := "abc?expires=1042"; string(got) != want {
		t.Fatalf("hashInput() = %q; want %q", got, want)
	}
}
