package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"hash"
	"strconv"

	"github.com/dayanaadylkhanova/altcha-pow/internal/entity"
)

func hasher(alg entity.Algorithm) (func() hash.Hash, error) {
	switch alg {
	case entity.SHA256:
		return sha256.New, nil
	case entity.SHA384:
		return sha512.New384, nil
	case entity.SHA512:
		return sha512.New, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
}

// DigestHex returns the lowercase hex digest of data.
func DigestHex(alg entity.Algorithm, data []byte) (string, error) {
	newHash, err := hasher(alg)
	if err != nil {
		return "", err
	}
	h := newHash()
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HMACHex returns the lowercase hex HMAC of msg under key.
func HMACHex(alg entity.Algorithm, key, msg []byte) (string, error) {
	newHash, err := hasher(alg)
	if err != nil {
		return "", err
	}
	mac := hmac.New(newHash, key)
	mac.Write(msg)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// EqualHex compares two digest strings in constant time.
func EqualHex(a, b string) bool {
	if subtle.ConstantTimeEq(int32(len(a)), int32(len(b))) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func hashInput(salt string, number int64) []byte {
	n := strconv.FormatInt(number, 10)
	payload := make([]byte, 0, len(salt)+len(n))
	payload = append(payload, salt...)
	payload = append(payload, n...)
	return payload
}
