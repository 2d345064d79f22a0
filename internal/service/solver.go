package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dayanaadylkhanova/altcha-pow/internal/entity"
)

const solverCheckEvery = 4096

// Solve searches [start, limit] for the number behind ch.Challenge. limit <= 0
// means ch.MaxNumber. It is the client's half of the protocol.
func Solve(ctx context.Context, ch entity.Challenge, start, limit int64) (entity.Solution, error) {
	if limit <= 0 {
		limit = ch.MaxNumber
	}
	if start < 0 {
		start = 0
	}
	begin := time.Now()
	for n := start; n <= limit; n++ {
		if (n-start)%solverCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return entity.Solution{}, err
			}
		}
		h, err := DigestHex(ch.Algorithm, hashInput(ch.Salt, n))
		if err != nil {
			return entity.Solution{}, err
		}
		if h == ch.Challenge {
			return entity.Solution{
				Algorithm: ch.Algorithm,
				Challenge: ch.Challenge,
				Salt:      ch.Salt,
				Signature: ch.Signature,
				Number:    n,
				Took:      time.Since(begin).Milliseconds(),
			}, nil
		}
		if n == limit {
			break
		}
	}
	return entity.Solution{}, fmt.Errorf("%w: [%d, %d]", ErrNoSolution, start, limit)
}
