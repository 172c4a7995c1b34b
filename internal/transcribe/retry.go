package transcribe

import (
	"errors"
	"math/rand/v2"
	"time"
)

// IsTransient checks if an error is worth retrying with backoff.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// Backoff returns the delay before retry attempt n (0-indexed): the base
// delay doubling per attempt, capped at 30s, plus random jitter.
func Backoff(attempt int, base time.Duration) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	d := base << uint(attempt)
	if d > 30*time.Second {
		d = 30 * time.Second
	}
	if half := int64(d) / 2; half > 0 {
		d += time.Duration(rand.Int64N(half))
	}
	return d
}
