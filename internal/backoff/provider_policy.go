package backoff

import (
	"math"
	"math/rand"
	"time"
)

// ProviderDelay computes the delay that follows failed attempt n
// (1-indexed) of an LLM provider POST: 2^(n-1) seconds plus a uniform integer jitter in
// [0,2] seconds. This is a fixed contract (§4.2, §8 scenario 5), not a
// tunable BackoffPolicy — the jitter is additive and bounded regardless
// of the base delay, unlike ComputeBackoff's multiplicative jitter.
func ProviderDelay(attempt int) time.Duration {
	return ProviderDelayWithJitter(attempt, rand.Intn(3)) // #nosec G404 -- jitter does not require cryptographic randomness
}

// ProviderDelayWithJitter is ProviderDelay with an explicit jitter
// value in whole seconds, for deterministic tests.
func ProviderDelayWithJitter(attempt int, jitterSeconds int) time.Duration {
	base := math.Pow(2, float64(attempt-1))
	return time.Duration(base*float64(time.Second)) + time.Duration(jitterSeconds)*time.Second
}
