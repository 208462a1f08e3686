// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package fetch

import (
	"math/rand"
	"time"
)

// backoffPolicy is the retry schedule shared by every fetcher: base 1s,
// factor 2, max 5 attempts, jitter +/-20%. No example repo in the corpus
// carries a dedicated exponential-backoff library as a direct dependency,
// so this one corner of internal/fetch is a small hand-written helper
// rather than a wired third-party package — see DESIGN.md.
type backoffPolicy struct {
	Base       time.Duration
	Factor     float64
	MaxAttempts int
	Jitter     float64
}

func defaultBackoff() backoffPolicy {
	return backoffPolicy{Base: time.Second, Factor: 2, MaxAttempts: 5, Jitter: 0.2}
}

// delay returns the sleep duration before attempt n (1-indexed): Base
// before attempt 2, multiplied by Factor for each later attempt.
func (p backoffPolicy) delay(attempt int) time.Duration {
	d := float64(p.Base)
	for i := 2; i < attempt; i++ {
		d *= p.Factor
	}
	jitter := 1 + (rand.Float64()*2-1)*p.Jitter //nolint:gosec // timing jitter, not security-sensitive
	return time.Duration(d * jitter)
}
