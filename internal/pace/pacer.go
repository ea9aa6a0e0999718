// Package pace provides randomized inter-request delays for crawls.
package pace

import (
	"math/rand"
	"time"
)

// Pacer inserts a randomized delay between consecutive requests to the same
// platform. Crawls are sequential by design; the pacer is the only rate
// limiting toward third-party platforms.
type Pacer struct {
	Min time.Duration
	Max time.Duration

	sleep func(time.Duration)
	rng   *rand.Rand
}

// NewPacer creates a pacer with the given delay bounds.
func NewPacer(min, max time.Duration) *Pacer {
	if max < min {
		max = min
	}
	return &Pacer{
		Min:   min,
		Max:   max,
		sleep: time.Sleep,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetSleep replaces the sleeper. Tests inject a recorder.
func (p *Pacer) SetSleep(fn func(time.Duration)) { p.sleep = fn }

// Wait sleeps for a random duration within the configured bounds.
func (p *Pacer) Wait() {
	p.sleep(p.Next())
}

// Next returns the delay the following Wait would sleep.
func (p *Pacer) Next() time.Duration {
	if p.Max <= p.Min {
		return p.Min
	}
	return p.Min + time.Duration(p.rng.Int63n(int64(p.Max-p.Min)))
}
