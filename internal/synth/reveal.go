package synth

import (
	"iter"
	"time"

	"github.com/rivo/uniseg"
)

// DefaultRevealInterval is the cadence at which one unit of text is revealed.
const DefaultRevealInterval = 10 * time.Millisecond

// Reveal produces successively longer prefixes of a target string, one unit per
// call to Next. A unit is one extended grapheme cluster, so a multi-byte character
// or an emoji sequence is never displayed half-written ("\r\n" is one unit).
//
// A Reveal is single-use: once exhausted or cancelled it yields nothing more.
// It does not own a timer; the driver calls Next once per Interval.
type Reveal struct {
	target    string
	ends      []int // byte offset at which each unit ends
	pos       int
	interval  time.Duration
	cancelled bool
}

// NewReveal prepares a reveal of target. An empty target is complete immediately.
func NewReveal(target string, interval time.Duration) *Reveal {
	r := &Reveal{target: target, interval: interval}
	g := uniseg.NewGraphemes(target)
	for g.Next() {
		_, to := g.Positions()
		r.ends = append(r.ends, to)
	}
	return r
}

// Next returns the prefix one unit longer than the previous one. ok is false once
// the target is fully revealed or the reveal was cancelled.
func (r *Reveal) Next() (prefix string, ok bool) {
	if r.cancelled || r.pos >= len(r.ends) {
		return "", false
	}
	r.pos++
	return r.target[:r.ends[r.pos-1]], true
}

// Cancel stops the reveal. It is idempotent.
func (r *Reveal) Cancel() { r.cancelled = true }

// Cancelled reports whether Cancel was called.
func (r *Reveal) Cancelled() bool { return r.cancelled }

// Done reports whether every unit has been produced.
func (r *Reveal) Done() bool { return r.pos >= len(r.ends) }

// Position is the number of units produced so far.
func (r *Reveal) Position() int { return r.pos }

// Len is the number of units in the target.
func (r *Reveal) Len() int { return len(r.ends) }

// Target returns the full text being revealed.
func (r *Reveal) Target() string { return r.target }

// Interval returns the per-unit cadence. Zero or less means as fast as the driver can.
func (r *Reveal) Interval() time.Duration { return r.interval }

// All yields the remaining prefixes without timing. Breaking out of the loop leaves
// the reveal where it stopped.
func (r *Reveal) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			s, ok := r.Next()
			if !ok || !yield(s) {
				return
			}
		}
	}
}
