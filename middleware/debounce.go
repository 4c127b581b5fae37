package middleware

import (
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/go-signalrt/entity"
	"github.com/joeycumines/go-signalrt/sig"
)

// Debounce wraps a go-catrate Limiter keyed by signal id (and
// optionally src_id) to rate-limit how often a given signal is allowed
// to pass through the pipeline.
type Debounce struct {
	limiter  *catrate.Limiter
	perSrc   bool
	filtered uint64
}

// debounceKey is the catrate category when per-source debouncing is
// enabled.
type debounceKey struct {
	signalID sig.ID
	srcID    uint16
}

// NewDebounce constructs a Debounce middleware rate-limited per the
// given rates map, the same shape catrate.NewLimiter expects (e.g.
// {time.Second: 1} admits at most one occurrence of a given signal id
// per second). perSource additionally partitions the rate limit by
// the signal's src_id.
func NewDebounce(rates map[time.Duration]int, perSource bool) *Debounce {
	return &Debounce{limiter: catrate.NewLimiter(rates), perSrc: perSource}
}

// Middleware returns the entity.MiddlewareFunc to register. A signal
// currently rate-limited is returned as Filtered; otherwise Continue.
func (d *Debounce) Middleware() entity.MiddlewareFunc {
	return func(e *entity.Entity, s *sig.Signal, ctx any) entity.Verdict {
		var category any = s.ID
		if d.perSrc {
			category = debounceKey{signalID: s.ID, srcID: s.SrcID}
		}
		if _, ok := d.limiter.Allow(category); !ok {
			d.filtered++
			return entity.Filtered
		}
		return entity.Continue
	}
}

// Filtered returns the count of signals denied by the rate limit.
func (d *Debounce) Filtered() uint64 { return d.filtered }
