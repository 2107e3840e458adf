package arbor

import (
	"time"

	"github.com/cockroachdb/errors"
)

// RepaintScheduler is the explicit dirty set of blocks awaiting a fit update.
// Blocks schedule themselves through MarkDirtyFit; Flush runs the updates.
// Not safe for concurrent use.
type RepaintScheduler struct {
	dirty   []*FittedBlock
	queued  map[*FittedBlock]struct{}
	metrics *FitMetrics
}

var _ FitScheduler = (*RepaintScheduler)(nil)

// NewRepaintScheduler creates an empty scheduler. m may be nil.
func NewRepaintScheduler(m *FitMetrics) *RepaintScheduler {
	return &RepaintScheduler{
		queued:  make(map[*FittedBlock]struct{}),
		metrics: m,
	}
}

// ScheduleFit queues b for the next Flush. Queuing twice is a no-op.
func (s *RepaintScheduler) ScheduleFit(b *FittedBlock) {
	if _, ok := s.queued[b]; ok {
		return
	}
	s.queued[b] = struct{}{}
	s.dirty = append(s.dirty, b)
}

// CancelFit removes b from the queue.
func (s *RepaintScheduler) CancelFit(b *FittedBlock) {
	if _, ok := s.queued[b]; !ok {
		return
	}
	delete(s.queued, b)
	for i, x := range s.dirty {
		if x == b {
			s.dirty = append(s.dirty[:i], s.dirty[i+1:]...)
			break
		}
	}
}

// Pending returns the number of queued blocks.
func (s *RepaintScheduler) Pending() int {
	return len(s.dirty)
}

// Flush updates the fit of every queued block. Blocks scheduled while
// flushing wait for the next Flush. Errors from individual blocks do not stop
// the others; they are combined into the returned error.
func (s *RepaintScheduler) Flush() error {
	_, err := s.flush()
	return err
}

func (s *RepaintScheduler) flush() (passStats, error) {
	var stats passStats
	if len(s.dirty) == 0 {
		return stats, nil
	}
	start := time.Now()

	batch := s.dirty
	s.dirty = nil
	clear(s.queued)

	var err error
	for _, b := range batch {
		if b.disposed {
			continue
		}
		if uerr := b.UpdateFit(); uerr != nil {
			err = errors.CombineErrors(err, errors.Wrapf(uerr, "updating fit of block %d", b.id))
		}
		r := b.lastResult
		if !r.updated {
			continue
		}
		stats.blocks++
		if r.full {
			stats.fullResizes++
		}
		if r.fitted {
			stats.fitResizes++
		}
		if r.skipped {
			stats.skipped++
		}
		if r.fallback {
			stats.fallbacks++
		}
	}

	stats.updateTime = time.Since(start)
	if s.metrics != nil {
		s.metrics.PassDuration.Observe(stats.updateTime.Seconds())
	}
	return stats, err
}
