package scanner

import (
	"sync/atomic"
	"time"
)

// Progress tracks target completion for the live display. One unit is
// one fully-processed target, counted whether the target produced
// findings, produced nothing, or failed outright.
type Progress struct {
	total     int64
	completed int64
	StartTime time.Time
}

func NewProgress() *Progress {
	return &Progress{StartTime: time.Now()}
}

// SetTotal is called once before dispatch begins.
func (p *Progress) SetTotal(n int64) {
	atomic.StoreInt64(&p.total, n)
}

// Advance marks one target completed.
func (p *Progress) Advance() {
	atomic.AddInt64(&p.completed, 1)
}

func (p *Progress) Completed() int64 {
	return atomic.LoadInt64(&p.completed)
}

func (p *Progress) Total() int64 {
	return atomic.LoadInt64(&p.total)
}

// Percent returns completion as 0-100. A run with zero targets reads
// as 0, not a division error.
func (p *Progress) Percent() float64 {
	total := p.Total()
	if total == 0 {
		return 0
	}
	return float64(p.Completed()) / float64(total) * 100
}
