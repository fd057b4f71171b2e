package scanner

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressPercent(t *testing.T) {
	p := NewProgress()
	p.SetTotal(4)

	assert.Equal(t, 0.0, p.Percent())

	p.Advance()
	assert.Equal(t, 25.0, p.Percent())

	p.Advance()
	p.Advance()
	p.Advance()
	assert.Equal(t, 100.0, p.Percent())
	assert.Equal(t, int64(4), p.Completed())
}

func TestProgressZeroTotal(t *testing.T) {
	p := NewProgress()
	assert.Equal(t, 0.0, p.Percent(), "zero targets must not divide by zero")
}

func TestProgressConcurrentAdvance(t *testing.T) {
	const workers = 5
	const targets = 200

	p := NewProgress()
	p.SetTotal(targets)

	work := make(chan struct{}, targets)
	for i := 0; i < targets; i++ {
		work <- struct{}{}
	}
	close(work)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range work {
				p.Advance()
				assert.LessOrEqual(t, p.Completed(), p.Total())
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(targets), p.Completed())
}
