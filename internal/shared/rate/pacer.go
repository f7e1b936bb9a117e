package rate

import (
	"context"
	"go.uber.org/ratelimit"
)

// Pacer hands out at most limit tokens per second to any number of goroutines.
// A non-positive limit disables pacing.
type Pacer struct {
	ch    chan struct{}
	l     ratelimit.Limiter
	limit int
}

func NewPacer(ctx context.Context, limit int) *Pacer {
	if limit <= 0 {
		return &Pacer{}
	}

	brst := max(limit/10, 1)
	pacer := &Pacer{
		limit: limit,
		ch:    make(chan struct{}, brst),
		l:     ratelimit.New(limit),
	}
	go pacer.provider(ctx)
	return pacer
}

func (p *Pacer) provider(ctx context.Context) {
	defer close(p.ch)
	for {
		p.l.Take()
		select {
		case <-ctx.Done():
			return
		case p.ch <- struct{}{}:
		}
	}
}

// Take blocks until a token is available. It returns false once ctx is done.
func (p *Pacer) Take(ctx context.Context) bool {
	if p.ch == nil {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case _, ok := <-p.ch:
		return ok
	}
}

func (p *Pacer) Limit() int {
	return p.limit
}
