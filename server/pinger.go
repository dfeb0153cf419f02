package server

import (
	"context"
	"time"
)

// Pinger calls ping on a regular interval until ctx is done or ping fails.
type Pinger struct {
	ticker  *time.Ticker
	ping    func(ctx context.Context) error
	onError func(err error)
	done    chan struct{}
}

// NewPinger creates a new instance of Pinger and starts a ticker whose
// duration is set to dur. The ping callback is called on every interval and
// is expected to block until the peer answered. The first ping error is
// passed to onError and stops the pinger.
func NewPinger(
	ctx context.Context,
	dur time.Duration,
	ping func(ctx context.Context) error,
	onError func(err error),
) *Pinger {
	p := &Pinger{
		ticker:  time.NewTicker(dur),
		ping:    ping,
		onError: onError,
		done:    make(chan struct{}),
	}

	go p.run(ctx)

	return p
}

// run is the main event loop.
func (p *Pinger) run(ctx context.Context) {
	defer close(p.done)
	defer p.ticker.Stop()

	for {
		select {
		case <-p.ticker.C:
			if err := p.ping(ctx); err != nil {
				if ctx.Err() == nil {
					p.onError(err)
				}

				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// Done is closed after the event loop has exited.
func (p *Pinger) Done() <-chan struct{} {
	return p.done
}
