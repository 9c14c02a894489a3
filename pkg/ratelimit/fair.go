package ratelimit

import (
	"context"
)

// FIFO admission, used when the Gate was built with WithFIFO.
//
// Blocking waiters form a queue of wake channels. Only the head of the
// queue runs the sleep/re-check loop; everyone behind it parks on its
// channel until promoted. The head stays in the queue until it either
// admits or abandons, at which point it promotes the next waiter by
// closing that waiter's channel.
func (g *Gate) waitFIFO(ctx context.Context) error {
	ready := make(chan struct{})

	g.mu.Lock()
	now := g.now()
	g.window.prune(now)
	// Fast path: nobody queued and a slot is free.
	if len(g.queue) == 0 && g.window.len() < g.maxCalls {
		g.window.record(now)
		g.mu.Unlock()
		return nil
	}
	g.queue = append(g.queue, ready)
	atHead := len(g.queue) == 1
	g.mu.Unlock()

	g.waiting.Add(1)
	defer g.waiting.Add(-1)

	if !atHead {
		select {
		case <-ctx.Done():
			g.abandon(ready)
			return ctx.Err()
		case <-ready:
		}
	}

	// Head of the queue: sole admission attempt. TryAcquire callers can
	// still take a freed slot first, in which case the head re-sleeps.
	for {
		g.mu.Lock()
		now := g.now()
		g.window.prune(now)
		if g.window.len() < g.maxCalls {
			g.window.record(now)
			g.promoteLocked()
			g.mu.Unlock()
			return nil
		}
		wake := g.window.nextAvailableAt()
		g.mu.Unlock()

		if err := g.sleepUntil(ctx, wake); err != nil {
			g.abandon(ready)
			return err
		}
	}
}

// promoteLocked removes the head waiter and wakes the next one.
// Caller must hold g.mu.
func (g *Gate) promoteLocked() {
	g.queue = g.queue[1:]
	if len(g.queue) > 0 {
		close(g.queue[0])
	}
}

// abandon removes a cancelled waiter from the queue. If the waiter had
// already been promoted to head, the next waiter is promoted so the queue
// cannot stall.
func (g *Gate) abandon(ready chan struct{}) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i, ch := range g.queue {
		if ch != ready {
			continue
		}
		if i == 0 {
			g.promoteLocked()
		} else {
			g.queue = append(g.queue[:i], g.queue[i+1:]...)
		}
		return
	}
}
