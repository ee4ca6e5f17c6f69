package quiz

import (
	"sync"
	"time"
)

// CountdownHooks are the callbacks a countdown drives. The transport layer
// supplies what each one renders; the countdown only decides when.
type CountdownHooks struct {
	// OnTick fires once per tick with the remaining duration, skipped on
	// the tick that triggers an early exit or expiry.
	OnTick func(remaining time.Duration)
	// ShouldStop is checked every tick; when it returns true the loop
	// exits immediately and OnEarlyExit fires instead of OnExpire.
	ShouldStop func() bool
	// OnEarlyExit fires at most once, when ShouldStop cut the countdown short.
	OnEarlyExit func()
	// OnExpire fires exactly once on natural expiry. Cancellation prevents it.
	OnExpire func()
}

// Countdown runs a fixed-interval tick loop in its own goroutine. It is
// cancellable at any tick boundary; cancelling after expiry or a second time
// is a no-op.
type Countdown struct {
	cancel chan struct{}
	once   sync.Once
	done   chan struct{}
}

// StartCountdown launches a countdown over total duration, ticking every
// tick interval.
func StartCountdown(total, tick time.Duration, hooks CountdownHooks) *Countdown {
	c := &Countdown{
		cancel: make(chan struct{}),
		done:   make(chan struct{}),
	}
	go c.run(total, tick, hooks)
	return c
}

// Cancel stops the countdown and guarantees OnExpire will not fire.
// Idempotent and safe from any goroutine.
func (c *Countdown) Cancel() {
	c.once.Do(func() {
		close(c.cancel)
	})
}

// Done is closed when the countdown goroutine has fully exited, whatever
// the reason. Useful for joining in tests and teardown.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}

func (c *Countdown) run(total, tick time.Duration, hooks CountdownHooks) {
	defer close(c.done)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	remaining := total
	for remaining > 0 {
		select {
		case <-c.cancel:
			return
		case <-ticker.C:
			remaining -= tick
			if hooks.ShouldStop != nil && hooks.ShouldStop() {
				if hooks.OnEarlyExit != nil {
					hooks.OnEarlyExit()
				}
				return
			}
			if remaining > 0 && hooks.OnTick != nil {
				hooks.OnTick(remaining)
			}
		}
	}

	// A cancel that raced the last tick still wins.
	select {
	case <-c.cancel:
		return
	default:
	}

	if hooks.OnExpire != nil {
		hooks.OnExpire()
	}
}
