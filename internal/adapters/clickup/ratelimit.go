package clickup

import (
    "context"
    "sync"
    "time"
)

// limiter enforces the documented free-tier cap (100 requests per rolling
// minute) on the client side. A request that would exceed the cap blocks
// until the oldest request falls out of the window; nothing is dropped.
type limiter struct {
    mu     sync.Mutex
    cap    int
    window time.Duration
    stamps []time.Time

    // injectable for tests
    now   func() time.Time
    sleep func(ctx context.Context, d time.Duration) error
}

func newLimiter(capacity int) *limiter {
    if capacity <= 0 { capacity = 100 }
    return &limiter{cap: capacity, window: time.Minute, now: time.Now, sleep: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return ctx.Err()
    case <-t.C:
        return nil
    }
}

func (l *limiter) wait(ctx context.Context) error {
    for {
        l.mu.Lock()
        now := l.now()
        cut := now.Add(-l.window)
        keep := l.stamps[:0]
        for _, s := range l.stamps {
            if s.After(cut) { keep = append(keep, s) }
        }
        l.stamps = keep
        if len(l.stamps) < l.cap {
            l.stamps = append(l.stamps, now)
            l.mu.Unlock()
            return nil
        }
        d := l.stamps[0].Add(l.window).Sub(now)
        l.mu.Unlock()
        if err := l.sleep(ctx, d); err != nil { return err }
    }
}
