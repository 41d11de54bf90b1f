package clickup

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func fakeClock(l *limiter) (advance func(time.Duration), slept *[]time.Duration) {
    cur := time.Unix(1_700_000_000, 0)
    var s []time.Duration
    l.now = func() time.Time { return cur }
    l.sleep = func(ctx context.Context, d time.Duration) error {
        s = append(s, d)
        cur = cur.Add(d)
        return nil
    }
    return func(d time.Duration) { cur = cur.Add(d) }, &s
}

func TestLimiter_UnderCapNeverSleeps(t *testing.T) {
    l := newLimiter(5)
    _, slept := fakeClock(l)
    for i := 0; i < 5; i++ {
        require.NoError(t, l.wait(context.Background()))
    }
    assert.Empty(t, *slept)
}

func TestLimiter_OverCapDelaysNeverDrops(t *testing.T) {
    l := newLimiter(3)
    _, slept := fakeClock(l)
    for i := 0; i < 3; i++ {
        require.NoError(t, l.wait(context.Background()))
    }
    // 4th request inside the window must wait out the full window, not fail
    require.NoError(t, l.wait(context.Background()))
    require.Len(t, *slept, 1)
    assert.Equal(t, time.Minute, (*slept)[0])
}

func TestLimiter_WindowSlides(t *testing.T) {
    l := newLimiter(2)
    advance, slept := fakeClock(l)
    require.NoError(t, l.wait(context.Background()))
    advance(30 * time.Second)
    require.NoError(t, l.wait(context.Background()))
    advance(31 * time.Second) // first stamp now out of window
    require.NoError(t, l.wait(context.Background()))
    assert.Empty(t, *slept)
}

func TestLimiter_CancelledContextStopsWaiting(t *testing.T) {
    l := newLimiter(1)
    require.NoError(t, l.wait(context.Background()))
    ctx, cancel := context.WithCancel(context.Background())
    cancel()
    err := l.wait(ctx)
    require.ErrorIs(t, err, context.Canceled)
}
