package session

import (
	"context"
	"time"
)

// Run drives d with a ticker until ctx is done or the driver stops itself.
// A stop caused by the session ending returns nil.
func Run(ctx context.Context, d *Driver, period time.Duration) error {
	if period <= 0 {
		period = d.Interval()
	}

	generation := d.Start()
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if d.Generation() == generation {
				d.Stop()
			}
			return ctx.Err()
		case now := <-ticker.C:
			if _, again := d.Tick(now, generation); !again {
				return nil
			}
		}
	}
}

// RunFrames drives d until n frames are painted, using a synthetic clock
// advancing by the frame interval. It returns the number of frames painted.
func RunFrames(ctx context.Context, d *Driver, n int, start time.Time) (int, error) {
	generation := d.Start()
	now := start
	painted := 0

	for painted < n {
		if err := ctx.Err(); err != nil {
			return painted, err
		}
		ok, again := d.Tick(now, generation)
		if ok {
			painted++
		}
		if !again {
			return painted, ErrNoSession
		}
		now = now.Add(d.Interval())
	}
	return painted, nil
}
