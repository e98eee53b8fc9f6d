package clock

import "time"

// Clock provides time to the resolver, sessions and trace entries.
// Tests substitute a manual clock so attempt timings are deterministic.
type Clock interface {
	Now() time.Time
}

// Since is time.Since against c.
func Since(c Clock, t time.Time) time.Duration {
	return c.Now().Sub(t)
}
