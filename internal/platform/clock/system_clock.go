package clock

import "time"

// SystemClock reports wall-clock time in UTC, truncated to the millisecond so
// trace timestamps and session rows compare equal after a storage round trip.
type SystemClock struct{}

func NewSystemClock() SystemClock { return SystemClock{} }

func (SystemClock) Now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }
