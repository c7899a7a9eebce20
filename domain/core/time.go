package core

import (
	"time"
)

// Timestamp marks when a comparison run or bench started. Stored as Unix
// nanoseconds, shown in UTC.
type Timestamp time.Time

func NewTimestamp(t time.Time) Timestamp { return Timestamp(t) }

func Now() Timestamp { return Timestamp(time.Now()) }

// FromUnixNano restores a timestamp written by UnixNano.
func FromUnixNano(ns int64) Timestamp {
	return Timestamp(time.Unix(0, ns))
}

func (t Timestamp) Time() time.Time { return time.Time(t) }

func (t Timestamp) UnixNano() int64 { return time.Time(t).UnixNano() }

func (t Timestamp) IsZero() bool { return time.Time(t).IsZero() }

// Since is the wall time elapsed from t.
func (t Timestamp) Since() time.Duration {
	return time.Since(time.Time(t))
}

// Display formats t for listings, to the second.
func (t Timestamp) Display() string {
	return time.Time(t).UTC().Format(time.DateTime)
}

func (t Timestamp) String() string {
	return time.Time(t).UTC().Format(time.RFC3339)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return time.Time(t).MarshalJSON()
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	return (*time.Time)(t).UnmarshalJSON(data)
}
