// internal/models/version.go
package models

import (
	"time"
)

// .NET tick epoch offset and resolution.
const (
	ticksToUnixEpoch = int64(621355968000000000)
	ticksPerSecond   = int64(10000000)
)

// maxUnixSeconds mirrors the 9999-12-31 guard of the source data format.
const maxUnixSeconds = int64(253402300799)

// TicksToTime converts a .NET tick counter to a Time. The zero Time and
// false are returned for missing or out-of-range values.
func TicksToTime(ticks int64) (time.Time, bool) {
	if ticks <= 0 {
		return time.Time{}, false
	}
	unixSeconds := (ticks - ticksToUnixEpoch) / ticksPerSecond
	if unixSeconds < 0 || unixSeconds > maxUnixSeconds {
		return time.Time{}, false
	}
	rem := (ticks - ticksToUnixEpoch) % ticksPerSecond
	return time.Unix(unixSeconds, rem*100).UTC(), true
}

// TimeToTicks converts a Time to .NET ticks. Useful for building fixtures.
func TimeToTicks(t time.Time) int64 {
	return t.Unix()*ticksPerSecond + ticksToUnixEpoch + int64(t.Nanosecond())/100
}

// UpdatedAt returns the intent's last-update time derived from version
// metadata, or false when no usable version is present.
func (i *Intent) UpdatedAt() (time.Time, bool) {
	return TicksToTime(i.Version)
}

// ExpiryTime parses the expire_at field, which the source emits in several
// shapes: RFC3339, plain date, or a unix timestamp. Unparseable values are
// treated as no expiry.
func (i *Intent) ExpiryTime() (time.Time, bool) {
	switch v := i.ExpireAt.(type) {
	case string:
		if v == "" {
			return time.Time{}, false
		}
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t, true
		}
		if t, err := time.Parse("2006-01-02", v); err == nil {
			return t, true
		}
		return time.Time{}, false
	case float64:
		if v <= 0 {
			return time.Time{}, false
		}
		return time.Unix(int64(v), 0).UTC(), true
	case int64:
		if v <= 0 {
			return time.Time{}, false
		}
		return time.Unix(v, 0).UTC(), true
	default:
		return time.Time{}, false
	}
}

// ExpiredAt reports whether the intent's expiry has passed relative to ref.
func (i *Intent) ExpiredAt(ref time.Time) bool {
	exp, ok := i.ExpiryTime()
	if !ok {
		return false
	}
	return exp.Before(ref)
}
