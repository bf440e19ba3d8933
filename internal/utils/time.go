package utils

import (
	"time"

	"github.com/hako/durafmt"
)

const TimestampLayout = "2006-01-02 15:04 UTC"

// FormatTimestamp renders decision times shown on review messages.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// FormatRemaining renders a wait time for cooldown notices, e.g. "7 seconds".
func FormatRemaining(d time.Duration) string {
	if d < time.Second {
		d = time.Second
	}
	return durafmt.Parse(d.Round(time.Second)).LimitFirstN(2).String()
}
