package components

import (
	"html/template"
	"time"

	"github.com/mergestat/timediff"
)

// FormatRelativeTime formats a time.Time as a relative time string like "3 days ago"
func FormatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return timediff.TimeDiff(t)
}

// FuncMap returns the helpers available to every page template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"relativeTime": FormatRelativeTime,
	}
}
