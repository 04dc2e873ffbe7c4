package journal

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Unknown is the sentinel rendered for fields the source markup was
// missing or that failed to parse. Resolved at parse time, never at
// render time.
const Unknown = "unknown"

// DateLayout is the textual date format used by the site and by the
// rendered document header.
const DateLayout = "Monday, January 2, 2006"

// ParseDate normalizes the site's textual date format to a calendar
// date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// Entry is one dated journal post with metadata and body text.
// Date and Body are always present after parsing; nil mileage fields
// render as the Unknown sentinel.
type Entry struct {
	Date          time.Time
	Destination   string
	StartLocation string
	MilesToday    *float64
	TripMiles     *float64
	Body          string

	// AI-generated supplements, empty until an enhancement pass
	// fills them in.
	Context string
	Facts   string
}

// ID returns the stable identity of an entry, used as the enhancement
// cache key. It covers the fields that distinguish one day's hike from
// another, so re-extracting the same journal yields the same ids.
func (e Entry) ID() string {
	sum := sha256.Sum256([]byte(fmt.Sprintf(
		"%s|%s|%s",
		e.Date.Format("2006-01-02"),
		e.StartLocation,
		e.Destination,
	)))
	return hex.EncodeToString(sum[:])[:12]
}

// Journal is an ordered sequence of entries, ascending by date.
// Immutable once assembled.
type Journal struct {
	Entries []Entry
}

// Assemble flattens per-page entry slices in fetch order and sorts by
// date ascending. The sort is stable so entries sharing a date keep
// their page encounter order.
func Assemble(pages [][]Entry) Journal {
	var entries []Entry
	for _, page := range pages {
		entries = append(entries, page...)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
	return Journal{Entries: entries}
}
