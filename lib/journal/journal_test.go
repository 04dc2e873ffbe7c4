package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func miles(v float64) *float64 {
	return &v
}

func TestAssembleSortsByDate(t *testing.T) {
	pages := [][]Entry{
		{
			{Date: date(2010, time.February, 8), Destination: "Hawk Mountain", Body: "b"},
			{Date: date(2010, time.February, 7), Destination: "Springer Mountain", Body: "a"},
		},
		{
			{Date: date(2010, time.February, 9), Destination: "Neel Gap", Body: "c"},
		},
	}

	j := Assemble(pages)
	require.Len(t, j.Entries, 3)
	require.Equal(t, "Springer Mountain", j.Entries[0].Destination)
	require.Equal(t, "Hawk Mountain", j.Entries[1].Destination)
	require.Equal(t, "Neel Gap", j.Entries[2].Destination)
}

func TestAssembleStableTies(t *testing.T) {
	// same date twice: the page encounter order must survive the sort
	pages := [][]Entry{
		{
			{Date: date(2010, time.February, 7), Destination: "first", Body: "a"},
			{Date: date(2010, time.February, 7), Destination: "second", Body: "b"},
		},
		{
			{Date: date(2010, time.February, 7), Destination: "third", Body: "c"},
		},
	}

	j := Assemble(pages)
	require.Equal(t, "first", j.Entries[0].Destination)
	require.Equal(t, "second", j.Entries[1].Destination)
	require.Equal(t, "third", j.Entries[2].Destination)
}

func TestAssembleCountsAllPages(t *testing.T) {
	pages := [][]Entry{
		make([]Entry, 3),
		make([]Entry, 2),
		make([]Entry, 4),
	}
	j := Assemble(pages)
	require.Len(t, j.Entries, 9)
}

func TestEntryIDStable(t *testing.T) {
	a := Entry{
		Date:          date(2010, time.February, 7),
		Destination:   "Springer Mountain",
		StartLocation: "Amicalola Falls",
		Body:          "one body",
	}
	b := a
	b.Body = "a different body"

	// identity covers date and locations, not body text
	require.Equal(t, a.ID(), b.ID())
	require.Len(t, a.ID(), 12)

	c := a
	c.Destination = "Hawk Mountain"
	require.NotEqual(t, a.ID(), c.ID())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("Sunday, February 7, 2010")
	require.NoError(t, err)
	require.Equal(t, date(2010, time.February, 7), d)

	_, err = ParseDate("sometime this winter")
	require.Error(t, err)
}
