package trailjournals

import (
	"context"
	"testing"
	"time"

	_ "embed"

	"trailbook/lib/journal"

	"github.com/stretchr/testify/require"
)

//go:embed entries_page_test.html
var entriesPageTest string

func TestParseEntries(t *testing.T) {
	entries, skipped, err := ParseEntries(context.Background(), entriesPageTest)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, 1, skipped)

	first := entries[0]
	require.Equal(t, time.Date(2010, time.January, 21, 0, 0, 0, 0, time.UTC), first.Date)
	require.Equal(t, "Springer Mountain", first.Destination)
	require.Equal(t, "Amicalola Falls", first.StartLocation)
	require.NotNil(t, first.MilesToday)
	require.Equal(t, 8.8, *first.MilesToday)
	require.NotNil(t, first.TripMiles)
	require.Equal(t, 8.8, *first.TripMiles)
	require.Equal(t,
		"This was a great day on the trail. We started at the falls and climbed forever.\n\nThe approach trail is no joke.",
		first.Body,
	)

	second := entries[1]
	require.Equal(t, time.Date(2010, time.January, 22, 0, 0, 0, 0, time.UTC), second.Date)
	require.Equal(t, "Hawk Mountain", second.Destination)
	require.Equal(t, "Springer Mountain", second.StartLocation)
	require.Nil(t, second.MilesToday)
	require.Nil(t, second.TripMiles)
	require.Equal(t, "Another beautiful day...", second.Body)
}

func TestParseEntriesMissingFieldsRenderUnknown(t *testing.T) {
	entries, _, err := ParseEntries(context.Background(), entriesPageTest)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	rendered := entries[1].Render()
	require.Contains(t, rendered, "**Miles Today:** "+journal.Unknown)
	require.Contains(t, rendered, "**Trip Miles:** "+journal.Unknown)
}

func TestParseEntriesEmptyPage(t *testing.T) {
	entries, skipped, err := ParseEntries(context.Background(), "<html><body><p>No entries.</p></body></html>")
	require.NoError(t, err)
	require.Empty(t, entries)
	require.Zero(t, skipped)
}
