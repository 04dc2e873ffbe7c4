package trailjournals

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const emptyPageTest = "<html><body><p>No more entries.</p></body></html>"

const singleEntryPageTest = `<html><body>
<div class="entry">
  <div class="entry-date">Sunday, February 7, 2010</div>
  <div class="entry-meta">
    <span>Destination:</span> <span>Neel Gap</span>
    <span>Start Location:</span> <span>Hawk Mountain</span>
  </div>
  <div class="entry-body"><p>Cold morning, warm climb.</p></div>
</div>
</body></html>`

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOptions{
		BaseUrl:  server.URL,
		MinDelay: time.Millisecond,
	})
	require.NoError(t, err)
	return client, server
}

func TestFetchJournalPaginates(t *testing.T) {
	var requested []string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, r.URL.RequestURI())
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, entriesPageTest)
		case "2":
			fmt.Fprint(w, singleEntryPageTest)
		default:
			fmt.Fprint(w, emptyPageTest)
		}
	}))

	result, err := client.FetchJournal(context.Background(), 4182)
	require.NoError(t, err)

	require.Len(t, result.Pages, 2)
	require.Equal(t, 3, result.EntryCount())
	require.Equal(t, 1, result.Skipped)
	require.Equal(t, []string{
		"/journal/entries/4182?page=1",
		"/journal/entries/4182?page=2",
		"/journal/entries/4182?page=3",
	}, requested)
}

func TestFetchJournalHttpFailure(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, singleEntryPageTest)
			return
		}
		http.NotFound(w, r)
	}))

	result, err := client.FetchJournal(context.Background(), 4182)
	require.Error(t, err)

	var fetchErr FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, 2, fetchErr.Page)

	// pages fetched before the failure are not silently dropped
	require.Len(t, result.Pages, 1)
	require.Equal(t, 1, result.EntryCount())
}

func TestFetchJournalMinDelay(t *testing.T) {
	var times []time.Time
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		times = append(times, time.Now())
		fmt.Fprint(w, emptyPageTest)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOptions{
		BaseUrl:  server.URL,
		MinDelay: 50 * time.Millisecond,
	})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = client.Page(ctx, 1, 1)
	require.NoError(t, err)
	_, err = client.Page(ctx, 1, 2)
	require.NoError(t, err)

	require.Len(t, times, 2)
	require.GreaterOrEqual(t, times[1].Sub(times[0]), 50*time.Millisecond)
}
