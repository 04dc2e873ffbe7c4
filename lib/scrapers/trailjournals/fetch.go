package trailjournals

import (
	"context"
	"log/slog"

	"trailbook/lib/journal"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Result is the outcome of extracting one journal: per-page entry
// slices in fetch order plus a count of blocks skipped as malformed.
type Result struct {
	Pages   [][]journal.Entry
	Skipped int
}

func (r Result) EntryCount() int {
	n := 0
	for _, p := range r.Pages {
		n += len(p)
	}
	return n
}

// FetchJournal walks a journal's listing pages in order until a page
// yields no entry blocks. On an HTTP failure the FetchError is
// returned together with the pages fetched so far; the caller decides
// whether partial results are worth keeping.
func (c *Client) FetchJournal(ctx context.Context, journalID int) (Result, error) {
	ctx, span := tracer.Start(ctx, "FetchJournal")
	defer span.End()
	span.SetAttributes(attribute.Int("journal_id", journalID))

	var result Result
	for page := 1; ; page++ {
		markup, err := c.Page(ctx, journalID, page)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return result, err
		}

		entries, skipped, err := ParseEntries(ctx, markup)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return result, err
		}
		result.Skipped += skipped

		if len(entries) == 0 {
			// no more pages
			break
		}
		result.Pages = append(result.Pages, entries)

		slog.InfoContext(
			ctx, "fetched entries page",
			"journal_id", journalID,
			"page", page,
			"entries", len(entries),
			"skipped", skipped,
		)
	}

	span.SetAttributes(
		attribute.Int("pages", len(result.Pages)),
		attribute.Int("entries", result.EntryCount()),
		attribute.Int("skipped", result.Skipped),
	)
	return result, nil
}
