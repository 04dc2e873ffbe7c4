package trailjournals

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"trailbook/lib/htmlutil"
	"trailbook/lib/journal"
	"trailbook/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// field label variants seen across journals on the site
var (
	destinationLabels = []string{"destination"}
	startLabels       = []string{"startlocation"}
	milesTodayLabels  = []string{"today", "milestoday"}
	tripMilesLabels   = []string{"tripmiles"}
)

// ParseEntries extracts every entry block from one listing page's
// markup. A malformed block is logged and skipped, never failing the
// page; the skipped count is reported so callers can account for it.
func ParseEntries(ctx context.Context, markup string) ([]journal.Entry, int, error) {
	ctx, span := tracer.Start(ctx, "ParseEntries")
	defer span.End()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("parse page markup: %w", err)
	}

	var entries []journal.Entry
	skipped := 0

	doc.Find("div.entry").Each(func(i int, block *goquery.Selection) {
		entry, err := parseEntryBlock(block)
		if err != nil {
			skipped++
			slog.WarnContext(ctx, "skipping malformed entry block", "block", i, "err", err)
			span.AddEvent("skipped block", trace.WithAttributes(
				attribute.Int("block", i),
				attribute.String("err", err.Error()),
			))
			return
		}
		entries = append(entries, entry)
	})

	span.SetAttributes(
		attribute.Int("entries", len(entries)),
		attribute.Int("skipped", skipped),
	)
	return entries, skipped, nil
}

// parseEntryBlock pulls the structured fields out of one entry block.
// Fields are extracted independently: a missing destination or
// mileage degrades to its sentinel, while a missing date or body
// makes the whole block unusable.
func parseEntryBlock(block *goquery.Selection) (journal.Entry, error) {
	dateText := htmlutil.CollapseText(block.Find("div.entry-date").First().Text())
	date, err := journal.ParseDate(dateText)
	if err != nil {
		return journal.Entry{}, fmt.Errorf("parse entry date %q: %w", dateText, err)
	}

	destination := labeledValue(block, destinationLabels)
	if destination == "" {
		// older journals put the destination in the block heading
		destination = htmlutil.CollapseText(block.Find("h2.entry-title").First().Text())
	}
	if destination == "" {
		destination = journal.Unknown
	}

	start := labeledValue(block, startLabels)
	if start == "" {
		start = journal.Unknown
	}

	body := htmlutil.BlockText(block.Find("div.entry-body"))
	if body == "" {
		return journal.Entry{}, fmt.Errorf("entry block has no body text")
	}

	return journal.Entry{
		Date:          date,
		Destination:   destination,
		StartLocation: start,
		MilesToday:    labeledMiles(block, milesTodayLabels),
		TripMiles:     labeledMiles(block, tripMilesLabels),
		Body:          body,
	}, nil
}

// labeledValue finds a `<span>Label:</span><span>value</span>` pair
// whose label matches and returns the value text.
func labeledValue(block *goquery.Selection, matchers []string) string {
	value := ""
	block.Find("span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !textutil.MatchLabel(s.Text(), matchers) {
			return true
		}
		next := s.Next()
		if next.Length() == 0 {
			return true
		}
		value = htmlutil.CollapseText(next.Text())
		return false
	})
	return value
}

func labeledMiles(block *goquery.Selection, matchers []string) *float64 {
	raw := labeledValue(block, matchers)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}
