package journal

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// The rendered block layout is a stable contract: the enhance pass
// re-parses documents produced here, so the header and metadata lines
// must stay byte for byte identical across versions.

const (
	startLocationLabel = "**Start Location:** "
	milesTodayLabel    = "**Miles Today:** "
	tripMilesLabel     = "**Trip Miles:** "
	contextLabel       = "Trail Context: "
	factsLabel         = "Trail Facts: "
	separator          = "---"
)

func formatMiles(v *float64) string {
	if v == nil {
		return Unknown
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Render produces the canonical text block for one entry. The block
// always ends with its separator line, including the last block of a
// document.
func (e Entry) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s — %s\n", e.Date.Format(DateLayout), e.Destination)
	b.WriteString(startLocationLabel + e.StartLocation + "\n")
	b.WriteString(milesTodayLabel + formatMiles(e.MilesToday) + "\n")
	b.WriteString(tripMilesLabel + formatMiles(e.TripMiles) + "\n")
	b.WriteString("\n")

	if e.Context != "" {
		b.WriteString(contextLabel + e.Context + "\n\n")
	}

	b.WriteString(e.Body + "\n")

	if e.Facts != "" {
		b.WriteString("\n" + factsLabel + e.Facts + "\n")
	}

	b.WriteString("\n" + separator + "\n")
	return b.String()
}

// Render concatenates every entry's block, in order, with one blank
// line between blocks.
func (j Journal) Render() string {
	blocks := make([]string, len(j.Entries))
	for i, e := range j.Entries {
		blocks[i] = e.Render()
	}
	return strings.Join(blocks, "\n")
}

// ParseDocument is the inverse of Journal.Render. Blocks that cannot
// be parsed are logged and skipped; an input containing no valid
// blocks at all is an error.
func ParseDocument(text string) (Journal, error) {
	var entries []Entry

	for i, block := range splitBlocks(text) {
		entry, err := parseBlock(block)
		if err != nil {
			slog.Warn("skipping unparsable document block", "block", i, "err", err)
			continue
		}
		entries = append(entries, entry)
	}

	if len(entries) == 0 && strings.TrimSpace(text) != "" {
		return Journal{}, fmt.Errorf("no journal entries found in document")
	}
	return Journal{Entries: entries}, nil
}

func splitBlocks(text string) []string {
	var blocks []string
	var current []string

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimRight(line, " \t") == separator {
			blocks = append(blocks, strings.Join(current, "\n"))
			current = nil
			continue
		}
		current = append(current, line)
	}
	if strings.TrimSpace(strings.Join(current, "\n")) != "" {
		blocks = append(blocks, strings.Join(current, "\n"))
	}

	var nonEmpty []string
	for _, b := range blocks {
		if strings.TrimSpace(b) != "" {
			nonEmpty = append(nonEmpty, b)
		}
	}
	return nonEmpty
}

func parseMiles(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

func parseBlock(block string) (Entry, error) {
	lines := strings.Split(block, "\n")

	// skip leading blank lines left over from block joining
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	lines = lines[start:]
	if len(lines) == 0 {
		return Entry{}, fmt.Errorf("empty block")
	}

	header := lines[0]
	if !strings.HasPrefix(header, "# ") {
		return Entry{}, fmt.Errorf("missing header line")
	}
	dateStr, destination, found := strings.Cut(header[2:], " — ")
	if !found {
		return Entry{}, fmt.Errorf("malformed header line: %q", header)
	}
	date, err := ParseDate(dateStr)
	if err != nil {
		return Entry{}, fmt.Errorf("parse header date: %w", err)
	}

	entry := Entry{
		Date:          date,
		Destination:   strings.TrimSpace(destination),
		StartLocation: Unknown,
	}

	rest := lines[1:]
metadata:
	for len(rest) > 0 {
		line := rest[0]
		switch {
		case strings.HasPrefix(line, startLocationLabel):
			entry.StartLocation = strings.TrimSpace(strings.TrimPrefix(line, startLocationLabel))
		case strings.HasPrefix(line, milesTodayLabel):
			entry.MilesToday = parseMiles(strings.TrimPrefix(line, milesTodayLabel))
		case strings.HasPrefix(line, tripMilesLabel):
			entry.TripMiles = parseMiles(strings.TrimPrefix(line, tripMilesLabel))
		default:
			break metadata
		}
		rest = rest[1:]
	}

	paragraphs := splitParagraphs(rest)
	if len(paragraphs) > 0 && strings.HasPrefix(paragraphs[0], contextLabel) {
		entry.Context = strings.TrimPrefix(paragraphs[0], contextLabel)
		paragraphs = paragraphs[1:]
	}
	if n := len(paragraphs); n > 0 && strings.HasPrefix(paragraphs[n-1], factsLabel) {
		entry.Facts = strings.TrimPrefix(paragraphs[n-1], factsLabel)
		paragraphs = paragraphs[:n-1]
	}

	entry.Body = strings.Join(paragraphs, "\n\n")
	if entry.Body == "" {
		return Entry{}, fmt.Errorf("block has no body text")
	}
	return entry, nil
}

func splitParagraphs(lines []string) []string {
	var paragraphs []string
	var current []string

	flush := func() {
		p := strings.TrimSpace(strings.Join(current, "\n"))
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
		current = nil
	}

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return paragraphs
}
