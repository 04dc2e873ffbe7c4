package enhance

import (
	"fmt"
	"strconv"
	"strings"

	"trailbook/lib/journal"
)

const systemPrompt = "You are a helpful assistant that provides factual information about the Appalachian Trail."

const maxCompletionTokens = 150

func milesOrUnknown(v *float64) string {
	if v == nil {
		return journal.Unknown
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func contextPrompt(e journal.Entry) string {
	var b strings.Builder

	fmt.Fprintf(&b,
		"Given the following hiking information, provide a brief paragraph (2-3 sentences) describing what this section of the Appalachian Trail might have been like on %s:\n\n",
		e.Date.Format(journal.DateLayout),
	)
	fmt.Fprintf(&b, "Start Location: %s\n", e.StartLocation)
	fmt.Fprintf(&b, "Destination: %s\n", e.Destination)
	fmt.Fprintf(&b, "Miles Hiked: %s\n", milesOrUnknown(e.MilesToday))
	fmt.Fprintf(&b, "Total Trip Miles: %s\n\n", milesOrUnknown(e.TripMiles))

	b.WriteString(`Focus on:
1. Typical terrain and features of this section
2. What the weather and conditions might have been like at this time of year
3. Any notable landmarks or challenges in this section

Keep the response concise and factual.`)

	return b.String()
}

func factsPrompt(e journal.Entry) string {
	var b strings.Builder

	b.WriteString("Given the following hiking information, provide a brief paragraph (2-3 sentences) of notable facts about this section of the Appalachian Trail:\n\n")
	fmt.Fprintf(&b, "Start Location: %s\n", e.StartLocation)
	fmt.Fprintf(&b, "Destination: %s\n", e.Destination)
	fmt.Fprintf(&b, "Miles Hiked: %s\n\n", milesOrUnknown(e.MilesToday))

	b.WriteString(`Focus on:
1. History of the trail towns, shelters and landmarks along this section
2. Elevation changes and trail records associated with it
3. Flora, fauna or geology the section is known for

Keep the response concise and factual. Do not speculate about the hiker's experience.`)

	return b.String()
}

func promptFor(mode Mode, e journal.Entry) string {
	if mode == ModeFacts {
		return factsPrompt(e)
	}
	return contextPrompt(e)
}
