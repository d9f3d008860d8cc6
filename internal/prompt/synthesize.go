// Package prompt derives an adjusted agent prompt from test-call feedback.
package prompt

import (
	"strings"

	"campaign-platform/internal/campaign"
)

const adjustmentsHeading = "Adjustments based on test call feedback:"

// Synthesize appends reviewer notes to the original prompt under a fixed
// heading. Notes are taken in feedback order; blank notes are skipped after
// trimming. The operation is deterministic: the same inputs always yield the
// same output, and feedback with no usable notes returns the original prompt
// unchanged.
func Synthesize(original string, feedback []campaign.Feedback) string {
	notes := make([]string, 0, len(feedback))
	for _, fb := range feedback {
		note := strings.TrimSpace(fb.Note)
		if note == "" {
			continue
		}
		notes = append(notes, note)
	}
	if len(notes) == 0 {
		return original
	}

	var b strings.Builder
	b.WriteString(original)
	b.WriteString("\n\n")
	b.WriteString(adjustmentsHeading)
	for _, note := range notes {
		b.WriteString("\n")
		b.WriteString(note)
	}
	return b.String()
}
