package calllog

import (
	"fmt"
	"strings"
	"time"
)

const exportHeader = "Agent,PhoneNumber,Status,Duration,Timestamp,Summary"

// durationPlaceholder stands in for statuses where a duration is not
// meaningful (the call never reached the agent).
const durationPlaceholder = "N/A"

// ExportCSV serializes records to CSV: the fixed header row followed by one
// row per record, every data field double-quoted with internal quotes
// doubled. An empty input yields just the header.
//
// encoding/csv only quotes fields that need it, so rows are rendered by
// hand to keep the quoting uniform.
func ExportCSV(logs []CallLog) []byte {
	rows := make([]string, 0, len(logs)+1)
	rows = append(rows, exportHeader)
	for _, log := range logs {
		rows = append(rows, strings.Join([]string{
			quoteField(log.AgentName),
			quoteField(log.PhoneNumber),
			quoteField(string(log.Status)),
			quoteField(renderDuration(log)),
			quoteField(log.Timestamp.UTC().Format(time.RFC3339)),
			quoteField(log.Summary),
		}, ","))
	}
	return []byte(strings.Join(rows, "\n"))
}

func renderDuration(log CallLog) string {
	if !log.Status.HasDuration() {
		return durationPlaceholder
	}
	return fmt.Sprintf("%dm %ds", log.DurationSeconds/60, log.DurationSeconds%60)
}

func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
