package calllog

import "strings"

// Query narrows a listing. Zero-value fields do not constrain; set fields
// combine conjunctively.
type Query struct {
	Status     Status
	AgentID    string
	SearchText string
}

// Matches reports whether one record satisfies every set constraint.
// SearchText matches case-insensitively against phone number, agent name,
// or summary substrings.
func (q Query) Matches(log CallLog) bool {
	if q.Status != "" && log.Status != q.Status {
		return false
	}
	if q.AgentID != "" && log.AgentID != q.AgentID {
		return false
	}
	if q.SearchText != "" {
		needle := strings.ToLower(q.SearchText)
		if !strings.Contains(strings.ToLower(log.PhoneNumber), needle) &&
			!strings.Contains(strings.ToLower(log.AgentName), needle) &&
			!strings.Contains(strings.ToLower(log.Summary), needle) {
			return false
		}
	}
	return true
}

// Filter returns the records matching q, preserving input order.
func Filter(logs []CallLog, q Query) []CallLog {
	out := make([]CallLog, 0, len(logs))
	for _, log := range logs {
		if q.Matches(log) {
			out = append(out, log)
		}
	}
	return out
}
