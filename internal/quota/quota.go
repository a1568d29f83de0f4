// Package quota gates the one news source with a hard monthly call ceiling
// (100 calls/month). Instead of counting calls, eligibility is derived from
// the calendar: weekdays whose day-of-month divides by 3 give at most ~10
// calls a month with no persistent state.
package quota

import "time"

var defaultPriority = []string{"AAPL", "NVDA", "PLTR", "IONQ", "SOUN"}

// Gate decides whether the quota-constrained source may be called today and
// which single symbol the call is spent on.
type Gate struct {
	now      func() time.Time
	priority []string
}

// NewGate builds a gate. A nil clock falls back to time.Now; a nil priority
// list falls back to the built-in holdings order.
func NewGate(now func() time.Time, priority []string) *Gate {
	if now == nil {
		now = time.Now
	}
	if len(priority) == 0 {
		priority = defaultPriority
	}
	return &Gate{now: now, priority: priority}
}

// Allowed reports whether today is an eligible call day.
func (g *Gate) Allowed() bool {
	today := g.now()
	weekday := today.Weekday()
	if weekday == time.Saturday || weekday == time.Sunday {
		return false
	}
	return today.Day()%3 == 0
}

// PrimarySymbol picks the one symbol worth spending the call on: the first
// priority-list entry present in symbols, else the first supplied symbol.
func (g *Gate) PrimarySymbol(symbols []string) string {
	if len(symbols) == 0 {
		return ""
	}
	for _, p := range g.priority {
		for _, s := range symbols {
			if s == p {
				return p
			}
		}
	}
	return symbols[0]
}
