package history

import (
	"fmt"
	"strings"
	"time"
)

// DefaultNullReason is shown in the text rendering when a transfer carried
// no reason. It is a display placeholder only and is never persisted.
const DefaultNullReason = "<no description>"

// Timezone selects how rendered timestamps are displayed. The choice is an
// explicit parameter; nothing here reads ambient environment state beyond
// the process's own time.Local.
type Timezone string

const (
	TimezoneUTC   Timezone = "utc"
	TimezoneLocal Timezone = "local"
)

// ParseTimezone maps the recognized option strings onto a Timezone.
func ParseTimezone(s string) (Timezone, error) {
	switch Timezone(strings.ToLower(strings.TrimSpace(s))) {
	case TimezoneUTC:
		return TimezoneUTC, nil
	case TimezoneLocal, "":
		return TimezoneLocal, nil
	default:
		return "", fmt.Errorf("unknown timezone option %q", s)
	}
}

func (tz Timezone) location() (*time.Location, error) {
	switch tz {
	case TimezoneUTC:
		return time.UTC, nil
	case TimezoneLocal:
		return time.Local, nil
	default:
		return nil, fmt.Errorf("unknown timezone option %q", tz)
	}
}

// Format renders the snapshot for humans, one line per entry in store
// order. An empty history renders as the empty string.
func (l *Log) Format(tz Timezone) (string, error) {
	loc, err := tz.location()
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(l.entries))

	for _, e := range l.entries {
		partner, outgoing, err := direction(e, l.accountID)
		if err != nil {
			return "", err
		}

		amount := float64(e.Amount) / 100
		marker := "<<"

		if outgoing {
			amount = -amount
			marker = ">>"
		}

		reason := DefaultNullReason
		if e.Reason != nil {
			reason = *e.Reason
		}

		lines = append(lines, fmt.Sprintf(
			"%s: %+6.2f: me %s %-11s :: %s",
			e.Registered.In(loc).Format("02.01.2006 15:04"),
			amount,
			marker,
			l.names[partner],
			reason,
		))
	}

	return strings.Join(lines, "\n"), nil
}

// PortableEntry is the machine-readable form of a ledger entry: the raw
// row with the timestamp flattened to epoch seconds. A missing reason
// stays null, without the display placeholder.
type PortableEntry struct {
	ID         int64   `json:"id"`
	Sender     uint64  `json:"sender"`
	Receiver   uint64  `json:"receiver"`
	Amount     int64   `json:"amount"`
	Reason     *string `json:"reason"`
	Registered int64   `json:"registered"`
}

// Portable converts the snapshot for machine consumption.
func (l *Log) Portable() []PortableEntry {
	out := make([]PortableEntry, 0, len(l.entries))

	for _, e := range l.entries {
		out = append(out, PortableEntry{
			ID:         e.ID,
			Sender:     e.Sender,
			Receiver:   e.Receiver,
			Amount:     e.Amount,
			Reason:     e.Reason,
			Registered: e.Registered.Unix(),
		})
	}

	return out
}
