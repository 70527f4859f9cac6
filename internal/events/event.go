// Package events holds the eco-event catalog and the date arithmetic used to
// announce each event's next occurrence.
package events

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/goodsign/monday"
)

// Event is a recurring weekly event in a city.
type Event struct {
	Title       string
	Location    string
	Weekday     time.Weekday
	Description string
}

// Occurrence is an Event pinned to its next calendar date.
type Occurrence struct {
	Event
	Date time.Time
}

// NextWeekday returns midnight of the next day after now falling on wd,
// in now's location. The result is always one to seven days ahead: an event
// on today's weekday is announced for next week.
func NextWeekday(now time.Time, wd time.Weekday) time.Time {
	days := (int(wd) - int(now.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	y, m, d := now.Date()
	return time.Date(y, m, d+days, 0, 0, 0, 0, now.Location())
}

// Schedule pins every event to its next occurrence relative to now.
func Schedule(evts []Event, now time.Time) []Occurrence {
	out := make([]Occurrence, 0, len(evts))
	for _, e := range evts {
		out = append(out, Occurrence{Event: e, Date: NextWeekday(now, e.Weekday)})
	}
	return out
}

// FormatDateFR renders t as "samedi 25 octobre".
func FormatDateFR(t time.Time) string {
	return monday.Format(t, "Monday 2 January", monday.LocaleFrFR)
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"dimanche":  time.Sunday,
	"lundi":     time.Monday,
	"mardi":     time.Tuesday,
	"mercredi":  time.Wednesday,
	"jeudi":     time.Thursday,
	"vendredi":  time.Friday,
	"samedi":    time.Saturday,
}

// ParseWeekday accepts English or French day names, case-insensitively,
// or a number where 0 is Sunday.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if wd, ok := weekdayNames[s]; ok {
		return wd, nil
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n <= 6 {
		return time.Weekday(n), nil
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}
