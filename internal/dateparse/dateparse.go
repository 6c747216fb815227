// Package dateparse maps human date input to calendar dates. It accepts a
// small fixed vocabulary in Russian and English (today, tomorrow, day after
// tomorrow, "in N days", "on <weekday>") plus a short list of numeric
// formats. Rules are tried in priority order; the first match wins.
package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/avolkov/osg-linebot-go/internal/errors"
)

// DisplayLayout is the date layout used in replies. Dates formatted with it
// round-trip through Parse.
const DisplayLayout = "02.01.2006"

// fixedLayouts are the accepted numeric formats, in priority order.
var fixedLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
	"02.01.06",
}

var weekdays = map[string]time.Weekday{
	"пн": time.Monday, "вт": time.Tuesday, "ср": time.Wednesday,
	"чт": time.Thursday, "пт": time.Friday, "сб": time.Saturday, "вс": time.Sunday,
	"mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday, "sun": time.Sunday,
}

var (
	inDaysRuRegex  = regexp.MustCompile(`^через\s+(\d+)\s*(дн|дня|дней)?$`)
	inDaysEnRegex  = regexp.MustCompile(`^in\s+(\d+)\s*(day|days)?$`)
	weekdayRuRegex = regexp.MustCompile(`^в\s*(пн|вт|ср|чт|пт|сб|вс)$`)
	weekdayEnRegex = regexp.MustCompile(`^on\s+(mon|tue|wed|thu|fri|sat|sun)$`)
)

// Parse maps s to a date relative to now. The result carries now's location
// and a zeroed time of day; only the calendar date is meaningful.
func Parse(s string, now time.Time) (time.Time, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return time.Time{}, apperrors.ErrDateNotRecognized
	}

	switch s {
	case "сегодня", "today":
		return dateOf(now), nil
	case "завтра", "tomorrow":
		return dateOf(now.AddDate(0, 0, 1)), nil
	case "послезавтра", "day after tomorrow":
		return dateOf(now.AddDate(0, 0, 2)), nil
	}

	for _, re := range []*regexp.Regexp{inDaysRuRegex, inDaysEnRegex} {
		if m := re.FindStringSubmatch(s); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return time.Time{}, apperrors.ErrDateNotRecognized
			}
			return dateOf(now.AddDate(0, 0, n)), nil
		}
	}

	for _, re := range []*regexp.Regexp{weekdayRuRegex, weekdayEnRegex} {
		if m := re.FindStringSubmatch(s); m != nil {
			target := weekdays[m[1]]
			delta := (int(target) - int(now.Weekday()) + 7) % 7
			if delta == 0 {
				delta = 7 // "on Monday" said on a Monday means next week
			}
			return dateOf(now.AddDate(0, 0, delta)), nil
		}
	}

	for _, layout := range fixedLayouts {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, nil
		}
	}

	return time.Time{}, apperrors.ErrDateNotRecognized
}

// ParseFixed tries only the numeric formats, for dates read from the order
// sheet where relative vocabulary makes no sense.
func ParseFixed(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range fixedLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.ErrDateNotRecognized
}

// Format renders a date in the reply layout (DD.MM.YYYY).
func Format(t time.Time) string {
	return t.Format(DisplayLayout)
}

var weekdayAbbrevRu = [7]string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}

// FormatWithWeekday renders a date with its Russian weekday abbreviation,
// e.g. "10.11.2025 (Пн)".
func FormatWithWeekday(t time.Time) string {
	return t.Format(DisplayLayout) + " (" + weekdayAbbrevRu[t.Weekday()] + ")"
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
