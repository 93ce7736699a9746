package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Apurer/storekeeper/internal/shared/apperrors"
)

// PeriodKind names a report window.
type PeriodKind string

const (
	PeriodToday  PeriodKind = "today"
	PeriodWeek   PeriodKind = "week"
	PeriodMonth  PeriodKind = "month"
	PeriodYear   PeriodKind = "year"
	PeriodAll    PeriodKind = "all"
	PeriodCustom PeriodKind = "custom"
)

var (
	ErrUnknownPeriod = errors.New("period must be one of today, week, month, year, all, custom")
	ErrBadDate       = errors.New("date must look like 2006-01-02, 02.01.2006, 02/01/2006 or RFC 3339")
	ErrStartRequired = errors.New("custom period needs a start date")
	ErrStartAfterEnd = errors.New("start must not be after end")
)

var dateLayouts = []string{"2006-01-02", "02.01.2006", "02/01/2006"}

// Period is a resolved report window. A nil From means unbounded; To is inclusive.
type Period struct {
	Kind PeriodKind
	From *time.Time
	To   time.Time
}

// Label renders the window for people.
func (p Period) Label() string {
	switch p.Kind {
	case PeriodToday:
		return "Today"
	case PeriodWeek:
		return "This week"
	case PeriodMonth:
		return "This month"
	case PeriodYear:
		return "This year"
	case PeriodAll:
		return "All time"
	}
	from := "beginning"
	if p.From != nil {
		from = p.From.Format("2006-01-02")
	}
	return fmt.Sprintf("%s - %s", from, p.To.Format("2006-01-02"))
}

// Contains reports whether t falls inside the window.
func (p Period) Contains(t time.Time) bool {
	if p.From != nil && t.Before(*p.From) {
		return false
	}
	return !t.After(p.To)
}

// ParsePeriod resolves a period descriptor at now, in loc. An empty kind means
// custom when a start or end is given and all-time otherwise. The end of a
// named bucket is now; a date-only custom end covers that whole day.
func ParsePeriod(kind, start, end string, now time.Time, loc *time.Location) (Period, error) {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)

	k := PeriodKind(strings.ToLower(strings.TrimSpace(kind)))
	if k == "" {
		k = PeriodAll
		if start != "" || end != "" {
			k = PeriodCustom
		}
	}

	p := Period{Kind: k, To: now}
	switch k {
	case PeriodToday:
		from := startOfDay(now)
		p.From = &from
	case PeriodWeek:
		// Weeks start on Monday.
		offset := (int(now.Weekday()) + 6) % 7
		from := startOfDay(now).AddDate(0, 0, -offset)
		p.From = &from
	case PeriodMonth:
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		p.From = &from
	case PeriodYear:
		from := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
		p.From = &from
	case PeriodAll:
	case PeriodCustom:
		if start == "" {
			return Period{}, apperrors.NewValidation("start", ErrStartRequired)
		}
		from, _, err := parseDate(start, loc)
		if err != nil {
			return Period{}, apperrors.NewValidation("start", err)
		}
		p.From = &from
		if end != "" {
			to, dateOnly, err := parseDate(end, loc)
			if err != nil {
				return Period{}, apperrors.NewValidation("end", err)
			}
			if dateOnly {
				to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
			}
			p.To = to
		}
		if from.After(p.To) {
			return Period{}, apperrors.NewValidation("start", ErrStartAfterEnd)
		}
	default:
		return Period{}, apperrors.NewValidation("period", ErrUnknownPeriod)
	}
	return p, nil
}

func parseDate(raw string, loc *time.Location) (time.Time, bool, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(loc), false, nil
	}
	return time.Time{}, false, fmt.Errorf("%w: %q", ErrBadDate, raw)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
