package models

import (
	"fmt"
	"time"
)

const periodLayout = "2006-01"

// Period is a calendar year-month, the aggregation granularity of the dashboard.
type Period struct {
	Year  int
	Month time.Month
}

func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse(periodLayout, s)
	if err != nil {
		return Period{}, fmt.Errorf("parse period %q: %w", s, err)
	}
	return PeriodOf(t), nil
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Label renders the period the way the month slider marks show it, e.g. "August 2016".
func (p Period) Label() string {
	return fmt.Sprintf("%s %d", p.Month, p.Year)
}

func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (p Period) Next() Period {
	return PeriodOf(p.Start().AddDate(0, 1, 0))
}

func (p Period) Contains(t time.Time) bool {
	return !t.IsZero() && PeriodOf(t) == p
}

func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

func (p Period) Compare(o Period) int {
	switch {
	case p == o:
		return 0
	case p.Before(o):
		return -1
	default:
		return 1
	}
}

// PeriodRange lists every calendar month from first to last inclusive.
func PeriodRange(first, last Period) []Period {
	if last.Before(first) {
		return nil
	}
	var out []Period
	for p := first; !last.Before(p); p = p.Next() {
		out = append(out, p)
	}
	return out
}

func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Period) UnmarshalText(b []byte) error {
	parsed, err := ParsePeriod(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
