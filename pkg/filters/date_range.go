// Package filters holds the query-string filters shared by list endpoints.
package filters

import (
	"strings"
	"time"

	"gorm.io/gorm"

	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
)

// DateRange is one of the named created-at windows list endpoints accept.
type DateRange string

const (
	Last15Days  DateRange = "last15days"
	Last3Months DateRange = "last3months"
	ThisYear    DateRange = "thisyear"
	LastYear    DateRange = "lastyear"
	ThisMonth   DateRange = "thismonth"
)

var windows = map[DateRange]func(today time.Time) (time.Time, *time.Time){
	Last15Days:  func(today time.Time) (time.Time, *time.Time) { return today.AddDate(0, 0, -15), nil },
	Last3Months: func(today time.Time) (time.Time, *time.Time) { return today.AddDate(0, 0, -90), nil },
	ThisYear: func(today time.Time) (time.Time, *time.Time) {
		return time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), nil
	},
	LastYear: func(today time.Time) (time.Time, *time.Time) {
		end := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return end.AddDate(-1, 0, 0), &end
	},
	ThisMonth: func(today time.Time) (time.Time, *time.Time) {
		return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	},
}

// Window is a half-open [From, To) interval; a nil To is open ended.
type Window struct {
	From time.Time
	To   *time.Time
}

// ParseDateRange validates a raw query value.
func ParseDateRange(value string) (DateRange, error) {
	tag := DateRange(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := windows[tag]; !ok {
		return "", pkgerrors.Field("date", "date must be one of last15days, last3months, thisyear, lastyear, thismonth")
	}
	return tag, nil
}

// Resolve computes the window relative to the UTC calendar day of now.
func (d DateRange) Resolve(now time.Time) (Window, error) {
	build, ok := windows[d]
	if !ok {
		return Window{}, pkgerrors.Field("date", "unknown date range "+string(d))
	}
	y, m, day := now.UTC().Date()
	from, to := build(time.Date(y, m, day, 0, 0, 0, 0, time.UTC))
	return Window{From: from, To: to}, nil
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	t = t.UTC()
	if t.Before(w.From) {
		return false
	}
	return w.To == nil || t.Before(*w.To)
}

// Scope restricts column to the window.
func (w Window) Scope(column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where(column+" >= ?", w.From)
		if w.To != nil {
			db = db.Where(column+" < ?", *w.To)
		}
		return db
	}
}
