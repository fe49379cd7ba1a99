package recurrence

import (
	"errors"
	"time"
)

var (
	ErrInvalidInterval = errors.New("interval must be at least 1")
	ErrInvalidUnit     = errors.New("unknown recurrence unit")
	ErrInvalidEndMode  = errors.New("unknown end mode")
	ErrEndBeforeStart  = errors.New("end date is before the start date")
	ErrMissingEndCount = errors.New("end-after count must be at least 1")
)

// Unit is the step unit of a recurrence rule.
type Unit string

const (
	UnitDay   Unit = "day"
	UnitWeek  Unit = "week"
	UnitMonth Unit = "month"
	UnitYear  Unit = "year"
)

// EndMode describes how a series terminates.
type EndMode string

const (
	EndNever      EndMode = "never"
	EndOnDate     EndMode = "on_date"
	EndAfterCount EndMode = "after_count"
)

// MaxMonthDay is the highest selectable day-of-month for monthly rules.
// Capped below 28 so every month of every year has the requested day.
const MaxMonthDay = 27

// Rule is the declarative repetition specification for a series.
// It is a plain value; construct it, validate it, then pass it to Generate.
type Rule struct {
	Enabled  bool
	Interval int
	Unit     Unit

	// Weekdays applies to weekly rules. Only the first entry is consumed;
	// the slice shape is kept for wire compatibility with clients that
	// send a list.
	Weekdays []time.Weekday

	// MonthDay applies to monthly rules, clamped to [1, MaxMonthDay].
	// Zero means "derive from the start instant".
	MonthDay int

	EndMode       EndMode
	EndOnDate     time.Time // zero value means unset
	EndAfterCount int
}

// Validate reports whether the rule is internally consistent relative to
// the series start. Generation itself never fails; callers that persist
// series must validate first.
func (r Rule) Validate(start time.Time) error {
	if !r.Enabled {
		return nil
	}
	if r.Interval < 1 {
		return ErrInvalidInterval
	}
	switch r.Unit {
	case UnitDay, UnitWeek, UnitMonth, UnitYear:
	default:
		return ErrInvalidUnit
	}
	switch r.EndMode {
	case EndNever:
	case EndOnDate:
		if !r.EndOnDate.IsZero() && endOfDay(r.EndOnDate).Before(start) {
			return ErrEndBeforeStart
		}
	case EndAfterCount:
		if r.EndAfterCount < 1 {
			return ErrMissingEndCount
		}
	default:
		return ErrInvalidEndMode
	}
	return nil
}

// normalized returns a copy safe to generate from: interval clamped to 1,
// month day clamped into [1, MaxMonthDay] when set.
func (r Rule) normalized() Rule {
	if r.Interval < 1 {
		r.Interval = 1
	}
	if r.MonthDay > MaxMonthDay {
		r.MonthDay = MaxMonthDay
	}
	if r.MonthDay < 0 {
		r.MonthDay = 0
	}
	return r
}

// targetWeekday resolves the weekday a weekly rule snaps to, falling back
// to the start instant's own weekday when none was selected.
func (r Rule) targetWeekday(start time.Time) time.Weekday {
	if len(r.Weekdays) > 0 {
		return r.Weekdays[0]
	}
	return start.Weekday()
}
