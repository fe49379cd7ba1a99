package recurrence

import "time"

// Generate expands a rule into the concrete occurrence start instants.
//
// The result is strictly increasing and never empty for a sane start
// instant: the start itself (or its forward-snapped weekly/monthly
// anchor) is always occurrence #1. maxCount is a hard cap the caller
// must supply; it bounds EndNever rules and over-large EndAfterCount
// values so generation always terminates.
//
// All arithmetic is wall-clock in start's location. Generate never
// fails; degenerate input collapses to the smallest safe result.
func Generate(start time.Time, rule Rule, maxCount int) []time.Time {
	if maxCount < 1 {
		maxCount = 1
	}
	if !rule.Enabled {
		return []time.Time{start}
	}
	rule = rule.normalized()

	// Resolve the termination policy up front.
	limit := maxCount
	var until time.Time
	switch rule.EndMode {
	case EndAfterCount:
		limit = rule.EndAfterCount
		if limit < 1 {
			limit = 1
		}
		if limit > maxCount {
			limit = maxCount
		}
	case EndOnDate:
		if rule.EndOnDate.IsZero() {
			// Missing end date would otherwise run to the cap;
			// fall back to a single occurrence instead.
			return []time.Time{start}
		}
		until = endOfDay(rule.EndOnDate)
	}

	first := firstOccurrence(start, rule)

	var out []time.Time
	current := first
	for step := 0; len(out) < limit; step++ {
		if step > 0 {
			current = advance(first, rule, step)
		}
		if !until.IsZero() && current.After(until) {
			break
		}
		out = append(out, current)
	}
	return out
}

// firstOccurrence anchors the series: daily and yearly rules start at the
// start instant itself, weekly rules snap forward to the target weekday,
// monthly rules with an explicit day snap to that (clamped) day-of-month
// at the same clock time. A monthly rule without a selected day anchors
// on the start instant itself; short months clamp on advance instead.
func firstOccurrence(start time.Time, rule Rule) time.Time {
	switch rule.Unit {
	case UnitWeek:
		delta := (int(rule.targetWeekday(start)) - int(start.Weekday()) + 7) % 7
		return start.AddDate(0, 0, delta)
	case UnitMonth:
		day := rule.MonthDay
		if day == 0 {
			return start
		}
		candidate := time.Date(start.Year(), start.Month(), day,
			start.Hour(), start.Minute(), start.Second(), start.Nanosecond(), start.Location())
		if candidate.Before(start) {
			candidate = addMonthsClamped(candidate, rule.Interval)
		}
		return candidate
	default:
		return start
	}
}

// advance computes occurrence number step (0-based) from the anchor.
// Month and year steps are recomputed from the anchor every time so the
// day-of-month clamp never drifts (Jan 31 -> Feb 28 -> Mar 31).
func advance(first time.Time, rule Rule, step int) time.Time {
	switch rule.Unit {
	case UnitDay:
		return first.AddDate(0, 0, rule.Interval*step)
	case UnitWeek:
		return first.AddDate(0, 0, rule.Interval*7*step)
	case UnitMonth:
		return addMonthsClamped(first, rule.Interval*step)
	case UnitYear:
		return addMonthsClamped(first, rule.Interval*12*step)
	default:
		return first
	}
}

// addMonthsClamped adds months keeping the clock time and clamping the
// day-of-month to the last valid day of the target month. time.AddDate
// normalizes overflow (Jan 31 + 1 month = Mar 2/3), which is exactly the
// behavior we must avoid.
func addMonthsClamped(t time.Time, months int) time.Time {
	year := t.Year()
	month := int(t.Month()) - 1 + months
	year += month / 12
	month = month % 12
	if month < 0 {
		month += 12
		year--
	}

	day := t.Day()
	if max := daysInMonth(year, time.Month(month+1)); day > max {
		day = max
	}
	return time.Date(year, time.Month(month+1), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// endOfDay returns the last representable instant of t's calendar day.
func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, t.Location())
}
