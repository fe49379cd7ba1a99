package http

import (
	"time"

	"github.com/appventus/appointment-backend/internal/recurrence"
	"github.com/appventus/appointment-backend/internal/series"
)

// RuleBody is the wire shape of a recurrence rule.
type RuleBody struct {
	Interval      int        `json:"interval" binding:"required,min=1"`
	Unit          string     `json:"unit" binding:"required,oneof=day week month year"`
	Weekdays      []int      `json:"weekdays" binding:"omitempty,dive,min=0,max=6"`
	MonthDay      int        `json:"month_day" binding:"omitempty,min=1,max=27"`
	EndMode       string     `json:"end_mode" binding:"required,oneof=never on_date after_count"`
	EndOnDate     *time.Time `json:"end_on_date"`
	EndAfterCount int        `json:"end_after_count" binding:"omitempty,min=1"`
}

// ToRule converts the wire rule into the domain value.
func (b RuleBody) ToRule() recurrence.Rule {
	rule := recurrence.Rule{
		Enabled:       true,
		Interval:      b.Interval,
		Unit:          recurrence.Unit(b.Unit),
		MonthDay:      b.MonthDay,
		EndMode:       recurrence.EndMode(b.EndMode),
		EndAfterCount: b.EndAfterCount,
	}
	for _, w := range b.Weekdays {
		rule.Weekdays = append(rule.Weekdays, time.Weekday(w))
	}
	if b.EndOnDate != nil {
		rule.EndOnDate = *b.EndOnDate
	}
	return rule
}

// NewRuleBody converts a domain rule back to the wire shape.
func NewRuleBody(rule recurrence.Rule) RuleBody {
	body := RuleBody{
		Interval:      rule.Interval,
		Unit:          string(rule.Unit),
		MonthDay:      rule.MonthDay,
		EndMode:       string(rule.EndMode),
		EndAfterCount: rule.EndAfterCount,
	}
	for _, w := range rule.Weekdays {
		body.Weekdays = append(body.Weekdays, int(w))
	}
	if !rule.EndOnDate.IsZero() {
		d := rule.EndOnDate
		body.EndOnDate = &d
	}
	return body
}

// CreateSeriesBody is the payload for creating or replacing a series.
type CreateSeriesBody struct {
	Title           string    `json:"title" binding:"required,min=1,max=200"`
	StartTime       time.Time `json:"start_time" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"required,min=1"`
	StatusID        string    `json:"status_id" binding:"omitempty,uuid"`
	Force           bool      `json:"force"`
	Rule            RuleBody  `json:"rule" binding:"required"`
}

// ConflictResponse describes the first colliding booking of a rejected
// series, enough for the client to render a "save anyway?" prompt.
type ConflictResponse struct {
	Seq             int       `json:"seq"`
	OccurrenceStart time.Time `json:"occurrence_start"`
	BookingID       string    `json:"booking_id"`
	BookingTitle    string    `json:"booking_title"`
	BookingStart    time.Time `json:"booking_start"`
	BookingEnd      time.Time `json:"booking_end"`
}

func NewConflictResponse(c *series.ConflictError) ConflictResponse {
	return ConflictResponse{
		Seq:             c.Seq,
		OccurrenceStart: c.Occurrence,
		BookingID:       c.Existing.ID,
		BookingTitle:    c.Existing.Title,
		BookingStart:    c.Existing.Start,
		BookingEnd:      c.Existing.End,
	}
}

// PreviewResponse is the dry-run result of a series request.
type PreviewResponse struct {
	Occurrences []time.Time       `json:"occurrences"`
	Conflict    *ConflictResponse `json:"conflict,omitempty"`
}

type SeriesResponse struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Rule            RuleBody  `json:"rule"`
	FirstOccurrence time.Time `json:"first_occurrence"`
	DurationMinutes int       `json:"duration_minutes"`
	InstanceCount   int       `json:"instance_count"`
	CreatedAt       time.Time `json:"created_at"`
}

func NewSeriesResponse(s *series.Series) SeriesResponse {
	return SeriesResponse{
		ID:              s.ID,
		UserID:          s.UserID,
		Rule:            NewRuleBody(s.Rule),
		FirstOccurrence: s.FirstOccurrence,
		DurationMinutes: s.DurationMinutes,
		InstanceCount:   s.InstanceCount,
		CreatedAt:       s.CreatedAt,
	}
}
