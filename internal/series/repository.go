package series

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/appventus/appointment-backend/internal/recurrence"
)

type Repository interface {
	Create(ctx context.Context, s *Series) error
	GetByID(ctx context.Context, id string) (*Series, error)
	ListForUser(ctx context.Context, userID string) ([]*Series, error)
	Delete(ctx context.Context, id string) error

	// CreateInstances bulk-inserts the appointments of a plan.
	CreateInstances(ctx context.Context, instances []InstanceRequest, statusID string) error

	// SoftDeleteInstances marks every appointment tagged with the series
	// as deleted and returns how many were affected.
	SoftDeleteInstances(ctx context.Context, seriesID string) (int, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, s *Series) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	var weekday *int
	if len(s.Rule.Weekdays) > 0 {
		w := int(s.Rule.Weekdays[0])
		weekday = &w
	}
	var endOnDate *time.Time
	if !s.Rule.EndOnDate.IsZero() {
		endOnDate = &s.Rule.EndOnDate
	}

	query, args, err := psql.Insert("public.appointment_series").
		Columns(
			"id", "user_id", "unit", "interval", "weekday", "month_day",
			"end_mode", "end_on_date", "end_after_count",
			"first_occurrence", "duration_minutes", "instance_count",
		).
		Values(
			s.ID, s.UserID, string(s.Rule.Unit), s.Rule.Interval, weekday, s.Rule.MonthDay,
			string(s.Rule.EndMode), endOnDate, s.Rule.EndAfterCount,
			s.FirstOccurrence, s.DurationMinutes, s.InstanceCount,
		).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create series query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&s.CreatedAt); err != nil {
		return fmt.Errorf("create series failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Series, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"id", "user_id", "unit", "interval", "weekday", "month_day",
		"end_mode", "end_on_date", "end_after_count",
		"first_occurrence", "duration_minutes", "instance_count", "created_at",
	).
		From("public.appointment_series").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get series query failed: %w", err)
	}

	s, err := scanSeries(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get series failed: %w", err)
	}
	return s, nil
}

func (r *pgxRepository) ListForUser(ctx context.Context, userID string) ([]*Series, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"id", "user_id", "unit", "interval", "weekday", "month_day",
		"end_mode", "end_on_date", "end_after_count",
		"first_occurrence", "duration_minutes", "instance_count", "created_at",
	).
		From("public.appointment_series").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("first_occurrence ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list series query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list series failed: %w", err)
	}
	defer rows.Close()

	var result []*Series
	for rows.Next() {
		s, err := scanSeries(rows)
		if err != nil {
			return nil, fmt.Errorf("scan series failed: %w", err)
		}
		result = append(result, s)
	}
	return result, nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.appointment_series").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete series query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete series failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) CreateInstances(ctx context.Context, instances []InstanceRequest, statusID string) error {
	if len(instances) == 0 {
		return nil
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	builder := psql.Insert("public.appointments").
		Columns("user_id", "title", "start_time", "end_time", "status_id", "series_id", "series_seq")

	for _, in := range instances {
		builder = builder.Values(in.UserID, in.Title, in.Start, in.End, nullable(statusID), in.SeriesID, in.Seq)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build create instances query failed: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("create series instances failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) SoftDeleteInstances(ctx context.Context, seriesID string) (int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.appointments").
		Set("deleted", true).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"series_id": seriesID}).
		Where(squirrel.Eq{"deleted": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build soft delete instances query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("soft delete series instances failed: %w", err)
	}
	return int(ct.RowsAffected()), nil
}

func scanSeries(row pgx.Row) (*Series, error) {
	var s Series
	var unit, endMode string
	var weekday *int
	var endOnDate *time.Time

	if err := row.Scan(
		&s.ID, &s.UserID, &unit, &s.Rule.Interval, &weekday, &s.Rule.MonthDay,
		&endMode, &endOnDate, &s.Rule.EndAfterCount,
		&s.FirstOccurrence, &s.DurationMinutes, &s.InstanceCount, &s.CreatedAt,
	); err != nil {
		return nil, err
	}

	s.Rule.Enabled = true
	s.Rule.Unit = recurrence.Unit(unit)
	s.Rule.EndMode = recurrence.EndMode(endMode)
	if weekday != nil {
		s.Rule.Weekdays = []time.Weekday{time.Weekday(*weekday)}
	}
	if endOnDate != nil {
		s.Rule.EndOnDate = *endOnDate
	}
	return &s, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// pgxLookup implements BookingLookup over the appointments table. It
// intentionally returns deleted rows too: the resolver filters locally,
// and the superset keeps the query a plain range scan.
type pgxLookup struct {
	pool *pgxpool.Pool
}

func NewPgxLookup(pool *pgxpool.Pool) BookingLookup {
	return &pgxLookup{pool: pool}
}

func (l *pgxLookup) BookingsForUser(ctx context.Context, userID string, from, to time.Time) ([]Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"id", "user_id", "COALESCE(series_id::text, '')", "title",
		"start_time", "end_time", "deleted",
	).
		From("public.appointments").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Lt{"start_time": to}).
		Where(squirrel.Gt{"end_time": from}).
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build booking lookup query failed: %w", err)
	}

	rows, err := l.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("booking lookup failed: %w", err)
	}
	defer rows.Close()

	var result []Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(&b.ID, &b.UserID, &b.SeriesID, &b.Title, &b.Start, &b.End, &b.Deleted); err != nil {
			return nil, fmt.Errorf("scan booking lookup row failed: %w", err)
		}
		result = append(result, b)
	}
	return result, nil
}
