package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id string) (*Appointment, error)
	List(ctx context.Context, filter Filter) ([]*Appointment, int, error)
	Update(ctx context.Context, a *Appointment) error

	// SoftDelete marks the appointment deleted; the row stays behind so
	// collision lookups and series replacements can still see it.
	SoftDelete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const selectColumns = `a.id, a.user_id, COALESCE(u.display_name, u.email), a.title, a.description,
a.start_time, a.end_time, a.status_id, s.name, a.series_id, a.series_seq,
a.deleted, a.created_at, a.updated_at`

func (r *pgxRepository) Create(ctx context.Context, a *Appointment) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.appointments").
		Columns("user_id", "title", "description", "start_time", "end_time", "status_id", "series_id", "series_seq").
		Values(a.UserID, a.Title, a.Description, a.StartTime, a.EndTime, a.StatusID, a.SeriesID, a.SeriesSeq).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create appointment query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(selectColumns).
		From("public.appointments a").
		Join("public.users u ON a.user_id = u.id").
		LeftJoin("public.statuses s ON a.status_id = s.id").
		Where(squirrel.Eq{"a.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get appointment query failed: %w", err)
	}

	row := r.pool.QueryRow(ctx, query, args...)

	var a Appointment
	if err := row.Scan(
		&a.ID, &a.UserID, &a.UserName, &a.Title, &a.Description,
		&a.StartTime, &a.EndTime, &a.StatusID, &a.StatusName, &a.SeriesID, &a.SeriesSeq,
		&a.Deleted, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get appointment failed: %w", err)
	}
	return &a, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Appointment, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(selectColumns + ", count(*) OVER() as total_count").
		From("public.appointments a").
		Join("public.users u ON a.user_id = u.id").
		LeftJoin("public.statuses s ON a.status_id = s.id")

	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"a.user_id": filter.UserID})
	}
	if filter.StatusID != "" {
		query = query.Where(squirrel.Eq{"a.status_id": filter.StatusID})
	}
	if filter.SeriesID != "" {
		query = query.Where(squirrel.Eq{"a.series_id": filter.SeriesID})
	}
	if !filter.IncludeDeleted {
		query = query.Where(squirrel.Eq{"a.deleted": false})
	}
	// Window filtering (intersection logic)
	if filter.StartTimeFrom != nil {
		query = query.Where(squirrel.GtOrEq{"a.end_time": filter.StartTimeFrom})
	}
	if filter.StartTimeTo != nil {
		query = query.Where(squirrel.LtOrEq{"a.start_time": filter.StartTimeTo})
	}

	// Sorting
	orderBy := "a.start_time"
	if filter.SortBy != "" {
		orderBy = "a." + filter.SortBy
	}

	orderDir := "ASC"
	if filter.SortOrder != "" {
		orderDir = filter.SortOrder
	}

	query = query.OrderBy(orderBy + " " + orderDir)

	// Pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list appointments query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list appointments failed: %w", err)
	}
	defer rows.Close()

	var appointments []*Appointment
	var total int

	for rows.Next() {
		var a Appointment
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.UserName, &a.Title, &a.Description,
			&a.StartTime, &a.EndTime, &a.StatusID, &a.StatusName, &a.SeriesID, &a.SeriesSeq,
			&a.Deleted, &a.CreatedAt, &a.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan appointment failed: %w", err)
		}
		appointments = append(appointments, &a)
	}

	return appointments, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, a *Appointment) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.appointments").
		Set("title", a.Title).
		Set("description", a.Description).
		Set("start_time", a.StartTime).
		Set("end_time", a.EndTime).
		Set("status_id", a.StatusID).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": a.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update appointment query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update appointment failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) SoftDelete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.appointments").
		Set("deleted", true).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete appointment query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("soft delete appointment failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
