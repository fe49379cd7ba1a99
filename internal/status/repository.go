package status

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, st *Status) error
	GetByID(ctx context.Context, id string) (*Status, error)
	List(ctx context.Context, filter Filter) ([]*Status, int, error)
	Update(ctx context.Context, st *Status) error
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, st *Status) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.statuses").
		Columns("name", "color", "sort_order").
		Values(st.Name, st.Color, st.SortOrder).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create status query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&st.ID, &st.CreatedAt); err != nil {
		return fmt.Errorf("create status failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Status, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "name", "color", "sort_order", "created_at").
		From("public.statuses").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get status query failed: %w", err)
	}

	var st Status
	if err := r.pool.QueryRow(ctx, query, args...).
		Scan(&st.ID, &st.Name, &st.Color, &st.SortOrder, &st.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get status failed: %w", err)
	}
	return &st, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Status, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	queryBuilder := psql.Select(
		"id", "name", "color", "sort_order", "created_at",
		"count(*) OVER() as total_count",
	).
		From("public.statuses").
		OrderBy("sort_order ASC", "name ASC")

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 50
	}
	offset := (filter.Page - 1) * filter.PageSize

	queryBuilder = queryBuilder.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list statuses query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list statuses failed: %w", err)
	}
	defer rows.Close()

	var result []*Status
	var total int

	for rows.Next() {
		var st Status
		if err := rows.Scan(&st.ID, &st.Name, &st.Color, &st.SortOrder, &st.CreatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan status failed: %w", err)
		}
		result = append(result, &st)
	}

	return result, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, st *Status) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.statuses").
		Set("name", st.Name).
		Set("color", st.Color).
		Set("sort_order", st.SortOrder).
		Where(squirrel.Eq{"id": st.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update status query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update status failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.statuses").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete status query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.ForeignKeyViolation {
			return ErrInUse
		}
		return fmt.Errorf("delete status failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
