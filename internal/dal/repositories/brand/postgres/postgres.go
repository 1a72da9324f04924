package postgresrepo

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vendlabs/vending-svc/internal/dal/interfaces/ibrandrepo"
	"github.com/vendlabs/vending-svc/internal/dal/postgres"
	"github.com/vendlabs/vending-svc/internal/service/models/brand"
)

type PostgresBrandRepository struct {
	conn postgres.Querier
}

func NewPostgresBrandRepository(conn postgres.Querier) *PostgresBrandRepository {
	return &PostgresBrandRepository{
		conn: conn,
	}
}

func (r *PostgresBrandRepository) List(ctx context.Context) ([]brand.Brand, error) {
	query, args, err := sq.Select("id", "name", "description").
		From("brands").
		OrderBy("name ASC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query brands: %w", err)
	}
	defer rows.Close()

	var result []brand.Brand
	for rows.Next() {
		var b brand.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Description); err != nil {
			return nil, fmt.Errorf("failed to scan brand: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

func (r *PostgresBrandRepository) GetByID(ctx context.Context, id uuid.UUID) (*brand.Brand, error) {
	query, args, err := sq.Select("id", "name", "description").
		From("brands").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var b brand.Brand
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&b.ID, &b.Name, &b.Description); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ibrandrepo.ErrBrandNotFound, id)
		}

		return nil, fmt.Errorf("failed to get brand: %w", err)
	}

	return &b, nil
}

func (r *PostgresBrandRepository) Insert(ctx context.Context, b *brand.Brand) error {
	query, args, err := sq.Insert("brands").
		Columns("id", "name", "description").
		Values(b.ID, b.Name, b.Description).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert brand: %w", err)
	}

	return nil
}

func (r *PostgresBrandRepository) Update(ctx context.Context, b *brand.Brand) error {
	query, args, err := sq.Update("brands").
		Set("name", b.Name).
		Set("description", b.Description).
		Where(sq.Eq{"id": b.ID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update brand: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ibrandrepo.ErrBrandNotFound, b.ID)
	}

	return nil
}

func (r *PostgresBrandRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := sq.Delete("brands").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete brand: %w", err)
	}

	return nil
}
