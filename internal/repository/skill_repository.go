package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neurodesk/helpdesk-service/internal/domain"
)

// SkillFilter captures skill listing parameters.
type SkillFilter struct {
	Name        *string
	Description *string
	IsActive    *bool
	SortBy      string
	SortOrder   string
	Limit       int
	Offset      int
}

// SkillRepository encapsulates skill persistence.
type SkillRepository interface {
	Create(ctx context.Context, skill *domain.Skill) error
	Update(ctx context.Context, skill *domain.Skill) error
	GetByID(ctx context.Context, id int64) (*domain.Skill, error)
	GetByName(ctx context.Context, name string) (*domain.Skill, error)
	Delete(ctx context.Context, id int64) error
	ListWithFilter(ctx context.Context, filter SkillFilter) ([]domain.Skill, int64, error)
}

type skillRepository struct {
	pool *pgxpool.Pool
}

// NewSkillRepository instantiates repository.
func NewSkillRepository(pool *pgxpool.Pool) SkillRepository {
	return &skillRepository{pool: pool}
}

const skillColumns = `id, name, description, is_active, created_at, updated_at`

func (r *skillRepository) Create(ctx context.Context, skill *domain.Skill) error {
	const query = `
        INSERT INTO skills (name, description, is_active)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		skill.Name,
		skill.Description,
		skill.IsActive,
	).Scan(&skill.ID, &skill.CreatedAt, &skill.UpdatedAt)
}

func (r *skillRepository) Update(ctx context.Context, skill *domain.Skill) error {
	const query = `
        UPDATE skills SET name=$1, description=$2, is_active=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query, skill.Name, skill.Description, skill.IsActive, skill.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *skillRepository) GetByID(ctx context.Context, id int64) (*domain.Skill, error) {
	query := fmt.Sprintf(`SELECT %s FROM skills WHERE id=$1`, skillColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *skillRepository) GetByName(ctx context.Context, name string) (*domain.Skill, error) {
	query := fmt.Sprintf(`SELECT %s FROM skills WHERE name=$1`, skillColumns)
	return r.fetchSingle(ctx, query, name)
}

func (r *skillRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Skill, error) {
	var skill domain.Skill
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&skill.ID,
		&skill.Name,
		&skill.Description,
		&skill.IsActive,
		&skill.CreatedAt,
		&skill.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &skill, nil
}

func (r *skillRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM skills WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

var skillSortFields = map[string]string{
	"id":          "id",
	"name":        "name",
	"description": "description",
	"is_active":   "is_active",
	"created_at":  "created_at",
	"updated_at":  "updated_at",
}

func (r *skillRepository) ListWithFilter(ctx context.Context, filter SkillFilter) ([]domain.Skill, int64, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Name != nil && *filter.Name != "" {
		args = append(args, "%"+strings.ToLower(*filter.Name)+"%")
		clauses = append(clauses, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)))
	}
	if filter.Description != nil && *filter.Description != "" {
		args = append(args, "%"+strings.ToLower(*filter.Description)+"%")
		clauses = append(clauses, fmt.Sprintf("LOWER(description) LIKE $%d", len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		clauses = append(clauses, fmt.Sprintf("is_active=$%d", len(args)))
	}

	where := strings.Join(clauses, " AND ")

	var total int64
	if err := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM skills WHERE %s`, where), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortColumn, ok := skillSortFields[filter.SortBy]
	if !ok {
		sortColumn = "created_at"
	}
	sortOrder := "DESC"
	if strings.EqualFold(filter.SortOrder, "ASC") {
		sortOrder = "ASC"
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM skills WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		skillColumns, where, sortColumn, sortOrder, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Skill
	for rows.Next() {
		var skill domain.Skill
		if err := rows.Scan(
			&skill.ID,
			&skill.Name,
			&skill.Description,
			&skill.IsActive,
			&skill.CreatedAt,
			&skill.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		result = append(result, skill)
	}
	return result, total, rows.Err()
}
