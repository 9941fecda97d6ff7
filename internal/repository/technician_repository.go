package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neurodesk/helpdesk-service/internal/domain"
)

// TechnicianFilter captures technician listing parameters.
type TechnicianFilter struct {
	Name                 *string
	UserID               *int64
	AvailabilityStatuses []domain.AvailabilityStatus
	SkillLevels          []domain.SkillLevel
	Specialization       *string
	WorkloadMin          *int
	WorkloadMax          *int
	IsActive             *bool
	SortBy               string
	SortOrder            string
	Limit                int
	Offset               int
}

// TechnicianRepository encapsulates technician persistence.
type TechnicianRepository interface {
	Create(ctx context.Context, technician *domain.Technician) error
	Update(ctx context.Context, technician *domain.Technician) error
	GetByID(ctx context.Context, id int64) (*domain.Technician, error)
	Delete(ctx context.Context, id int64) error
	ListWithFilter(ctx context.Context, filter TechnicianFilter) ([]domain.Technician, int64, error)
}

type technicianRepository struct {
	pool *pgxpool.Pool
}

// NewTechnicianRepository instantiates repository.
func NewTechnicianRepository(pool *pgxpool.Pool) TechnicianRepository {
	return &technicianRepository{pool: pool}
}

const technicianColumns = `id, name, user_id, skills, workload, availability_status,
    skill_level, specialization, assigned_tickets_total, is_active, created_at, updated_at`

func (r *technicianRepository) Create(ctx context.Context, technician *domain.Technician) error {
	const query = `
        INSERT INTO technicians (name, user_id, skills, workload, availability_status,
            skill_level, specialization, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, assigned_tickets_total, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		technician.Name,
		technician.UserID,
		technician.Skills,
		technician.Workload,
		technician.AvailabilityStatus,
		technician.SkillLevel,
		technician.Specialization,
		technician.IsActive,
	).Scan(&technician.ID, &technician.AssignedTicketsTotal, &technician.CreatedAt, &technician.UpdatedAt)
}

func (r *technicianRepository) Update(ctx context.Context, technician *domain.Technician) error {
	const query = `
        UPDATE technicians SET name=$1, skills=$2, workload=$3, availability_status=$4,
            skill_level=$5, specialization=$6, assigned_tickets_total=$7, is_active=$8,
            updated_at=NOW()
        WHERE id=$9`
	cmd, err := r.pool.Exec(ctx, query,
		technician.Name,
		technician.Skills,
		technician.Workload,
		technician.AvailabilityStatus,
		technician.SkillLevel,
		technician.Specialization,
		technician.AssignedTicketsTotal,
		technician.IsActive,
		technician.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *technicianRepository) GetByID(ctx context.Context, id int64) (*domain.Technician, error) {
	query := fmt.Sprintf(`SELECT %s FROM technicians WHERE id=$1`, technicianColumns)
	var technician domain.Technician
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&technician.ID,
		&technician.Name,
		&technician.UserID,
		&technician.Skills,
		&technician.Workload,
		&technician.AvailabilityStatus,
		&technician.SkillLevel,
		&technician.Specialization,
		&technician.AssignedTicketsTotal,
		&technician.IsActive,
		&technician.CreatedAt,
		&technician.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &technician, nil
}

func (r *technicianRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM technicians WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

var technicianSortFields = map[string]string{
	"id":                  "id",
	"name":                "name",
	"workload":            "workload",
	"availability_status": "availability_status",
	"skill_level":         "skill_level",
	"specialization":      "specialization",
	"is_active":           "is_active",
	"created_at":          "created_at",
	"updated_at":          "updated_at",
}

func (r *technicianRepository) ListWithFilter(ctx context.Context, filter TechnicianFilter) ([]domain.Technician, int64, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Name != nil && *filter.Name != "" {
		args = append(args, "%"+strings.ToLower(*filter.Name)+"%")
		clauses = append(clauses, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if len(filter.AvailabilityStatuses) > 0 {
		clauses = append(clauses, inClause("availability_status", len(filter.AvailabilityStatuses), &args, toAnySlice(filter.AvailabilityStatuses)))
	}
	if len(filter.SkillLevels) > 0 {
		clauses = append(clauses, inClause("skill_level", len(filter.SkillLevels), &args, toAnySlice(filter.SkillLevels)))
	}
	if filter.Specialization != nil && *filter.Specialization != "" {
		args = append(args, "%"+strings.ToLower(*filter.Specialization)+"%")
		clauses = append(clauses, fmt.Sprintf("LOWER(specialization) LIKE $%d", len(args)))
	}
	if filter.WorkloadMin != nil {
		args = append(args, *filter.WorkloadMin)
		clauses = append(clauses, fmt.Sprintf("workload >= $%d", len(args)))
	}
	if filter.WorkloadMax != nil {
		args = append(args, *filter.WorkloadMax)
		clauses = append(clauses, fmt.Sprintf("workload <= $%d", len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		clauses = append(clauses, fmt.Sprintf("is_active=$%d", len(args)))
	}

	where := strings.Join(clauses, " AND ")

	var total int64
	if err := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM technicians WHERE %s`, where), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortColumn, ok := technicianSortFields[filter.SortBy]
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

	query := fmt.Sprintf(`SELECT %s FROM technicians WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		technicianColumns, where, sortColumn, sortOrder, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Technician
	for rows.Next() {
		var technician domain.Technician
		if err := rows.Scan(
			&technician.ID,
			&technician.Name,
			&technician.UserID,
			&technician.Skills,
			&technician.Workload,
			&technician.AvailabilityStatus,
			&technician.SkillLevel,
			&technician.Specialization,
			&technician.AssignedTicketsTotal,
			&technician.IsActive,
			&technician.CreatedAt,
			&technician.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		result = append(result, technician)
	}
	return result, total, rows.Err()
}
