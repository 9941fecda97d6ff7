package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neurodesk/helpdesk-service/internal/domain"
)

// TicketFilter captures search parameters for ticket listings.
type TicketFilter struct {
	RequesterID           *int64
	AssignedTechnicianID  *int64
	Statuses              []domain.TicketStatus
	Priorities            []domain.TicketPriority
	Urgencies             []domain.TicketUrgency
	Impacts               []domain.TicketImpact
	SLAViolated           *bool
	RequiredSkills        []int64
	Subject               *string
	Description           *string
	SearchTerm            *string
	EscalationCountMin    *int
	EscalationCountMax    *int
	SatisfactionRatingMin *int
	SatisfactionRatingMax *int
	CreatedFrom           *time.Time
	CreatedTo             *time.Time
	UpdatedFrom           *time.Time
	UpdatedTo             *time.Time
	ResolutionDueFrom     *time.Time
	ResolutionDueTo       *time.Time
	SortBy                string
	SortOrder             string
	Limit                 int
	Offset                int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	Delete(ctx context.Context, id int64) error
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, int64, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, subject, description, status, priority, impact, urgency,
    requester_id, assigned_technician_id, required_skills, tags, tasks, work_logs,
    audit_trail, sla_violated, escalation_count, reopened_count, resolution_due,
    first_response_at, resolved_at, closed_at, satisfaction_rating, score,
    justification, feedback, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (subject, description, status, priority, impact, urgency,
            requester_id, assigned_technician_id, required_skills, tags, tasks,
            work_logs, audit_trail, sla_violated, resolution_due, satisfaction_rating,
            score, justification, feedback)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
        RETURNING id, escalation_count, reopened_count, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Impact,
		ticket.Urgency,
		ticket.RequesterID,
		ticket.AssignedTechnicianID,
		ticket.RequiredSkills,
		ticket.Tags,
		ticket.Tasks,
		ticket.WorkLogs,
		ticket.AuditTrail,
		ticket.SLAViolated,
		ticket.ResolutionDue,
		ticket.SatisfactionRating,
		ticket.Score,
		ticket.Justification,
		ticket.Feedback,
	).Scan(&ticket.ID, &ticket.EscalationCount, &ticket.ReopenedCount, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET subject=$1, description=$2, status=$3, priority=$4, impact=$5,
            urgency=$6, assigned_technician_id=$7, required_skills=$8, tags=$9, tasks=$10,
            work_logs=$11, audit_trail=$12, sla_violated=$13, escalation_count=$14,
            reopened_count=$15, resolution_due=$16, first_response_at=$17, resolved_at=$18,
            closed_at=$19, satisfaction_rating=$20, score=$21, justification=$22,
            feedback=$23, updated_at=NOW()
        WHERE id=$24`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Impact,
		ticket.Urgency,
		ticket.AssignedTechnicianID,
		ticket.RequiredSkills,
		ticket.Tags,
		ticket.Tasks,
		ticket.WorkLogs,
		ticket.AuditTrail,
		ticket.SLAViolated,
		ticket.EscalationCount,
		ticket.ReopenedCount,
		ticket.ResolutionDue,
		ticket.FirstResponseAt,
		ticket.ResolvedAt,
		ticket.ClosedAt,
		ticket.SatisfactionRating,
		ticket.Score,
		ticket.Justification,
		ticket.Feedback,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	var ticket domain.Ticket
	if err := scanTicket(r.pool.QueryRow(ctx, query, id), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// sort fields accepted from the API; anything else falls back to created_at.
var ticketSortFields = map[string]string{
	"id":                  "id",
	"subject":             "subject",
	"status":              "status",
	"priority":            "priority",
	"urgency":             "urgency",
	"impact":              "impact",
	"sla_violated":        "sla_violated",
	"escalation_count":    "escalation_count",
	"satisfaction_rating": "satisfaction_rating",
	"score":               "score",
	"created_at":          "created_at",
	"updated_at":          "updated_at",
	"resolution_due":      "resolution_due",
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, int64, error) {
	clauses := []string{"1=1"}
	args := []any{}

	addEq := func(column string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s=$%d", column, len(args)))
	}

	if filter.RequesterID != nil {
		addEq("requester_id", *filter.RequesterID)
	}
	if filter.AssignedTechnicianID != nil {
		addEq("assigned_technician_id", *filter.AssignedTechnicianID)
	}
	if filter.SLAViolated != nil {
		addEq("sla_violated", *filter.SLAViolated)
	}
	if len(filter.Statuses) > 0 {
		clauses = append(clauses, inClause("status", len(filter.Statuses), &args, toAnySlice(filter.Statuses)))
	}
	if len(filter.Priorities) > 0 {
		clauses = append(clauses, inClause("priority", len(filter.Priorities), &args, toAnySlice(filter.Priorities)))
	}
	if len(filter.Urgencies) > 0 {
		clauses = append(clauses, inClause("urgency", len(filter.Urgencies), &args, toAnySlice(filter.Urgencies)))
	}
	if len(filter.Impacts) > 0 {
		clauses = append(clauses, inClause("impact", len(filter.Impacts), &args, toAnySlice(filter.Impacts)))
	}
	if len(filter.RequiredSkills) > 0 {
		// union semantics: a ticket matches when it requires any of the
		// given skills
		skillClauses := make([]string, 0, len(filter.RequiredSkills))
		for _, skillID := range filter.RequiredSkills {
			args = append(args, fmt.Sprintf("[%d]", skillID))
			skillClauses = append(skillClauses, fmt.Sprintf("required_skills @> $%d::jsonb", len(args)))
		}
		clauses = append(clauses, "("+strings.Join(skillClauses, " OR ")+")")
	}
	if filter.Subject != nil && *filter.Subject != "" {
		args = append(args, "%"+strings.ToLower(*filter.Subject)+"%")
		clauses = append(clauses, fmt.Sprintf("LOWER(subject) LIKE $%d", len(args)))
	}
	if filter.Description != nil && *filter.Description != "" {
		args = append(args, "%"+strings.ToLower(*filter.Description)+"%")
		clauses = append(clauses, fmt.Sprintf("LOWER(description) LIKE $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(*filter.SearchTerm))+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(subject) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}
	if filter.EscalationCountMin != nil {
		args = append(args, *filter.EscalationCountMin)
		clauses = append(clauses, fmt.Sprintf("escalation_count >= $%d", len(args)))
	}
	if filter.EscalationCountMax != nil {
		args = append(args, *filter.EscalationCountMax)
		clauses = append(clauses, fmt.Sprintf("escalation_count <= $%d", len(args)))
	}
	if filter.SatisfactionRatingMin != nil {
		args = append(args, *filter.SatisfactionRatingMin)
		clauses = append(clauses, fmt.Sprintf("satisfaction_rating >= $%d", len(args)))
	}
	if filter.SatisfactionRatingMax != nil {
		args = append(args, *filter.SatisfactionRatingMax)
		clauses = append(clauses, fmt.Sprintf("satisfaction_rating <= $%d", len(args)))
	}
	addRange := func(column string, from, to *time.Time) {
		if from != nil {
			args = append(args, *from)
			clauses = append(clauses, fmt.Sprintf("%s >= $%d", column, len(args)))
		}
		if to != nil {
			args = append(args, *to)
			clauses = append(clauses, fmt.Sprintf("%s <= $%d", column, len(args)))
		}
	}
	addRange("created_at", filter.CreatedFrom, filter.CreatedTo)
	addRange("updated_at", filter.UpdatedFrom, filter.UpdatedTo)
	addRange("resolution_due", filter.ResolutionDueFrom, filter.ResolutionDueTo)

	where := strings.Join(clauses, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM tickets WHERE %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortColumn, ok := ticketSortFields[filter.SortBy]
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

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		ticketColumns, where, sortColumn, sortOrder, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, 0, err
		}
		result = append(result, ticket)
	}
	return result, total, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Impact,
		&ticket.Urgency,
		&ticket.RequesterID,
		&ticket.AssignedTechnicianID,
		&ticket.RequiredSkills,
		&ticket.Tags,
		&ticket.Tasks,
		&ticket.WorkLogs,
		&ticket.AuditTrail,
		&ticket.SLAViolated,
		&ticket.EscalationCount,
		&ticket.ReopenedCount,
		&ticket.ResolutionDue,
		&ticket.FirstResponseAt,
		&ticket.ResolvedAt,
		&ticket.ClosedAt,
		&ticket.SatisfactionRating,
		&ticket.Score,
		&ticket.Justification,
		&ticket.Feedback,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
}

func inClause(column string, n int, args *[]any, values []any) string {
	placeholders := make([]string, n)
	for i, v := range values {
		*args = append(*args, v)
		placeholders[i] = fmt.Sprintf("$%d", len(*args))
	}
	return fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ","))
}

func toAnySlice[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
