package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdeskops/helpdesk-engine/internal/domain"
	apperrors "github.com/helpdeskops/helpdesk-engine/pkg/util"
)

// TicketFilter captures search parameters.
type TicketFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	Categories []domain.TicketCategory
	Team       *string
	UserEmail  *string
	Limit      int
	Offset     int
}

// TicketRepository encapsulates ticket aggregate persistence. Update
// performs an atomic read-modify-write guarded by the aggregate version and
// fails with CONCURRENT_MODIFICATION on a stale write.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	ListActive(ctx context.Context) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the postgres-backed repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        INSERT INTO tickets (id, subject, description, user_email, status, priority, category,
                             assigned_team, escalation_level, created_at, updated_at,
                             response_deadline, resolution_deadline, resolved_at, closed_at, version)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`
	if _, err := tx.Exec(ctx, query,
		ticket.ID,
		ticket.Subject,
		ticket.Description,
		ticket.UserEmail,
		ticket.Status,
		ticket.Priority,
		ticket.Category,
		ticket.AssignedTeam,
		ticket.EscalationLevel,
		ticket.CreatedAt,
		ticket.UpdatedAt,
		ticket.ResponseDeadline,
		ticket.ResolutionDeadline,
		ticket.ResolvedAt,
		ticket.ClosedAt,
		ticket.Version,
	); err != nil {
		return err
	}

	if err := upsertHistory(ctx, tx, ticket); err != nil {
		return err
	}
	if err := upsertAttempts(ctx, tx, ticket); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        UPDATE tickets SET status=$1, priority=$2, category=$3, assigned_team=$4,
            escalation_level=$5, resolved_at=$6, closed_at=$7, updated_at=$8,
            version=version+1
        WHERE id=$9 AND version=$10`
	cmd, err := tx.Exec(ctx, query,
		ticket.Status,
		ticket.Priority,
		ticket.Category,
		ticket.AssignedTeam,
		ticket.EscalationLevel,
		ticket.ResolvedAt,
		ticket.ClosedAt,
		ticket.UpdatedAt,
		ticket.ID,
		ticket.Version,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var one int
		err := tx.QueryRow(ctx, `SELECT 1 FROM tickets WHERE id=$1`, ticket.ID).Scan(&one)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewTicketNotFound(ticket.ID)
		}
		if err != nil {
			return err
		}
		return apperrors.NewConcurrentModification(ticket.ID)
	}

	if err := upsertHistory(ctx, tx, ticket); err != nil {
		return err
	}
	if err := upsertAttempts(ctx, tx, ticket); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	ticket.Version++
	return nil
}

// upsertHistory appends history rows the store has not seen yet. History is
// append-only, so conflicts on (ticket_id, seq) are ignored.
func upsertHistory(ctx context.Context, tx pgx.Tx, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO ticket_status_history (ticket_id, seq, status, actor, message, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (ticket_id, seq) DO NOTHING`
	for _, entry := range ticket.History {
		if _, err := tx.Exec(ctx, query,
			ticket.ID, entry.Seq, entry.Status, entry.Actor, entry.Message, entry.CreatedAt,
		); err != nil {
			return err
		}
	}
	return nil
}

// upsertAttempts inserts new attempts and refreshes feedback/verdict on
// existing ones.
func upsertAttempts(ctx context.Context, tx pgx.Tx, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO resolution_attempts (ticket_id, attempt_number, solution_provided,
                                         user_feedback, verdict, created_at, resolved_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (ticket_id, attempt_number) DO UPDATE SET
            user_feedback = EXCLUDED.user_feedback,
            verdict = EXCLUDED.verdict,
            resolved_at = EXCLUDED.resolved_at`
	for _, attempt := range ticket.Attempts {
		if _, err := tx.Exec(ctx, query,
			ticket.ID,
			attempt.AttemptNumber,
			attempt.SolutionProvided,
			attempt.UserFeedback,
			attempt.Verdict,
			attempt.CreatedAt,
			attempt.ResolvedAt,
		); err != nil {
			return err
		}
	}
	return nil
}

const ticketColumns = `id, subject, description, user_email, status, priority, category,
        assigned_team, escalation_level, created_at, updated_at,
        response_deadline, resolution_deadline, resolved_at, closed_at, version`

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewTicketNotFound(id)
		}
		return nil, err
	}
	if err := r.loadChildren(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, priority := range filter.Priorities {
			args = append(args, priority)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Categories) > 0 {
		placeholders := make([]string, len(filter.Categories))
		for i, category := range filter.Categories {
			args = append(args, category)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("category IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Team != nil {
		args = append(args, *filter.Team)
		clauses = append(clauses, fmt.Sprintf("assigned_team=$%d", len(args)))
	}
	if filter.UserEmail != nil {
		args = append(args, *filter.UserEmail)
		clauses = append(clauses, fmt.Sprintf("user_email=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)

	return r.queryTickets(ctx, query, args...)
}

func (r *ticketRepository) ListActive(ctx context.Context) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE status NOT IN ($1,$2) ORDER BY created_at ASC`,
		ticketColumns)
	return r.queryTickets(ctx, query, domain.TicketStatusResolved, domain.TicketStatusClosed)
}

func (r *ticketRepository) queryTickets(ctx context.Context, query string, args ...any) ([]domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range result {
		if err := r.loadChildren(ctx, &result[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Subject,
		&ticket.Description,
		&ticket.UserEmail,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Category,
		&ticket.AssignedTeam,
		&ticket.EscalationLevel,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ResponseDeadline,
		&ticket.ResolutionDeadline,
		&ticket.ResolvedAt,
		&ticket.ClosedAt,
		&ticket.Version,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) loadChildren(ctx context.Context, ticket *domain.Ticket) error {
	const historyQuery = `
        SELECT seq, status, actor, message, created_at
        FROM ticket_status_history WHERE ticket_id=$1 ORDER BY seq ASC`
	rows, err := r.pool.Query(ctx, historyQuery, ticket.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var entry domain.StatusChange
		if err := rows.Scan(&entry.Seq, &entry.Status, &entry.Actor, &entry.Message, &entry.CreatedAt); err != nil {
			rows.Close()
			return err
		}
		ticket.History = append(ticket.History, entry)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	const attemptsQuery = `
        SELECT attempt_number, solution_provided, user_feedback, verdict, created_at, resolved_at
        FROM resolution_attempts WHERE ticket_id=$1 ORDER BY attempt_number ASC`
	rows, err = r.pool.Query(ctx, attemptsQuery, ticket.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var attempt domain.Attempt
		if err := rows.Scan(
			&attempt.AttemptNumber,
			&attempt.SolutionProvided,
			&attempt.UserFeedback,
			&attempt.Verdict,
			&attempt.CreatedAt,
			&attempt.ResolvedAt,
		); err != nil {
			return err
		}
		ticket.Attempts = append(ticket.Attempts, attempt)
	}
	return rows.Err()
}
