package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const ticketColumns = `id, title, description, status, attempted_solutions, additional_info,
               user_id, technician_id, solution, rating_id, created_at, updated_at`

// TicketFilter captures listing parameters.
type TicketFilter struct {
	UserID       *string
	TechnicianID *string
	Status       *domain.TicketStatus
	Limit        int
	Offset       int
}

// TicketRepository encapsulates ticket persistence.
//
// Accept and Resolve are conditional single-statement updates: they return
// pgx.ErrNoRows when the ticket does not exist or is not in the expected state,
// so concurrent callers cannot both win the same transition.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	FindOpenByTitle(ctx context.Context, title string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Accept(ctx context.Context, id, technicianID string) (*domain.Ticket, error)
	Resolve(ctx context.Context, id, technicianID, solution string) (*domain.Ticket, error)
	SetRating(ctx context.Context, id, ratingID string) error
	Delete(ctx context.Context, id string) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, status, attempted_solutions, additional_info, user_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	attempted := ticket.AttemptedSolutions
	if attempted == nil {
		attempted = []string{}
	}
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		attempted,
		ticket.AdditionalInfo,
		ticket.UserID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return scanTicket(r.pool.QueryRow(ctx, query, id))
}

func (r *ticketRepository) FindOpenByTitle(ctx context.Context, title string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE title=$1 AND status=$2 LIMIT 1`
	return scanTicket(r.pool.QueryRow(ctx, query, title, domain.TicketStatusOpen))
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.TechnicianID != nil {
		args = append(args, *filter.TechnicianID)
		clauses = append(clauses, fmt.Sprintf("technician_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}

	limit, offset := NormalizePage(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *ticket)
	}
	return tickets, rows.Err()
}

func (r *ticketRepository) Accept(ctx context.Context, id, technicianID string) (*domain.Ticket, error) {
	query := `
        UPDATE tickets SET technician_id=$2, status=$3, updated_at=NOW()
        WHERE id=$1 AND status=$4
        RETURNING ` + ticketColumns
	return scanTicket(r.pool.QueryRow(ctx, query,
		id,
		technicianID,
		domain.TicketStatusInProgress,
		domain.TicketStatusOpen,
	))
}

func (r *ticketRepository) Resolve(ctx context.Context, id, technicianID, solution string) (*domain.Ticket, error) {
	query := `
        UPDATE tickets SET solution=$3, status=$4, updated_at=NOW()
        WHERE id=$1 AND technician_id=$2 AND status=$5
        RETURNING ` + ticketColumns
	return scanTicket(r.pool.QueryRow(ctx, query,
		id,
		technicianID,
		solution,
		domain.TicketStatusClosed,
		domain.TicketStatusInProgress,
	))
}

func (r *ticketRepository) SetRating(ctx context.Context, id, ratingID string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE tickets SET rating_id=$2, updated_at=NOW() WHERE id=$1`, id, ratingID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.AttemptedSolutions,
		&ticket.AdditionalInfo,
		&ticket.UserID,
		&ticket.TechnicianID,
		&ticket.Solution,
		&ticket.RatingID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}
