package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const ratingColumns = `id, ticket_id, user_id, user_name, technician_id, score, comment, created_at`

// RatingFilter selects ratings; nil fields are ignored.
type RatingFilter struct {
	TicketID     *string
	UserID       *string
	TechnicianID *string
}

// RatingRepository persists ticket ratings.
type RatingRepository interface {
	Create(ctx context.Context, rating *domain.Rating) error
	GetByID(ctx context.Context, id string) (*domain.Rating, error)
	GetByTicketID(ctx context.Context, ticketID string) (*domain.Rating, error)
	List(ctx context.Context, filter RatingFilter) ([]domain.Rating, error)
	Delete(ctx context.Context, id string) error
}

type ratingRepository struct {
	pool *pgxpool.Pool
}

// NewRatingRepository returns a Postgres-backed implementation.
func NewRatingRepository(pool *pgxpool.Pool) RatingRepository {
	return &ratingRepository{pool: pool}
}

func (r *ratingRepository) Create(ctx context.Context, rating *domain.Rating) error {
	const query = `
        INSERT INTO ratings (ticket_id, user_id, user_name, technician_id, score, comment)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		rating.TicketID,
		rating.UserID,
		rating.UserName,
		rating.TechnicianID,
		rating.Score,
		rating.Comment,
	).Scan(&rating.ID, &rating.CreatedAt)
}

func (r *ratingRepository) GetByID(ctx context.Context, id string) (*domain.Rating, error) {
	query := `SELECT ` + ratingColumns + ` FROM ratings WHERE id=$1`
	return scanRating(r.pool.QueryRow(ctx, query, id))
}

func (r *ratingRepository) GetByTicketID(ctx context.Context, ticketID string) (*domain.Rating, error) {
	query := `SELECT ` + ratingColumns + ` FROM ratings WHERE ticket_id=$1`
	return scanRating(r.pool.QueryRow(ctx, query, ticketID))
}

func (r *ratingRepository) List(ctx context.Context, filter RatingFilter) ([]domain.Rating, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.TicketID != nil {
		args = append(args, *filter.TicketID)
		clauses = append(clauses, fmt.Sprintf("ticket_id=$%d", len(args)))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.TechnicianID != nil {
		args = append(args, *filter.TechnicianID)
		clauses = append(clauses, fmt.Sprintf("technician_id=$%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM ratings WHERE %s ORDER BY created_at DESC`,
		ratingColumns, strings.Join(clauses, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ratings := []domain.Rating{}
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, *rating)
	}
	return ratings, rows.Err()
}

// Delete removes the rating and clears the ticket's link to it.
func (r *ratingRepository) Delete(ctx context.Context, id string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, `DELETE FROM ratings WHERE id=$1`, id)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		_, err = tx.Exec(ctx, `UPDATE tickets SET rating_id=NULL WHERE rating_id=$1`, id)
		return err
	})
}

func scanRating(row pgx.Row) (*domain.Rating, error) {
	var rating domain.Rating
	if err := row.Scan(
		&rating.ID,
		&rating.TicketID,
		&rating.UserID,
		&rating.UserName,
		&rating.TechnicianID,
		&rating.Score,
		&rating.Comment,
		&rating.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &rating, nil
}
