package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/validation"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// RatingScoreInput is the body a requester submits.
type RatingScoreInput struct {
	Score   int    `json:"score" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=500"`
}

// CreateRatingInput is a complete rating. UserName and TechnicianID are
// snapshots taken from the ticket and rater at creation time.
type CreateRatingInput struct {
	TicketID     string `json:"ticket_id" validate:"required,uuid"`
	UserID       string `json:"user_id" validate:"required,uuid"`
	UserName     string `json:"user_name" validate:"required,notblank"`
	TechnicianID string `json:"technician_id" validate:"required,uuid"`
	Score        int    `json:"score" validate:"required,min=1,max=5"`
	Comment      string `json:"comment" validate:"max=500"`
}

// RatingListFilter narrows GetRatings. Nil fields are ignored.
type RatingListFilter struct {
	TicketID     *string
	UserID       *string
	TechnicianID *string
}

// RatingService manages ticket ratings.
type RatingService struct {
	ratings repository.RatingRepository
}

func NewRatingService(ratings repository.RatingRepository) *RatingService {
	return &RatingService{ratings: ratings}
}

// CreateRating stores a rating. A ticket can be rated at most once.
func (s *RatingService) CreateRating(ctx context.Context, input CreateRatingInput) (*domain.Rating, error) {
	input.Comment = strings.TrimSpace(input.Comment)
	input.UserName = strings.TrimSpace(input.UserName)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	if _, err := s.ratings.GetByTicketID(ctx, input.TicketID); err == nil {
		return nil, alreadyRated(input.TicketID)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, storeError(err, "rating")
	}

	rating := &domain.Rating{
		TicketID:     input.TicketID,
		UserID:       input.UserID,
		UserName:     input.UserName,
		TechnicianID: input.TechnicianID,
		Score:        input.Score,
		Comment:      input.Comment,
	}
	if err := s.ratings.Create(ctx, rating); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, alreadyRated(input.TicketID)
		}
		if apperrors.IsForeignKeyViolation(err) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": input.TicketID})
		}
		return nil, storeError(err, "rating")
	}
	return rating, nil
}

func (s *RatingService) GetRatingByID(ctx context.Context, id string) (*domain.Rating, error) {
	if err := requireID(id, "rating"); err != nil {
		return nil, err
	}
	rating, err := s.ratings.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "rating")
	}
	return rating, nil
}

func (s *RatingService) GetRatingByTicketID(ctx context.Context, ticketID string) (*domain.Rating, error) {
	if err := requireID(ticketID, "ticket"); err != nil {
		return nil, err
	}
	rating, err := s.ratings.GetByTicketID(ctx, ticketID)
	if err != nil {
		return nil, storeError(err, "rating")
	}
	return rating, nil
}

// GetRatings lists matching ratings; an empty result is NotFound.
func (s *RatingService) GetRatings(ctx context.Context, filter RatingListFilter) ([]domain.Rating, error) {
	for resource, id := range map[string]*string{"ticket": filter.TicketID, "user": filter.UserID, "technician": filter.TechnicianID} {
		if id == nil {
			continue
		}
		if err := requireID(*id, resource); err != nil {
			return nil, err
		}
	}

	ratings, err := s.ratings.List(ctx, repository.RatingFilter{
		TicketID:     filter.TicketID,
		UserID:       filter.UserID,
		TechnicianID: filter.TechnicianID,
	})
	if err != nil {
		return nil, storeError(err, "rating")
	}
	if len(ratings) == 0 {
		return nil, apperrors.NewNotFound("rating", nil)
	}
	return ratings, nil
}

// DeleteRating removes a rating created by requesterID.
func (s *RatingService) DeleteRating(ctx context.Context, id, requesterID string) error {
	rating, err := s.GetRatingByID(ctx, id)
	if err != nil {
		return err
	}
	if rating.UserID != requesterID {
		return apperrors.NewForbidden("only the author can delete this rating")
	}
	return storeError(s.ratings.Delete(ctx, id), "rating")
}

func alreadyRated(ticketID string) error {
	return apperrors.NewConflict("ticket has already been rated", map[string]any{"ticket_id": ticketID})
}
