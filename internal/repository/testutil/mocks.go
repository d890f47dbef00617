// Package testutil provides in-memory repository implementations for tests.
// They mirror the Postgres behavior the services rely on: pgx.ErrNoRows for
// missing rows, SQLSTATE 23505 for unique violations, 23503 for dangling
// references and conditional status transitions.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint, Message: "duplicate key value violates unique constraint"}
}

func foreignKeyViolation(constraint string) error {
	return &pgconn.PgError{Code: "23503", ConstraintName: constraint, Message: "insert violates foreign key constraint"}
}

// clock hands out strictly increasing timestamps so newest-first ordering is stable.
type clock struct {
	last time.Time
}

func (c *clock) now() time.Time {
	now := time.Now().UTC()
	if !now.After(c.last) {
		now = c.last.Add(time.Microsecond)
	}
	c.last = now
	return now
}

func page[T any](items []T, limit, offset int) []T {
	limit, offset = repository.NormalizePage(limit, offset)
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// MockUserRepository is an in-memory repository.UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	clock clock
	users map[string]*domain.User

	// Err, when set, is returned by every call.
	Err error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

func (m *MockUserRepository) exists(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.users[id]
	return ok
}

func (m *MockUserRepository) conflicts(user *domain.User) error {
	for _, existing := range m.users {
		if existing.ID == user.ID {
			continue
		}
		if strings.EqualFold(existing.Email, user.Email) {
			return uniqueViolation("users_email_lower_key")
		}
		if existing.CPF == user.CPF {
			return uniqueViolation("users_cpf_key")
		}
	}
	return nil
}

func (m *MockUserRepository) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if err := m.conflicts(user); err != nil {
		return err
	}
	user.ID = uuid.NewString()
	user.CreatedAt = m.clock.now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *MockUserRepository) Update(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	existing, ok := m.users[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if err := m.conflicts(user); err != nil {
		return err
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = m.clock.now()
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *MockUserRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.users, id)
	return nil
}

func (m *MockUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	user, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (m *MockUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, user := range m.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *MockUserRepository) FindConflicting(_ context.Context, email, cpf, excludeID string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, user := range m.users {
		if user.ID == excludeID {
			continue
		}
		if (email != "" && strings.EqualFold(user.Email, email)) || (cpf != "" && user.CPF == cpf) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *MockUserRepository) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	users := []domain.User{}
	for _, user := range m.users {
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		users = append(users, *user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return page(users, filter.Limit, filter.Offset), nil
}

// MockTicketRepository is an in-memory repository.TicketRepository. When
// Owners is set, Create requires the owner to exist there.
type MockTicketRepository struct {
	mu      sync.RWMutex
	clock   clock
	tickets map[string]*domain.Ticket

	Owners *MockUserRepository
	Err    error
}

func NewMockTicketRepository() *MockTicketRepository {
	return &MockTicketRepository{tickets: make(map[string]*domain.Ticket)}
}

func (m *MockTicketRepository) exists(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.tickets[id]
	return ok
}

func copyTicket(t *domain.Ticket) *domain.Ticket {
	copied := *t
	copied.AttemptedSolutions = append([]string{}, t.AttemptedSolutions...)
	return &copied
}

func (m *MockTicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.Owners != nil && !m.Owners.exists(ticket.UserID) {
		return foreignKeyViolation("tickets_user_id_fkey")
	}
	if ticket.Status == domain.TicketStatusOpen {
		for _, existing := range m.tickets {
			if existing.Status == domain.TicketStatusOpen && existing.Title == ticket.Title {
				return uniqueViolation("tickets_open_title_key")
			}
		}
	}
	if ticket.AttemptedSolutions == nil {
		ticket.AttemptedSolutions = []string{}
	}
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = m.clock.now()
	ticket.UpdatedAt = ticket.CreatedAt
	m.tickets[ticket.ID] = copyTicket(ticket)
	return nil
}

func (m *MockTicketRepository) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	ticket, ok := m.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return copyTicket(ticket), nil
}

func (m *MockTicketRepository) FindOpenByTitle(_ context.Context, title string) (*domain.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, ticket := range m.tickets {
		if ticket.Status == domain.TicketStatusOpen && ticket.Title == title {
			return copyTicket(ticket), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *MockTicketRepository) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	tickets := []domain.Ticket{}
	for _, ticket := range m.tickets {
		if filter.UserID != nil && ticket.UserID != *filter.UserID {
			continue
		}
		if filter.TechnicianID != nil && !ticket.AssignedTo(*filter.TechnicianID) {
			continue
		}
		if filter.Status != nil && ticket.Status != *filter.Status {
			continue
		}
		tickets = append(tickets, *copyTicket(ticket))
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].CreatedAt.After(tickets[j].CreatedAt) })
	return page(tickets, filter.Limit, filter.Offset), nil
}

func (m *MockTicketRepository) Accept(_ context.Context, id, technicianID string) (*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	ticket, ok := m.tickets[id]
	if !ok || ticket.Status != domain.TicketStatusOpen {
		return nil, pgx.ErrNoRows
	}
	tech := technicianID
	ticket.TechnicianID = &tech
	ticket.Status = domain.TicketStatusInProgress
	ticket.UpdatedAt = m.clock.now()
	return copyTicket(ticket), nil
}

func (m *MockTicketRepository) Resolve(_ context.Context, id, technicianID, solution string) (*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	ticket, ok := m.tickets[id]
	if !ok || ticket.Status != domain.TicketStatusInProgress || !ticket.AssignedTo(technicianID) {
		return nil, pgx.ErrNoRows
	}
	text := solution
	ticket.Solution = &text
	ticket.Status = domain.TicketStatusClosed
	ticket.UpdatedAt = m.clock.now()
	return copyTicket(ticket), nil
}

func (m *MockTicketRepository) SetRating(_ context.Context, id, ratingID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	ticket, ok := m.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	rating := ratingID
	ticket.RatingID = &rating
	ticket.UpdatedAt = m.clock.now()
	return nil
}

func (m *MockTicketRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.tickets, id)
	return nil
}

func (m *MockTicketRepository) clearRating(ratingID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ticket := range m.tickets {
		if ticket.RatingID != nil && *ticket.RatingID == ratingID {
			ticket.RatingID = nil
		}
	}
}

// MockRatingRepository is an in-memory repository.RatingRepository. When
// Tickets is set, Create requires the ticket to exist and Delete also unlinks
// the rating from it.
type MockRatingRepository struct {
	mu      sync.RWMutex
	clock   clock
	ratings map[string]*domain.Rating

	Tickets *MockTicketRepository
	Err     error
}

func NewMockRatingRepository(tickets *MockTicketRepository) *MockRatingRepository {
	return &MockRatingRepository{ratings: make(map[string]*domain.Rating), Tickets: tickets}
}

func (m *MockRatingRepository) Create(_ context.Context, rating *domain.Rating) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.Tickets != nil && !m.Tickets.exists(rating.TicketID) {
		return foreignKeyViolation("ratings_ticket_id_fkey")
	}
	for _, existing := range m.ratings {
		if existing.TicketID == rating.TicketID {
			return uniqueViolation("ratings_ticket_id_key")
		}
	}
	rating.ID = uuid.NewString()
	rating.CreatedAt = m.clock.now()
	stored := *rating
	m.ratings[rating.ID] = &stored
	return nil
}

func (m *MockRatingRepository) GetByID(_ context.Context, id string) (*domain.Rating, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	rating, ok := m.ratings[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *rating
	return &copied, nil
}

func (m *MockRatingRepository) GetByTicketID(_ context.Context, ticketID string) (*domain.Rating, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, rating := range m.ratings {
		if rating.TicketID == ticketID {
			copied := *rating
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *MockRatingRepository) List(_ context.Context, filter repository.RatingFilter) ([]domain.Rating, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	ratings := []domain.Rating{}
	for _, rating := range m.ratings {
		if filter.TicketID != nil && rating.TicketID != *filter.TicketID {
			continue
		}
		if filter.UserID != nil && rating.UserID != *filter.UserID {
			continue
		}
		if filter.TechnicianID != nil && rating.TechnicianID != *filter.TechnicianID {
			continue
		}
		ratings = append(ratings, *rating)
	}
	sort.Slice(ratings, func(i, j int) bool { return ratings[i].CreatedAt.After(ratings[j].CreatedAt) })
	return ratings, nil
}

func (m *MockRatingRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	if m.Err != nil {
		m.mu.Unlock()
		return m.Err
	}
	if _, ok := m.ratings[id]; !ok {
		m.mu.Unlock()
		return pgx.ErrNoRows
	}
	delete(m.ratings, id)
	m.mu.Unlock()

	if m.Tickets != nil {
		m.Tickets.clearRating(id)
	}
	return nil
}

var (
	_ repository.UserRepository   = (*MockUserRepository)(nil)
	_ repository.TicketRepository = (*MockTicketRepository)(nil)
	_ repository.RatingRepository = (*MockRatingRepository)(nil)
)
