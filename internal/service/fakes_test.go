package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/neurodesk/helpdesk-service/internal/domain"
	"github.com/neurodesk/helpdesk-service/internal/oracle"
	"github.com/neurodesk/helpdesk-service/internal/repository"
)

type fakeTicketRepo struct {
	mu      sync.Mutex
	nextID  int64
	tickets map[int64]domain.Ticket

	updateErr error
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{nextID: 1, tickets: make(map[int64]domain.Ticket)}
}

func (r *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket.ID = r.nextID
	r.nextID++
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copy := ticket
	return &copy, nil
}

func (r *fakeTicketRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

func (r *fakeTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Ticket, 0, len(r.tickets))
	for _, ticket := range r.tickets {
		out = append(out, ticket)
	}
	return out, int64(len(out)), nil
}

func (r *fakeTicketRepo) stored(id int64) domain.Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tickets[id]
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[int64]domain.User)}
}

func (r *fakeUserRepo) add(name, email string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.users[id] = domain.User{ID: id, Name: name, Email: email, Role: domain.UserRoleUser, IsActive: true}
	return id
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copy := user
	return &copy, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copy := user
			return &copy, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) ListWithFilter(ctx context.Context, filter repository.UserFilter) ([]domain.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, user)
	}
	return out, int64(len(out)), nil
}

type fakeTechnicianRepo struct {
	mu          sync.Mutex
	nextID      int64
	technicians map[int64]domain.Technician
}

func newFakeTechnicianRepo() *fakeTechnicianRepo {
	return &fakeTechnicianRepo{nextID: 1, technicians: make(map[int64]domain.Technician)}
}

func (r *fakeTechnicianRepo) add(name string, userID int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.technicians[id] = domain.Technician{
		ID:                 id,
		Name:               name,
		UserID:             userID,
		AvailabilityStatus: domain.AvailabilityAvailable,
		SkillLevel:         domain.SkillLevelMid,
		IsActive:           true,
	}
	return id
}

func (r *fakeTechnicianRepo) Create(ctx context.Context, technician *domain.Technician) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	technician.ID = r.nextID
	r.nextID++
	r.technicians[technician.ID] = *technician
	return nil
}

func (r *fakeTechnicianRepo) Update(ctx context.Context, technician *domain.Technician) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.technicians[technician.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.technicians[technician.ID] = *technician
	return nil
}

func (r *fakeTechnicianRepo) GetByID(ctx context.Context, id int64) (*domain.Technician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	technician, ok := r.technicians[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copy := technician
	return &copy, nil
}

func (r *fakeTechnicianRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.technicians[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.technicians, id)
	return nil
}

func (r *fakeTechnicianRepo) ListWithFilter(ctx context.Context, filter repository.TechnicianFilter) ([]domain.Technician, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Technician, 0, len(r.technicians))
	for _, technician := range r.technicians {
		out = append(out, technician)
	}
	return out, int64(len(out)), nil
}

type fakeSkillRepo struct {
	mu     sync.Mutex
	nextID int64
	skills map[int64]domain.Skill
}

func newFakeSkillRepo() *fakeSkillRepo {
	return &fakeSkillRepo{nextID: 1, skills: make(map[int64]domain.Skill)}
}

func (r *fakeSkillRepo) Create(ctx context.Context, skill *domain.Skill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	skill.ID = r.nextID
	r.nextID++
	r.skills[skill.ID] = *skill
	return nil
}

func (r *fakeSkillRepo) Update(ctx context.Context, skill *domain.Skill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.skills[skill.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.skills[skill.ID] = *skill
	return nil
}

func (r *fakeSkillRepo) GetByID(ctx context.Context, id int64) (*domain.Skill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	skill, ok := r.skills[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copy := skill
	return &copy, nil
}

func (r *fakeSkillRepo) GetByName(ctx context.Context, name string) (*domain.Skill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, skill := range r.skills {
		if skill.Name == name {
			copy := skill
			return &copy, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeSkillRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.skills[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.skills, id)
	return nil
}

func (r *fakeSkillRepo) ListWithFilter(ctx context.Context, filter repository.SkillFilter) ([]domain.Skill, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Skill, 0, len(r.skills))
	for _, skill := range r.skills {
		out = append(out, skill)
	}
	return out, int64(len(out)), nil
}

// scriptedOracle replays canned responses for the resolver.
type scriptedOracle struct {
	enabled  bool
	outcome  oracle.Outcome
	err      error
	called   int
	lastBody oracle.AssignmentRequest
}

func (o *scriptedOracle) Enabled() bool { return o.enabled }

func (o *scriptedOracle) AssignTechnician(ctx context.Context, req oracle.AssignmentRequest) (oracle.Outcome, error) {
	o.called++
	o.lastBody = req
	if o.err != nil {
		return oracle.Outcome{}, o.err
	}
	return o.outcome, nil
}

// scriptedEvaluator replays a canned evaluation verdict.
type scriptedEvaluator struct {
	result json.RawMessage
	err    error
	called int
}

func (e *scriptedEvaluator) EvaluateResolution(ctx context.Context, req oracle.EvaluationRequest) (json.RawMessage, error) {
	e.called++
	if e.err != nil {
		return nil, e.err
	}
	return e.result, nil
}
