package httpapi

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/journeyconnect/journeyconnect/internal/common"
	"github.com/journeyconnect/journeyconnect/internal/server/models"
	"github.com/journeyconnect/journeyconnect/internal/server/policy"
	"github.com/journeyconnect/journeyconnect/internal/server/records"
	"github.com/journeyconnect/journeyconnect/internal/server/services"
)

var (
	alice  = models.User{ID: "u-alice", Name: "Alice", Email: "alice@example.com", Role: models.RoleUser}
	bob    = models.User{ID: "u-bob", Name: "Bob", Email: "bob@example.com", Role: models.RoleUser}
	mentor = models.User{ID: "u-mentor", Name: "Mark", Email: "mark@example.com", Role: models.RoleMentor}
	admin  = models.User{ID: "u-admin", Name: "Ada", Email: "ada@example.com", Role: models.RoleAdmin}
)

// fakeSessions maps provider session ids and credentials to users.
type fakeSessions struct {
	mu       sync.Mutex
	provider map[string]models.User
	tokens   map[string]models.User
	err      error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{
		provider: map[string]models.User{},
		tokens: map[string]models.User{
			"tok-alice": alice, "tok-bob": bob, "tok-mentor": mentor, "tok-admin": admin,
		},
	}
}

func (f *fakeSessions) Establish(_ context.Context, id string) (string, *models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", nil, f.err
	}
	if id == "" {
		return "", nil, common.Invalid("session id", "is required")
	}
	u, ok := f.provider[id]
	if !ok {
		return "", nil, common.ErrorUnauthorized
	}
	tok := "tok-new-" + u.ID
	f.tokens[tok] = u
	return tok, &u, nil
}

func (f *fakeSessions) WhoAmI(_ context.Context, token string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.tokens[token]
	if !ok {
		return nil, fmt.Errorf("%w: unknown token", common.ErrorUnauthorized)
	}
	return &u, nil
}

func (f *fakeSessions) Invalidate(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, token)
	return nil
}

// memStore is an in-memory records.Store.
type memStore[T any] struct {
	mu         sync.Mutex
	rows       []T
	owner      func(T) string
	visible    func(T, string) bool
	lastFilter records.Filter
}

func (m *memStore[T]) Insert(_ context.Context, rec *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, *rec)
	return nil
}

func (m *memStore[T]) List(_ context.Context, f records.Filter) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = f
	var out []T
	for _, r := range m.rows {
		if f.OwnerID != "" && m.owner != nil && m.owner(r) != f.OwnerID {
			continue
		}
		if f.VisibleTo != "" && m.visible != nil && !m.visible(r, f.VisibleTo) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// memPayments runs the real payment manager over a memStore and decides
// in place.
type memPayments struct {
	*records.Manager[models.RentPayment]
	store    *memStore[models.RentPayment]
	expected models.Amount
}

func newMemPayments() *memPayments {
	store := &memStore[models.RentPayment]{owner: func(p models.RentPayment) string { return p.UserID }}
	return &memPayments{Manager: records.NewManager(records.RentPayments, store), store: store}
}

func (p *memPayments) List(ctx context.Context, actor models.User, f records.Filter) ([]models.RentPayment, error) {
	out, err := p.Manager.List(ctx, actor, f)
	for i := range out {
		out[i].Mismatched = policy.IsMismatched(out[i].Amount, models.Settings{ExpectedRentAmount: p.expected})
	}
	return out, err
}

func (p *memPayments) Decide(_ context.Context, id string, d models.Decision, actor models.User) (*models.RentPayment, error) {
	if !policy.CanMutate(actor.Role, models.KindRentPaymentDecision) {
		return nil, common.ErrAuthorization
	}
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	for i := range p.store.rows {
		r := &p.store.rows[i]
		if r.ID != id {
			continue
		}
		if r.Status != models.PaymentPending {
			return nil, common.ErrAlreadyDecided
		}
		now := time.Now().UTC()
		r.Status, r.Confirmed, r.ConfirmedBy, r.ConfirmationDate = d.Status(), bool(d), actor.Name, &now
		cp := *r
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

type fakeMessages struct {
	*records.Manager[models.Message]
}

func (f fakeMessages) Send(ctx context.Context, content string, to *string, sender models.User) (models.Message, error) {
	if to != nil && *to == "ghost" {
		return models.Message{}, common.ErrorNotFound
	}
	return f.Manager.Create(ctx, models.Message{Content: content, RecipientID: to}, sender)
}

func (f fakeMessages) List(ctx context.Context, actor models.User) ([]models.Message, error) {
	return f.Manager.List(ctx, actor, records.Filter{})
}

type fakeSettings struct {
	mu sync.Mutex
	s  models.Settings
}

func (f *fakeSettings) Get(context.Context) (*models.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.s
	return &s, nil
}

func (f *fakeSettings) Update(_ context.Context, in services.SettingsUpdate, actor models.User) (*models.Settings, error) {
	if !policy.CanMutate(actor.Role, models.KindSettings) {
		return nil, common.ErrAuthorization
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if in.RentDueDay != nil {
		if *in.RentDueDay < 1 || *in.RentDueDay > 31 {
			return nil, common.Invalid("rent_due_day", "must be between 1 and 31")
		}
		f.s.RentDueDay = *in.RentDueDay
	}
	if in.ExpectedRentAmount != nil {
		f.s.ExpectedRentAmount = *in.ExpectedRentAmount
	}
	f.s.UpdatedBy = actor.Name
	s := f.s
	return &s, nil
}

type fakeUsers struct{}

func (fakeUsers) List(_ context.Context, actor models.User, role models.Role) ([]models.User, error) {
	if !policy.CanListUsers(actor.Role) {
		return nil, common.ErrAuthorization
	}
	return []models.User{alice, bob, mentor, admin}, nil
}

func (fakeUsers) UpdateRole(_ context.Context, actor models.User, id string, role models.Role) (*models.User, error) {
	if !policy.CanChangeRoles(actor.Role) {
		return nil, common.ErrAuthorization
	}
	if !role.Valid() {
		return nil, common.Invalid("role", "is not a known role")
	}
	u := alice
	u.Role = role
	return &u, nil
}

type fakeDashboard struct{ owner string }

func (f *fakeDashboard) Summary(_ context.Context, actor models.User, ownerID string) (models.DashboardSummary, error) {
	f.owner = policy.ScopeOwner(actor, ownerID)
	return models.DashboardSummary{DrugTests: 1, Devotions: 2}, nil
}

type fakeUploads struct {
	filename string
	data     []byte
}

func (f *fakeUploads) Upload(_ context.Context, filename string, body io.Reader, size int64) (string, error) {
	f.filename = filename
	f.data, _ = io.ReadAll(body)
	return "/api/files/uploads/2024/01/01/x.png", nil
}

func (f *fakeUploads) DownloadURL(_ context.Context, key string) (string, error) {
	if key != "uploads/2024/01/01/x.png" {
		return "", common.ErrorNotFound
	}
	return "https://s3.local/" + key + "?sig=1", nil
}

type fakeDB struct{ err error }

func (f fakeDB) PingContext(context.Context) error { return f.err }

func (m *memStore[T]) filter() records.Filter {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastFilter
}
