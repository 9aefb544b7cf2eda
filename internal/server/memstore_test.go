package server

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ghosthawk/ghosthawk/internal/db"
	"github.com/ghosthawk/ghosthawk/internal/scoring"
	"github.com/ghosthawk/ghosthawk/internal/types"
)

// memStore is an in-memory Store for handler tests.
type memStore struct {
	mu          sync.Mutex
	companies   map[uuid.UUID]types.Company
	byName      map[string]uuid.UUID
	experiences []types.Experience
	users       map[uuid.UUID]*db.User
	now         time.Time

	// err fails every data call when set; pingErr fails Ping.
	err     error
	pingErr error
	calls   int
}

var _ Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		companies: make(map[uuid.UUID]types.Company),
		byName:    make(map[string]uuid.UUID),
		users:     make(map[uuid.UUID]*db.User),
		now:       time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) enter() error {
	m.calls++
	return m.err
}

// addCompany stores a company directly, bypassing submission.
func (m *memStore) addCompany(name string, typ types.CompanyType, industry string) types.Company {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := types.Company{
		ID:        uuid.New(),
		Name:      name,
		Type:      typ,
		CreatedAt: m.now,
		UpdatedAt: m.now,
	}
	if industry != "" {
		c.Industry = &industry
	}
	m.companies[c.ID] = c
	m.byName[types.NormalizeCompanyName(name)] = c.ID
	return c
}

// addExperience stores an experience against companyID.
func (m *memStore) addExperience(companyID uuid.UUID, exp types.Experience) types.Experience {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp.ID = uuid.New()
	exp.CompanyID = companyID
	if exp.CreatedAt.IsZero() {
		exp.CreatedAt = m.now
	}
	if exp.ApplicationDate.IsZero() {
		exp.ApplicationDate = m.now.AddDate(0, 0, -7)
	}
	m.experiences = append(m.experiences, exp)
	return exp
}

func (m *memStore) Ping(context.Context) error {
	return m.pingErr
}

func (m *memStore) ListCompanyAggregates(_ context.Context, filter types.CompanyFilter) ([]types.CompanyAggregate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}

	var out []types.CompanyAggregate
	for _, c := range m.companies {
		if !matches(c, filter) {
			continue
		}
		var exps []types.Experience
		for _, e := range m.experiences {
			if e.CompanyID == c.ID {
				exps = append(exps, e)
			}
		}
		out = append(out, types.CompanyAggregate{Company: c, Counts: scoring.Tally(exps)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Company.ID.String() < out[j].Company.ID.String() })
	return out, nil
}

func matches(c types.Company, f types.CompanyFilter) bool {
	if f.Query != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.Query)) {
		return false
	}
	if f.Industry != "" && c.IndustryName() != f.Industry {
		return false
	}
	if f.Location != "" && (c.Location == nil || !strings.Contains(strings.ToLower(*c.Location), strings.ToLower(f.Location))) {
		return false
	}
	if f.Type != "" && c.Type != f.Type {
		return false
	}
	return true
}

func (m *memStore) ListMonthlyActivity(_ context.Context, since time.Time) ([]types.MonthlyActivity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}

	byMonth := make(map[string]*types.MonthlyActivity)
	companies := make(map[string]map[uuid.UUID]bool)
	for _, e := range m.experiences {
		if e.ApplicationDate.Before(since) {
			continue
		}
		month := e.ApplicationDate.UTC().Format("2006-01")
		a, ok := byMonth[month]
		if !ok {
			a = &types.MonthlyActivity{Month: month}
			byMonth[month] = a
			companies[month] = make(map[uuid.UUID]bool)
		}
		a.Experiences++
		if e.ReceivedResponse() {
			a.Responded++
		}
		companies[month][e.CompanyID] = true
		a.Companies = len(companies[month])
	}

	out := make([]types.MonthlyActivity, 0, len(byMonth))
	for _, a := range byMonth {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func (m *memStore) GetCompanyByID(_ context.Context, id uuid.UUID) (*types.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	c, ok := m.companies[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *memStore) ListExperiencesByCompany(_ context.Context, companyID uuid.UUID) ([]types.ReportedExperience, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}

	var out []types.ReportedExperience
	for i := len(m.experiences) - 1; i >= 0; i-- {
		e := m.experiences[i]
		if e.CompanyID != companyID {
			continue
		}
		re := types.ReportedExperience{Experience: e}
		if e.UserID != nil {
			if u, ok := m.users[*e.UserID]; ok {
				re.ReporterFirstName = u.FirstName
				re.ReporterLastName = u.LastName
			}
		}
		out = append(out, re)
	}
	return out, nil
}

func (m *memStore) SubmitExperience(_ context.Context, in types.CompanyUpsert, exp types.Experience) (*types.Experience, *types.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, nil, err
	}

	key := types.NormalizeCompanyName(in.Name)
	id, ok := m.byName[key]
	var c types.Company
	if ok {
		c = m.companies[id]
		c.UpdatedAt = m.now
	} else {
		c = types.Company{ID: uuid.New(), Name: in.Name, Type: in.Type, CreatedAt: m.now, UpdatedAt: m.now}
		m.byName[key] = c.ID
	}
	if c.Industry == nil && in.Industry != "" {
		industry := in.Industry
		c.Industry = &industry
	}
	if c.Location == nil && in.Location != "" {
		location := in.Location
		c.Location = &location
	}
	m.companies[c.ID] = c

	exp.ID = uuid.New()
	exp.CompanyID = c.ID
	exp.CreatedAt = m.now
	m.experiences = append(m.experiences, exp)
	return &exp, &c, nil
}

func (m *memStore) ListExperiencesByUser(_ context.Context, userID uuid.UUID) ([]types.UserExperience, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}

	var out []types.UserExperience
	for i := len(m.experiences) - 1; i >= 0; i-- {
		e := m.experiences[i]
		if e.UserID == nil || *e.UserID != userID {
			continue
		}
		out = append(out, types.UserExperience{Experience: e, Company: m.companies[e.CompanyID]})
	}
	return out, nil
}

func (m *memStore) CheckEmailExists(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return false, err
	}
	return m.userByEmail(email) != nil, nil
}

func (m *memStore) CreateUser(_ context.Context, email, passwordHash, firstName, lastName string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return uuid.Nil, err
	}
	if m.userByEmail(email) != nil {
		return uuid.Nil, db.ErrEmailTaken
	}
	u := &db.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: passwordHash,
		PasswordSet:  passwordHash != "",
		CreatedAt:    m.now,
		UpdatedAt:    m.now,
	}
	m.users[u.ID] = u
	return u.ID, nil
}

func (m *memStore) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	u := m.userByEmail(email)
	if u == nil {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) userByEmail(email string) *db.User {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}
