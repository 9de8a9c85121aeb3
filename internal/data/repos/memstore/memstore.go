package memstore

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/consciousness-backend/internal/data/repos"
	types "github.com/yungbote/consciousness-backend/internal/domain"
	"github.com/yungbote/consciousness-backend/internal/pkg/dbctx"
)

// Store is an in-process stand-in for the Postgres repos, with the same
// ordering, scoping and uniqueness behavior. Service and module tests use it
// when no database is available.
type Store struct {
	mu          sync.Mutex
	now         func() time.Time
	users       map[uuid.UUID]*types.User
	tokens      map[uuid.UUID]*types.UserToken
	profiles    map[uuid.UUID]*types.Profile
	reflections map[uuid.UUID]*types.Reflection
	analyses    map[uuid.UUID]*types.Analysis
}

func New() *Store {
	var tick int64
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &Store{
		// strictly increasing so created_at ordering is deterministic
		now: func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Millisecond)
		},
		users:       map[uuid.UUID]*types.User{},
		tokens:      map[uuid.UUID]*types.UserToken{},
		profiles:    map[uuid.UUID]*types.Profile{},
		reflections: map[uuid.UUID]*types.Reflection{},
		analyses:    map[uuid.UUID]*types.Analysis{},
	}
}

func (s *Store) Users() repos.UserRepo { return memUsers{s} }
func (s *Store) Tokens() repos.UserTokenRepo { return memTokens{s} }
func (s *Store) Profiles() repos.ProfileRepo { return memProfiles{s} }
func (s *Store) Reflections() repos.ReflectionRepo { return memReflections{s} }
func (s *Store) Analyses() repos.AnalysisRepo { return memAnalyses{s} }

// CountReflections reports stored reflections for userID.
func (s *Store) CountReflections(userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.reflections {
		if r.UserID == userID {
			n++
		}
	}
	return n
}

// CountAnalyses reports stored analyses for userID.
func (s *Store) CountAnalyses(userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.analyses {
		if a.UserID == userID {
			n++
		}
	}
	return n
}

// ---- users ----

type memUsers struct{ s *Store }

func (m memUsers) Create(_ dbctx.Context, users []*types.User) ([]*types.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range users {
		for _, existing := range m.s.users {
			if strings.EqualFold(existing.Email, u.Email) {
				return nil, gorm.ErrDuplicatedKey
			}
		}
	}
	for _, u := range users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		now := m.s.now()
		u.CreatedAt, u.UpdatedAt = now, now
		cp := *u
		m.s.users[u.ID] = &cp
	}
	return users, nil
}

func (m memUsers) GetByIDs(_ dbctx.Context, ids []uuid.UUID) ([]*types.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := []*types.User{}
	for _, id := range ids {
		if u, ok := m.s.users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m memUsers) GetByEmails(_ dbctx.Context, emails []string) ([]*types.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := []*types.User{}
	for _, e := range emails {
		for _, u := range m.s.users {
			if u.Email == e {
				cp := *u
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

func (m memUsers) EmailExists(dbc dbctx.Context, email string) (bool, error) {
	found, _ := m.GetByEmails(dbc, []string{email})
	return len(found) > 0, nil
}

// ---- tokens ----

type memTokens struct{ s *Store }

func (m memTokens) Create(_ dbctx.Context, tokens []*types.UserToken) ([]*types.UserToken, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, t := range tokens {
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		cp := *t
		m.s.tokens[t.ID] = &cp
	}
	return tokens, nil
}

func (m memTokens) filter(keep func(*types.UserToken) bool) []*types.UserToken {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := []*types.UserToken{}
	for _, t := range m.s.tokens {
		if keep(t) {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out
}

func (m memTokens) GetByUserIDs(_ dbctx.Context, ids []uuid.UUID) ([]*types.UserToken, error) {
	set := map[uuid.UUID]bool{}
	for _, id := range ids {
		set[id] = true
	}
	return m.filter(func(t *types.UserToken) bool { return set[t.UserID] }), nil
}

func (m memTokens) GetByAccessTokens(_ dbctx.Context, access []string) ([]*types.UserToken, error) {
	set := map[string]bool{}
	for _, a := range access {
		set[a] = true
	}
	return m.filter(func(t *types.UserToken) bool { return set[t.AccessToken] }), nil
}

func (m memTokens) GetByRefreshTokens(_ dbctx.Context, refresh []string) ([]*types.UserToken, error) {
	set := map[string]bool{}
	for _, r := range refresh {
		set[r] = true
	}
	return m.filter(func(t *types.UserToken) bool { return set[t.RefreshToken] }), nil
}

func (m memTokens) FullDeleteByTokens(dbc dbctx.Context, tokens []*types.UserToken) error {
	ids := make([]uuid.UUID, 0, len(tokens))
	for _, t := range tokens {
		ids = append(ids, t.ID)
	}
	return m.FullDeleteByIDs(dbc, ids)
}

func (m memTokens) FullDeleteByIDs(_ dbctx.Context, ids []uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, id := range ids {
		delete(m.s.tokens, id)
	}
	return nil
}

func (m memTokens) DeleteExpired(_ dbctx.Context, before time.Time) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var n int64
	for id, t := range m.s.tokens {
		if t.ExpiresAt.Before(before) {
			delete(m.s.tokens, id)
			n++
		}
	}
	return n, nil
}

// ---- profiles ----

type memProfiles struct{ s *Store }

func (m memProfiles) GetByUserID(_ dbctx.Context, userID uuid.UUID) (*types.Profile, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.profiles[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m memProfiles) Upsert(_ dbctx.Context, profile *types.Profile) (*types.Profile, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	now := m.s.now()
	cp := *profile
	if existing, ok := m.s.profiles[profile.UserID]; ok {
		cp.ID = existing.ID
		cp.CreatedAt = existing.CreatedAt
	} else {
		if cp.ID == uuid.Nil {
			cp.ID = uuid.New()
		}
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	m.s.profiles[profile.UserID] = &cp
	out := cp
	return &out, nil
}

// ---- reflections ----

type memReflections struct{ s *Store }

func (m memReflections) Create(_ dbctx.Context, r *types.Reflection) (*types.Reflection, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, existing := range m.s.reflections {
		if existing.UserID == r.UserID && sameDay(existing.ReflectionDate, r.ReflectionDate) {
			return nil, gorm.ErrDuplicatedKey
		}
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	r.CreatedAt = m.s.now()
	cp := *r
	m.s.reflections[r.ID] = &cp
	return r, nil
}

func (m memReflections) GetByUserAndDate(_ dbctx.Context, userID uuid.UUID, day datatypes.Date) (*types.Reflection, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, r := range m.s.reflections {
		if r.UserID == userID && sameDay(r.ReflectionDate, day) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m memReflections) GetByIDForUser(_ dbctx.Context, id, userID uuid.UUID) (*types.Reflection, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r, ok := m.s.reflections[id]
	if !ok || r.UserID != userID {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m memReflections) ListRecent(dbc dbctx.Context, userID uuid.UUID, n int) ([]*types.Reflection, error) {
	return m.ListByUser(dbc, userID, n, 0)
}

func (m memReflections) ListByUser(_ dbctx.Context, userID uuid.UUID, limit, offset int) ([]*types.Reflection, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	all := []*types.Reflection{}
	for _, r := range m.s.reflections {
		if r.UserID == userID {
			cp := *r
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		di, dj := time.Time(all[i].ReflectionDate), time.Time(all[j].ReflectionDate)
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return page(all, limit, offset), nil
}

// ---- analyses ----

type memAnalyses struct{ s *Store }

func (m memAnalyses) Create(_ dbctx.Context, a *types.Analysis) (*types.Analysis, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if r, ok := m.s.reflections[a.ReflectionID]; !ok || r.UserID != a.UserID {
		return nil, gorm.ErrForeignKeyViolated
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = m.s.now()
	cp := *a
	cp.Reflection = nil
	m.s.analyses[a.ID] = &cp
	return a, nil
}

func (m memAnalyses) sorted(keep func(*types.Analysis) bool) []*types.Analysis {
	out := []*types.Analysis{}
	for _, a := range m.s.analyses {
		if !keep(a) {
			continue
		}
		cp := *a
		if r, ok := m.s.reflections[a.ReflectionID]; ok {
			rc := *r
			cp.Reflection = &rc
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m memAnalyses) GetLatestByUser(_ dbctx.Context, userID uuid.UUID) (*types.Analysis, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	all := m.sorted(func(a *types.Analysis) bool { return a.UserID == userID })
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (m memAnalyses) GetByReflectionForUser(_ dbctx.Context, reflectionID, userID uuid.UUID) (*types.Analysis, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	all := m.sorted(func(a *types.Analysis) bool { return a.UserID == userID && a.ReflectionID == reflectionID })
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (m memAnalyses) ListByUser(_ dbctx.Context, userID uuid.UUID, limit, offset int) ([]*types.Analysis, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return page(m.sorted(func(a *types.Analysis) bool { return a.UserID == userID }), limit, offset), nil
}

func sameDay(a, b datatypes.Date) bool {
	return time.Time(a).Equal(time.Time(b))
}

func page[T any](all []T, limit, offset int) []T {
	if limit <= 0 || offset >= len(all) {
		return []T{}
	}
	if offset < 0 {
		offset = 0
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}
