package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"biotrack/internal/domain"
)

// Store keeps users and measures in maps behind one lock, so a user delete
// can drop its measures atomically. Values are copied in and out.
type Store struct {
	mu          sync.RWMutex
	users       map[uint]domain.User
	measures    map[uint]domain.Measure
	nextUser    uint
	nextMeasure uint
}

func NewStore() *Store {
	return &Store{
		users:    make(map[uint]domain.User),
		measures: make(map[uint]domain.Measure),
	}
}

func (s *Store) Users() *UserRepo       { return &UserRepo{s: s} }
func (s *Store) Measures() *MeasureRepo { return &MeasureRepo{s: s} }

type UserRepo struct{ s *Store }

func (r *UserRepo) FindByID(_ context.Context, id uint) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) Save(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now().UTC()
	if u.ID == 0 {
		r.s.nextUser++
		u.ID = r.s.nextUser
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) DeleteByID(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.users, id)
	return nil
}

func (r *UserRepo) DeleteWithMeasures(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for mid, m := range r.s.measures {
		if m.UserID == id {
			delete(r.s.measures, mid)
		}
	}
	delete(r.s.users, id)
	return nil
}

func (r *UserRepo) ExistsByID(_ context.Context, id uint) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.users[id]
	return ok, nil
}

func (r *UserRepo) FindAll(_ context.Context) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.sortedUsers(func(domain.User) bool { return true }), nil
}

func (r *UserRepo) FindWithoutMeasures(_ context.Context) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	owners := make(map[uint]struct{})
	for _, m := range r.s.measures {
		owners[m.UserID] = struct{}{}
	}
	return r.s.sortedUsers(func(u domain.User) bool {
		_, has := owners[u.ID]
		return !has
	}), nil
}

func (r *UserRepo) Page(_ context.Context, offset, limit int, query string) ([]domain.User, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(query))
	matched := r.s.sortedUsers(func(u domain.User) bool {
		return q == "" ||
			strings.Contains(strings.ToLower(u.Name), q) ||
			strings.Contains(strings.ToLower(u.Email), q)
	})
	// newest first, like the SQL implementation
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := int64(len(matched))
	if offset >= len(matched) {
		return []domain.User{}, total, nil
	}
	end := len(matched)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return matched[offset:end], total, nil
}

// sortedUsers must be called with the lock held.
func (s *Store) sortedUsers(keep func(domain.User) bool) []domain.User {
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		if keep(u) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type MeasureRepo struct{ s *Store }

func (r *MeasureRepo) FindByID(_ context.Context, id uint) (*domain.Measure, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.measures[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *MeasureRepo) Save(_ context.Context, m *domain.Measure) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now().UTC()
	if m.ID == 0 {
		r.s.nextMeasure++
		m.ID = r.s.nextMeasure
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	stored := *m
	stored.User = nil
	r.s.measures[m.ID] = stored
	return nil
}

func (r *MeasureRepo) DeleteByID(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.measures, id)
	return nil
}

func (r *MeasureRepo) ExistsByID(_ context.Context, id uint) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.measures[id]
	return ok, nil
}

func (r *MeasureRepo) ListByUser(_ context.Context, userID uint) ([]domain.Measure, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.userMeasures(userID), nil
}

func (r *MeasureRepo) ListByUserOrderByDateDesc(_ context.Context, userID uint) ([]domain.Measure, error) {
	r.s.mu.RLock()
	ms := r.s.userMeasures(userID)
	r.s.mu.RUnlock()
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].MeasurementDate.Equal(ms[j].MeasurementDate) {
			return ms[i].ID > ms[j].ID
		}
		return ms[i].MeasurementDate.After(ms[j].MeasurementDate)
	})
	return ms, nil
}

func (r *MeasureRepo) FindLatestByUser(_ context.Context, userID uint) (*domain.Measure, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return domain.LatestMeasure(r.s.userMeasures(userID)), nil
}

func (r *MeasureRepo) CountByUser(_ context.Context, userID uint) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, m := range r.s.measures {
		if m.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *MeasureRepo) DeleteByUser(_ context.Context, userID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, m := range r.s.measures {
		if m.UserID == userID {
			delete(r.s.measures, id)
			n++
		}
	}
	return n, nil
}

// userMeasures returns the user's measures in id order; lock must be held.
func (s *Store) userMeasures(userID uint) []domain.Measure {
	out := make([]domain.Measure, 0)
	for _, m := range s.measures {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

var (
	_ domain.UserRepository    = (*UserRepo)(nil)
	_ domain.MeasureRepository = (*MeasureRepo)(nil)
)
