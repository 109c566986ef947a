// Package memstore is an in-process repository.Store used for local development and tests.
package memstore

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/model"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/repository"
	"github.com/oklog/ulid/v2"
)

// Store keeps every record in maps guarded by a single RWMutex.
// Records are copied on the way in and out so callers never share state with the store.
type Store struct {
	mu sync.RWMutex

	items     map[string]*model.Item
	itemOrder []string

	users    map[string]*model.User
	byEmail  map[string]string // lower(email) -> id
	byGoogle map[string]string

	donations     map[string]*model.Donation
	donationOrder []string
}

var _ repository.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		items:     make(map[string]*model.Item),
		users:     make(map[string]*model.User),
		byEmail:   make(map[string]string),
		byGoogle:  make(map[string]string),
		donations: make(map[string]*model.Donation),
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() error { return nil }

func (s *Store) CreateItem(_ context.Context, item *model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.ID = ulid.Make().String()
	c := *item
	s.items[c.ID] = &c
	s.itemOrder = append(s.itemOrder, c.ID)
	return nil
}

func (s *Store) ListItems(context.Context) ([]*model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Item, 0, len(s.itemOrder))
	for _, id := range s.itemOrder {
		c := *s.items[id]
		out = append(out, &c)
	}
	return out, nil
}

func (s *Store) GetItem(_ context.Context, id string) (*model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, repository.ErrItemNotFound
	}
	c := *item
	return &c, nil
}

func (s *Store) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	emailKey := strings.ToLower(user.Email)
	if _, ok := s.byEmail[emailKey]; ok {
		return repository.ErrEmailExists
	}
	if user.GoogleID != nil {
		if _, ok := s.byGoogle[*user.GoogleID]; ok {
			return repository.ErrGoogleIDExists
		}
	}

	user.ID = ulid.Make().String()
	stored := user.Clone()
	s.users[stored.ID] = stored
	s.byEmail[emailKey] = stored.ID
	if stored.GoogleID != nil {
		s.byGoogle[*stored.GoogleID] = stored.ID
	}
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userLocked(id)
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userLocked(s.byEmail[strings.ToLower(email)])
}

func (s *Store) GetUserByGoogleID(_ context.Context, googleID string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userLocked(s.byGoogle[googleID])
}

func (s *Store) UpdateUser(_ context.Context, id string, patch *model.UserPatch) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	if patch.Email != nil {
		if owner, taken := s.byEmail[strings.ToLower(*patch.Email)]; taken && owner != id {
			return nil, repository.ErrEmailExists
		}
	}
	if patch.GoogleID != nil {
		if owner, taken := s.byGoogle[*patch.GoogleID]; taken && owner != id {
			return nil, repository.ErrGoogleIDExists
		}
	}

	next := current.Clone()
	patch.Apply(next, nowUTC())

	delete(s.byEmail, strings.ToLower(current.Email))
	s.byEmail[strings.ToLower(next.Email)] = id
	if current.GoogleID != nil {
		delete(s.byGoogle, *current.GoogleID)
	}
	if next.GoogleID != nil {
		s.byGoogle[*next.GoogleID] = id
	}
	s.users[id] = next

	return next.Clone(), nil
}

func (s *Store) userLocked(id string) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u.Clone(), nil
}

func (s *Store) CreateDonation(_ context.Context, d *model.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d.ID = ulid.Make().String()
	c := *d
	s.donations[c.ID] = &c
	s.donationOrder = append(s.donationOrder, c.ID)
	return nil
}

func (s *Store) ListDonations(_ context.Context, filter model.DonationFilter) ([]*model.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*model.Donation, 0)
	for _, id := range s.donationOrder {
		d := s.donations[id]
		if filter.DonorID != "" && d.DonorID != filter.DonorID {
			continue
		}
		c := *d
		matched = append(matched, &c)
	}

	slices.SortStableFunc(matched, func(a, b *model.Donation) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	if limit := filter.EffectiveLimit(); len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *Store) GetDonation(_ context.Context, id string) (*model.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.donations[id]
	if !ok {
		return nil, repository.ErrDonationNotFound
	}
	c := *d
	return &c, nil
}
