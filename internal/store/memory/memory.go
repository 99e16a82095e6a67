// Package memory provides process-local stores for development, the backend
// emulator mode and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-trackjournal/pkg/auth"
	"github.com/goliatone/go-trackjournal/pkg/store"
	"github.com/goliatone/go-trackjournal/pkg/vehicle"
)

// Store keeps records, profiles and accounts in maps guarded by a single
// mutex. The zero value is not usable; call New.
type Store struct {
	mu       sync.RWMutex
	now      store.Clock
	newID    func() string
	seq      uint64
	vehicles map[string]entry
	profiles map[string]store.Profile
	accounts map[string]auth.Account
}

type entry struct {
	record vehicle.Vehicle
	seq    uint64
}

var (
	_ store.RecordStore  = (*Store)(nil)
	_ store.ProfileStore = (*Store)(nil)
	_ auth.AccountStore  = (*Store)(nil)
)

// Option configures a Store.
type Option func(*Store)

// WithClock pins the timestamps written by the store.
func WithClock(clock store.Clock) Option {
	return func(s *Store) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator replaces the uuid generator used for new records.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		now:      time.Now,
		newID:    uuid.NewString,
		vehicles: make(map[string]entry),
		profiles: make(map[string]store.Profile),
		accounts: make(map[string]auth.Account),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Store) List(ctx context.Context, ownerID string) ([]vehicle.Vehicle, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.Normalize(err, store.FallbackList)
	}
	s.mu.RLock()
	matches := make([]entry, 0)
	for _, e := range s.vehicles {
		if e.record.OwnerID == ownerID {
			matches = append(matches, e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if !a.record.CreatedAt.Equal(b.record.CreatedAt) {
			return a.record.CreatedAt.After(b.record.CreatedAt)
		}
		return a.seq > b.seq
	})
	out := make([]vehicle.Vehicle, len(matches))
	for i, e := range matches {
		out[i] = e.record
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id string) (vehicle.Vehicle, error) {
	if err := ctx.Err(); err != nil {
		return vehicle.Vehicle{}, store.Normalize(err, store.FallbackGet)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.vehicles[id]
	if !ok {
		return vehicle.Vehicle{}, store.NotFound()
	}
	return e.record, nil
}

func (s *Store) Create(ctx context.Context, ownerID string, data vehicle.Data) (vehicle.Vehicle, error) {
	if err := ctx.Err(); err != nil {
		return vehicle.Vehicle{}, store.Normalize(err, store.FallbackCreate)
	}
	now := s.now()
	record := vehicle.Vehicle{
		ID:        s.newID(),
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	vehicle.FullPatch(data).Apply(&record)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.vehicles[record.ID] = entry{record: record, seq: s.seq}
	return record, nil
}

func (s *Store) Update(ctx context.Context, id string, patch vehicle.Patch) (vehicle.Vehicle, error) {
	if err := ctx.Err(); err != nil {
		return vehicle.Vehicle{}, store.Normalize(err, store.FallbackUpdate)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.vehicles[id]
	if !ok {
		return vehicle.Vehicle{}, store.NotFound()
	}
	patch.Apply(&e.record)
	e.record.UpdatedAt = s.now()
	s.vehicles[id] = e
	return e.record, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return store.Normalize(err, store.FallbackDelete)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vehicles[id]; !ok {
		return store.NotFound()
	}
	delete(s.vehicles, id)
	return nil
}

// CreateProfile writes (or overwrites) the profile document for uid.
func (s *Store) CreateProfile(ctx context.Context, uid, email string) error {
	if err := ctx.Err(); err != nil {
		return store.Normalize(err, store.FallbackCreateProfile)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[uid] = store.Profile{ID: uid, Email: email, CreatedAt: s.now()}
	return nil
}

func (s *Store) GetProfile(ctx context.Context, uid string) (store.Profile, error) {
	if err := ctx.Err(); err != nil {
		return store.Profile{}, store.Normalize(err, store.FallbackGetProfile)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[uid]
	if !ok {
		return store.Profile{}, store.ProfileNotFound()
	}
	return p, nil
}

// CreateAccount stores account. Emails are unique ignoring case.
func (s *Store) CreateAccount(ctx context.Context, account auth.Account) error {
	if err := ctx.Err(); err != nil {
		return auth.Normalize(err, auth.FallbackSignUp)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.UID]; ok {
		return auth.NewError(auth.CodeUnknown, "account already exists")
	}
	if account.Email != "" {
		for _, existing := range s.accounts {
			if strings.EqualFold(existing.Email, account.Email) {
				return auth.ErrEmailAlreadyInUse
			}
		}
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = s.now()
	}
	s.accounts[account.UID] = account
	return nil
}

func (s *Store) AccountByEmail(ctx context.Context, email string) (auth.Account, error) {
	return s.findAccount(ctx, func(a auth.Account) bool {
		return a.Email != "" && strings.EqualFold(a.Email, email)
	})
}

func (s *Store) AccountBySubject(ctx context.Context, provider auth.Provider, subject string) (auth.Account, error) {
	return s.findAccount(ctx, func(a auth.Account) bool {
		return a.Provider == provider && a.Subject == subject
	})
}

func (s *Store) AccountByUID(ctx context.Context, uid string) (auth.Account, error) {
	if err := ctx.Err(); err != nil {
		return auth.Account{}, auth.Normalize(err, auth.FallbackSignIn)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[uid]
	if !ok {
		return auth.Account{}, auth.ErrUserNotFound
	}
	return a, nil
}

func (s *Store) UpdatePassword(ctx context.Context, uid, passwordHash string) error {
	return s.mutateAccount(ctx, uid, func(a *auth.Account) { a.PasswordHash = passwordHash })
}

func (s *Store) TouchSignIn(ctx context.Context, uid string, at time.Time) error {
	return s.mutateAccount(ctx, uid, func(a *auth.Account) { a.LastSignInAt = at })
}

func (s *Store) findAccount(ctx context.Context, match func(auth.Account) bool) (auth.Account, error) {
	if err := ctx.Err(); err != nil {
		return auth.Account{}, auth.Normalize(err, auth.FallbackSignIn)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if match(a) {
			return a, nil
		}
	}
	return auth.Account{}, auth.ErrUserNotFound
}

func (s *Store) mutateAccount(ctx context.Context, uid string, fn func(*auth.Account)) error {
	if err := ctx.Err(); err != nil {
		return auth.Normalize(err, auth.FallbackSignIn)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[uid]
	if !ok {
		return auth.ErrUserNotFound
	}
	fn(&a)
	s.accounts[uid] = a
	return nil
}
