// Package auth holds the user list and the current session. Users and
// the active session survive restarts through the injected snapshot
// store; everything else in the system is rebuilt per process.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"

	"tipsy/backend/internal/config"
	"tipsy/backend/internal/models"
	"tipsy/backend/internal/storage"
)

var (
	// ErrEmailTaken signals a registration attempt with an email that
	// already has an account. Callers must check for it; it is a
	// rejection value, not a fault.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials signals a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotFound signals an unknown user id.
	ErrNotFound = errors.New("user not found")
)

// Service owns the user collection and the current session.
type Service struct {
	mu        sync.RWMutex
	snapshots storage.Snapshots
	users     []models.User
	current   *models.User
}

// NewService loads users and the active session from the snapshot
// store, seeding the initial accounts when none are stored yet.
func NewService(snapshots storage.Snapshots) (*Service, error) {
	s := &Service{snapshots: snapshots}

	blob, ok, err := snapshots.Load(storage.KeyUsers)
	if err != nil {
		return nil, fmt.Errorf("load users snapshot: %w", err)
	}
	if ok {
		if err := json.Unmarshal(blob, &s.users); err != nil {
			return nil, fmt.Errorf("decode users snapshot: %w", err)
		}
	} else {
		s.users = seedUsers()
		if err := s.saveUsers(); err != nil {
			return nil, err
		}
	}

	blob, ok, err = snapshots.Load(storage.KeyCurrentUser)
	if err != nil {
		return nil, fmt.Errorf("load session snapshot: %w", err)
	}
	if ok {
		var u models.User
		if err := json.Unmarshal(blob, &u); err != nil {
			return nil, fmt.Errorf("decode session snapshot: %w", err)
		}
		s.current = &u
	}

	return s, nil
}

func intPtr(v int) *int { return &v }

func seedUsers() []models.User {
	return []models.User{
		{ID: "u1", Email: "admin@tipsy.com", Password: "password", Role: models.RoleAdmin, AnonymousID: "Admin"},
		{ID: "u2", Email: "user1@tipsy.com", Password: "password", Role: models.RoleEmployee, Reputation: intPtr(25), AnonymousID: "Employee #18432"},
		{ID: "u3", Email: "user2@tipsy.com", Password: "password", Role: models.RoleEmployee, Reputation: intPtr(10), AnonymousID: "Employee #58291"},
		{ID: "u4", Email: "user3@tipsy.com", Password: "password", Role: models.RoleEmployee, Reputation: intPtr(50), AnonymousID: "Employee #93104"},
	}
}

// NewAnonymousID returns a fresh pseudonymous display label.
func NewAnonymousID() string {
	return fmt.Sprintf("Employee #%d", 10000+rand.Intn(90000))
}

// saveUsers persists the user list. Callers hold at least a read lock.
func (s *Service) saveUsers() error {
	blob, err := json.Marshal(s.users)
	if err != nil {
		return err
	}
	if err := s.snapshots.Save(storage.KeyUsers, blob); err != nil {
		log.Printf("ERROR: Failed to persist users snapshot: %v", err)
		return err
	}
	return nil
}

func (s *Service) saveCurrent() error {
	if s.current == nil {
		return s.snapshots.Delete(storage.KeyCurrentUser)
	}
	blob, err := json.Marshal(s.current)
	if err != nil {
		return err
	}
	return s.snapshots.Save(storage.KeyCurrentUser, blob)
}

// Login checks the credentials, records the session and returns the
// matched user.
func (s *Service) Login(email, password string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].Email == email && s.users[i].Password == password {
			u := s.users[i]
			s.current = &u
			if err := s.saveCurrent(); err != nil {
				log.Printf("ERROR: Failed to persist session: %v", err)
			}
			return u, nil
		}
	}
	return models.User{}, ErrInvalidCredentials
}

// Register creates an employee account and logs it in. The email must
// be unused; a duplicate leaves the user list untouched.
func (s *Service) Register(email, password string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].Email == email {
			return models.User{}, ErrEmailTaken
		}
	}

	user := models.User{
		ID:          fmt.Sprintf("u%d", len(s.users)+1),
		Email:       email,
		Password:    password,
		Role:        models.RoleEmployee,
		Reputation:  intPtr(config.RegisterReputation),
		AnonymousID: NewAnonymousID(),
	}
	s.users = append(s.users, user)
	if err := s.saveUsers(); err != nil {
		// roll the append back so a failed persist does not leave a
		// phantom account
		s.users = s.users[:len(s.users)-1]
		return models.User{}, err
	}

	s.current = &user
	if err := s.saveCurrent(); err != nil {
		log.Printf("ERROR: Failed to persist session: %v", err)
	}
	return user, nil
}

// Logout clears the session.
func (s *Service) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	if err := s.saveCurrent(); err != nil {
		log.Printf("ERROR: Failed to clear session snapshot: %v", err)
	}
}

// CurrentUser returns a copy of the session user, or nil when nobody
// is logged in.
func (s *Service) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil
	}
	u := *s.current
	return &u
}

// IsAdmin reports whether the active session belongs to triage staff.
func (s *Service) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil && s.current.IsAdmin()
}

// Users returns a copy of the user collection.
func (s *Service) Users() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, len(s.users))
	copy(out, s.users)
	return out
}

// UserByID returns the user with the given real id.
func (s *Service) UserByID(id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.users {
		if s.users[i].ID == id {
			return s.users[i], nil
		}
	}
	return models.User{}, ErrNotFound
}

// AdjustReputation moves a user's reputation by delta and persists the
// list. Users without a reputation field (admins) are left untouched.
// There is deliberately no floor: repeated downvotes can push a
// reporter negative.
func (s *Service) AdjustReputation(userID string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].ID != userID {
			continue
		}
		if s.users[i].Reputation == nil {
			return nil
		}
		updated := *s.users[i].Reputation + delta
		s.users[i].Reputation = &updated

		// keep the cached session in step with the list
		if s.current != nil && s.current.ID == userID {
			cur := updated
			s.current.Reputation = &cur
			if err := s.saveCurrent(); err != nil {
				log.Printf("ERROR: Failed to persist session: %v", err)
			}
		}
		return s.saveUsers()
	}
	return ErrNotFound
}
