package app

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"lnct-quiz-console/internal/domain"
)

const registrationPrefix = "LNCT"

var registrationPattern = regexp.MustCompile(`^` + registrationPrefix + `(\d{3,})$`)

// IdentityStore owns principal records keyed by registration id.
type IdentityStore struct {
	adminUsername string

	mu         sync.RWMutex
	principals map[string]domain.Principal
}

// NewIdentityStore builds an empty store. adminUsername is reserved at registration.
func NewIdentityStore(adminUsername string) *IdentityStore {
	return &IdentityStore{
		adminUsername: adminUsername,
		principals:    make(map[string]domain.Principal),
	}
}

// NextRegistrationID returns the id the next registration will receive.
func (s *IdentityStore) NextRegistrationID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextRegistrationIDLocked()
}

// nextRegistrationIDLocked ignores ids that do not match LNCT### so a stray key
// can never push the sequence backwards onto an id already in use.
func (s *IdentityStore) nextRegistrationIDLocked() string {
	highest := 0
	for id := range s.principals {
		m := registrationPattern.FindStringSubmatch(id)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%03d", registrationPrefix, highest+1)
}

// IsUsernameAvailable reports whether candidate is unused and not the admin username.
func (s *IdentityStore) IsUsernameAvailable(candidate string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usernameAvailableLocked(candidate)
}

func (s *IdentityStore) usernameAvailableLocked(candidate string) bool {
	if candidate == s.adminUsername {
		return false
	}
	for _, p := range s.principals {
		if p.Username == candidate {
			return false
		}
	}
	return true
}

// Register validates reg and stores a new principal under a fresh id.
func (s *IdentityStore) Register(reg domain.Registration) (domain.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(reg.Username) == "" {
		return domain.Principal{}, &domain.RegistrationError{Reason: domain.ReasonEmptyUsername}
	}
	if !s.usernameAvailableLocked(reg.Username) {
		return domain.Principal{}, &domain.RegistrationError{Reason: domain.ReasonUsernameTaken}
	}
	if strings.TrimSpace(reg.Password) == "" {
		return domain.Principal{}, &domain.RegistrationError{Reason: domain.ReasonEmptyPassword}
	}

	principal := domain.Principal{
		RegistrationID: s.nextRegistrationIDLocked(),
		Username:       reg.Username,
		Password:       reg.Password,
		FullName:       reg.FullName,
		DateOfBirth:    reg.DateOfBirth,
		Phone:          reg.Phone,
		Email:          reg.Email,
		Program:        reg.Program,
		AcademicYear:   reg.AcademicYear,
		Address:        reg.Address,
		GuardianName:   reg.GuardianName,
	}
	s.principals[principal.RegistrationID] = principal
	return principal, nil
}

// Put stores p as-is. Used for seeding; it bypasses registration checks.
func (s *IdentityStore) Put(p domain.Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principals[p.RegistrationID] = p
}

// FindByCredentials returns the principal matching both fields exactly.
func (s *IdentityStore) FindByCredentials(username, password string) (domain.Principal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.sortedIDsLocked() {
		p := s.principals[id]
		if p.Username == username && p.Password == password {
			return p, true
		}
	}
	return domain.Principal{}, false
}

// Get returns the principal registered under id.
func (s *IdentityStore) Get(id string) (domain.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.principals[id]
	if !ok {
		return domain.Principal{}, domain.ErrPrincipalNotFound
	}
	return p, nil
}

// UpdateField changes one free-text profile field.
func (s *IdentityStore) UpdateField(id string, field domain.ProfileField, value string) (domain.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.principals[id]
	if !ok {
		return domain.Principal{}, domain.ErrPrincipalNotFound
	}
	if err := p.Set(field, value); err != nil {
		return domain.Principal{}, err
	}
	s.principals[id] = p
	return p, nil
}

// VerifyAndChangePassword replaces the password when oldPassword matches.
// On any error the stored secret is unchanged.
func (s *IdentityStore) VerifyAndChangePassword(id, oldPassword, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.principals[id]
	if !ok {
		return domain.ErrPrincipalNotFound
	}
	if p.Password != oldPassword {
		return domain.ErrPasswordMismatch
	}
	if strings.TrimSpace(newPassword) == "" {
		return domain.ErrEmptyPassword
	}
	p.Password = newPassword
	s.principals[id] = p
	return nil
}

// Len reports the number of registered principals.
func (s *IdentityStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.principals)
}

// Snapshot copies every principal keyed by registration id.
func (s *IdentityStore) Snapshot() map[string]domain.Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.Principal, len(s.principals))
	for id, p := range s.principals {
		out[id] = p
	}
	return out
}

// Restore replaces the store contents with principals.
func (s *IdentityStore) Restore(principals map[string]domain.Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principals = make(map[string]domain.Principal, len(principals))
	for id, p := range principals {
		if p.RegistrationID == "" {
			p.RegistrationID = id
		}
		s.principals[id] = p
	}
}

func (s *IdentityStore) sortedIDsLocked() []string {
	ids := make([]string, 0, len(s.principals))
	for id := range s.principals {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
