package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"lnct-quiz-console/internal/domain"
)

// StateStore persists principals and score histories (JSON file, SQLite, Postgres).
type StateStore interface {
	Load(ctx context.Context) (domain.Snapshot, error)
	Save(ctx context.Context, snapshot domain.Snapshot) error
}

// Options wires a QuizService. History is required; Store may be nil for a
// purely in-memory run.
type Options struct {
	Admin   AdminCredential
	Catalog CatalogRepository
	History ScoreHistoryStore
	Store   StateStore
	Rand    *rand.Rand
	Clock   func() time.Time
}

// QuizService composes the identity store, the session slot, the quiz engine
// and score history behind the operations the console exposes.
type QuizService struct {
	identities *IdentityStore
	sessions   *SessionManager
	engine     *QuizEngine
	history    ScoreHistoryStore
	store      StateStore
}

func NewQuizService(opts Options) *QuizService {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	identities := NewIdentityStore(opts.Admin.Username)
	sessions := NewSessionManager(opts.Admin, identities)
	return &QuizService{
		identities: identities,
		sessions:   sessions,
		engine:     NewQuizEngineWithClock(sessions, opts.Catalog, opts.History, opts.Rand, clock),
		history:    opts.History,
		store:      opts.Store,
	}
}

// NextRegistrationID previews the id the next registration receives.
func (s *QuizService) NextRegistrationID() string {
	return s.identities.NextRegistrationID()
}

// IsUsernameAvailable reports whether a username can be registered.
func (s *QuizService) IsUsernameAvailable(username string) bool {
	return s.identities.IsUsernameAvailable(username)
}

// Register creates a student account.
func (s *QuizService) Register(_ context.Context, reg domain.Registration) (domain.Principal, error) {
	return s.identities.Register(reg)
}

// SeedIfEmpty stores p when no principal exists yet. It reports whether p was stored.
func (s *QuizService) SeedIfEmpty(p domain.Principal) bool {
	if s.identities.Len() > 0 {
		return false
	}
	s.identities.Put(p)
	return true
}

// Login opens the session for the admin or a student.
func (s *QuizService) Login(_ context.Context, username, password string) (domain.Identity, error) {
	session, err := s.sessions.Login(username, password)
	return s.resolve(session), err
}

// Logout closes the session and returns who was logged out.
func (s *QuizService) Logout(_ context.Context) (domain.Identity, error) {
	previous, err := s.sessions.Logout()
	if err != nil {
		return domain.Identity{Kind: domain.LoggedOut}, err
	}
	return s.resolve(previous), nil
}

// CurrentPrincipal resolves the session without side effects.
func (s *QuizService) CurrentPrincipal(_ context.Context) domain.Identity {
	return s.resolve(s.sessions.Current())
}

// Profile returns the caller's identity; any session may view its own profile.
func (s *QuizService) Profile(_ context.Context) (domain.Identity, error) {
	session, err := s.sessions.RequireAny()
	if err != nil {
		return domain.Identity{Kind: domain.LoggedOut}, err
	}
	return s.resolve(session), nil
}

// UpdateProfile changes one field of the logged-in student's profile.
func (s *QuizService) UpdateProfile(_ context.Context, field domain.ProfileField, value string) (domain.Principal, error) {
	id, err := s.sessions.RequireStudent()
	if err != nil {
		return domain.Principal{}, err
	}
	return s.identities.UpdateField(id, field, value)
}

// ChangePassword replaces the logged-in student's password after verifying the current one.
func (s *QuizService) ChangePassword(_ context.Context, oldPassword, newPassword string) error {
	id, err := s.sessions.RequireStudent()
	if err != nil {
		return err
	}
	return s.identities.VerifyAndChangePassword(id, oldPassword, newPassword)
}

// ListCategories returns the catalog's category names.
func (s *QuizService) ListCategories(ctx context.Context) ([]string, error) {
	return s.engine.ListCategories(ctx)
}

// StartQuiz opens a step-wise attempt for the logged-in student.
func (s *QuizService) StartQuiz(ctx context.Context, category string) (*Attempt, error) {
	return s.engine.Start(ctx, category)
}

// AttemptQuiz runs a complete attempt and records its score.
func (s *QuizService) AttemptQuiz(ctx context.Context, category string, answerer Answerer) (domain.ScoreRecord, error) {
	return s.engine.AttemptQuiz(ctx, category, answerer)
}

// ScoreHistory returns the logged-in student's score records, oldest first.
func (s *QuizService) ScoreHistory(ctx context.Context) ([]domain.ScoreRecord, error) {
	id, err := s.sessions.RequireStudent()
	if err != nil {
		return nil, err
	}
	return s.history.HistoryFor(ctx, id)
}

// HistoryFor reads any student's history without a session. Operator tooling only.
func (s *QuizService) HistoryFor(ctx context.Context, registrationID string) ([]domain.ScoreRecord, error) {
	return s.history.HistoryFor(ctx, registrationID)
}

// Principal looks up a student by registration id.
func (s *QuizService) Principal(registrationID string) (domain.Principal, error) {
	return s.identities.Get(registrationID)
}

// Load restores state from the store. A missing store empties the service and
// is not an error. Any other failure also empties it and is wrapped in
// domain.ErrPersistence. Histories kept outside the process (Redis) are
// cleared as well, so a reused registration id never inherits old records.
func (s *QuizService) Load(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	snapshot, err := s.store.Load(ctx)
	if errors.Is(err, domain.ErrStoreNotFound) {
		return s.reset(ctx)
	}
	if err != nil {
		loadErr := fmt.Errorf("%w: load state: %w", domain.ErrPersistence, err)
		if resetErr := s.reset(ctx); resetErr != nil {
			return errors.Join(loadErr, resetErr)
		}
		return loadErr
	}
	s.identities.Restore(snapshot.Students)
	if err := s.history.Replace(ctx, snapshot.Scores); err != nil {
		return fmt.Errorf("%w: restore score history: %w", domain.ErrPersistence, err)
	}
	return nil
}

func (s *QuizService) reset(ctx context.Context) error {
	s.identities.Restore(nil)
	if err := s.history.Replace(ctx, nil); err != nil {
		return fmt.Errorf("%w: clear score history: %w", domain.ErrPersistence, err)
	}
	return nil
}

// Snapshot captures the current in-memory state.
func (s *QuizService) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	snapshot := domain.NewSnapshot()
	snapshot.Students = s.identities.Snapshot()
	scores, err := s.history.All(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	for id, records := range scores {
		snapshot.Scores[id] = records
	}
	return snapshot, nil
}

// Save writes the current state to the store.
func (s *QuizService) Save(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("%w: snapshot state: %w", domain.ErrPersistence, err)
	}
	if err := s.store.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("%w: save state: %w", domain.ErrPersistence, err)
	}
	return nil
}

func (s *QuizService) resolve(session domain.Session) domain.Identity {
	identity := domain.Identity{Kind: session.Kind}
	if session.Kind == domain.LoggedInStudent {
		if p, err := s.identities.Get(session.RegistrationID); err == nil {
			identity.Principal = p
		}
	}
	return identity
}
