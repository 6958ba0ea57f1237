package services

import (
	"sync"
	"time"

	"certification-portal-api/models"
)

// memoryStore is an in-memory WorkflowStore used to exercise the engine
// without a database. beforeCommit runs outside the lock right before a
// transition commit, so tests can interleave a competing writer; commitErr
// forces the whole commit to fail.
type memoryStore struct {
	mu           sync.Mutex
	apps         map[int]models.Application
	history      []models.ApplicationStatusHistory
	milestones   []models.PaymentMilestone
	events       []models.WorkflowEvent
	nextAppID    int
	nextEntryID  int
	nextMilestID int
	commitErr    error
	beforeCommit func()
}

func newMemoryStore() *memoryStore {
	return &memoryStore{apps: make(map[int]models.Application)}
}

func (s *memoryStore) GetApplication(applicationID int) (models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[applicationID]
	if !ok {
		return models.Application{}, ErrApplicationNotFound
	}
	return app, nil
}

func (s *memoryStore) CreateApplication(app *models.Application, first *models.ApplicationStatusHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextAppID++
	app.ApplicationID = s.nextAppID
	s.apps[app.ApplicationID] = *app

	s.nextEntryID++
	first.HistoryID = s.nextEntryID
	first.ApplicationID = app.ApplicationID
	s.history = append(s.history, *first)
	return nil
}

func (s *memoryStore) CommitTransition(commit TransitionCommit) (models.Application, error) {
	if s.beforeCommit != nil {
		hook := s.beforeCommit
		s.beforeCommit = nil
		hook()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.commitErr != nil {
		return models.Application{}, &StorageError{Op: "commit transition", Err: s.commitErr}
	}

	current, ok := s.apps[commit.Application.ApplicationID]
	if !ok {
		return models.Application{}, ErrApplicationNotFound
	}
	if current.Version != commit.ExpectedVersion {
		return models.Application{}, ErrConcurrentModification
	}

	s.apps[commit.Application.ApplicationID] = commit.Application

	entry := commit.Entry
	s.nextEntryID++
	entry.HistoryID = s.nextEntryID
	s.history = append(s.history, entry)

	for _, m := range commit.NewMilestones {
		s.nextMilestID++
		m.MilestoneID = s.nextMilestID
		s.milestones = append(s.milestones, m)
	}
	s.events = append(s.events, commit.Events...)
	return commit.Application, nil
}

func (s *memoryStore) History(applicationID int) ([]models.ApplicationStatusHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ApplicationStatusHistory
	for _, e := range s.history {
		if e.ApplicationID == applicationID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memoryStore) MilestonesByApplication(applicationID int) ([]models.PaymentMilestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.PaymentMilestone
	for _, m := range s.milestones {
		if m.ApplicationID == applicationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memoryStore) HasConfirmedMilestone(applicationID int, kind MilestoneKind) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.milestones {
		if m.ApplicationID == applicationID && m.Kind == string(kind) && m.IsConfirmed() {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) ConfirmMilestone(milestoneRef string, confirmedAt time.Time) (models.PaymentMilestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.milestones {
		if m.MilestoneRef != milestoneRef {
			continue
		}
		if m.Status != models.MilestoneStatusPending {
			return models.PaymentMilestone{}, ErrDuplicatePayment
		}
		paid := confirmedAt
		s.milestones[i].Status = models.MilestoneStatusConfirmed
		s.milestones[i].PaidAt = &paid
		return s.milestones[i], nil
	}
	return models.PaymentMilestone{}, ErrDuplicatePayment
}

// forceStatus simulates a competing writer committing a different
// transition directly against storage.
func (s *memoryStore) forceStatus(applicationID int, status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app := s.apps[applicationID]
	app.Status = string(status)
	app.Version++
	s.apps[applicationID] = app
}

func (s *memoryStore) eventsOfType(applicationID int, eventType string) []models.WorkflowEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.WorkflowEvent
	for _, e := range s.events {
		if e.ApplicationID == applicationID && e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

// recordingNotifier captures transition notifications.
type recordingNotifier struct {
	mu    sync.Mutex
	calls []Status
}

func (n *recordingNotifier) NotifyTransition(app models.Application, from *Status, to Status, reason string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, to)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

// mapGate is a PaymentChecker backed by a fixed confirmation set.
type mapGate map[MilestoneKind]bool

func (g mapGate) HasConfirmedMilestone(applicationID int, kind MilestoneKind) (bool, error) {
	return g[kind], nil
}
