package enforcement_test

import (
	"errors"
	"sync"

	"weddinggo/backend/internal/models"
)

// fakeStorage is a stateful in-memory Storage for exercising the full
// append -> recompute -> evaluate sequence. Failure injection on the append
// path drives the retry tests.
type fakeStorage struct {
	mu sync.Mutex

	accounts    map[string]*models.Account
	violations  []models.ViolationRecord
	suspensions map[string]*models.SuspensionRecord
	appeals     map[string]*models.Appeal
	suspended   map[string]bool
	events      []models.EnforcementEvent

	// appendFailures makes the next N AppendViolation calls fail.
	appendFailures int
	appendAttempts int

	// saveAccountErr, when set, makes every SaveAccount call fail.
	saveAccountErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		accounts:    make(map[string]*models.Account),
		suspensions: make(map[string]*models.SuspensionRecord),
		appeals:     make(map[string]*models.Appeal),
		suspended:   make(map[string]bool),
	}
}

func (f *fakeStorage) addAccount(id string, score float64) *models.Account {
	account := &models.Account{
		ID:              id,
		ReputationScore: score,
		Status:          models.StatusActive,
	}
	f.accounts[id] = account
	return account
}

func (f *fakeStorage) GetAccountByID(id string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return nil, nil
	}
	copied := *account
	return &copied, nil
}

func (f *fakeStorage) SaveAccount(account *models.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveAccountErr != nil {
		return f.saveAccountErr
	}
	copied := *account
	f.accounts[account.ID] = &copied
	return nil
}

func (f *fakeStorage) AppendViolation(record *models.ViolationRecord) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.appendAttempts++
	if f.appendFailures > 0 {
		f.appendFailures--
		return false, errors.New("store unavailable")
	}

	if record.SourceReference != nil {
		for _, existing := range f.violations {
			if existing.AccountID == record.AccountID &&
				existing.SourceReference != nil &&
				*existing.SourceReference == *record.SourceReference &&
				existing.Type == record.Type {
				return false, nil
			}
		}
	}
	f.violations = append(f.violations, *record)
	return true, nil
}

func (f *fakeStorage) GetViolationsForAccount(accountID string) ([]models.ViolationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ViolationRecord
	for _, v := range f.violations {
		if v.AccountID == accountID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeStorage) SaveSuspension(record *models.SuspensionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if record.ID == "" {
		record.ID = "susp-" + record.AccountID
	}
	copied := *record
	f.suspensions[record.ID] = &copied
	return nil
}

func (f *fakeStorage) GetActiveSuspension(accountID string) (*models.SuspensionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.suspensions {
		if s.AccountID == accountID && s.Active {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStorage) SupersedeSuspension(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.suspensions[id]; ok {
		s.Active = false
	}
	return nil
}

func (f *fakeStorage) ListActiveSuspensions() ([]models.SuspensionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.SuspensionRecord
	for _, s := range f.suspensions {
		if s.Active {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeStorage) SaveAppeal(appeal *models.Appeal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if appeal.ID == "" {
		appeal.ID = "appeal-" + appeal.AccountID
	}
	copied := *appeal
	f.appeals[appeal.ID] = &copied
	return nil
}

func (f *fakeStorage) GetAppealByID(id string) (*models.Appeal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	appeal, ok := f.appeals[id]
	if !ok {
		return nil, nil
	}
	copied := *appeal
	return &copied, nil
}

func (f *fakeStorage) GetPendingAppealForAccount(accountID string) (*models.Appeal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.appeals {
		if a.AccountID == accountID && a.Status == models.AppealPending {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStorage) ListAppealsByStatus(status models.AppealStatus) ([]models.Appeal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Appeal
	for _, a := range f.appeals {
		if a.Status == status {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStorage) UpdateAppeal(appeal *models.Appeal) error {
	return f.SaveAppeal(appeal)
}

func (f *fakeStorage) SetSuspendedFlag(accountID string, suspended bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suspended[accountID] = suspended
	return nil
}

func (f *fakeStorage) IsSuspended(accountID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.suspended[accountID], nil
}

func (f *fakeStorage) PublishEvent(event models.EnforcementEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}
