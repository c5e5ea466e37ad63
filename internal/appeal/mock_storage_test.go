package appeal_test

import (
	"github.com/stretchr/testify/mock"

	"weddinggo/backend/internal/models"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GetAccountByID(id string) (*models.Account, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockStorage) SaveAccount(account *models.Account) error {
	args := m.Called(account)
	return args.Error(0)
}

func (m *MockStorage) AppendViolation(record *models.ViolationRecord) (bool, error) {
	args := m.Called(record)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) GetViolationsForAccount(accountID string) ([]models.ViolationRecord, error) {
	args := m.Called(accountID)
	return args.Get(0).([]models.ViolationRecord), args.Error(1)
}

func (m *MockStorage) SaveSuspension(record *models.SuspensionRecord) error {
	args := m.Called(record)
	return args.Error(0)
}

func (m *MockStorage) GetActiveSuspension(accountID string) (*models.SuspensionRecord, error) {
	args := m.Called(accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SuspensionRecord), args.Error(1)
}

func (m *MockStorage) SupersedeSuspension(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStorage) ListActiveSuspensions() ([]models.SuspensionRecord, error) {
	args := m.Called()
	return args.Get(0).([]models.SuspensionRecord), args.Error(1)
}

func (m *MockStorage) SaveAppeal(appeal *models.Appeal) error {
	args := m.Called(appeal)
	return args.Error(0)
}

func (m *MockStorage) GetAppealByID(id string) (*models.Appeal, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appeal), args.Error(1)
}

func (m *MockStorage) GetPendingAppealForAccount(accountID string) (*models.Appeal, error) {
	args := m.Called(accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appeal), args.Error(1)
}

func (m *MockStorage) ListAppealsByStatus(status models.AppealStatus) ([]models.Appeal, error) {
	args := m.Called(status)
	return args.Get(0).([]models.Appeal), args.Error(1)
}

func (m *MockStorage) UpdateAppeal(appeal *models.Appeal) error {
	args := m.Called(appeal)
	return args.Error(0)
}

func (m *MockStorage) SetSuspendedFlag(accountID string, suspended bool) error {
	args := m.Called(accountID, suspended)
	return args.Error(0)
}

func (m *MockStorage) IsSuspended(accountID string) (bool, error) {
	args := m.Called(accountID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) PublishEvent(event models.EnforcementEvent) error {
	args := m.Called(event)
	return args.Error(0)
}
