package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"weddinggo/backend/internal/models"
)

// eventsChannel is the redis pub/sub channel carrying enforcement events to
// the admin feed and the notifier.
const eventsChannel = "enforcement:events"

// suspendedKeyPrefix mirrors the authoritative account status into redis so
// the login path can reject suspended accounts without a database read.
const suspendedKeyPrefix = "suspended:"

// Storage is the persistence contract the enforcement engine runs against.
// Only this engine's trusted execution context writes to these tables;
// account owners get read-only access to their own violation history.
type Storage interface {
	GetAccountByID(id string) (*models.Account, error)
	SaveAccount(account *models.Account) error

	// AppendViolation appends one immutable ledger entry. It reports
	// created=false when an entry with the same (account, source, type)
	// dedup key already exists, which makes retries after ambiguous
	// persistence failures safe.
	AppendViolation(record *models.ViolationRecord) (created bool, err error)
	GetViolationsForAccount(accountID string) ([]models.ViolationRecord, error)

	SaveSuspension(record *models.SuspensionRecord) error
	GetActiveSuspension(accountID string) (*models.SuspensionRecord, error)
	SupersedeSuspension(id string) error
	ListActiveSuspensions() ([]models.SuspensionRecord, error)

	SaveAppeal(appeal *models.Appeal) error
	GetAppealByID(id string) (*models.Appeal, error)
	GetPendingAppealForAccount(accountID string) (*models.Appeal, error)
	ListAppealsByStatus(status models.AppealStatus) ([]models.Appeal, error)
	UpdateAppeal(appeal *models.Appeal) error

	SetSuspendedFlag(accountID string, suspended bool) error
	IsSuspended(accountID string) (bool, error)
	PublishEvent(event models.EnforcementEvent) error
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

func (s *Service) GetAccountByID(id string) (*models.Account, error) {
	var account models.Account
	err := s.DB.First(&account, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Printf("ERROR: Failed to load account %s: %v", id, err)
		return nil, err
	}
	return &account, nil
}

func (s *Service) SaveAccount(account *models.Account) error {
	return s.DB.Save(account).Error
}

// AppendViolation creates the ledger entry unless the dedup key already
// exists. The unique index on (account_id, source_reference, type) closes
// the race between the existence check and the insert.
func (s *Service) AppendViolation(record *models.ViolationRecord) (bool, error) {
	if record.SourceReference != nil {
		var existing models.ViolationRecord
		err := s.DB.
			Where("account_id = ? AND source_reference = ? AND type = ?",
				record.AccountID, *record.SourceReference, record.Type).
			First(&existing).Error
		if err == nil {
			return false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, err
		}
	}

	if err := s.DB.Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		log.Printf("ERROR: Failed to append violation for account %s: %v", record.AccountID, err)
		return false, err
	}
	return true, nil
}

func (s *Service) GetViolationsForAccount(accountID string) ([]models.ViolationRecord, error) {
	var records []models.ViolationRecord
	if err := s.DB.Where("account_id = ?", accountID).Order("created_at asc").Find(&records).Error; err != nil {
		log.Printf("ERROR: Failed to load violations for account %s: %v", accountID, err)
		return nil, err
	}
	return records, nil
}

func (s *Service) SaveSuspension(record *models.SuspensionRecord) error {
	if err := s.DB.Create(record).Error; err != nil {
		log.Printf("ERROR: Failed to save suspension for account %s: %v", record.AccountID, err)
		return err
	}
	return nil
}

func (s *Service) GetActiveSuspension(accountID string) (*models.SuspensionRecord, error) {
	var record models.SuspensionRecord
	err := s.DB.Where("account_id = ? AND active = ?", accountID, true).
		Order("suspended_at desc").First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// SupersedeSuspension clears the active flag on a suspension record. The
// record itself stays for audit.
func (s *Service) SupersedeSuspension(id string) error {
	return s.DB.Model(&models.SuspensionRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"active":        false,
			"superseded_at": time.Now(),
		}).Error
}

func (s *Service) ListActiveSuspensions() ([]models.SuspensionRecord, error) {
	var records []models.SuspensionRecord
	if err := s.DB.Where("active = ?", true).Order("suspended_at desc").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Service) SaveAppeal(appeal *models.Appeal) error {
	if err := s.DB.Create(appeal).Error; err != nil {
		log.Printf("ERROR: Failed to save appeal for account %s: %v", appeal.AccountID, err)
		return err
	}
	return nil
}

func (s *Service) GetAppealByID(id string) (*models.Appeal, error) {
	var appeal models.Appeal
	err := s.DB.First(&appeal, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &appeal, nil
}

func (s *Service) GetPendingAppealForAccount(accountID string) (*models.Appeal, error) {
	var appeal models.Appeal
	err := s.DB.Where("account_id = ? AND status = ?", accountID, models.AppealPending).
		First(&appeal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &appeal, nil
}

func (s *Service) ListAppealsByStatus(status models.AppealStatus) ([]models.Appeal, error) {
	var appeals []models.Appeal
	if err := s.DB.Where("status = ?", status).Order("submitted_at asc").Find(&appeals).Error; err != nil {
		return nil, err
	}
	return appeals, nil
}

func (s *Service) UpdateAppeal(appeal *models.Appeal) error {
	return s.DB.Save(appeal).Error
}

// SetSuspendedFlag mirrors the suspension state into redis for the login
// fast path. The database row remains authoritative.
func (s *Service) SetSuspendedFlag(accountID string, suspended bool) error {
	key := suspendedKeyPrefix + accountID
	if suspended {
		return s.Redis.Set(s.Ctx, key, "1", 0).Err()
	}
	return s.Redis.Del(s.Ctx, key).Err()
}

// IsSuspended checks the suspension flag in redis.
func (s *Service) IsSuspended(accountID string) (bool, error) {
	status, err := s.Redis.Get(s.Ctx, suspendedKeyPrefix+accountID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return status != "", nil
}

// PublishEvent publishes an enforcement event on the pub/sub channel.
func (s *Service) PublishEvent(event models.EnforcementEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := s.Redis.Publish(s.Ctx, eventsChannel, string(payload)).Err(); err != nil {
		log.Printf("ERROR: Failed to publish %s event for account %s: %v", event.Kind, event.AccountID, err)
		return err
	}
	return nil
}

// SubscribeEvents subscribes to the enforcement event channel. The feed hub
// and the telegram notifier each hold their own subscription.
func (s *Service) SubscribeEvents() *redis.PubSub {
	return s.Redis.Subscribe(s.Ctx, eventsChannel)
}
