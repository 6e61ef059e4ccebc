package stubserver

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kioskworks/kioskctl/internal/domain"
)

var ErrAccountNotFound = errors.New("stubserver: account not found")

// Store is the stub's persistence layer on an embedded sqlite database.
type Store struct {
	db *gorm.DB
}

func OpenStore(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open stub database: %w", err)
	}
	if err := db.AutoMigrate(&Account{}, &AccountCapability{}, &IdempotencyKey{}); err != nil {
		return nil, fmt.Errorf("migrate stub database: %w", err)
	}
	return &Store{db: db}, nil
}

// Ping verifies the underlying database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) ListAccounts() ([]Account, error) {
	var accounts []Account
	if err := s.db.Order("id asc").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (s *Store) GetAccount(id uint64) (*Account, error) {
	var account Account
	if err := s.db.First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (s *Store) GetAccountByEmail(email string) (*Account, error) {
	var account Account
	if err := s.db.Where("email = ?", email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (s *Store) CreateAccount(email string) (*Account, error) {
	account := &Account{Email: email}
	if err := s.db.Create(account).Error; err != nil {
		return nil, err
	}
	return account, nil
}

// DeleteAccount removes the account and its capability rows in one
// transaction.
func (s *Store) DeleteAccount(id uint64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&Account{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAccountNotFound
		}
		return tx.Where("account_id = ?", id).Delete(&AccountCapability{}).Error
	})
}

func (s *Store) Capabilities(accountID uint64) (domain.CapabilitySet, error) {
	var rows []AccountCapability
	if err := s.db.Where("account_id = ?", accountID).Find(&rows).Error; err != nil {
		return nil, err
	}
	set := domain.NewCapabilitySet()
	for _, row := range rows {
		set.Add(domain.Capability(row.Capability))
	}
	return set, nil
}

func (s *Store) GrantCapabilities(accountID uint64, caps []domain.Capability) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, c := range caps {
			row := AccountCapability{AccountID: accountID, Capability: string(c)}
			err := tx.Where("account_id = ? AND capability = ?", accountID, string(c)).
				FirstOrCreate(&row).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) RevokeCapabilities(accountID uint64, caps []domain.Capability) error {
	names := make([]string, 0, len(caps))
	for _, c := range caps {
		names = append(names, string(c))
	}
	return s.db.Where("account_id = ? AND capability IN ?", accountID, names).
		Delete(&AccountCapability{}).Error
}

// RecordIdempotencyKey stores the key, reporting whether it was seen
// before.
func (s *Store) RecordIdempotencyKey(key string) (seen bool, err error) {
	res := s.db.Where("key = ?", key).FirstOrCreate(&IdempotencyKey{Key: key})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 0, nil
}

// Seed creates the bootstrap operator with every capability plus a few
// plain accounts, skipping anything that already exists.
func (s *Store) Seed(operatorEmail string) (*Account, error) {
	operator, err := s.GetAccountByEmail(operatorEmail)
	if errors.Is(err, ErrAccountNotFound) {
		operator, err = s.CreateAccount(operatorEmail)
	}
	if err != nil {
		return nil, err
	}
	if err := s.GrantCapabilities(operator.ID, domain.KnownCapabilities()); err != nil {
		return nil, err
	}
	for _, email := range []string{"maria@kioskworks.dev", "jonas@kioskworks.dev"} {
		if _, err := s.GetAccountByEmail(email); errors.Is(err, ErrAccountNotFound) {
			if _, err := s.CreateAccount(email); err != nil {
				return nil, err
			}
		} else if err != nil {
			return nil, err
		}
	}
	return operator, nil
}
