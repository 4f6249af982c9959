// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"

	"anex/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ItemRepository defines the interface for linked-item and account operations
type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id string) (*models.Item, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Item, error)
	HasInstitution(ctx context.Context, userID uint, insID string) (bool, error)
	UpdateCursor(ctx context.Context, id, cursor string) error
	DeleteCascade(ctx context.Context, id string) error

	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	ListAccounts(ctx context.Context, itemID string) ([]models.Account, error)
	UpdateAccountBalance(ctx context.Context, id string, balance decimal.Decimal) error
}

type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(ctx context.Context, item *models.Item) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *itemRepository) GetByID(ctx context.Context, id string) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Item", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &item, nil
}

func (r *itemRepository) ListByUser(ctx context.Context, userID uint) ([]models.Item, error) {
	var items []models.Item
	if err := r.db.WithContext(ctx).
		Preload("Accounts").
		Where("user_id = ?", userID).
		Find(&items).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (r *itemRepository) HasInstitution(ctx context.Context, userID uint, insID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("user_id = ? AND ins_id = ?", userID, insID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *itemRepository) UpdateCursor(ctx context.Context, id, cursor string) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ?", id).
		Update("cursor", cursor).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// DeleteCascade removes the item with its accounts and their transactions in
// one database transaction. Callers must have already removed the item at the
// vendor; local deletion never precedes the vendor call.
func (r *itemRepository) DeleteCascade(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var accountIDs []string
		if err := tx.Model(&models.Account{}).
			Where("item_id = ?", id).
			Pluck("id", &accountIDs).Error; err != nil {
			return err
		}

		if len(accountIDs) > 0 {
			if err := tx.Where("account_id IN ?", accountIDs).
				Delete(&models.Transaction{}).Error; err != nil {
				return err
			}
			if err := tx.Where("item_id = ?", id).
				Delete(&models.Account{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&models.Item{}, "id = ?", id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *itemRepository) CreateAccount(ctx context.Context, account *models.Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *itemRepository) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Account", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &account, nil
}

func (r *itemRepository) ListAccounts(ctx context.Context, itemID string) ([]models.Account, error) {
	var accounts []models.Account
	if err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("name ASC").
		Find(&accounts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return accounts, nil
}

func (r *itemRepository) UpdateAccountBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		Update("current_balance", balance).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
