// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"

	"anex/internal/models"

	"gorm.io/gorm"
)

// TransactionRepository defines the interface for synced-transaction operations
type TransactionRepository interface {
	Create(ctx context.Context, txn *models.Transaction) error
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
	Update(ctx context.Context, txn *models.Transaction) error
	DeleteByID(ctx context.Context, id string) error
	ListByItem(ctx context.Context, itemID string) ([]models.Transaction, error)
	ListByGroup(ctx context.Context, userID, groupID uint) ([]models.Transaction, error)
	FindRename(ctx context.Context, userID uint, originalName string) (*string, error)
	RenameMatching(ctx context.Context, userID uint, oldName, newName string) (int64, error)
}

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.WithContext(ctx).First(&txn, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Transaction", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &txn, nil
}

func (r *transactionRepository) Update(ctx context.Context, txn *models.Transaction) error {
	if err := r.db.WithContext(ctx).Save(txn).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *transactionRepository) DeleteByID(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).
		Delete(&models.Transaction{}, "id = ?", id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *transactionRepository) ListByItem(ctx context.Context, itemID string) ([]models.Transaction, error) {
	var txns []models.Transaction
	if err := r.db.WithContext(ctx).
		Joins("JOIN accounts ON accounts.id = transactions.account_id").
		Where("accounts.item_id = ?", itemID).
		Order("transactions.date DESC").
		Find(&txns).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return txns, nil
}

func (r *transactionRepository) ListByGroup(ctx context.Context, userID, groupID uint) ([]models.Transaction, error) {
	var txns []models.Transaction
	if err := r.db.WithContext(ctx).
		Joins("JOIN accounts ON accounts.id = transactions.account_id").
		Joins("JOIN items ON items.id = accounts.item_id").
		Where("items.user_id = ? AND accounts.group_id = ?", userID, groupID).
		Order("transactions.date DESC").
		Find(&txns).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return txns, nil
}

// FindRename looks up a prior user rename for the exact vendor label, scoped
// to the owning user through the account->item join so another user's renames
// never leak across. Returns nil when no rename exists.
func (r *transactionRepository) FindRename(ctx context.Context, userID uint, originalName string) (*string, error) {
	var txn models.Transaction
	err := r.db.WithContext(ctx).
		Joins("JOIN accounts ON accounts.id = transactions.account_id").
		Joins("JOIN items ON items.id = accounts.item_id").
		Where("items.user_id = ? AND transactions.original_name = ? AND transactions.new_name IS NOT NULL",
			userID, originalName).
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return txn.NewName, nil
}

// RenameMatching applies a rename to every transaction of the user whose
// original label or current rename equals oldName. Matching the current
// rename lets users re-rename a set they already renamed once.
func (r *transactionRepository) RenameMatching(ctx context.Context, userID uint, oldName, newName string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("account_id IN (?)",
			r.db.Model(&models.Account{}).
				Select("accounts.id").
				Joins("JOIN items ON items.id = accounts.item_id").
				Where("items.user_id = ?", userID)).
		Where("original_name = ? OR new_name = ?", oldName, oldName).
		Update("new_name", newName)
	if result.Error != nil {
		return 0, models.NewInternalError(result.Error)
	}
	return result.RowsAffected, nil
}
