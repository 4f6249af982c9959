// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"

	"anex/internal/models"

	"gorm.io/gorm"
)

// GroupRepository defines the interface for spending-group operations
type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id uint) (*models.Group, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Group, error)
	GetOrCreateDefault(ctx context.Context, userID uint) (*models.Group, error)
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, group *models.Group) error {
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *groupRepository) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Group", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &group, nil
}

func (r *groupRepository) ListByUser(ctx context.Context, userID uint) ([]models.Group, error) {
	var groups []models.Group
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&groups).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return groups, nil
}

// GetOrCreateDefault returns the user's Uncategorized group, creating it on
// first use so imported accounts always have a home.
func (r *groupRepository) GetOrCreateDefault(ctx context.Context, userID uint) (*models.Group, error) {
	var group models.Group
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, models.DefaultGroupName).
		First(&group).Error
	if err == nil {
		return &group, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewInternalError(err)
	}

	group = models.Group{UserID: userID, Name: models.DefaultGroupName}
	if err := r.db.WithContext(ctx).Create(&group).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return &group, nil
}
