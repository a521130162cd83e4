package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/staff-portal/internal/models"
)

// CreateCategory adds a category. Name is unique across the portal; an
// optional required role restricts visibility.
func (s *Store) CreateCategory(ctx context.Context, name string, requiredRole *models.Role, sortOrder int) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("category name required")
	}
	if requiredRole != nil && *requiredRole != "" && !requiredRole.Valid() {
		return nil, invalid("unknown required role")
	}

	var cat models.Category
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Category{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return persistence("check category", err)
		}
		if count > 0 {
			return ErrDuplicateCategory
		}
		cat = models.Category{Name: name, RequiredRole: requiredRole, SortOrder: sortOrder}
		if err := tx.Create(&cat).Error; err != nil {
			return persistence("create category", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// RenameCategory renames a category and repoints every task referencing the
// old name, in one transaction. Tasks never end up referencing a dead name.
func (s *Store) RenameCategory(ctx context.Context, oldName, newName string) (*models.Category, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, invalid("new category name required")
	}

	var cat models.Category
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("name = ?", oldName).First(&cat).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return persistence("find category", err)
		}
		var count int64
		if err := tx.Model(&models.Category{}).Where("name = ? AND id <> ?", newName, cat.ID).Count(&count).Error; err != nil {
			return persistence("check category", err)
		}
		if count > 0 {
			return ErrDuplicateCategory
		}
		if err := tx.Model(&cat).Update("name", newName).Error; err != nil {
			return persistence("rename category", err)
		}
		if err := tx.Model(&models.Task{}).Where("category_name = ?", oldName).
			Update("category_name", newName).Error; err != nil {
			return persistence("repoint tasks", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// ListCategories returns all categories ordered for display. Visibility
// filtering is the caller's job (the navigator consults the role engine).
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := s.db.WithContext(ctx).Order("sort_order ASC, name ASC").Find(&cats).Error; err != nil {
		return nil, persistence("list categories", err)
	}
	return cats, nil
}

// GetCategory fetches one category by name.
func (s *Store) GetCategory(ctx context.Context, name string) (*models.Category, error) {
	var cat models.Category
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&cat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, persistence("find category", err)
	}
	return &cat, nil
}
