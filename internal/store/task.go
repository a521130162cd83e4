package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/staff-portal/internal/models"
)

// TaskInput carries everything needed to create a task.
type TaskInput struct {
	Category       string
	Title          string
	Details        string
	AssignedUserID *uint
	Importance     models.Importance
	CreatedBy      string
	ImageRef       string
}

// CreateTask creates a task after confirming its category is alive. The
// check and the insert share a transaction so a concurrent category rename
// or delete cannot slip a dead reference in.
func (s *Store) CreateTask(ctx context.Context, in TaskInput) (*models.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, invalid("task title required")
	}
	if !in.Importance.Valid() {
		return nil, invalid("unknown importance")
	}

	var task models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Category{}).Where("name = ?", in.Category).Count(&count).Error; err != nil {
			return persistence("check category", err)
		}
		if count == 0 {
			return ErrCategoryNotFound
		}
		if in.AssignedUserID != nil {
			if err := tx.Model(&models.User{}).Where("id = ?", *in.AssignedUserID).Count(&count).Error; err != nil {
				return persistence("check assignee", err)
			}
			if count == 0 {
				return ErrUserNotFound
			}
		}
		task = models.Task{
			CategoryName:   in.Category,
			Title:          in.Title,
			Details:        sanitize(in.Details),
			AssignedUserID: in.AssignedUserID,
			Importance:     in.Importance,
			CreatedBy:      in.CreatedBy,
			ImageRef:       in.ImageRef,
		}
		if err := tx.Create(&task).Error; err != nil {
			return persistence("create task", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// SetTaskDone flips the done flag. Idempotent: setting an already-held value
// returns the task unchanged without a write.
func (s *Store) SetTaskDone(ctx context.Context, id uint, done bool) (*models.Task, error) {
	var task models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return persistence("find task", err)
		}
		if task.IsDone == done {
			return nil
		}
		if err := tx.Model(&task).Update("is_done", done).Error; err != nil {
			return persistence("update task", err)
		}
		task.IsDone = done
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask hard-deletes a task and cascades its comments inside one
// transaction; a concurrent comment-add either sees the task and lands
// before the cascade, or fails ErrTaskNotFound.
func (s *Store) DeleteTask(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return persistence("find task", err)
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return persistence("delete comments", err)
		}
		if err := tx.Delete(&task).Error; err != nil {
			return persistence("delete task", err)
		}
		return nil
	})
}

// GetTask loads a task with its comments in timestamp order.
func (s *Store) GetTask(ctx context.Context, id uint) (*models.Task, []models.Comment, error) {
	var task models.Task
	if err := s.db.WithContext(ctx).First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrTaskNotFound
		}
		return nil, nil, persistence("find task", err)
	}
	var comments []models.Comment
	if err := s.db.WithContext(ctx).Where("task_id = ?", id).
		Order("created_at ASC, id ASC").Find(&comments).Error; err != nil {
		return nil, nil, persistence("load comments", err)
	}
	return &task, comments, nil
}

// ListTasks returns the tasks of one category. Resolved tasks stay listed;
// they carry is_done=true and the UI filters if it wants to.
func (s *Store) ListTasks(ctx context.Context, category string) ([]models.Task, error) {
	var tasks []models.Task
	if err := s.db.WithContext(ctx).Where("category_name = ?", category).
		Order("is_done ASC, created_at DESC").Find(&tasks).Error; err != nil {
		return nil, persistence("list tasks", err)
	}
	return tasks, nil
}

// AddComment appends a comment under a task. The existence check shares the
// transaction with the insert, so a comment can never attach to a task a
// concurrent delete already removed.
func (s *Store) AddComment(ctx context.Context, taskID uint, author, message, imageRef string) (*models.Comment, error) {
	if strings.TrimSpace(message) == "" {
		return nil, invalid("comment message required")
	}

	var comment models.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Task{}).Where("id = ?", taskID).Count(&count).Error; err != nil {
			return persistence("check task", err)
		}
		if count == 0 {
			return ErrTaskNotFound
		}
		comment = models.Comment{
			TaskID:   taskID,
			Author:   author,
			Message:  sanitize(message),
			ImageRef: imageRef,
		}
		if err := tx.Create(&comment).Error; err != nil {
			return persistence("create comment", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}
