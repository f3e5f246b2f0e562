package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glamourpk/glamour/internal/domain"
)

type ContactRepo struct{ db *gorm.DB }

func NewContactRepo(db *gorm.DB) *ContactRepo { return &ContactRepo{db: db} }

func (r *ContactRepo) Save(ctx context.Context, m *domain.ContactMessage) error {
	if m.Email != "" {
		m.Email = strings.ToLower(strings.TrimSpace(m.Email))
	}
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *ContactRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.ContactMessage, error) {
	var m domain.ContactMessage
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *ContactRepo) List(ctx context.Context, status domain.ContactStatus) ([]domain.ContactMessage, error) {
	list := []domain.ContactMessage{}
	q := r.db.WithContext(ctx).Model(&domain.ContactMessage{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("created_at desc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
