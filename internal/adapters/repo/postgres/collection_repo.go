package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glamourpk/glamour/internal/domain"
)

type CollectionRepo struct{ db *gorm.DB }

func NewCollectionRepo(db *gorm.DB) *CollectionRepo { return &CollectionRepo{db: db} }

func (r *CollectionRepo) Save(ctx context.Context, c *domain.Collection) error {
	if err := r.db.WithContext(ctx).Save(c).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *CollectionRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Collection, error) {
	var c domain.Collection
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CollectionRepo) List(ctx context.Context, onlyActive bool, typ domain.ProductType) ([]domain.Collection, error) {
	list := []domain.Collection{}
	q := r.db.WithContext(ctx).Model(&domain.Collection{})
	if onlyActive {
		q = q.Where("active = ?", true)
	}
	if typ != "" {
		q = q.Where("type = ?", typ)
	}
	if err := q.Order("created_at desc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *CollectionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&domain.Collection{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
