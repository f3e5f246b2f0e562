package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/glamourpk/glamour/internal/domain"
)

type CollectionUC struct {
	Collections domain.CollectionRepo
}

func (uc *CollectionUC) Save(ctx context.Context, c *domain.Collection) error {
	if strings.TrimSpace(c.Name) == "" {
		return domain.Invalid("name", "required")
	}
	if c.Type != "" && !c.Type.Valid() {
		return domain.Invalid("type", "must be makeup, skincare or fragrances")
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return uc.Collections.Save(ctx, c)
}

func (uc *CollectionUC) Get(ctx context.Context, id uuid.UUID) (*domain.Collection, error) {
	return uc.Collections.FindByID(ctx, id)
}

func (uc *CollectionUC) List(ctx context.Context, onlyActive bool, typ domain.ProductType) ([]domain.Collection, error) {
	return uc.Collections.List(ctx, onlyActive, typ)
}

func (uc *CollectionUC) Delete(ctx context.Context, id uuid.UUID) error {
	return uc.Collections.Delete(ctx, id)
}
