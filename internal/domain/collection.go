package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Collection struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string      `gorm:"uniqueIndex;size:100" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Type        ProductType `gorm:"type:varchar(20);index" json:"type"`
	Image       string      `gorm:"size:255" json:"image"`
	Active      bool        `gorm:"default:true;index" json:"active"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type CollectionRepo interface {
	Save(ctx context.Context, c *Collection) error
	FindByID(ctx context.Context, id uuid.UUID) (*Collection, error)
	List(ctx context.Context, onlyActive bool, typ ProductType) ([]Collection, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
