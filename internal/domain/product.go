package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryWomen Category = "women"
	CategoryMen   Category = "men"
	CategoryKids  Category = "kids"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryWomen, CategoryMen, CategoryKids:
		return true
	}
	return false
}

type ProductType string

const (
	TypeMakeup     ProductType = "makeup"
	TypeSkincare   ProductType = "skincare"
	TypeFragrances ProductType = "fragrances"
)

func (t ProductType) Valid() bool {
	switch t {
	case TypeMakeup, TypeSkincare, TypeFragrances:
		return true
	}
	return false
}

// Label is the human form used in SEO copy ("makeup" -> "Makeup").
func (t ProductType) Label() string {
	switch t {
	case TypeMakeup:
		return "Makeup"
	case TypeSkincare:
		return "Skincare"
	default:
		return "Fragrance"
	}
}

type Product struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Slug        string      `gorm:"uniqueIndex;size:140" json:"slug"`
	Name        string      `gorm:"size:180;not null" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Price       float64     `gorm:"type:decimal(12,2)" json:"price"`
	Category    Category    `gorm:"type:varchar(20);index" json:"category"`
	Type        ProductType `gorm:"type:varchar(20);index" json:"type"`
	Collection  string      `gorm:"size:100;index" json:"collection"`
	Image       string      `gorm:"size:255" json:"image"`
	Sizes       []string    `gorm:"type:jsonb;serializer:json" json:"sizes"`
	Colors      []string    `gorm:"type:jsonb;serializer:json" json:"colors"`
	Stock       int         `gorm:"default:0" json:"stock"`
	Rating      float64     `gorm:"type:decimal(3,2);default:0" json:"rating"`
	Reviews     int         `gorm:"default:0" json:"reviews"`
	Featured    bool        `gorm:"default:false;index" json:"featured"`
	Active      bool        `gorm:"default:true;index" json:"active"`

	MetaTitle       string   `gorm:"size:60" json:"meta_title"`
	MetaDescription string   `gorm:"size:160" json:"meta_description"`
	MetaKeywords    []string `gorm:"type:jsonb;serializer:json" json:"meta_keywords"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ProductFilter struct {
	Category   string
	Type       string
	Collection string
	Slug       string
	Query      string
	Sort       string
	Featured   *bool
	Active     *bool
	Page       int
	PageSize   int
}

type ProductRepo interface {
	// Insert creates the row; a duplicate slug surfaces as ErrSlugTaken.
	Insert(ctx context.Context, p *Product) error
	Save(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySlug(ctx context.Context, slug string) (*Product, error)
	List(ctx context.Context, f ProductFilter) ([]Product, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// SlugExists reports whether any product other than exclude holds slug.
	SlugExists(ctx context.Context, slug string, exclude uuid.UUID) (bool, error)
}
