package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/glamourpk/glamour/internal/domain"
	"github.com/glamourpk/glamour/internal/seo"
)

// SEOGenerator is the slice of seo.Generator the ingestion pipeline needs.
type SEOGenerator interface {
	Generate(ctx context.Context, in seo.ProductInput) seo.Bundle
	Describe(ctx context.Context, name, typ, category, brief string) (string, error)
}

// insertAttempts bounds the retry-on-conflict loop. The slug resolver is a
// best-effort pre-check; the unique index on products.slug is the backstop,
// and a lost race shows up here as ErrSlugTaken.
const insertAttempts = 3

type ProductUC struct {
	Products domain.ProductRepo
	SEO      SEOGenerator
}

func (uc *ProductUC) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	if f.PageSize == 0 {
		f.PageSize = 20
	}
	return uc.Products.List(ctx, f)
}

func (uc *ProductUC) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return uc.Products.FindByID(ctx, id)
}

func (uc *ProductUC) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	if slug == "" {
		return nil, domain.ErrNotFound
	}
	return uc.Products.FindBySlug(ctx, slug)
}

// Create runs the ingestion pipeline: validate, synthesize the SEO bundle
// (never fails), resolve a collision-free slug, persist in one atomic
// insert. AI problems never surface; storage errors do.
func (uc *ProductUC) Create(ctx context.Context, p *domain.Product) error {
	if err := validateDraft(p); err != nil {
		return err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if len(p.Sizes) == 0 {
		p.Sizes = []string{"Standard"}
	}

	bundle := uc.SEO.Generate(ctx, seo.ProductInput{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    string(p.Category),
		Type:        string(p.Type),
		Collection:  p.Collection,
	})
	p.MetaTitle = bundle.MetaTitle
	p.MetaDescription = bundle.MetaDescription
	p.MetaKeywords = bundle.MetaKeywords

	if strings.TrimSpace(p.Description) == "" {
		if desc, err := uc.SEO.Describe(ctx, p.Name, string(p.Type), string(p.Category), ""); err == nil {
			p.Description = desc
		}
	}

	// AI slug candidate wins over the name-derived one when both exist.
	base := bundle.Slug
	if base == "" {
		base = seo.Slugify(p.Name)
	}
	if base == "" {
		base = p.ID.String()[:8]
	}

	var err error
	for attempt := 0; attempt < insertAttempts; attempt++ {
		p.Slug, err = uc.uniqueSlug(ctx, base, uuid.Nil)
		if err != nil {
			return err
		}
		err = uc.Products.Insert(ctx, p)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrSlugTaken) {
			return err
		}
		log.Warn().Str("slug", p.Slug).Msg("slug insert race lost, re-resolving")
	}
	return err
}

// UpdateProduct carries the mutable fields of a PUT; nil means "leave as is".
type UpdateProduct struct {
	Name          *string
	Description   *string
	Price         *float64
	Category      *domain.Category
	Type          *domain.ProductType
	Collection    *string
	Image         *string
	Sizes         []string
	Colors        []string
	Stock         *int
	Featured      *bool
	Active        *bool
	RegenerateSEO bool
}

// Update patches the product. The slug is re-resolved (excluding the product
// itself, so an unchanged name keeps its slug) only when the name changes or
// regeneration is requested; the synthesizer re-runs only on explicit request.
func (uc *ProductUC) Update(ctx context.Context, id uuid.UUID, req UpdateProduct) (*domain.Product, error) {
	p, err := uc.Products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	nameChanged := false
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" && *req.Name != p.Name {
		p.Name = *req.Name
		nameChanged = true
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, domain.Invalid("price", "cannot be negative")
		}
		p.Price = *req.Price
	}
	if req.Category != nil {
		if !req.Category.Valid() {
			return nil, domain.Invalid("category", "must be women, men or kids")
		}
		p.Category = *req.Category
	}
	if req.Type != nil {
		if !req.Type.Valid() {
			return nil, domain.Invalid("type", "must be makeup, skincare or fragrances")
		}
		p.Type = *req.Type
	}
	if req.Collection != nil {
		p.Collection = *req.Collection
	}
	if req.Image != nil {
		p.Image = *req.Image
	}
	if req.Sizes != nil {
		p.Sizes = req.Sizes
	}
	if req.Colors != nil {
		p.Colors = req.Colors
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, domain.Invalid("stock", "cannot be negative")
		}
		p.Stock = *req.Stock
	}
	if req.Featured != nil {
		p.Featured = *req.Featured
	}
	if req.Active != nil {
		p.Active = *req.Active
	}

	base := p.Slug
	if req.RegenerateSEO {
		bundle := uc.SEO.Generate(ctx, seo.ProductInput{
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Category:    string(p.Category),
			Type:        string(p.Type),
			Collection:  p.Collection,
		})
		p.MetaTitle = bundle.MetaTitle
		p.MetaDescription = bundle.MetaDescription
		p.MetaKeywords = bundle.MetaKeywords
		if bundle.Slug != "" {
			base = bundle.Slug
		}
	} else if nameChanged {
		if s := seo.Slugify(p.Name); s != "" {
			base = s
		}
	}

	for attempt := 0; attempt < insertAttempts; attempt++ {
		p.Slug, err = uc.uniqueSlug(ctx, base, p.ID)
		if err != nil {
			return nil, err
		}
		err = uc.Products.Save(ctx, p)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, domain.ErrSlugTaken) {
			return nil, err
		}
		log.Warn().Str("slug", p.Slug).Msg("slug save race lost, re-resolving")
	}
	return nil, err
}

// RegenerateSEO re-runs the synthesizer for an existing product.
func (uc *ProductUC) RegenerateSEO(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return uc.Update(ctx, id, UpdateProduct{RegenerateSEO: true})
}

func (uc *ProductUC) Delete(ctx context.Context, id uuid.UUID) error {
	return uc.Products.Delete(ctx, id)
}

// uniqueSlug returns base if no other product (ignoring exclude) holds it,
// otherwise base-1, base-2, ... until a free one appears. Unbounded: the
// store is finite at query time, so the loop always terminates.
func (uc *ProductUC) uniqueSlug(ctx context.Context, base string, exclude uuid.UUID) (string, error) {
	taken, err := uc.Products.SlugExists(ctx, base, exclude)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		taken, err := uc.Products.SlugExists(ctx, candidate, exclude)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}

func validateDraft(p *domain.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return domain.Invalid("name", "required")
	}
	if p.Price < 0 {
		return domain.Invalid("price", "cannot be negative")
	}
	if !p.Category.Valid() {
		return domain.Invalid("category", "must be women, men or kids")
	}
	if !p.Type.Valid() {
		return domain.Invalid("type", "must be makeup, skincare or fragrances")
	}
	if p.Stock < 0 {
		return domain.Invalid("stock", "cannot be negative")
	}
	return nil
}
