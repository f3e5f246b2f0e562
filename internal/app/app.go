package app

import (
	"fmt"
	"net/http"
	"os"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/glamourpk/glamour/internal/adapters/httpserver"
	"github.com/glamourpk/glamour/internal/adapters/repo/postgres"
	"github.com/glamourpk/glamour/internal/adapters/scraper"
	"github.com/glamourpk/glamour/internal/domain"
	"github.com/glamourpk/glamour/internal/seo"
	"github.com/glamourpk/glamour/internal/usecase"
)

type App struct {
	DB           *gorm.DB
	ProductUC    *usecase.ProductUC
	OrderUC      *usecase.OrderUC
	CollectionUC *usecase.CollectionUC
	ContactUC    *usecase.ContactUC
	Generator    *seo.Generator
	Images       *scraper.ImageScraper
	OAuthConfig  *oauth2.Config
}

func NewApp(db *gorm.DB) (*App, error) {
	prodRepo := postgres.NewProductRepo(db)
	orderRepo := postgres.NewOrderRepo(db)
	collRepo := postgres.NewCollectionRepo(db)
	contactRepo := postgres.NewContactRepo(db)

	gen := seo.NewGeneratorFromEnv()

	var oauthCfg *oauth2.Config
	googleID := os.Getenv("GOOGLE_CLIENT_ID")
	googleSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	if googleID != "" && googleSecret != "" {
		oauthCfg = &oauth2.Config{
			ClientID:     googleID,
			ClientSecret: googleSecret,
			RedirectURL:  baseURL + "/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}

	return &App{
		DB:           db,
		ProductUC:    &usecase.ProductUC{Products: prodRepo, SEO: gen},
		OrderUC:      &usecase.OrderUC{Orders: orderRepo, Products: prodRepo},
		CollectionUC: &usecase.CollectionUC{Collections: collRepo},
		ContactUC:    &usecase.ContactUC{Messages: contactRepo},
		Generator:    gen,
		Images:       scraper.New(),
		OAuthConfig:  oauthCfg,
	}, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.ProductUC, a.OrderUC, a.CollectionUC, a.ContactUC, a.Generator, a.Images, a.OAuthConfig)
}

func (a *App) MigrateAndSeed() error {
	if err := a.DB.AutoMigrate(
		&domain.Product{}, &domain.Collection{}, &domain.Order{}, &domain.OrderItem{}, &domain.ContactMessage{},
	); err != nil {
		return err
	}

	if err := backfillSlugs(a.DB); err != nil {
		return err
	}

	_ = a.DB.Exec("ALTER TABLE products ALTER COLUMN slug SET NOT NULL").Error
	_ = a.DB.Exec("ALTER TABLE products ALTER COLUMN name SET NOT NULL").Error

	seedCollections(a.DB)
	return nil
}

// backfillSlugs fills missing slugs for rows imported before the slug column
// existed, using the same counter scheme as the ingestion pipeline.
func backfillSlugs(db *gorm.DB) error {
	var products []domain.Product
	if err := db.Where("slug IS NULL OR slug = ''").Find(&products).Error; err != nil {
		return err
	}
	for _, p := range products {
		base := seo.Slugify(p.Name)
		if base == "" {
			base = p.ID.String()[:8]
		}
		slug := base

		var count int64
		i := 1
		for {
			if err := db.Model(&domain.Product{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				break
			}
			i++
			slug = fmt.Sprintf("%s-%d", base, i)
		}
		if err := db.Model(&domain.Product{}).Where("id = ?", p.ID).Update("slug", slug).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedCollections(db *gorm.DB) {
	var count int64
	if err := db.Model(&domain.Collection{}).Count(&count).Error; err != nil || count > 0 {
		return
	}
	colls := []domain.Collection{
		{ID: uuid.New(), Name: "Velvet Matte", Description: "Long-wear matte lip collection", Type: domain.TypeMakeup, Active: true},
		{ID: uuid.New(), Name: "Hydra Glow", Description: "Hydration-first skincare essentials", Type: domain.TypeSkincare, Active: true},
		{ID: uuid.New(), Name: "Oud Nights", Description: "Signature oriental fragrances", Type: domain.TypeFragrances, Active: true},
	}
	for _, c := range colls {
		db.Create(&c)
	}
}
