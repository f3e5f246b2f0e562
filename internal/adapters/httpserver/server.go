package httpserver

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/glamourpk/glamour/internal/domain"
	"github.com/glamourpk/glamour/internal/usecase"
)

// ImageFinder extracts a product image URL from an external page.
type ImageFinder interface {
	FindImage(ctx context.Context, pageURL string) (string, error)
}

type Server struct {
	mux         *http.ServeMux
	products    *usecase.ProductUC
	orders      *usecase.OrderUC
	collections *usecase.CollectionUC
	contact     *usecase.ContactUC
	ai          usecase.SEOGenerator
	images      ImageFinder
	oauthCfg    *oauth2.Config

	adminAllowed map[string]struct{}
	adminSecret  []byte

	cache *listingCache
}

func New(p *usecase.ProductUC, o *usecase.OrderUC, c *usecase.CollectionUC, ct *usecase.ContactUC, ai usecase.SEOGenerator, images ImageFinder, oauthCfg *oauth2.Config) http.Handler {
	s := &Server{
		products:    p,
		orders:      o,
		collections: c,
		contact:     ct,
		ai:          ai,
		images:      images,
		oauthCfg:    oauthCfg,
		mux:         http.NewServeMux(),
		cache:       newListingCache(60 * time.Second),
	}

	allowed := map[string]struct{}{}
	if raw := os.Getenv("ADMIN_ALLOWED_EMAILS"); raw != "" {
		for _, e := range strings.Split(raw, ",") {
			e = strings.ToLower(strings.TrimSpace(e))
			if e != "" {
				allowed[e] = struct{}{}
			}
		}
	}
	s.adminAllowed = allowed
	sec := os.Getenv("JWT_ADMIN_SECRET")
	if sec == "" {
		sec = os.Getenv("SECRET_KEY")
	}
	if sec == "" {
		sec = "dev-admin-secret"
	}
	s.adminSecret = []byte(sec)

	s.routes()
	return Chain(s.mux,
		PublicRateLimit(map[string]int{
			"/api/orders":                  10,
			"/api/contact":                 15,
			"/api/ai/generate-description": 10,
		}),
		RateLimit(120),
		RequestID,
		Recovery,
		Logging,
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	s.mux.HandleFunc("/robots.txt", s.handleRobots)
	s.mux.HandleFunc("/sitemap.xml", s.handleSitemap)

	s.mux.HandleFunc("/api/products", s.apiProducts)
	s.mux.HandleFunc("/api/products/", s.apiProductByID)

	s.mux.HandleFunc("/api/collections", s.apiCollections)
	s.mux.HandleFunc("/api/collections/", s.apiCollectionByID)

	s.mux.HandleFunc("/api/orders", s.apiOrders)
	s.mux.HandleFunc("/api/orders/track", s.apiOrderTrack)
	s.mux.HandleFunc("/api/orders/", s.apiOrderByID)

	s.mux.HandleFunc("/api/contact", s.apiContact)
	s.mux.HandleFunc("/api/contact/", s.apiContactByID)

	s.mux.HandleFunc("/api/ai/generate-description", s.apiGenerateDescription)

	s.mux.HandleFunc("/admin/export/xlsx", s.handleAdminExportXLSX)
	s.mux.HandleFunc("/admin/login", s.handleAdminLogin)
	s.mux.HandleFunc("/admin/logout", s.handleAdminLogout)

	s.mux.HandleFunc("/auth/google/login", s.handleGoogleLogin)
	s.mux.HandleFunc("/auth/google/callback", s.handleGoogleCallback)
}

// ----- response envelope -----

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respond(w http.ResponseWriter, code int, data any) {
	writeJSON(w, code, map[string]any{"success": true, "data": data})
}

func respondCount(w http.ResponseWriter, code int, data any, count int64) {
	writeJSON(w, code, map[string]any{"success": true, "data": data, "count": count})
}

func respondErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"success": false, "error": msg})
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		respondErr(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, domain.ErrNotFound):
		respondErr(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrSlugTaken), errors.Is(err, domain.ErrDuplicate):
		respondErr(w, http.StatusConflict, "duplicate")
	default:
		log.Error().Err(err).Msg("request failed")
		respondErr(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]any{"status": "ok", "time": time.Now().UTC()})
}

// ----- catalog -----

func parseBool(v string) *bool {
	switch strings.ToLower(v) {
	case "true", "1":
		t := true
		return &t
	case "false", "0":
		f := false
		return &f
	}
	return nil
}

func listFilter(r *http.Request) domain.ProductFilter {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(q.Get("page_size"))
	if size < 1 || size > 100 {
		size = 20
	}
	return domain.ProductFilter{
		Category:   q.Get("category"),
		Type:       q.Get("type"),
		Collection: q.Get("collection"),
		Slug:       q.Get("slug"),
		Query:      q.Get("q"),
		Sort:       q.Get("sort"),
		Featured:   parseBool(q.Get("featured")),
		Active:     parseBool(q.Get("active")),
		Page:       page,
		PageSize:   size,
	}
}

func (s *Server) apiProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		f := listFilter(r)
		admin := s.isAdmin(r)
		if !admin {
			// the storefront only ever sees active products
			t := true
			f.Active = &t
			if items, total, ok := s.cache.get(f); ok {
				respondCount(w, http.StatusOK, items, total)
				return
			}
		}
		items, total, err := s.products.List(r.Context(), f)
		if err != nil {
			s.fail(w, err)
			return
		}
		if !admin {
			s.cache.put(f, items, total)
		}
		respondCount(w, http.StatusOK, items, total)
	case http.MethodPost:
		if !s.requireAdmin(w, r) {
			return
		}
		var req productPayload
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			respondErr(w, http.StatusBadRequest, "invalid json")
			return
		}
		p := req.toProduct()
		if err := s.products.Create(r.Context(), p); err != nil {
			s.fail(w, err)
			return
		}
		s.cache.invalidate()
		respond(w, http.StatusCreated, p)
	default:
		respondErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type productPayload struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Type        string   `json:"type"`
	Collection  string   `json:"collection"`
	Image       string   `json:"image"`
	Sizes       []string `json:"sizes"`
	Colors      []string `json:"colors"`
	Stock       int      `json:"stock"`
	Featured    bool     `json:"featured"`
	Active      *bool    `json:"active"`
}

func (req productPayload) toProduct() *domain.Product {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return &domain.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Category:    domain.Category(req.Category),
		Type:        domain.ProductType(req.Type),
		Collection:  req.Collection,
		Image:       req.Image,
		Sizes:       req.Sizes,
		Colors:      req.Colors,
		Stock:       req.Stock,
		Featured:    req.Featured,
		Active:      active,
	}
}

// apiProductByID dispatches /api/products/{id}, /api/products/slug/{slug},
// /api/products/{id}/regenerate-seo and /api/products/{id}/fetch-image.
func (s *Server) apiProductByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/products/")

	if strings.HasPrefix(rest, "slug/") {
		s.apiProductBySlug(w, r, strings.TrimPrefix(rest, "slug/"))
		return
	}
	if strings.HasSuffix(rest, "/regenerate-seo") {
		s.apiProductRegenerateSEO(w, r, strings.TrimSuffix(rest, "/regenerate-seo"))
		return
	}
	if strings.HasSuffix(rest, "/fetch-image") {
		s.apiProductFetchImage(w, r, strings.TrimSuffix(rest, "/fetch-image"))
		return
	}

	id, err := uuid.Parse(strings.Trim(rest, "/"))
	if err != nil {
		respondErr(w, http.StatusBadRequest, "invalid product id")
		return
	}
	switch r.Method {
	case http.MethodGet:
		p, err := s.products.GetByID(r.Context(), id)
		if err != nil {
			s.fail(w, err)
			return
		}
		respond(w, http.StatusOK, p)
	case http.MethodPut:
		if !s.requireAdmin(w, r) {
			return
		}
		var req struct {
			Name          *string  `json:"name"`
			Description   *string  `json:"description"`
			Price         *float64 `json:"price"`
			Category      *string  `json:"category"`
			Type          *string  `json:"type"`
			Collection    *string  `json:"collection"`
			Image         *string  `json:"image"`
			Sizes         []string `json:"sizes"`
			Colors        []string `json:"colors"`
			Stock         *int     `json:"stock"`
			Featured      *bool    `json:"featured"`
			Active        *bool    `json:"active"`
			RegenerateSEO bool     `json:"regenerate_seo"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			respondErr(w, http.StatusBadRequest, "invalid json")
			return
		}
		upd := usecase.UpdateProduct{
			Name:          req.Name,
			Description:   req.Description,
			Price:         req.Price,
			Collection:    req.Collection,
			Image:         req.Image,
			Sizes:         req.Sizes,
			Colors:        req.Colors,
			Stock:         req.Stock,
			Featured:      req.Featured,
			Active:        req.Active,
			RegenerateSEO: req.RegenerateSEO,
		}
		if req.Category != nil {
			c := domain.Category(*req.Category)
			upd.Category = &c
		}
		if req.Type != nil {
			t := domain.ProductType(*req.Type)
			upd.Type = &t
		}
		p, err := s.products.Update(r.Context(), id, upd)
		if err != nil {
			s.fail(w, err)
			return
		}
		s.cache.invalidate()
		respond(w, http.StatusOK, p)
	case http.MethodDelete:
		if !s.requireAdmin(w, r) {
			return
		}
		if err := s.products.Delete(r.Context(), id); err != nil {
			s.fail(w, err)
			return
		}
		s.cache.invalidate()
		respond(w, http.StatusOK, map[string]any{"deleted": id})
	default:
		respondErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) apiProductBySlug(w http.ResponseWriter, r *http.Request, raw string) {
	if r.Method != http.MethodGet {
		respondErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	slug, _ := url.PathUnescape(strings.Trim(raw, "/"))
	p, err := s.products.GetBySlug(r.Context(), slug)
	if err != nil {
		s.fail(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

func (s *Server) apiProductRegenerateSEO(w http.ResponseWriter, r *http.Request, rawID string) {
	if r.Method != http.MethodPost {
		respondErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}
	id, err := uuid.Parse(strings.Trim(rawID, "/"))
	if err != nil {
		respondErr(w, http.StatusBadRequest, "invalid product id")
		return
	}
	p, err := s.products.RegenerateSEO(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.cache.invalidate()
	respond(w, http.StatusOK, p)
}

func (s *Server) apiProductFetchImage(w http.ResponseWriter, r *http.Request, rawID string) {
	if r.Method != http.MethodPost {
		respondErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}
	id, err := uuid.Parse(strings.Trim(rawID, "/"))
	if err != nil {
		respondErr(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var req struct {
		PageURL string `json:"page_url"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	img, err := s.images.FindImage(r.Context(), req.PageURL)
	if err != nil {
		log.Warn().Err(err).Str("url", req.PageURL).Msg("image fetch failed")
		respondErr(w, http.StatusBadGateway, "could not extract image")
		return
	}
	p, err := s.products.Update(r.Context(), id, usecase.UpdateProduct{Image: &img})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.cache.invalidate()
	respond(w, http.StatusOK, map[string]any{"image": img, "product": p})
}

// ----- collections -----

func (s *Server) apiCollections(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		onlyActive := !s.isAdmin(r)
		list, err := s.collections.List(r.Context(), onlyActive, domain.ProductType(r.URL.Query().Get("type")))
		if err != nil {
			s.fail(w, err)
			return
		}
		respondCount(w, http.StatusOK, list, int64(len(list)))
	case http.MethodPost:
		if !s.requireAdmin(w, r) {
			return
		}
		var c domain.Collection
		if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&c); err != nil {
			respondErr(w, http.StatusBadRequest, "invalid json")
			return
		}
		if err := s.collections.Save(r.Context(), &c); err != nil {
			s.fail(w, err)
			return
		}
		respond(w, http.StatusCreated, c)
	default:
		respondErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) apiCollectionByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/collections/"), "/"))
	if err != nil {
		respondErr(w, http.StatusBadRequest, "invalid collection id")
		return
	}
	switch r.Method {
	case http.MethodGet:
		c, err := s.collections.Get(r.Context(), id)
		if err != nil {
			s.fail(w, err)
			return
		}
		respond(w, http.StatusOK, c)
	case http.MethodPut:
		if !s.requireAdmin(w, r) {
			return
		}
		c, err := s.collections.Get(r.Context(), id)
		if err != nil {
			s.fail(w, err)
			return
		}
		var req struct {
			Name        *string `json:"name"`
			Description *string `json:"description"`
			Type        *string `json:"type"`
			Image       *string `json:"image"`
			Active      *bool   `json:"active"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil {
			respondErr(w, http.StatusBadRequest, "invalid json")
			return
		}
		if req.Name != nil {
			c.Name = *req.Name
		}
		if req.Description != nil {
			c.Description = *req.Description
		}
		if req.Type != nil {
			c.Type = domain.ProductType(*req.Type)
		}
		if req.Image != nil {
			c.Image = *req.Image
		}
		if req.Active != nil {
			c.Active = *req.Active
		}
		if err := s.collections.Save(r.Context(), c); err != nil {
			s.fail(w, err)
			return
		}
		respond(w, http.StatusOK, c)
	case http.MethodDelete:
		if !s.requireAdmin(w, r) {
			return
		}
		if err := s.collections.Delete(r.Context(), id); err != nil {
			s.fail(w, err)
			return
		}
		respond(w, http.StatusOK, map[string]any{"deleted": id})
	default:
		respondErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// ----- orders -----

func (s *Server) apiOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req struct {
			CustomerName  string `json:"customer_name"`
			CustomerEmail string `json:"customer_email"`
			CustomerPhone string `json:"customer_phone"`
			Address       string `json:"address"`
			City          string `json:"city"`
			PostalCode    string `json:"postal_code"`
			Notes         string `json:"notes"`
			Items         []struct {
				ProductID string `json:"product_id"`
				Qty       int    `json:"qty"`
				Size      string `json:"size"`
				Color     string `json:"color"`
			} `json:"items"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, 256<<10)).Decode(&req); err != nil {
			respondErr(w, http.StatusBadRequest, "invalid json")
			return
		}
		o := &domain.Order{
			CustomerName:  strings.TrimSpace(req.CustomerName),
			CustomerEmail: strings.ToLower(strings.TrimSpace(req.CustomerEmail)),
			CustomerPhone: strings.TrimSpace(req.CustomerPhone),
			Address:       req.Address,
			City:          req.City,
			PostalCode:    req.PostalCode,
			Notes:         req.Notes,
		}
		for _, it := range req.Items {
			item := domain.OrderItem{Qty: it.Qty, Size: it.Size, Color: it.Color}
			if it.ProductID != "" {
				pid, err := uuid.Parse(it.ProductID)
				if err != nil {
					respondErr(w, http.StatusBadRequest, "invalid product id in items")
					return
				}
				item.ProductID = &pid
			}
			o.Items = append(o.Items, item)
		}
		if err := s.orders.Create(r.Context(), o); err != nil {
			s.fail(w, err)
			return
		}
		go s.sendOrderNotify(o)
		respond(w, http.StatusCreated, o)
	case http.MethodGet:
		if !s.requireAdmin(w, r) {
			return
		}
		q := r.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		if page < 1 {
			page = 1
		}
		list, total, err := s.orders.List(r.Context(), domain.OrderFilter{
			Status:  q.Get("status"),
			Payment: q.Get("payment"),
			Page:    page,
		})
		if err != nil {
			s.fail(w, err)
			return
		}
		respondCount(w, http.StatusOK, list, total)
	default:
		respondErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) apiOrderTrack(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	o, err := s.orders.Track(r.Context(), r.URL.Query().Get("number"))
	if err != nil {
		s.fail(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (s *Server) apiOrderByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/orders/"), "/")
	if rest == "track" {
		s.apiOrderTrack(w, r)
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}
	id, err := uuid.Parse(rest)
	if err != nil {
		respondErr(w, http.StatusBadRequest, "invalid order id")
		return
	}
	switch r.Method {
	case http.MethodGet:
		o, err := s.orders.Get(r.Context(), id)
		if err != nil {
			s.fail(w, err)
			return
		}
		respond(w, http.StatusOK, o)
	case http.MethodPut:
		var req struct {
			Status  string `json:"status"`
			Payment string `json:"payment"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req); err != nil {
			respondErr(w, http.StatusBadRequest, "invalid json")
			return
		}
		var o *domain.Order
		if req.Status != "" {
			o, err = s.orders.UpdateStatus(r.Context(), id, domain.OrderStatus(req.Status))
			if err != nil {
				s.fail(w, err)
				return
			}
		}
		if req.Payment != "" {
			o, err = s.orders.UpdatePayment(r.Context(), id, domain.PaymentStatus(req.Payment))
			if err != nil {
				s.fail(w, err)
				return
			}
		}
		if o == nil {
			respondErr(w, http.StatusBadRequest, "nothing to update")
			return
		}
		respond(w, http.StatusOK, o)
	case http.MethodDelete:
		if err := s.orders.Delete(r.Context(), id); err != nil {
			s.fail(w, err)
			return
		}
		respond(w, http.StatusOK, map[string]any{"deleted": id})
	default:
		respondErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// ----- contact -----

func (s *Server) apiContact(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var m domain.ContactMessage
		if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&m); err != nil {
			respondErr(w, http.StatusBadRequest, "invalid json")
			return
		}
		if err := s.contact.Submit(r.Context(), &m); err != nil {
			s.fail(w, err)
			return
		}
		respond(w, http.StatusCreated, m)
	case http.MethodGet:
		if !s.requireAdmin(w, r) {
			return
		}
		list, err := s.contact.List(r.Context(), domain.ContactStatus(r.URL.Query().Get("status")))
		if err != nil {
			s.fail(w, err)
			return
		}
		respondCount(w, http.StatusOK, list, int64(len(list)))
	default:
		respondErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) apiContactByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		respondErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}
	id, err := uuid.Parse(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/contact/"), "/"))
	if err != nil {
		respondErr(w, http.StatusBadRequest, "invalid message id")
		return
	}
	var req struct {
		Status string  `json:"status"`
		Reply  *string `json:"reply"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 8192)).Decode(&req); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	m, err := s.contact.Update(r.Context(), id, domain.ContactStatus(req.Status), req.Reply)
	if err != nil {
		s.fail(w, err)
		return
	}
	respond(w, http.StatusOK, m)
}

// ----- AI copy -----

func (s *Server) apiGenerateDescription(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}
	var req struct {
		Name     string `json:"name"`
		Type     string `json:"type"`
		Category string `json:"category"`
		Brief    string `json:"brief"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 16<<10)).Decode(&req); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondErr(w, http.StatusBadRequest, "name: required")
		return
	}
	desc, err := s.ai.Describe(r.Context(), req.Name, req.Type, req.Category, req.Brief)
	if err != nil {
		log.Warn().Err(err).Str("name", req.Name).Msg("describe failed")
		respondErr(w, http.StatusBadGateway, "generation failed")
		return
	}
	respond(w, http.StatusOK, map[string]any{"description": desc})
}

// ----- SEO surface -----

func (s *Server) canonicalBase(r *http.Request) string {
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	scheme := r.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		if r.TLS != nil {
			scheme = "https"
		} else {
			scheme = "http"
		}
	}
	if host == "" {
		host = "www.glamourcosmetics.pk"
	}
	return scheme + "://" + host
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	base := s.canonicalBase(r)
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	active := true
	var all []domain.Product
	page := 1
	for {
		list, total, err := s.products.List(r.Context(), domain.ProductFilter{Page: page, PageSize: 200, Active: &active})
		if err != nil {
			break
		}
		all = append(all, list...)
		if len(all) >= int(total) || len(list) == 0 {
			break
		}
		page++
		if page > 25 {
			break
		}
	}
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString("\n<urlset xmlns=\"http://www.sitemaps.org/schemas/sitemap/0.9\">")
	now := time.Now().Format("2006-01-02")
	b.WriteString("\n  <url><loc>" + base + "/</loc><lastmod>" + now + "</lastmod></url>")
	b.WriteString("\n  <url><loc>" + base + "/products</loc><lastmod>" + now + "</lastmod></url>")
	for _, p := range all {
		lm := p.UpdatedAt
		if lm.IsZero() {
			lm = p.CreatedAt
		}
		last := now
		if !lm.IsZero() {
			last = lm.Format("2006-01-02")
		}
		b.WriteString("\n  <url><loc>" + base + "/products/" + url.PathEscape(p.Slug) + "</loc><lastmod>" + last + "</lastmod></url>")
	}
	b.WriteString("\n</urlset>")
	_, _ = w.Write([]byte(b.String()))
}

func (s *Server) handleRobots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	base := s.canonicalBase(r)
	_, _ = fmt.Fprintf(w, "User-agent: *\nDisallow: /admin/\nDisallow: /api/\nSitemap: %s/sitemap.xml\n", base)
}

// ----- admin auth -----

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	cfgKey := os.Getenv("ADMIN_API_KEY")
	if cfgKey == "" {
		log.Error().Msg("ADMIN_API_KEY missing")
		respondErr(w, http.StatusInternalServerError, "not configured")
		return
	}
	apiKey := r.Header.Get("X-Admin-Key")
	if apiKey == "" || !secureCompare(apiKey, cfgKey) {
		respondErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Email string `json:"email"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" && len(s.adminAllowed) == 1 {
		for k := range s.adminAllowed {
			email = k
		}
	}
	if _, ok := s.adminAllowed[email]; !ok {
		respondErr(w, http.StatusForbidden, "forbidden")
		return
	}
	tok, exp, err := s.issueAdminToken(email, 30*time.Minute)
	if err != nil {
		respondErr(w, http.StatusInternalServerError, "token")
		return
	}
	respond(w, http.StatusOK, map[string]any{"token": tok, "exp": exp.Unix(), "email": email})
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	secure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{Name: "admin_token", Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: secure, SameSite: http.SameSiteStrictMode})
	respond(w, http.StatusOK, map[string]any{"logged_out": true})
}

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if s.oauthCfg == nil {
		respondErr(w, http.StatusInternalServerError, "oauth not configured")
		return
	}
	state := uuid.New().String()
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: state, Path: "/", MaxAge: 300, HttpOnly: true})
	http.Redirect(w, r, s.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOnline), http.StatusFound)
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if s.oauthCfg == nil {
		respondErr(w, http.StatusInternalServerError, "oauth not configured")
		return
	}
	q := r.URL.Query()
	c, _ := r.Cookie("oauth_state")
	if c == nil || c.Value == "" || c.Value != q.Get("state") {
		respondErr(w, http.StatusBadRequest, "state mismatch")
		return
	}
	tok, err := s.oauthCfg.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		log.Error().Err(err).Msg("oauth exchange")
		respondErr(w, http.StatusBadRequest, "oauth exchange failed")
		return
	}
	client := s.oauthCfg.Client(r.Context(), tok)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v3/userinfo")
	if err != nil {
		log.Error().Err(err).Msg("oauth userinfo")
		respondErr(w, http.StatusBadRequest, "userinfo failed")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Error().Int("status", resp.StatusCode).Msg("oauth userinfo")
		respondErr(w, http.StatusBadRequest, "userinfo failed")
		return
	}
	body, _ := io.ReadAll(resp.Body)
	var info struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	_ = json.Unmarshal(body, &info)
	email := strings.ToLower(strings.TrimSpace(info.Email))
	if email == "" {
		respondErr(w, http.StatusBadRequest, "no email")
		return
	}
	if _, ok := s.adminAllowed[email]; !ok {
		respondErr(w, http.StatusForbidden, "forbidden")
		return
	}
	adminTok, exp, err := s.issueAdminToken(email, 6*time.Hour)
	if err != nil {
		respondErr(w, http.StatusInternalServerError, "token")
		return
	}
	secure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{Name: "admin_token", Value: adminTok, Path: "/", MaxAge: int(time.Until(exp).Seconds()), HttpOnly: true, Secure: secure, SameSite: http.SameSiteStrictMode})
	respond(w, http.StatusOK, map[string]any{"email": email, "exp": exp.Unix()})
}

func (s *Server) issueAdminToken(email string, dur time.Duration) (string, time.Time, error) {
	head := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	exp := time.Now().Add(dur)
	claims := map[string]any{"sub": email, "email": email, "role": "admin", "exp": exp.Unix(), "iat": time.Now().Unix(), "iss": "glamour"}
	b, _ := json.Marshal(claims)
	pay := base64.RawURLEncoding.EncodeToString(b)
	unsigned := head + "." + pay
	h := hmac.New(sha256.New, s.adminSecret)
	h.Write([]byte(unsigned))
	sig := base64.RawURLEncoding.EncodeToString(h.Sum(nil))
	return unsigned + "." + sig, exp, nil
}

func (s *Server) verifyAdminToken(tok string) (string, error) {
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("format")
	}
	unsigned := parts[0] + "." + parts[1]
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return "", fmt.Errorf("sig")
	}
	h := hmac.New(sha256.New, s.adminSecret)
	h.Write([]byte(unsigned))
	if !hmac.Equal(sig, h.Sum(nil)) {
		return "", fmt.Errorf("signature")
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("payload")
	}
	var m map[string]any
	if err := json.Unmarshal(payload, &m); err != nil {
		return "", fmt.Errorf("json")
	}
	role, _ := m["role"].(string)
	email, _ := m["email"].(string)
	expF, _ := m["exp"].(float64)
	if role != "admin" || email == "" {
		return "", fmt.Errorf("claims")
	}
	if time.Now().Unix() > int64(expF) {
		return "", fmt.Errorf("expired")
	}
	if _, ok := s.adminAllowed[strings.ToLower(email)]; !ok {
		return "", fmt.Errorf("not allowed")
	}
	return email, nil
}

func (s *Server) isAdmin(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		if _, err := s.verifyAdminToken(strings.TrimSpace(auth[7:])); err == nil {
			return true
		}
	}
	if c, err := r.Cookie("admin_token"); err == nil && c.Value != "" {
		if _, err := s.verifyAdminToken(c.Value); err == nil {
			return true
		}
	}
	return false
}

func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if s.isAdmin(r) {
		return true
	}
	respondErr(w, http.StatusUnauthorized, "unauthorized")
	return false
}

func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	var v byte
	for i := 0; i < len(a); i++ {
		v |= a[i] ^ b[i]
	}
	return v == 0
}
