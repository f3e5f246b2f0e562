package seo

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	maxTitleLen    = 60
	maxDescLen     = 160
	maxKeywordLen  = 30
	maxKeywords    = 15
	storeName      = "Glamour Cosmetics"
	storeTagline   = "Glamour Cosmetics Pakistan"
)

// ProductInput carries the draft fields the synthesizer works from.
type ProductInput struct {
	Name        string
	Description string
	Price       float64
	Category    string
	Type        string
	Collection  string
}

// Bundle is the synthesized SEO metadata for one product. It is transient:
// the orchestrator merges it into the product row, it is never stored on
// its own.
type Bundle struct {
	MetaTitle       string
	MetaDescription string
	MetaKeywords    []string
	Slug            string
}

// TypeLabel mirrors the storefront's display names for product types.
func TypeLabel(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "makeup":
		return "Makeup"
	case "skincare":
		return "Skincare"
	default:
		return "Fragrance"
	}
}

// Fallback builds the deterministic template bundle used whenever the AI
// service is unavailable or returns garbage. Never empty, never partial.
func Fallback(in ProductInput) Bundle {
	label := TypeLabel(in.Type)

	title := clip(fmt.Sprintf("%s | %s | %s", in.Name, label, storeTagline), maxTitleLen)

	desc := in.Description
	if r := []rune(desc); len(r) > 80 {
		desc = string(r[:80])
	}
	metaDesc := clip(fmt.Sprintf("Buy %s for Rs. %.0f. %s. Shop now at %s!", in.Name, in.Price, desc, storeName), maxDescLen)

	keywords := sanitizeKeywords([]string{
		strings.ToLower(in.Name),
		strings.ToLower(in.Type),
		strings.ToLower(in.Category),
		strings.ToLower(in.Collection),
		"glamour cosmetics",
		"beauty products",
		"buy online",
		"pakistan",
		strings.ToLower(label),
		"cosmetics",
	})

	return Bundle{
		MetaTitle:       title,
		MetaDescription: metaDesc,
		MetaKeywords:    keywords,
		Slug:            Slugify(in.Name),
	}
}

// sanitize normalizes a raw AI bundle: every field trimmed and capped, the
// slug re-derived through Slugify. Returns false when nothing usable came
// back and the caller should fall back.
func sanitize(raw rawBundle, in ProductInput) (Bundle, bool) {
	b := Bundle{
		MetaTitle:       clip(raw.MetaTitle, maxTitleLen),
		MetaDescription: clip(raw.MetaDescription, maxDescLen),
		MetaKeywords:    sanitizeKeywords(raw.MetaKeywords),
	}

	slugSeed := raw.SEOSlug
	if strings.TrimSpace(slugSeed) == "" {
		slugSeed = in.Name
	}
	b.Slug = Slugify(slugSeed)

	if b.MetaTitle == "" || b.MetaDescription == "" {
		return Bundle{}, false
	}
	return b, true
}

func sanitizeKeywords(kw []string) []string {
	out := make([]string, 0, maxKeywords)
	for _, k := range kw {
		k = clip(k, maxKeywordLen)
		if k == "" {
			continue
		}
		out = append(out, k)
		if len(out) == maxKeywords {
			break
		}
	}
	return out
}

// clip caps s at max characters, never splitting a multi-byte rune.
func clip(s string, max int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:max]))
}
