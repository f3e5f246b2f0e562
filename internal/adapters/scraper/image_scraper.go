package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoImage is returned when the page carries neither an og:image tag nor
// a usable <img>.
var ErrNoImage = errors.New("scraper: no image found")

const userAgent = "Mozilla/5.0 (compatible; GlamourBot/1.0)"

// ImageScraper fetches a product page and extracts its primary image URL,
// used by the admin panel to fill the image field from a supplier link.
type ImageScraper struct {
	client *http.Client
}

func New() *ImageScraper {
	return &ImageScraper{client: &http.Client{Timeout: 10 * time.Second}}
}

// FindImage returns the og:image of pageURL, falling back to the first
// non-trivial <img src>. Relative URLs are resolved against the page.
func (s *ImageScraper) FindImage(ctx context.Context, pageURL string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") {
		return "", fmt.Errorf("scraper: invalid url %q", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("scraper: fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("scraper: fetch %s: status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("scraper: parse %s: %w", pageURL, err)
	}

	if src, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok {
		if img := resolve(base, src); img != "" {
			return img, nil
		}
	}

	var found string
	doc.Find("img[src]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		src, _ := sel.Attr("src")
		// skip pixels and inline data blobs
		if strings.HasPrefix(src, "data:") || strings.Contains(src, "1x1") {
			return true
		}
		if img := resolve(base, src); img != "" {
			found = img
			return false
		}
		return true
	})
	if found == "" {
		return "", ErrNoImage
	}
	return found, nil
}

func resolve(base *url.URL, src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	u, err := url.Parse(src)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(u)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	return abs.String()
}
