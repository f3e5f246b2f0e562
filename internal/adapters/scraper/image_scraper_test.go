package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(html))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFindImageOGTag(t *testing.T) {
	srv := serve(t, `<html><head>
		<meta property="og:image" content="https://cdn.example.com/serum.jpg">
	</head><body><img src="/other.png"></body></html>`)

	s := New()
	got, err := s.FindImage(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/serum.jpg", got)
}

func TestFindImageFallsBackToFirstImg(t *testing.T) {
	srv := serve(t, `<html><body>
		<img src="data:image/gif;base64,xx">
		<img src="/assets/lipstick.jpg">
	</body></html>`)

	s := New()
	got, err := s.FindImage(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/assets/lipstick.jpg", got)
}

func TestFindImageRelativeOG(t *testing.T) {
	srv := serve(t, `<html><head><meta property="og:image" content="/img/hero.webp"></head></html>`)

	s := New()
	got, err := s.FindImage(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/img/hero.webp", got)
}

func TestFindImageNone(t *testing.T) {
	srv := serve(t, `<html><body><p>nothing here</p></body></html>`)

	s := New()
	_, err := s.FindImage(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestFindImageBadURL(t *testing.T) {
	s := New()
	_, err := s.FindImage(context.Background(), "ftp://example.com/x")
	assert.Error(t, err)

	_, err = s.FindImage(context.Background(), "://broken")
	assert.Error(t, err)
}

func TestFindImageNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	s := New()
	_, err := s.FindImage(context.Background(), srv.URL)
	assert.Error(t, err)
}
