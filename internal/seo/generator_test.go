package seo

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	content string
	err     error
	empty   bool

	gotReq openai.ChatCompletionRequest
}

func (s *stubClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.gotReq = req
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	if s.empty {
		return openai.ChatCompletionResponse{}, nil
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.content}},
		},
	}, nil
}

func testInput() ProductInput {
	return ProductInput{
		Name:     "Silk Serum",
		Price:    2499,
		Category: "women",
		Type:     "skincare",
	}
}

func TestGenerateFromCompletion(t *testing.T) {
	stub := &stubClient{content: "```json\n" + `{
		"metaTitle": "Silk Serum | Skincare | Glamour Cosmetics Pakistan",
		"metaDescription": "Buy Silk Serum for Rs. 2499. Deep hydration for glowing skin. Shop now at Glamour Cosmetics!",
		"metaKeywords": ["silk serum", "skincare", "pakistan"],
		"seoSlug": "Silk Serum"
	}` + "\n```"}
	g := &Generator{client: stub, model: defaultModel, timeout: time.Second}

	b := g.Generate(context.Background(), testInput())

	assert.True(t, strings.HasPrefix(b.MetaTitle, "Silk Serum"))
	assert.LessOrEqual(t, len(b.MetaTitle), 60)
	assert.LessOrEqual(t, len(b.MetaDescription), 160)
	assert.Contains(t, b.MetaKeywords, "skincare")
	assert.Contains(t, b.MetaKeywords, "pakistan")
	assert.Equal(t, "silk-serum", b.Slug)

	assert.Equal(t, float32(0.7), stub.gotReq.Temperature)
	assert.Equal(t, 500, stub.gotReq.MaxTokens)
}

func TestGenerateFallsBackOnError(t *testing.T) {
	g := &Generator{client: &stubClient{err: errors.New("boom")}, model: defaultModel, timeout: time.Second}
	b := g.Generate(context.Background(), testInput())
	assert.Equal(t, Fallback(testInput()), b)
}

func TestGenerateFallsBackOnGarbage(t *testing.T) {
	for _, content := range []string{"not json at all", "{\"metaTitle\": \"\"}", ""} {
		g := &Generator{client: &stubClient{content: content}, model: defaultModel, timeout: time.Second}
		b := g.Generate(context.Background(), testInput())
		assert.Equal(t, Fallback(testInput()), b, "content %q", content)
	}
}

func TestGenerateFallsBackOnEmptyChoices(t *testing.T) {
	g := &Generator{client: &stubClient{empty: true}, model: defaultModel, timeout: time.Second}
	b := g.Generate(context.Background(), testInput())
	assert.Equal(t, Fallback(testInput()), b)
}

func TestGenerateWithoutClient(t *testing.T) {
	g := &Generator{model: defaultModel, timeout: time.Second}
	b := g.Generate(context.Background(), testInput())
	assert.Equal(t, Fallback(testInput()), b)
}

func TestFallbackBundle(t *testing.T) {
	b := Fallback(testInput())

	require.NotEmpty(t, b.MetaTitle)
	require.NotEmpty(t, b.MetaDescription)
	assert.LessOrEqual(t, len(b.MetaTitle), 60)
	assert.LessOrEqual(t, len(b.MetaDescription), 160)
	assert.Contains(t, b.MetaDescription, "Rs. 2499")
	assert.Contains(t, b.MetaKeywords, "pakistan")
	assert.Contains(t, b.MetaKeywords, "skincare")
	assert.Equal(t, "silk-serum", b.Slug)
}

func TestSanitizeCaps(t *testing.T) {
	raw := rawBundle{
		MetaTitle:       strings.Repeat("T", 100),
		MetaDescription: strings.Repeat("D", 300),
		MetaKeywords:    make([]string, 0, 30),
		SEOSlug:         "My Fancy Slug!",
	}
	for i := 0; i < 30; i++ {
		raw.MetaKeywords = append(raw.MetaKeywords, strings.Repeat("k", 40))
	}

	b, ok := sanitize(raw, testInput())
	require.True(t, ok)
	assert.Len(t, b.MetaTitle, 60)
	assert.Len(t, b.MetaDescription, 160)
	assert.Len(t, b.MetaKeywords, 15)
	for _, k := range b.MetaKeywords {
		assert.LessOrEqual(t, len(k), 30)
	}
	assert.Equal(t, "my-fancy-slug", b.Slug)
}

func TestClipKeepsRunesWhole(t *testing.T) {
	s := clip(strings.Repeat("a", 59)+"é", 60)
	assert.True(t, utf8.ValidString(s))
	assert.Equal(t, 60, utf8.RuneCountInString(s))
	assert.True(t, strings.HasSuffix(s, "é"))

	s = clip(strings.Repeat("é", 70), 60)
	assert.True(t, utf8.ValidString(s))
	assert.Equal(t, 60, utf8.RuneCountInString(s))
}

func TestFallbackTruncatesAccentedDescription(t *testing.T) {
	in := testInput()
	in.Name = "Crème Brûlée"
	in.Description = strings.Repeat("a", 79) + "é" + strings.Repeat("b", 40)

	b := Fallback(in)

	assert.True(t, utf8.ValidString(b.MetaTitle))
	assert.True(t, utf8.ValidString(b.MetaDescription))
	assert.Contains(t, b.MetaDescription, "é.")
	assert.NotContains(t, b.MetaDescription, "b")
	assert.LessOrEqual(t, utf8.RuneCountInString(b.MetaDescription), 160)
}

func TestSanitizeSlugFallsBackToName(t *testing.T) {
	raw := rawBundle{MetaTitle: "Title", MetaDescription: "Desc", SEOSlug: "   "}
	b, ok := sanitize(raw, testInput())
	require.True(t, ok)
	assert.Equal(t, "silk-serum", b.Slug)
}

func TestDescribeSurfacesErrors(t *testing.T) {
	g := &Generator{client: &stubClient{err: errors.New("down")}, model: defaultModel, timeout: time.Second}
	_, err := g.Describe(context.Background(), "Silk Serum", "skincare", "women", "")
	assert.Error(t, err)

	g = &Generator{model: defaultModel, timeout: time.Second}
	_, err = g.Describe(context.Background(), "Silk Serum", "skincare", "women", "")
	assert.Error(t, err)
}

func TestDescribeReturnsText(t *testing.T) {
	stub := &stubClient{content: "  A luxurious serum for daily use.  "}
	g := &Generator{client: stub, model: defaultModel, timeout: time.Second}
	got, err := g.Describe(context.Background(), "Silk Serum", "skincare", "women", "hyaluronic acid")
	require.NoError(t, err)
	assert.Equal(t, "A luxurious serum for daily use.", got)
	assert.Equal(t, float32(0.8), stub.gotReq.Temperature)
	assert.Equal(t, 200, stub.gotReq.MaxTokens)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences(`{"a":1}`))
}
