package seo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

const (
	defaultBaseURL = "https://api.groq.com/openai/v1"
	defaultModel   = "llama-3.3-70b-versatile"
	defaultTimeout = 15 * time.Second
)

// completionClient is the slice of the OpenAI client the generator uses.
// Tests swap in a stub.
type completionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Generator talks to Groq's OpenAI-compatible chat-completion endpoint.
// Generate never fails: any problem with the service resolves to the
// deterministic fallback bundle, so product creation never blocks on AI.
type Generator struct {
	client  completionClient
	model   string
	timeout time.Duration
}

// NewGeneratorFromEnv reads GROQ_API_KEY, GROQ_BASE_URL, GROQ_MODEL and
// GROQ_TIMEOUT. Without a key the generator runs fallback-only.
func NewGeneratorFromEnv() *Generator {
	g := &Generator{model: defaultModel, timeout: defaultTimeout}

	key := strings.TrimSpace(os.Getenv("GROQ_API_KEY"))
	if key == "" {
		log.Warn().Msg("GROQ_API_KEY not set, SEO generation will use fallback templates")
		return g
	}

	cfg := openai.DefaultConfig(key)
	cfg.BaseURL = defaultBaseURL
	if u := strings.TrimSpace(os.Getenv("GROQ_BASE_URL")); u != "" {
		cfg.BaseURL = u
	}
	g.client = openai.NewClientWithConfig(cfg)

	if m := strings.TrimSpace(os.Getenv("GROQ_MODEL")); m != "" {
		g.model = m
	}
	if t := strings.TrimSpace(os.Getenv("GROQ_TIMEOUT")); t != "" {
		if d, err := time.ParseDuration(t); err == nil && d > 0 {
			g.timeout = d
		}
	}
	return g
}

type rawBundle struct {
	MetaTitle       string   `json:"metaTitle"`
	MetaDescription string   `json:"metaDescription"`
	MetaKeywords    []string `json:"metaKeywords"`
	SEOSlug         string   `json:"seoSlug"`
}

// Generate synthesizes an SEO bundle for the product. The AI call is bounded
// by the configured timeout; every failure path lands on Fallback.
func (g *Generator) Generate(ctx context.Context, in ProductInput) Bundle {
	if g.client == nil {
		return Fallback(in)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an SEO expert. Always respond with valid JSON only, no markdown formatting.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: seoPrompt(in),
			},
		},
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		log.Warn().Err(err).Str("product", in.Name).Msg("seo generation failed, using fallback")
		return Fallback(in)
	}
	if len(resp.Choices) == 0 {
		log.Warn().Str("product", in.Name).Msg("empty seo completion, using fallback")
		return Fallback(in)
	}

	content := stripFences(resp.Choices[0].Message.Content)
	var raw rawBundle
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		log.Warn().Err(err).Str("product", in.Name).Msg("unparseable seo completion, using fallback")
		return Fallback(in)
	}

	b, ok := sanitize(raw, in)
	if !ok {
		return Fallback(in)
	}
	return b
}

// Describe writes a product description. Unlike Generate it may fail; the
// admin endpoint surfaces the error instead of inventing copy.
func (g *Generator) Describe(ctx context.Context, name, typ, category, brief string) (string, error) {
	if g.client == nil {
		return "", fmt.Errorf("seo: ai service not configured")
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a professional copywriter. Write concise, engaging product descriptions.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: describePrompt(name, typ, category, brief),
			},
		},
		Temperature: 0.8,
		MaxTokens:   200,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("seo: empty completion")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("seo: empty completion")
	}
	return text, nil
}

func seoPrompt(in ProductInput) string {
	return fmt.Sprintf(`You are an SEO expert for an e-commerce cosmetics and beauty store called "%s" in Pakistan. Generate SEO metadata for this product:

Product Name: %s
Description: %s
Price: Rs. %.0f
Category: %s
Type: %s
Collection: %s

Generate the following in JSON format ONLY (no markdown, no code blocks, just pure JSON):
{
  "metaTitle": "SEO-optimized title (50-60 characters, include brand and product type)",
  "metaDescription": "Compelling meta description (150-160 characters, include price, key benefits, call-to-action)",
  "metaKeywords": ["array", "of", "relevant", "SEO", "keywords", "10-15 keywords"],
  "seoSlug": "url-friendly-slug-lowercase-with-hyphens"
}

Requirements:
- metaTitle: Include product name, type, and "%s" or "Buy Online Pakistan"
- metaDescription: Mention key benefits, price (Rs. %.0f), and "Shop now" or "Buy online"
- metaKeywords: Include product name, type, category, beauty-related terms, "Pakistan", "online shopping"
- seoSlug: Lowercase, hyphens for spaces, no special characters, max 50 chars

Return ONLY valid JSON, no explanations.`,
		storeName, in.Name, in.Description, in.Price, in.Category, in.Type, in.Collection, storeName, in.Price)
}

func describePrompt(name, typ, category, brief string) string {
	extra := ""
	if brief != "" {
		extra = "Additional Info: " + brief + "\n"
	}
	return fmt.Sprintf(`You are a copywriter for "%s", a premium beauty store in Pakistan. Write a compelling product description for:

Product: %s
Type: %s
Category: %s
%s
Requirements:
- 2-3 sentences (60-120 words)
- Highlight key benefits and features
- Use engaging, persuasive language
- Mention quality and expected results
- Make it suitable for Pakistani audience
- Do NOT include the price
- Do NOT use asterisks, bullet points, or markdown formatting
- Write in a natural, flowing paragraph style

Return ONLY the description text, nothing else.`, storeName, name, typ, category, extra)
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
