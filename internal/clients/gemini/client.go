// Package gemini provides a news impact analyzer backed by the Google Gemini API
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/smartfolio-app/smartfolio/internal/common"
	"github.com/smartfolio-app/smartfolio/internal/interfaces"
	"github.com/smartfolio-app/smartfolio/internal/models"
)

const (
	DefaultModel = "gemini-2.0-flash"

	// MaxTexts caps how many articles go into one analysis prompt.
	MaxTexts = 5
)

// Client implements the NewsAnalyzer interface
type Client struct {
	client *genai.Client
	model  string
	logger *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client: genaiClient,
		model:  DefaultModel,
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// AnalyzeNewsImpact summarizes a batch of news texts into a structured
// impact assessment. On any failure it returns a low-impact default along
// with the error so the daily sync never stalls on the AI call.
func (c *Client) AnalyzeNewsImpact(ctx context.Context, texts []string) (*models.NewsAnalysis, error) {
	if len(texts) == 0 {
		return models.DefaultNewsAnalysis("No recent news."), nil
	}
	if len(texts) > MaxTexts {
		texts = texts[:MaxTexts]
	}

	prompt := buildNewsPrompt(texts)

	c.logger.Debug().Str("model", c.model).Int("texts", len(texts)).Msg("Analyzing news impact")

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return models.DefaultNewsAnalysis("News analysis unavailable."), fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractTextFromResponse(result)
	if err != nil {
		return models.DefaultNewsAnalysis("News analysis unavailable."), err
	}

	analysis, err := parseNewsAnalysis(text)
	if err != nil {
		return models.DefaultNewsAnalysis("News analysis unavailable."), err
	}

	return analysis, nil
}

// buildNewsPrompt creates the JSON-response prompt for a news batch
func buildNewsPrompt(texts []string) string {
	var sb strings.Builder
	sb.WriteString("You are a financial analyst. Summarize the following news articles ")
	sb.WriteString("about a single stock and assess their likely price impact.\n\n")
	for i, t := range texts {
		sb.WriteString(fmt.Sprintf("Article %d:\n%s\n\n", i+1, t))
	}
	sb.WriteString(`Respond with a JSON object with exactly these fields:
{"summary": "<two sentence summary>", "sentiment": <number between -1 and 1>, "impact_level": "<high|med|low>"}`)
	return sb.String()
}

// parseNewsAnalysis decodes the model's JSON reply, tolerating markdown
// code fences and clamping out-of-range values.
func parseNewsAnalysis(text string) (*models.NewsAnalysis, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var analysis models.NewsAnalysis
	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse news analysis: %w", err)
	}

	if analysis.Summary == "" {
		return nil, fmt.Errorf("news analysis missing summary")
	}

	switch analysis.ImpactLevel {
	case models.ImpactHigh, models.ImpactMed, models.ImpactLow:
	default:
		analysis.ImpactLevel = models.ImpactLow
	}

	if analysis.Sentiment > 1 {
		analysis.Sentiment = 1
	} else if analysis.Sentiment < -1 {
		analysis.Sentiment = -1
	}

	return &analysis, nil
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	text := ""
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}

	return text, nil
}

// Ensure Client implements NewsAnalyzer
var _ interfaces.NewsAnalyzer = (*Client)(nil)
