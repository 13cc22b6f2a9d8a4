package narrative

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/i474232898/weather-narrator/internal/weather"
)

// TextGenerator is the text-generation collaborator: one blocking call,
// no streaming.
type TextGenerator interface {
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ClientConfig configures the DeepSeek-backed TextGenerator.
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

const (
	defaultBaseURL = "https://api.deepseek.com"
	defaultModel   = "deepseek-chat"
)

// Client calls DeepSeek through its OpenAI-compatible chat completion
// endpoint, with bounded timeouts and retries.
type Client struct {
	client     *openai.Client
	model      string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
}

// NewClient creates a Client. The API key is required; endpoint and
// model fall back to DeepSeek defaults.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("deepseek api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = cfg.BaseURL

	return &Client{
		client:     openai.NewClientWithConfig(oc),
		model:      cfg.Model,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}, nil
}

// GenerateText performs the chat completion call, retrying transient
// failures with exponential backoff.
func (c *Client) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<uint(attempt-1))
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return "", ctx.Err()
			case <-timer.C:
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err := c.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: userPrompt},
			},
			Temperature: 0.7,
			MaxTokens:   500,
		})
		cancel()

		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			lastErr = fmt.Errorf("attempt %d: empty completion", attempt+1)
			continue
		}
		return resp.Choices[0].Message.Content, nil
	}

	return "", lastErr
}

// Generator builds persona-flavored weather narratives. A nil or
// failing TextGenerator degrades to the canned fallback; narrative
// generation never aborts a refresh cycle.
type Generator struct {
	gen      TextGenerator
	language string
	timezone string
}

// NewGenerator creates a Generator. gen may be nil when no collaborator
// is configured; every narration then returns the fallback text.
func NewGenerator(gen TextGenerator, language, timezone string) *Generator {
	if language == "" {
		language = "en"
	}
	if timezone == "" {
		timezone = "UTC"
	}
	return &Generator{gen: gen, language: language, timezone: timezone}
}

// Narrate produces sanitized plain-text narrative for the summary in
// the persona's voice. It never returns an empty string and never
// fails.
func (g *Generator) Narrate(ctx context.Context, sum weather.ForecastSummary, persona weather.Persona) string {
	if g.gen == nil {
		return Fallback(sum.Category)
	}

	text, err := g.gen.GenerateText(ctx, systemPrompt(persona), userPrompt(sum, g.language, g.timezone))
	if err != nil {
		log.Printf("narrative: generation failed for %s at %s: %v", persona.Name, sum.Location, err)
		return Fallback(sum.Category)
	}

	text = Sanitize(text)
	if text == "" {
		return Fallback(sum.Category)
	}
	return text
}

// Fallback is the deterministic message used when the collaborator
// fails. It references the current weather category so the reader still
// learns something.
func Fallback(category string) string {
	category = strings.TrimSpace(strings.ToLower(category))
	if category == "" || category == "unknown" {
		category = "current"
	}
	return fmt.Sprintf("Sorry, I'm unable to provide a personalized weather description for %s weather at the moment.", category)
}

func systemPrompt(persona weather.Persona) string {
	return fmt.Sprintf("You are %s. %s", persona.Name, persona.Description)
}

func userPrompt(sum weather.ForecastSummary, language, timezone string) string {
	var b strings.Builder

	b.WriteString("Write a short, entertaining letter (150-200 words) reporting the current weather conditions. Stay in character the entire time.\n\n")
	b.WriteString("IMPORTANT OUTPUT FORMATTING REQUIREMENTS:\n")
	b.WriteString("1. Use PLAIN TEXT ONLY - absolutely NO markdown formatting\n")
	b.WriteString("2. DO NOT use asterisks, hashtags, backticks or any other formatting characters\n")
	b.WriteString("3. Start directly with your greeting without any leading spaces\n")
	b.WriteString("4. End with a closing call-to-action and sign-off in your character's voice\n")
	b.WriteString(fmt.Sprintf("5. Respond in the language %q; if it is not English, the whole letter must be in that language\n", language))
	b.WriteString(fmt.Sprintf("6. Reflect local time considerations for the timezone %q\n\n", timezone))

	b.WriteString("Current weather conditions:\n")
	b.WriteString(fmt.Sprintf("- Location: %s\n", sum.Location))
	b.WriteString(fmt.Sprintf("- Temperature: %s\n", sum.Temperature))
	b.WriteString(fmt.Sprintf("- Temperature range: %s\n", sum.TempRange))
	b.WriteString(fmt.Sprintf("- Weather: %s\n", sum.Conditions))
	b.WriteString(fmt.Sprintf("- Humidity: %s\n", sum.Humidity))
	b.WriteString(fmt.Sprintf("- Pressure: %s\n", sum.Pressure))
	b.WriteString(fmt.Sprintf("- Wind: %s\n", sum.Wind))
	b.WriteString(fmt.Sprintf("- Cloud coverage: %s\n", sum.Clouds))
	b.WriteString(fmt.Sprintf("- Daylight: %s\n", sum.Daylight))
	b.WriteString(fmt.Sprintf("- Expected weather today: %s\n", sum.DominantCategory))
	b.WriteString(fmt.Sprintf("- Highest chance of precipitation: %d%% at %s\n\n", sum.MaxPrecip, sum.MaxPrecipTime))

	b.WriteString("Write your letter now, addressing the reader directly. Include a greeting in your character's voice and some suggestions based on the weather condition.")

	return b.String()
}
