package generate

import (
	"context"
	"fmt"

	"github.com/SameerVers3/Scrapply/pkg/models"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// DefaultModel is used when the config names none.
const DefaultModel = "gemini-2.5-flash"

// Low temperature: scraper code should be boring and deterministic.
const generationTemperature = float32(0.1)

var _ Generator = (*Gemini)(nil)

// Gemini implements Generator on Google's Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Generate(ctx context.Context, gc Context) (string, error) {
	log.Info().Str("url", gc.URL).Str("strategy", string(gc.Strategy)).Msg("generating scraper code")
	return g.complete(ctx, BuildPrompt(gc))
}

func (g *Gemini) Refine(ctx context.Context, gc Context, prevSource string, failure models.SandboxResult) (string, error) {
	log.Info().Str("url", gc.URL).Str("error_type", failure.ErrorType).Msg("refining scraper code")
	return g.complete(ctx, BuildRefinePrompt(gc, prevSource, failure))
}

func (g *Gemini) complete(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		buildConfig(),
	)
	if err != nil {
		return "", fmt.Errorf("gemini generation: %w", err)
	}
	if result == nil {
		return "", fmt.Errorf("gemini returned nil result")
	}
	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned empty response")
	}
	return text, nil
}

func buildConfig() *genai.GenerateContentConfig {
	temp := generationTemperature
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You are an expert Python web-scraping engineer. You write robust, self-contained scrapers that degrade gracefully on unexpected page structure. You output only code.",
			}},
		},
		Temperature: &temp,
	}
}
