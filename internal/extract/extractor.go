// Package extract is the natural-language boundary: it turns free-text
// property queries into structured search metadata via an OpenAI-compatible
// chat model. Everything past this boundary works on structured params only.
package extract

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/metakai1/landsearch/internal/model"
)

const systemPrompt = `You are a real estate search assistant for a futuristic city. Convert natural language queries into structured search parameters.

Given a user query, respond with a JSON object containing:
1. "searchText": a natural language restatement of the query
2. "metadata": search parameters with any of these optional fields:
   - "names": array of plot names
   - "neighborhoods": array of district names
   - "zoningTypes": array from [Residential, Commercial, Industrial, "Mixed Use", Legendary]
   - "plotSizes": array from [Nano, Micro, Small, Medium, Macro, Large, Mega, Giga]
   - "buildingTypes": array from [LowRise, MidRise, HighRise, Tower, Skyscraper, Megascraper]
   - "distances": {"ocean": {"maxMeters": number, "category": "Close"|"Medium"|"Far"}, "bay": {...}}
   - "building": {"floors": {"min": number, "max": number}, "height": {"min": number, "max": number}}
   - "rarity": {"rankRange": {"min": number, "max": number}}
   - "tokenId": string

Omit any field the query does not constrain. Respond with JSON only.`

// Extractor converts a free-text query into structured search metadata.
type Extractor interface {
	Extract(ctx context.Context, query string) (*model.SearchMetadata, error)
}

// Config holds the extraction model settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
}

// OpenAIExtractor implements Extractor against an OpenAI-compatible API.
type OpenAIExtractor struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewOpenAIExtractor creates an extractor backed by a chat completion model.
func NewOpenAIExtractor(cfg *Config) *OpenAIExtractor {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIExtractor{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
}

// Extract sends the query to the model and parses the structured response.
func (e *OpenAIExtractor) Extract(ctx context.Context, query string) (*model.SearchMetadata, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: e.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query extraction failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("query extraction returned no choices")
	}

	var meta model.SearchMetadata
	if err := ParseModelJSON(resp.Choices[0].Message.Content, &meta); err != nil {
		return nil, fmt.Errorf("query extraction returned malformed metadata: %w", err)
	}
	if meta.SearchText == "" {
		meta.SearchText = query
	}
	return &meta, nil
}
