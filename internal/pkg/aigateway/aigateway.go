package aigateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/repository"
)

var (
	// ErrFeatureDisabled is returned when the AI gateway is globally off.
	ErrFeatureDisabled = errors.New("ai features are disabled")
	// ErrNotConfigured is returned when endpoint or API key are missing.
	ErrNotConfigured = errors.New("ai endpoint is not configured")
	// ErrEmptyPrompt is returned for blank prompts.
	ErrEmptyPrompt = errors.New("prompt must not be empty")
	// ErrProvider wraps upstream provider errors.
	ErrProvider = errors.New("ai provider error")
	// ErrBadResponse is returned when the provider payload has no candidate text.
	ErrBadResponse = errors.New("unexpected ai response shape")
)

const requestTimeout = 60 * time.Second

// request/response wire types for the generative endpoint.

type contentPart struct {
	Text string `json:"text"`
}

type content struct {
	Role  string        `json:"role,omitempty"`
	Parts []contentPart `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Service posts single-turn prompts to a configured generative endpoint and
// audits every successful call. One request, one response: no retry, no
// streaming.
type Service struct {
	client *http.Client
	repo   repository.AIRepository
}

// NewService creates an AI gateway service.
func NewService(repo repository.AIRepository) *Service {
	return &Service{
		client: &http.Client{Timeout: requestTimeout},
		repo:   repo,
	}
}

// Generate sends a plain single-turn prompt and returns the candidate text.
func (s *Service) Generate(ctx context.Context, settings models.SettingsSnapshot, userID uint, kind, prompt string) (string, error) {
	return s.generate(ctx, settings, userID, kind, prompt, nil)
}

// seoSchema constrains the SEO response to a fixed JSON object so the result
// can be decoded without guessing.
var seoSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"title": {"type": "string"},
		"meta_description": {"type": "string"},
		"keywords": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["title", "meta_description", "keywords"]
}`)

// SEOSuggestion is the structured result of GenerateSEO.
type SEOSuggestion struct {
	Title           string   `json:"title"`
	MetaDescription string   `json:"meta_description"`
	Keywords        []string `json:"keywords"`
}

// GenerateSEO asks for SEO metadata for a business listing using a structured
// JSON response schema.
func (s *Service) GenerateSEO(ctx context.Context, settings models.SettingsSnapshot, userID uint, businessName, description string) (*SEOSuggestion, error) {
	prompt := fmt.Sprintf(
		"Generate SEO metadata for the following business listing.\nName: %s\nDescription: %s",
		businessName, description,
	)
	cfg := &generationConfig{
		ResponseMimeType: "application/json",
		ResponseSchema:   seoSchema,
	}

	text, err := s.generate(ctx, settings, userID, models.AIKindSEO, prompt, cfg)
	if err != nil {
		return nil, err
	}

	var suggestion SEOSuggestion
	if err := json.Unmarshal([]byte(text), &suggestion); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return &suggestion, nil
}

func (s *Service) generate(ctx context.Context, settings models.SettingsSnapshot, userID uint, kind, prompt string, cfg *generationConfig) (string, error) {
	if !settings.AIEnabled {
		return "", ErrFeatureDisabled
	}
	if settings.AIEndpoint == "" || settings.AIAPIKey == "" {
		return "", ErrNotConfigured
	}
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	body := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []contentPart{{Text: prompt}}},
		},
		GenerationConfig: cfg,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to encode ai request: %w", err)
	}

	endpoint, err := url.Parse(settings.AIEndpoint)
	if err != nil {
		return "", fmt.Errorf("invalid ai endpoint: %w", err)
	}
	q := endpoint.Query()
	q.Set("key", settings.AIAPIKey)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build ai request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Errorf("ai request failed: %v", err)
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read ai response: %w", err)
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		log.Errorf("ai response is not json (status %d)", resp.StatusCode)
		return "", fmt.Errorf("%w: status %d", ErrBadResponse, resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := "unknown error"
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		log.Errorf("ai provider returned status %d: %s", resp.StatusCode, msg)
		return "", fmt.Errorf("%w: %s", ErrProvider, msg)
	}

	if len(parsed.Candidates) == 0 ||
		len(parsed.Candidates[0].Content.Parts) == 0 ||
		parsed.Candidates[0].Content.Parts[0].Text == "" {
		return "", ErrBadResponse
	}
	text := parsed.Candidates[0].Content.Parts[0].Text

	audit := &models.AIInteraction{
		UserID:   userID,
		Kind:     kind,
		Prompt:   prompt,
		Response: text,
	}
	if err := s.repo.CreateInteraction(audit); err != nil {
		// The caller still gets the text; losing one audit row is logged,
		// not fatal.
		log.Errorf("failed to persist ai interaction: %v", err)
	}

	return text, nil
}
