package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"fitcoach/coach-app/internal/config"
	"fitcoach/coach-app/internal/domain"

	log "github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// geminiGenerator implements PlanGenerator on the Gemini API.
type geminiGenerator struct {
	client    *genai.Client
	modelName string
}

// NewGeminiGenerator creates a PlanGenerator backed by Gemini.
func NewGeminiGenerator(ctx context.Context, cfg config.AIConfig) (PlanGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ai api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}

	return &geminiGenerator{
		client:    client,
		modelName: modelName,
	}, nil
}

// GeneratePlan prompts the model and parses its JSON reply into a plan.
func (g *geminiGenerator) GeneratePlan(ctx context.Context, req PlanRequest) (*domain.PlanStructure, error) {
	prompt, err := BuildPlanPrompt(req)
	if err != nil {
		return nil, err
	}

	temp := float32(0.7)
	cfg := &genai.GenerateContentConfig{
		Temperature:      &temp,
		MaxOutputTokens:  int32(16384),
		ResponseMIMEType: "application/json",
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return nil, fmt.Errorf("gemini returned empty response")
	}

	plan, err := ParsePlanResponse(text)
	if err != nil {
		log.WithError(err).WithField("model", g.modelName).Error("unparseable plan response")
		return nil, err
	}
	return plan, nil
}

// ParsePlanResponse decodes the model output into a PlanStructure. Models
// sometimes wrap JSON in markdown fences even when asked not to, so those
// are stripped first.
func ParsePlanResponse(text string) (*domain.PlanStructure, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var plan domain.PlanStructure
	if err := json.Unmarshal([]byte(cleaned), &plan); err != nil {
		return nil, fmt.Errorf("parse plan response: %w", err)
	}
	if len(plan.Days) == 0 {
		return nil, fmt.Errorf("plan response contains no days")
	}
	return &plan, nil
}
