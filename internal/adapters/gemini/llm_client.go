package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/arjun/deadline-tracker/internal/core"
	"github.com/arjun/deadline-tracker/internal/utils"
	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiClient implements the Classifier interface using Google Gemini
type GeminiClient struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	promptFormat  string
}

// JobAnalysisResponse represents the structured response from the LLM
type JobAnalysisResponse struct {
	IsJobRelated bool    `json:"is_job_related"`
	Confidence   float64 `json:"confidence"`
	Category     string  `json:"category"`
	Urgency      string  `json:"urgency"`
	Reasoning    string  `json:"reasoning"`
}

// NewGeminiClient creates a new Gemini classifier client
func NewGeminiClient(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*GeminiClient, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &GeminiClient{
		client:        client,
		model:         model,
		modelName:     modelName,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
		promptFormat: `You are an expert email classifier for job opportunities. Analyze the following email and determine whether it describes job-related content: career opportunities, application deadlines, interviews, assessments, or academic opportunities.
Respond with a JSON object containing:
- is_job_related: boolean
- confidence: number between 0 and 1
- category: one of "job_posting", "interview", "assessment", "application", "event", "other"
- urgency: one of "high", "medium", "low"
- reasoning: string (brief explanation)

Email:
From: %s
Subject: %s
Body:
%s

Respond only with the JSON object and nothing else.`,
	}, nil
}

// Classify analyzes a message to determine whether it is job-related
func (c *GeminiClient) Classify(ctx context.Context, msg *core.Message) (*core.Classification, error) {
	body := c.textProcessor.ProcessText(msg.Body, c.maxBodySize)
	prompt := fmt.Sprintf(c.promptFormat, msg.Sender, msg.Subject, body)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no candidates returned from Gemini")
	}

	var responseText string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText += string(text)
		}
	}

	parsed, err := parseAnalysisResponse(responseText)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Gemini classification complete",
		zap.String("message_id", msg.ID),
		zap.Bool("job_related", parsed.IsJobRelated),
		zap.Float64("confidence", parsed.Confidence))

	return toClassification(parsed, c.modelName), nil
}

// Close releases the underlying API client
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

var jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

func parseAnalysisResponse(text string) (*JobAnalysisResponse, error) {
	block := jsonBlockRe.FindString(text)
	if block == "" {
		return nil, fmt.Errorf("no JSON object found in LLM response")
	}
	var parsed JobAnalysisResponse
	if err := json.Unmarshal([]byte(block), &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal LLM response: %w", err)
	}
	return &parsed, nil
}

func toClassification(resp *JobAnalysisResponse, modelUsed string) *core.Classification {
	category := core.CategoryOther
	switch strings.ToLower(resp.Category) {
	case "job_posting":
		category = core.CategoryJobPosting
	case "application", "deadline":
		category = core.CategoryApplication
	case "interview":
		category = core.CategoryInterview
	case "assessment":
		category = core.CategoryAssessment
	case "event":
		category = core.CategoryEvent
	}

	urgency := core.UrgencyLow
	switch strings.ToLower(resp.Urgency) {
	case "high":
		urgency = core.UrgencyHigh
	case "medium":
		urgency = core.UrgencyMedium
	}

	return &core.Classification{
		IsJobRelated: resp.IsJobRelated,
		Category:     category,
		Urgency:      urgency,
		Reason:       resp.Reasoning,
		Confidence:   resp.Confidence,
		ModelUsed:    modelUsed,
	}
}
