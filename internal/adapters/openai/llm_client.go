package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/arjun/deadline-tracker/internal/core"
	"github.com/arjun/deadline-tracker/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient implements the Classifier interface using OpenAI
type OpenAIClient struct {
	client        *openai.Client
	modelName     string
	maxTokens     int
	temperature   float32
	topP          float32
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

const classifierPrompt = `You are an expert email classifier for job opportunities. Analyze the following email and determine whether it describes job-related content: career opportunities, application deadlines, interviews, assessments, or academic opportunities.
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

Respond only with the JSON object and nothing else.`

// NewOpenAIClient creates a new OpenAI classifier client
func NewOpenAIClient(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *OpenAIClient {
	return &OpenAIClient{
		client:        openai.NewClient(apiKey),
		modelName:     modelName,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
		promptFormat:  classifierPrompt,
	}
}

// Classify analyzes a message to determine whether it is job-related
func (c *OpenAIClient) Classify(ctx context.Context, msg *core.Message) (*core.Classification, error) {
	body := c.textProcessor.ProcessText(msg.Body, c.maxBodySize)
	prompt := fmt.Sprintf(c.promptFormat, msg.Sender, msg.Subject, body)

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a job-opportunity email classifier. Respond only with JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no completion choices returned")
	}

	parsed, err := ParseAnalysisResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("OpenAI classification complete",
		zap.String("message_id", msg.ID),
		zap.Bool("job_related", parsed.IsJobRelated),
		zap.Float64("confidence", parsed.Confidence))

	return ToClassification(parsed, c.modelName), nil
}

var jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

// ParseAnalysisResponse extracts the JSON object from a model response,
// tolerating prose around it.
func ParseAnalysisResponse(text string) (*JobAnalysisResponse, error) {
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

// ToClassification maps the LLM response onto the engine's classification
// record. Unknown category or urgency strings degrade to "other"/"low"
// rather than failing.
func ToClassification(resp *JobAnalysisResponse, modelUsed string) *core.Classification {
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
