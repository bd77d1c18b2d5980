package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/arjun/deadline-tracker/internal/core"
	"github.com/arjun/deadline-tracker/internal/utils"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"
)

// BedrockClient implements the Classifier interface using Amazon Bedrock
type BedrockClient struct {
	client        *bedrockruntime.Client
	modelID       string
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

// NewBedrockClient creates a new Bedrock classifier client
func NewBedrockClient(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *BedrockClient {
	return &BedrockClient{
		client:        client,
		modelID:       modelID,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
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
	}
}

func (c *BedrockClient) isAnthropicModel() bool {
	return strings.HasPrefix(c.modelID, "anthropic.")
}

func (c *BedrockClient) isAmazonTitanModel() bool {
	return strings.HasPrefix(c.modelID, "amazon.titan")
}

// Classify analyzes a message to determine whether it is job-related
func (c *BedrockClient) Classify(ctx context.Context, msg *core.Message) (*core.Classification, error) {
	body := c.textProcessor.ProcessText(msg.Body, c.maxBodySize)
	prompt := fmt.Sprintf(c.promptFormat, msg.Sender, msg.Subject, body)

	var payload []byte
	var err error

	if c.isAnthropicModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":               prompt,
			"max_tokens_to_sample": c.maxTokens,
			"temperature":          c.temperature,
			"top_p":                c.topP,
		})
	} else if c.isAmazonTitanModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": c.maxTokens,
				"temperature":   c.temperature,
				"topP":          c.topP,
			},
		})
	} else {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  c.maxTokens,
			"temperature": c.temperature,
			"top_p":       c.topP,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	var responseText string
	if c.isAnthropicModel() {
		var claudeResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(resp.Body, &claudeResp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		responseText = claudeResp.Completion
	} else if c.isAmazonTitanModel() {
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(resp.Body, &titanResp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return nil, fmt.Errorf("no results returned from Titan model")
		}
		responseText = titanResp.Results[0].OutputText
	} else {
		var genericResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(resp.Body, &genericResp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal model response: %w", err)
		}
		responseText = genericResp.Completion
	}

	parsed, err := parseAnalysisResponse(responseText)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Bedrock classification complete",
		zap.String("message_id", msg.ID),
		zap.Bool("job_related", parsed.IsJobRelated),
		zap.Float64("confidence", parsed.Confidence))

	return toClassification(parsed, c.modelID), nil
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
