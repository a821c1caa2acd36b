package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/hometrade/commsguard/internal/domain/classifier"
	"github.com/hometrade/commsguard/internal/infra/ai/prompt"
)

const maxTokens = 1024

// DefaultModels is the ordered variant list tried for each classification,
// first success wins. The retry is sequential on purpose: racing variants
// would multiply cost and invite inconsistent outcomes.
var DefaultModels = []string{"gpt-4o", "gpt-4o-mini"}

type Client struct {
	api    *openai.Client
	Models []string
}

func NewClient(apiKey string, models []string) *Client {
	if len(models) == 0 {
		models = DefaultModels
	}
	return &Client{api: openai.NewClient(apiKey), Models: models}
}

// wire shape of the text classification response, matching the prompt schema
type textResponse struct {
	ThreatLabels        []string          `json:"threat_labels"`
	Confidence          float64           `json:"confidence"`
	Explanation         string            `json:"explanation"`
	RecommendedAction   string            `json:"recommended_action"`
	AlternativeSafeText string            `json:"alternative_safe_text"`
	ScopeChangeLabels   []string          `json:"scope_change_labels"`
	ScopeChangeDetails  map[string]string `json:"scope_change_details"`
}

type imageResponse struct {
	ContactInfoDetected bool     `json:"contact_info_detected"`
	Confidence          float64  `json:"confidence"`
	Explanation         string   `json:"explanation"`
	Phones              []string `json:"phones"`
	Emails              []string `json:"emails"`
	Addresses           []string `json:"addresses"`
	SocialHandles       []string `json:"social_handles"`
}

// ClassifyText walks the ordered model variants and short-circuits on the
// first success. When every variant fails the error wraps
// classifier.ErrUnavailable so the caller engages the deterministic fallback.
func (c *Client) ClassifyText(ctx context.Context, req classifier.Request) (classifier.Result, error) {
	var lastErr error
	for _, model := range c.Models {
		res, err := c.classifyOnce(ctx, model, req)
		if err == nil {
			res.Source = model
			return res, nil
		}
		lastErr = err
		if errors.Is(err, classifier.ErrQuotaExceeded) || ctx.Err() != nil {
			break
		}
	}
	return classifier.Result{}, fmt.Errorf("%w: %v", classifier.ErrUnavailable, lastErr)
}

func (c *Client) classifyOnce(ctx context.Context, model string, req classifier.Request) (classifier.Result, error) {
	ccr := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: prompt.GetUserPrompt(req.Content, req.SenderRole, req.TransactionContext, req.RecentHistory)},
		},
	}
	setTokenLimit(&ccr, model)

	resp, err := c.api.CreateChatCompletion(ctx, ccr)
	if err != nil {
		return classifier.Result{}, mapAPIError(model, err)
	}
	if len(resp.Choices) == 0 {
		return classifier.Result{}, fmt.Errorf("model %s returned no choices", model)
	}

	var wire textResponse
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &wire); err != nil {
		return classifier.Result{}, fmt.Errorf("model %s returned unparseable JSON: %w", model, err)
	}
	return classifier.Result{
		ThreatLabels:        wire.ThreatLabels,
		Confidence:          clamp01(wire.Confidence),
		Explanation:         wire.Explanation,
		RecommendedAction:   wire.RecommendedAction,
		AlternativeSafeText: wire.AlternativeSafeText,
		ScopeChangeLabels:   wire.ScopeChangeLabels,
		ScopeChangeDetails:  wire.ScopeChangeDetails,
	}, nil
}

// ClassifyImage sends the image inline as a data URL with the fixed-schema
// vision prompt. Errors are returned as-is; the pipeline converts them to a
// fail-closed result.
func (c *Client) ClassifyImage(ctx context.Context, data []byte, format string) (classifier.ImageAnalysis, error) {
	if format == "" {
		format = "jpeg"
	}
	dataURL := fmt.Sprintf("data:image/%s;base64,%s", format, base64.StdEncoding.EncodeToString(data))

	var lastErr error
	for _, model := range c.Models {
		ccr := openai.ChatCompletionRequest{
			Model: model,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: prompt.GetImageSystemPrompt()},
				{
					Role: openai.ChatMessageRoleUser,
					MultiContent: []openai.ChatMessagePart{
						{Type: openai.ChatMessagePartTypeText, Text: "Inspect this image for contact information and respond with the JSON per schema."},
						{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL}},
					},
				},
			},
		}
		setTokenLimit(&ccr, model)

		resp, err := c.api.CreateChatCompletion(ctx, ccr)
		if err != nil {
			lastErr = mapAPIError(model, err)
			if errors.Is(lastErr, classifier.ErrQuotaExceeded) || ctx.Err() != nil {
				break
			}
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("model %s returned no choices", model)
			continue
		}
		var wire imageResponse
		if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &wire); err != nil {
			lastErr = fmt.Errorf("model %s returned unparseable JSON: %w", model, err)
			continue
		}
		return classifier.ImageAnalysis{
			ContactInfoDetected: wire.ContactInfoDetected,
			Confidence:          clamp01(wire.Confidence),
			Explanation:         wire.Explanation,
			Phones:              emptyIfNil(wire.Phones),
			Emails:              emptyIfNil(wire.Emails),
			Addresses:           emptyIfNil(wire.Addresses),
			SocialHandles:       emptyIfNil(wire.SocialHandles),
		}, nil
	}
	return classifier.ImageAnalysis{}, fmt.Errorf("%w: %v", classifier.ErrUnavailable, lastErr)
}

// Reasoning models (o1/o3/o4/gpt-5*) take MaxCompletionTokens instead of MaxTokens.
func setTokenLimit(req *openai.ChatCompletionRequest, model string) {
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}
}

func mapAPIError(model string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 429 {
		return fmt.Errorf("%w: model %s", classifier.ErrQuotaExceeded, model)
	}
	return fmt.Errorf("model %s: %w", model, err)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
