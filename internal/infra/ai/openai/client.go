package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	domai "github.com/bryanwahyu/mealsense/internal/domain/ai"
	"github.com/bryanwahyu/mealsense/internal/infra/ai/prompt"
)

const (
	maxTokens = 2048

	defaultModel         = "gpt-4o"
	defaultFallbackModel = "gpt-4o-mini"
)

// chatCompleter is the part of *openai.Client the analyzer needs.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Client struct {
	api           chatCompleter
	Model         string
	FallbackModel string
	log           *zap.Logger
}

func NewClient(apiKey, model, fallbackModel string, log *zap.Logger) *Client {
	return newClient(openai.NewClient(apiKey), model, fallbackModel, log)
}

func newClient(api chatCompleter, model, fallbackModel string, log *zap.Logger) *Client {
	if model == "" {
		model = defaultModel
	}
	if fallbackModel == "" {
		fallbackModel = defaultFallbackModel
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{api: api, Model: model, FallbackModel: fallbackModel, log: log}
}

// AnalyzeMeal asks the primary model first. Any failure other than a quota error is
// retried once on the fallback model.
func (c *Client) AnalyzeMeal(ctx context.Context, req domai.Request) (domai.Result, error) {
	if strings.TrimSpace(req.Description) == "" && strings.TrimSpace(req.ImageURL) == "" {
		return domai.Result{}, domai.ErrNoInput
	}
	ocr := req.ImageURL != ""

	content, err := c.complete(ctx, c.Model, req)
	if err == nil {
		return domai.Result{Raw: []byte(content), Model: c.Model, OCRExtracted: ocr}, nil
	}
	if errors.Is(err, domai.ErrQuotaExceeded) || c.FallbackModel == c.Model {
		return domai.Result{}, err
	}

	c.log.Warn("primary model failed, using fallback",
		zap.String("model", c.Model),
		zap.String("fallback", c.FallbackModel),
		zap.Error(err),
	)
	content, err = c.complete(ctx, c.FallbackModel, req)
	if err != nil {
		return domai.Result{}, err
	}
	return domai.Result{Raw: []byte(content), Model: c.FallbackModel, UsedFallback: true, OCRExtracted: ocr}, nil
}

func (c *Client) complete(ctx context.Context, model string, in domai.Request) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			userMessage(in),
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		if isQuota(err) {
			return "", fmt.Errorf("%w: %v", domai.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: %s", domai.ErrEmptyResponse, model)
	}
	return resp.Choices[0].Message.Content, nil
}

func userMessage(in domai.Request) openai.ChatCompletionMessage {
	if in.ImageURL == "" {
		return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt.GetTextPrompt(in.Description)}
	}
	text := prompt.GetImagePrompt()
	if in.Description != "" {
		text += " Context from the user: " + in.Description
	}
	return openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: text},
			{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
				URL:    in.ImageURL,
				Detail: openai.ImageURLDetailAuto,
			}},
		},
	}
}

func isQuota(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.Type == "insufficient_quota"
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}
