package assist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"needbook.app/telegram-bot/internal/features/catalog"
)

// errEmptyResponse — сервис ответил, но без полезного содержимого.
var errEmptyResponse = errors.New("generative service returned no content")

// GeminiClient ходит в Gemini через OpenAI-совместимый эндпоинт.
type GeminiClient struct {
	client *openai.Client
	model  string
}

// NewGeminiClient создаёт клиента. baseURL — OpenAI-совместимый адрес,
// например https://generativelanguage.googleapis.com/v1beta/openai/
func NewGeminiClient(apiKey, baseURL, model string) *GeminiClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	log.WithField("model", model).Info("Клиент генеративного сервиса создан")
	return &GeminiClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// complete отправляет сообщения и возвращает текст первого варианта ответа.
func (c *GeminiClient) complete(ctx context.Context, messages []openai.ChatCompletionMessage, jsonMode bool) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	}
	if jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyResponse
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errEmptyResponse
	}
	return text, nil
}

func (c *GeminiClient) completeJSON(ctx context.Context, prompt string, out any) error {
	text, err := c.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: jsonSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	}, true)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(stripCodeFence(text)), out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *GeminiClient) SuggestSubjects(ctx context.Context, title string) (SubjectSuggestion, error) {
	var out SubjectSuggestion
	if err := c.completeJSON(ctx, subjectsPrompt(title), &out); err != nil {
		return SubjectSuggestion{}, err
	}
	if len(out.Subjects) == 0 {
		return SubjectSuggestion{}, errEmptyResponse
	}
	return out, nil
}

func (c *GeminiClient) SuggestFairPrice(ctx context.Context, mrp int, condition catalog.Condition, title string) (PriceSuggestion, error) {
	var raw struct {
		SuggestedPrice *float64 `json:"suggestedPrice"`
		Advice         string   `json:"advice"`
	}
	if err := c.completeJSON(ctx, pricePrompt(mrp, condition, title), &raw); err != nil {
		return PriceSuggestion{}, err
	}
	if raw.SuggestedPrice == nil || *raw.SuggestedPrice < 0 {
		return PriceSuggestion{}, errEmptyResponse
	}
	return PriceSuggestion{
		SuggestedPrice: int(math.Round(*raw.SuggestedPrice)),
		Advice:         raw.Advice,
	}, nil
}

func (c *GeminiClient) CheckUrgency(ctx context.Context, note string) (catalog.Urgency, error) {
	text, err := c.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: urgencyPrompt(note)},
	}, false)
	if err != nil {
		return "", err
	}
	if strings.Contains(text, string(catalog.UrgencyHigh)) {
		return catalog.UrgencyHigh, nil
	}
	return catalog.UrgencyMedium, nil
}

func (c *GeminiClient) SummarizeFeedback(ctx context.Context, comments []string) (string, error) {
	return c.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: summaryPrompt(comments)},
	}, false)
}

// BuddyReply каждый раз отправляет всю историю: сервис не хранит состояние.
func (c *GeminiClient) BuddyReply(ctx context.Context, message string, prior []Turn) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(prior)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: buddyInstruction(),
	})
	for _, t := range prior {
		role := openai.ChatMessageRoleUser
		if t.Role == RoleModel {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: t.Text})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})
	return c.complete(ctx, messages, false)
}

// stripCodeFence убирает ```json ... ```, если модель всё-таки обернула ответ.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
