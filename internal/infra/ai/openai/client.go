package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	domain "github.com/bryanwahyu/bizverify/internal/domain/verification"
	"github.com/bryanwahyu/bizverify/internal/infra/ai/prompt"
)

const maxTokens = 4096

// Client implements the verification.Runner port on the OpenAI chat API.
// Non-streaming: the whole response arrives as a single event.
type Client struct {
	*openai.Client
	Model string
}

func NewClient(apiKey, model string) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model}
}

func (c *Client) Run(ctx context.Context, _ string, msg domain.Message) (<-chan domain.Event, error) {
	model := c.Model
	if model == "" {
		model = "gpt-4o"
	}

	content := make([]openai.ChatMessagePart, 0, len(msg.Parts))
	for _, p := range msg.Parts {
		switch v := p.(type) {
		case domain.TextPart:
			content = append(content, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: v.Text,
			})
		case domain.BlobPart:
			// the chat API only takes images inline; other file types are
			// noted so the model knows the document existed
			if !strings.HasPrefix(v.MIMEType, "image/") {
				content = append(content, openai.ChatMessagePart{
					Type: openai.ChatMessagePartTypeText,
					Text: fmt.Sprintf("[A file of type %s was attached here but cannot be inlined.]", v.MIMEType),
				})
				continue
			}
			dataURL := fmt.Sprintf("data:%s;base64,%s", v.MIMEType, base64.StdEncoding.EncodeToString(v.Data))
			content = append(content, openai.ChatMessagePart{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: dataURL, Detail: openai.ImageURLDetailAuto},
			})
		}
	}

	req := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, MultiContent: content},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}

	events := make(chan domain.Event, 1)
	if len(resp.Choices) > 0 {
		events <- domain.Event{Text: resp.Choices[0].Message.Content}
	}
	close(events)
	return events, nil
}
