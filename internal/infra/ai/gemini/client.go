package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	domain "github.com/bryanwahyu/bizverify/internal/domain/verification"
	"github.com/bryanwahyu/bizverify/internal/infra/ai/prompt"
)

const defaultModel = "gemini-2.0-flash"

// Client implements the verification.Runner port on Gemini.
type Client struct {
	genai *genai.Client
	model string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	cli, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{genai: cli, model: model}, nil
}

func (c *Client) Close() error { return c.genai.Close() }

// Run issues one multimodal request and forwards each text part of the
// response stream as an event. The channel is closed when the stream ends or
// ctx is cancelled, so a caller that stops reading early sheds the rest.
func (c *Client) Run(ctx context.Context, _ string, msg domain.Message) (<-chan domain.Event, error) {
	model := c.genai.GenerativeModel(c.model)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(prompt.GetSystemPrompt())},
	}

	parts := make([]genai.Part, 0, len(msg.Parts))
	for _, p := range msg.Parts {
		switch v := p.(type) {
		case domain.TextPart:
			parts = append(parts, genai.Text(v.Text))
		case domain.BlobPart:
			parts = append(parts, genai.Blob{MIMEType: v.MIMEType, Data: v.Data})
		}
	}

	events := make(chan domain.Event)
	iter := model.GenerateContentStream(ctx, parts...)

	go func() {
		defer close(events)
		// streamed chunks are partial JSON; the concatenation is emitted as
		// the final event so the consumer always sees one complete payload
		var full strings.Builder
		for {
			resp, err := iter.Next()
			if err == iterator.Done {
				if full.Len() > 0 {
					select {
					case events <- domain.Event{Text: full.String()}:
					case <-ctx.Done():
					}
				}
				return
			}
			if err != nil {
				select {
				case events <- domain.Event{Err: err}:
				case <-ctx.Done():
				}
				return
			}
			for _, cand := range resp.Candidates {
				if cand.Content == nil {
					continue
				}
				for _, part := range cand.Content.Parts {
					text, ok := part.(genai.Text)
					if !ok || text == "" {
						continue
					}
					full.WriteString(string(text))
					select {
					case events <- domain.Event{Text: string(text)}:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return events, nil
}
