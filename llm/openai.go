package llm

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const openaiSystemPrompt = "You are a legal case analyst. Respond only with the requested JSON object."

// OpenAIProvider generates through the Chat Completions API. Temperature
// is pinned to 0 and the response format forced to a JSON object so the
// same case text always yields the same scores.
type OpenAIProvider struct {
	client openai.Client
	model  string
}

func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	return &OpenAIProvider{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(openaiSystemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", normalize(p.Name(), kindForStatus(apiErr.StatusCode), err)
		}
		return "", normalize(p.Name(), KindNetwork, err)
	}
	if len(resp.Choices) == 0 {
		return "", normalize(p.Name(), KindResponse, errors.New("no completion choices returned"))
	}
	return resp.Choices[0].Message.Content, nil
}
