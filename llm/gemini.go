package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GeminiProvider generates through the Gemini API with deterministic
// sampling and a JSON response MIME type.
type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, normalize("gemini", KindNetwork, err)
	}
	gm := client.GenerativeModel(model)
	gm.SetTemperature(0)
	gm.SetTopP(1)
	gm.SetMaxOutputTokens(2048)
	gm.ResponseMIMEType = "application/json"
	return &GeminiProvider{client: client, model: gm}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

// Close releases the underlying gRPC connection.
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

func (p *GeminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return "", normalize(p.Name(), kindForStatus(apiErr.Code), err)
		}
		return "", normalize(p.Name(), KindNetwork, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", normalize(p.Name(), KindResponse, errors.New("no candidates returned"))
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", normalize(p.Name(), KindResponse, errors.New("candidate contained no text parts"))
	}
	return sb.String(), nil
}
