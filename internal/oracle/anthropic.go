package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/mgpai22/reelcut/internal/segment"
)

// Anthropic works from transcripts only: segment proposals and approximate
// SRT both come from a text prompt over the transcript.
type Anthropic struct {
	client anthropic.Client
	model  anthropic.Model
}

func NewAnthropic(apiKey, model string) (*Anthropic, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	m := anthropic.Model(model)
	if model == "" {
		m = anthropic.ModelClaudeHaiku4_5
	}

	return &Anthropic{client: client, model: m}, nil
}

func (a *Anthropic) ProposeSegments(ctx context.Context, src Source) ([]segment.Segment, error) {
	prompt := proposalPrompt(src.Duration) + "\n\nTranscript:\n" + src.Transcript
	text, err := a.complete(ctx, src, prompt)
	if err != nil {
		return nil, err
	}
	return parseProposals(text)
}

func (a *Anthropic) GenerateSRT(ctx context.Context, src Source) (string, error) {
	prompt := srtPrompt(src.Duration) +
		"\n\nEstimate timecodes from reading pace; spread the transcript evenly across the duration.\n\nTranscript:\n" +
		src.Transcript
	return a.complete(ctx, src, prompt)
}

func (a *Anthropic) complete(ctx context.Context, src Source, prompt string) (string, error) {
	if strings.TrimSpace(src.Transcript) == "" {
		return "", fmt.Errorf("anthropic oracle requires a transcript")
	}

	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
	})
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}

	var text string
	for _, block := range message.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("%w: no text in response", ErrUnparsableResponse)
	}
	return text, nil
}
