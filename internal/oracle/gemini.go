package oracle

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"

	"github.com/mgpai22/reelcut/internal/segment"
)

// Gemini is the only provider that consumes raw media bytes directly; the
// source video is uploaded and the model proposes segments from it.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &Gemini{client: client, model: model}, nil
}

// NeedsTranscript is false: proposals come from the uploaded media itself.
func (g *Gemini) NeedsTranscript() bool { return false }

func (g *Gemini) ProposeSegments(ctx context.Context, src Source) ([]segment.Segment, error) {
	text, err := g.generateFromMedia(ctx, src.MediaPath, proposalPrompt(src.Duration))
	if err != nil {
		return nil, err
	}
	return parseProposals(text)
}

func (g *Gemini) GenerateSRT(ctx context.Context, src Source) (string, error) {
	text, err := g.generateFromMedia(ctx, src.MediaPath, srtPrompt(src.Duration))
	if err != nil {
		return "", err
	}
	return text, nil
}

func (g *Gemini) generateFromMedia(ctx context.Context, mediaPath, prompt string) (string, error) {
	if mediaPath == "" {
		return "", fmt.Errorf("gemini oracle requires a media path")
	}
	if _, err := os.Stat(mediaPath); os.IsNotExist(err) {
		return "", fmt.Errorf("media file not found: %s", mediaPath)
	}

	uploaded, err := g.client.Files.UploadFromPath(ctx, mediaPath, nil)
	if err != nil {
		return "", fmt.Errorf("failed to upload media file: %w", err)
	}
	defer func() {
		_, _ = g.client.Files.Delete(ctx, uploaded.Name, nil)
	}()

	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromURI(uploaded.URI, uploaded.MIMEType),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}

	return responseText(result)
}

func responseText(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 {
		return "", fmt.Errorf("%w: empty response from Gemini", ErrUnparsableResponse)
	}

	var text string
	for _, candidate := range result.Candidates {
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					text += part.Text
				}
			}
		}
	}
	if text == "" {
		return "", fmt.Errorf("%w: no text in Gemini response", ErrUnparsableResponse)
	}
	return text, nil
}
