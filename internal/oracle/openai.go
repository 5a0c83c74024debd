package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/mgpai22/reelcut/internal/segment"
	"github.com/mgpai22/reelcut/internal/subtitle"
)

// OpenAI proposes segments from a transcript via chat completions and
// generates fallback subtitles through the audio transcription API.
type OpenAI struct {
	client    openai.Client
	chatModel string
}

// model used for the audio path regardless of the configured chat model
const openAIAudioModel = "whisper-1"

func NewOpenAI(apiKey, model string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	if model == "" {
		model = "gpt-4o-mini"
	}

	return &OpenAI{client: client, chatModel: model}, nil
}

func (o *OpenAI) ProposeSegments(ctx context.Context, src Source) ([]segment.Segment, error) {
	if strings.TrimSpace(src.Transcript) == "" {
		return nil, fmt.Errorf("openai oracle requires a transcript")
	}

	prompt := proposalPrompt(src.Duration) + "\n\nTranscript:\n" + src.Transcript

	completion, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: o.chatModel,
	})
	if err != nil {
		return nil, fmt.Errorf("proposal generation failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty completion", ErrUnparsableResponse)
	}

	return parseProposals(completion.Choices[0].Message.Content)
}

// whisper verbose_json response shape
type verboseResponse struct {
	Text     string `json:"text"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func (o *OpenAI) GenerateSRT(ctx context.Context, src Source) (string, error) {
	if src.MediaPath == "" {
		return "", fmt.Errorf("openai srt generation requires a media path")
	}

	file, err := os.Open(src.MediaPath)
	if err != nil {
		return "", fmt.Errorf("failed to open media file: %w", err)
	}
	defer file.Close()

	resp, err := o.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:           file,
		Model:          openai.AudioModel(openAIAudioModel),
		ResponseFormat: openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}

	var parsed verboseResponse
	if err := json.Unmarshal([]byte(resp.RawJSON()), &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnparsableResponse, err)
	}
	if len(parsed.Segments) == 0 {
		if strings.TrimSpace(parsed.Text) == "" {
			return "", fmt.Errorf("%w: no segments or text in response", ErrUnparsableResponse)
		}
		return srtBlock(1, 0, src.Duration, parsed.Text), nil
	}

	var sb strings.Builder
	index := 1
	for _, seg := range parsed.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		sb.WriteString(srtBlock(index,
			time.Duration(seg.Start*float64(time.Second)),
			time.Duration(seg.End*float64(time.Second)),
			text))
		index++
	}
	return sb.String(), nil
}

func srtBlock(index int, start, end time.Duration, text string) string {
	return fmt.Sprintf("%d\n%s --> %s\n%s\n\n",
		index,
		subtitle.FormatSRTTime(start),
		subtitle.FormatSRTTime(end),
		strings.TrimSpace(text))
}
