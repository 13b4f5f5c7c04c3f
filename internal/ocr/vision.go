package ocr

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"go-doc-ingest/internal/config"
	apperrors "go-doc-ingest/internal/errors"
	"go-doc-ingest/internal/logger"
)

const visionMaxTokens = 4096

// DefaultInstruction is the transcription prompt sent alongside each page
// image. It asks for verbatim text only so downstream normalization sees the
// document, not a summary.
const DefaultInstruction = "Transcribe all text visible in this document image, " +
	"preserving the original layout and language. Output only the transcribed text, " +
	"with no commentary."

// visionModel sends page images to an OpenAI-compatible vision endpoint via
// langchaingo.
type visionModel struct {
	llm   llms.Model
	model string
}

// NewVisionModel builds a VisionModel from the configured provider settings.
func NewVisionModel(cfg *config.Config) (VisionModel, error) {
	opts := []openai.Option{
		openai.WithModel(cfg.VisionModel),
		openai.WithToken(cfg.VisionAPIKey),
	}
	if cfg.VisionBaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.VisionBaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, apperrors.NewCollaboratorUnavailableError(
			"failed to initialize vision model client",
			fmt.Sprintf("provider %q, model %q", cfg.VisionProvider, cfg.VisionModel),
			err,
		)
	}
	return &visionModel{llm: llm, model: cfg.VisionModel}, nil
}

func (v *visionModel) Extract(ctx context.Context, imageData []byte, instruction string) (string, error) {
	if instruction == "" {
		instruction = DefaultInstruction
	}

	messages := []llms.MessageContent{
		{
			Parts: []llms.ContentPart{
				llms.BinaryPart("image/png", imageData),
				llms.TextPart(instruction),
			},
			Role: schema.ChatMessageTypeHuman,
		},
	}

	completion, err := v.llm.GenerateContent(ctx, messages,
		llms.WithMaxTokens(visionMaxTokens),
		llms.WithTemperature(0),
	)
	if err != nil {
		return "", apperrors.NewCollaboratorUnavailableError(
			"vision model request failed",
			"check network connectivity and API credentials",
			err,
		)
	}
	if len(completion.Choices) == 0 {
		return "", apperrors.NewEmptyExtractionError("vision model returned no choices")
	}

	text := completion.Choices[0].Content
	logger.WithField("chars", len(text)).Debug("Vision transcription complete")
	return text, nil
}
