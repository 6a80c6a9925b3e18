package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"foliosh/folio-api/internal/resume"
)

// GeneratorService turns extracted PDF text into validated structured resume
// data. It never fails: any internal error is logged with its distinguishing
// cause and replaced by the placeholder document, so downstream code always
// has a renderable result.
type GeneratorService interface {
	Generate(ctx context.Context, pdfText string) (*resume.ResumeData, bool)
}

type generatorService struct {
	gemini        GeminiService
	promptBuilder *PromptBuilder
}

func NewGeneratorService(gemini GeminiService) GeneratorService {
	return &generatorService{
		gemini:        gemini,
		promptBuilder: NewPromptBuilder(),
	}
}

// Generate implements GeneratorService. The second return value reports
// whether the fallback document was substituted.
func (g *generatorService) Generate(ctx context.Context, pdfText string) (*resume.ResumeData, bool) {
	if g.gemini == nil {
		slog.Error("resume generation failed", "cause", "llm client not configured")
		return resume.Fallback(), true
	}

	prompt := g.promptBuilder.BuildExtractionPrompt(pdfText)

	response, err := g.gemini.GenerateJSON(ctx, prompt, 0.3)
	if err != nil {
		slog.Error("resume generation failed", "cause", "llm call", "error", err)
		return resume.Fallback(), true
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(extractJSON(response)), &parsed); err != nil {
		slog.Error("resume generation failed", "cause", "unparsable json response", "error", err)
		return resume.Fallback(), true
	}

	data, err := resume.Validate(resume.Sanitize(parsed))
	if err != nil {
		slog.Error("resume generation failed", "cause", "schema validation", "error", err)
		return resume.Fallback(), true
	}

	slog.Info("resume generated", "inputChars", len(pdfText))
	return data, false
}

// extractJSON pulls the JSON object out of text that may contain markdown
// fences or other framing around it.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end != -1 && end > start {
		return text[start : end+1]
	}

	return text
}
