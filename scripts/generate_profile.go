package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"foliosh/folio-api/internal/config"
	"foliosh/folio-api/internal/services"
)

// Runs the extraction and generation pipeline against a local PDF without
// the HTTP surface. Useful for checking prompt or sanitizer changes against
// a real resume before deploying.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: generate_profile <resume.pdf>")
	}

	log.Println("🚀 Starting profile generation...")

	cfg := config.Load()

	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	pdfParser := services.NewPDFParserService()
	generator := services.NewGeneratorService(geminiService)

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("❌ Failed to read file: %v", err)
	}

	text, err := pdfParser.ExtractFromBytes(data)
	if err != nil {
		log.Fatalf("❌ Failed to extract text: %v", err)
	}
	log.Printf("✅ Extracted %d characters of text", len(text))

	profile, usedFallback := generator.Generate(context.Background(), text)
	if usedFallback {
		log.Println("⚠️  Generation fell back to the placeholder document")
	} else {
		log.Println("✅ Profile generated successfully")
	}

	out, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		log.Fatalf("❌ Failed to marshal profile: %v", err)
	}

	os.Stdout.Write(out)
	os.Stdout.Write([]byte("\n"))
}
