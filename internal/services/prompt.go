package services

import "fmt"

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

const extractionInstructions = `You are a professional resume parser. Extract structured resume data from the provided text content.

CRITICAL - Extraction Philosophy:
- EXTRACT existing content from the resume as your PRIMARY task
- Only GENERATE content when it is genuinely missing from the source
- Do NOT invent or create information that isn't present

Guidelines:
- EXTRACT skills directly from the resume. If no skills are explicitly listed, then infer up to 10 skills from work experience and education
- If the resume lacks an 'about' or 'summary' section, you may generate one based on the person's actual experience and skills
- For social media usernames (twitter, github), extract only the username without spaces or @ symbols
- LinkedIn and GitHub URLs should be complete URLs
- EXTRACT job location from each position. If not present, OMIT it entirely
- EXTRACT GPA/score from education if present (e.g., "3.8 GPA", "First Class Honours")
- IMPORTANT: For dates, use YYYY-MM-DD format when full date is available, YYYY-MM when only month/year, or YYYY when only year
- DO NOT include explanatory text like "(1 year 2 months)" in dates
- If a field is not present in the resume, OMIT it entirely rather than using empty strings
- Education years should be in YYYY format
- Project dates should be in YYYY-MM format (e.g., "2024-03" for March 2024)
- If contract type is unclear, OMIT it entirely
- Be thorough but concise in descriptions
- Look for personal projects, side projects, open source contributions, or portfolio items
- Extract project technologies/tech stack as an array
- Extract project highlights or key achievements as an array
- Return ONLY valid JSON matching this structure:
{
  "header": {
    "name": "string",
    "shortAbout": "string",
    "location": "string (optional)",
    "contacts": {
      "email": "string (optional)",
      "phone": "string (optional)",
      "website": "string (optional)",
      "twitter": "string (optional)",
      "linkedin": "string (optional)",
      "github": "string (optional)"
    },
    "skills": ["string"]
  },
  "summary": "string",
  "workExperience": [{
    "company": "string",
    "link": "string (optional)",
    "location": "string (optional)",
    "contract": "string (optional)",
    "title": "string",
    "start": "YYYY-MM-DD",
    "end": "YYYY-MM-DD or null",
    "description": "string"
  }],
  "projects": [{
    "name": "string",
    "description": "string",
    "link": "string (optional)",
    "technologies": ["string"],
    "date": "YYYY-MM (optional)",
    "highlights": ["string"]
  }],
  "education": [{
    "school": "string",
    "degree": "string",
    "start": "YYYY",
    "end": "YYYY",
    "score": "string (optional)"
  }]
}`

// BuildExtractionPrompt creates the prompt for structured resume extraction.
// The instructions are fixed, so identical input text yields an identical
// prompt across calls.
func (pb *PromptBuilder) BuildExtractionPrompt(pdfText string) string {
	return fmt.Sprintf("%s\n\nParse the following resume text and extract structured data:\n\n%s",
		extractionInstructions, pdfText)
}
