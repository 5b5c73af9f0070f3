// Package extract talks to the external image-understanding service that
// reads shift lines off schedule screenshots. Its output feeds the
// tokenizer; nothing here validates dates or times.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/arnavshah/shiftledger-api/pkg/models"
	"google.golang.org/genai"
)

// ErrEmptyImage is returned before any call is made for an empty upload
var ErrEmptyImage = errors.New("image is empty")

// Extractor turns a schedule image into raw extracted shifts
type Extractor interface {
	Extract(ctx context.Context, image []byte, mimeType string, year int) ([]models.ExtractedShift, error)
}

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// GeminiExtractor calls a Gemini model with a JSON response schema
type GeminiExtractor struct {
	generate generateFunc
	model    string
}

// NewGeminiExtractor creates an extractor backed by the Gemini API
func NewGeminiExtractor(ctx context.Context, apiKey, model string) (*GeminiExtractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiExtractor{generate: client.Models.GenerateContent, model: model}, nil
}

// Extract sends the image and the schedule prompt and decodes the reply
func (g *GeminiExtractor) Extract(ctx context.Context, image []byte, mimeType string, year int) ([]models.ExtractedShift, error) {
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(Prompt(year)),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(),
	}

	resp, err := g.generate(ctx, g.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("schedule extraction failed: %w", err)
	}
	return DecodeResponse(resp.Text())
}

// DecodeResponse parses the JSON array returned by the model. An empty
// reply means nothing was found.
func DecodeResponse(text string) ([]models.ExtractedShift, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimSuffix(strings.TrimPrefix(text, "```"), "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return []models.ExtractedShift{}, nil
	}

	var items []models.ExtractedShift
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, fmt.Errorf("decoding extraction response: %w", err)
	}
	if items == nil {
		items = []models.ExtractedShift{}
	}
	return items, nil
}

// Prompt is the instruction sent alongside the image
func Prompt(year int) string {
	return fmt.Sprintf(`Analyze this schedule image (a screenshot from a notes app) and extract the working shifts for the year %d.

Lines usually look like:
"Date(Weekday) [optional icons] Start-End [duration] [project name] [optional icons/notes]"

Examples:
- "12.4(周四) 🦶 9-12 3 十九 🍚💅" -> date 12.4, time 09:00-12:00, project 十九
- "12.5(周五) 14-19 5" -> date 12.5, time 14:00-19:00, no project
- "12.3(周三)休" -> rest day

Rules:
1. Date: read "12.4" as December 4th and return it as "MM.DD" exactly as written.
2. Time: read ranges like "9-12" as 09:00-12:00. "24" means midnight at the end of the day; return it as "24:00".
3. Lines containing "休" are rest days: return them with restDay true and empty times.
4. Ignore decorative icons and emoji unless they are clearly the project name.
5. A standalone number right after the time range is a duration; leave it out of workName.
6. workName is the text after the time and duration; leave it empty if there is none.
7. One date may have several shifts; return each as its own element.
8. notes is the original line, unmodified.

Return a JSON array.`, year)
}

func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"dateStr":   {Type: genai.TypeString, Description: "MM.DD as written"},
				"startTime": {Type: genai.TypeString, Description: "HH:MM in 24h format"},
				"endTime":   {Type: genai.TypeString, Description: "HH:MM in 24h format, 24:00 for end of day"},
				"workName":  {Type: genai.TypeString, Description: "project name without emojis"},
				"notes":     {Type: genai.TypeString, Description: "original raw text line"},
				"restDay":   {Type: genai.TypeBoolean, Description: "true for rest/off days"},
			},
			Required: []string{"dateStr", "startTime", "endTime"},
		},
	}
}
