package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiOpts configures the Gemini-backed generator.
type GeminiOpts struct {
	APIKey      string
	Model       string  // defaults to gemini-2.0-flash
	Temperature float32 // defaults to 0.2
}

// Gemini generates structured suggestions with the Gemini API. The model
// is asked for a single JSON object matching the Response shape.
type Gemini struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

const geminiSystemPrompt = `You are the assistant inside a collaborative app builder.
Respond with a single JSON object and nothing else. Fields:
  "type": one of "component", "code", "logic", "text"
  "confidence": number between 0 and 1
  "suggestion": for type "component", an object with "id", "type", "screenId",
    "position" {"x","y"}, "size" {"width","height"}, "styles", "props"
  "content": for type "code" or "text", the generated text
  "message": short human-readable summary of the suggestion`

// NewGemini creates a Gemini generator.
func NewGemini(ctx context.Context, opts GeminiOpts) (*Gemini, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("ai: gemini api key is required")
	}
	model := opts.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	temp := opts.Temperature
	if temp == 0 {
		temp = 0.2
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  opts.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("ai: create gemini client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  model,
		config: &genai.GenerateContentConfig{
			Temperature:       &temp,
			ResponseMIMEType:  "application/json",
			SystemInstruction: genai.NewContentFromText(geminiSystemPrompt, genai.RoleUser),
		},
	}, nil
}

// Generate implements Generator.
func (g *Gemini) Generate(ctx context.Context, req Request) (*Response, error) {
	prompt, err := buildPrompt(req)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, g.config)
	if err != nil {
		return nil, fmt.Errorf("ai: gemini request: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, fmt.Errorf("ai: gemini returned no text")
	}

	var out Response
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("ai: parse gemini response: %w", err)
	}
	return &out, nil
}

// buildPrompt combines the user prompt with the request type, extra
// context, and a compact serialization of the current project.
func buildPrompt(req Request) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Request type: %s\n", req.Type)
	fmt.Fprintf(&sb, "Prompt: %s\n", req.Prompt)

	if len(req.Context) > 0 {
		ctxJSON, err := json.Marshal(req.Context)
		if err != nil {
			return "", fmt.Errorf("ai: marshal request context: %w", err)
		}
		fmt.Fprintf(&sb, "Context: %s\n", ctxJSON)
	}
	if req.Project != nil {
		projJSON, err := json.Marshal(req.Project)
		if err != nil {
			return "", fmt.Errorf("ai: marshal project snapshot: %w", err)
		}
		fmt.Fprintf(&sb, "Current project: %s\n", projJSON)
	}
	return sb.String(), nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" && !part.Thought {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
