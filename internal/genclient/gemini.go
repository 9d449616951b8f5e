package genclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/schemas"
)

// defaultGeminiModel is used when no model is configured.
const defaultGeminiModel = "gemini-2.0-flash"

// GeminiClient implements Client against the Gemini API directly. It exists
// for local development when the hosted generation service is unavailable;
// it produces the same wire shapes so the rest of the pipeline cannot tell
// the difference.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini-backed generation client.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client, model: model}, nil
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// GenerateExperiences implements Client.
func (c *GeminiClient) GenerateExperiences(ctx context.Context, req *types.ExperienceGenerationRequest) (*types.ExperienceGenerationResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, &GenerationError{Operation: "experience generation", Message: "invalid generation request", Cause: err}
	}

	prompt := fmt.Sprintf(`You are rewriting resume experience entries for a %q application.
Job description:
%s

Additional instruction: %s

For each experience the user supplies you will receive its index and desired bullet count (%v).
Respond with JSON only, matching:
{"status":"success","output":[{"experience_company_name":"...","resume_points":["..."]}]}
Keep output order identical to input order.`,
		req.JobRole, req.JobDescription, req.AdditionalInstruction, req.PointsCount)

	var resp types.ExperienceGenerationResponse
	if err := c.generateInto(ctx, "experience generation", prompt, schemas.ExperienceResponse, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GenerateProjects implements Client.
func (c *GeminiClient) GenerateProjects(ctx context.Context, req *types.ProjectGenerationRequest) (*types.ProjectGenerationResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, &GenerationError{Operation: "project generation", Message: "invalid generation request", Cause: err}
	}

	prompt := fmt.Sprintf(`You are rewriting resume project entries for a %q application.
Job description:
%s

Additional instruction: %s
Desired bullet counts per project: %v

Respond with JSON only, matching:
{"status":"success","output":[{"project_name":"...","project_points":["..."],"project_skills":["..."]}]}
Keep output order identical to input order.`,
		req.JobRole, req.JobDescription, req.AdditionalInstruction, req.PointsCount)

	var resp types.ProjectGenerationResponse
	if err := c.generateInto(ctx, "project generation", prompt, schemas.ProjectResponse, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GenerateSkills implements Client.
func (c *GeminiClient) GenerateSkills(ctx context.Context, req *types.SkillsGenerationRequest) (*types.SkillsGenerationResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, &GenerationError{Operation: "skills generation", Message: "invalid generation request", Cause: err}
	}

	experienceJSON, err := json.Marshal(req.ExperienceData)
	if err != nil {
		return nil, &GenerationError{Operation: "skills generation", Cause: err}
	}
	projectJSON, err := json.Marshal(req.ProjectData)
	if err != nil {
		return nil, &GenerationError{Operation: "skills generation", Cause: err}
	}

	prompt := fmt.Sprintf(`You are organizing resume skills into categories for a %q application.
Job description:
%s

Additional instruction: %s

Generated experience content: %s
Generated project content: %s

Respond with JSON only, matching:
{"status":"success","output":[{"skill_category":"...","skills":["..."]}]}`,
		req.JobRole, req.JobDescription, req.AdditionalInstruction, experienceJSON, projectJSON)

	var resp types.SkillsGenerationResponse
	if err := c.generateInto(ctx, "skills generation", prompt, schemas.SkillsResponse, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// generateInto runs one JSON-mode generation and decodes the result.
func (c *GeminiClient) generateInto(ctx context.Context, op, prompt, schemaName string, out any) error {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0.1) // Low temperature for consistent output
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return &GenerationError{Operation: op, Cause: err}
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return &GenerationError{Operation: op, Cause: err}
	}
	text = cleanJSONBlock(text)

	if err := schemas.Validate(schemaName, []byte(text)); err != nil {
		return &GenerationError{Operation: op, Cause: err}
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return &GenerationError{Operation: op, Cause: err}
	}
	return nil
}

// extractTextFromResponse extracts text from a Gemini API response.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}

// cleanJSONBlock removes markdown code block wrappers from JSON.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
