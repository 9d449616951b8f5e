// Package genclient provides the client for the external generation service.
// The service performs the actual AI text generation and is consumed as an
// opaque black box: three POST endpoints returning structured JSON.
package genclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/schemas"
)

// Client is an abstraction over generation backends.
type Client interface {
	// GenerateExperiences rewrites experience bullet points for the target job.
	GenerateExperiences(ctx context.Context, req *types.ExperienceGenerationRequest) (*types.ExperienceGenerationResponse, error)
	// GenerateProjects rewrites project descriptions for the target job.
	GenerateProjects(ctx context.Context, req *types.ProjectGenerationRequest) (*types.ProjectGenerationResponse, error)
	// GenerateSkills buckets skills by category, conditioned on the prior
	// experience/project generation output.
	GenerateSkills(ctx context.Context, req *types.SkillsGenerationRequest) (*types.SkillsGenerationResponse, error)
}

// GenerationError represents a failed generation call. Message carries the
// service's own message verbatim when one was returned, so it can be shown
// to the user as-is.
type GenerationError struct {
	Operation  string
	StatusCode int
	Message    string
	Cause      error
}

func (e *GenerationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s failed: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("%s failed with status %d", e.Operation, e.StatusCode)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// HTTPClient calls the hosted generation service over HTTP.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a client for the generation service at baseURL.
// No client-side timeout is set on generation calls; a slow endpoint is
// bounded only by the caller's context.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// GenerateExperiences implements Client.
func (c *HTTPClient) GenerateExperiences(ctx context.Context, req *types.ExperienceGenerationRequest) (*types.ExperienceGenerationResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, &GenerationError{Operation: "experience generation", Message: "invalid generation request", Cause: err}
	}

	var resp types.ExperienceGenerationResponse
	if err := c.post(ctx, "experience generation", "/experience-gen", req, schemas.ExperienceResponse, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GenerateProjects implements Client.
func (c *HTTPClient) GenerateProjects(ctx context.Context, req *types.ProjectGenerationRequest) (*types.ProjectGenerationResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, &GenerationError{Operation: "project generation", Message: "invalid generation request", Cause: err}
	}

	var resp types.ProjectGenerationResponse
	if err := c.post(ctx, "project generation", "/project-gen", req, schemas.ProjectResponse, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GenerateSkills implements Client. The request is normalized first so the
// prior-response fields serialize as empty arrays when absent.
func (c *HTTPClient) GenerateSkills(ctx context.Context, req *types.SkillsGenerationRequest) (*types.SkillsGenerationResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, &GenerationError{Operation: "skills generation", Message: "invalid generation request", Cause: err}
	}

	var resp types.SkillsGenerationResponse
	if err := c.post(ctx, "skills generation", "/skill-gen", req, schemas.SkillsResponse, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// post sends a JSON request, validates the response body against the named
// schema, and decodes it. Non-2xx statuses and non-"success" payloads both
// surface the service's message field when present.
func (c *HTTPClient) post(ctx context.Context, op, path string, body any, schemaName string, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &GenerationError{Operation: op, Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &GenerationError{Operation: op, Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return &GenerationError{Operation: op, Cause: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return &GenerationError{Operation: op, StatusCode: httpResp.StatusCode, Cause: err}
	}

	// The service reports failures in-band; decode the envelope before
	// deciding, so its message survives even on error statuses.
	var envelope struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(respBody, &envelope)

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 || envelope.Status != types.StatusSuccess {
		return &GenerationError{
			Operation:  op,
			StatusCode: httpResp.StatusCode,
			Message:    envelope.Message,
		}
	}

	if err := schemas.Validate(schemaName, respBody); err != nil {
		return &GenerationError{Operation: op, StatusCode: httpResp.StatusCode, Cause: err}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &GenerationError{Operation: op, StatusCode: httpResp.StatusCode, Cause: err}
	}
	return nil
}
