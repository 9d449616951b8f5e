// Package profile provides read-only access to the applicant-profile backend.
// The backend owns the data; this package only fetches it as immutable input
// for the generation pipeline.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-tailor/internal/types"
)

// DefaultTimeout is the HTTP timeout for profile fetches. Unlike generation
// calls, profile reads are expected to be fast.
const DefaultTimeout = 30 * time.Second

// Source provides applicant profile data.
type Source interface {
	BasicInformation(ctx context.Context) (*types.BasicInformation, error)
	Experiences(ctx context.Context) ([]types.ProfileExperience, error)
	Projects(ctx context.Context) ([]types.ProfileProject, error)
	Skills(ctx context.Context) ([]types.ProfileSkill, error)
	// Snapshot fetches all profile slices at once.
	Snapshot(ctx context.Context) (*types.ProfileSnapshot, error)
}

// Error represents a profile fetch failure.
type Error struct {
	Resource string
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("profile fetch failed for %s: %s: %v", e.Resource, e.Message, e.Cause)
	}
	return fmt.Sprintf("profile fetch failed for %s: %s", e.Resource, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPSource fetches profile data from the applicant-info REST endpoints.
type HTTPSource struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPSource creates a profile source for the backend at baseURL.
// token, when non-empty, is sent as a bearer token.
func NewHTTPSource(baseURL, token string) *HTTPSource {
	return &HTTPSource{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
}

// BasicInformation fetches contact details, academics, and achievements.
func (s *HTTPSource) BasicInformation(ctx context.Context) (*types.BasicInformation, error) {
	var out types.BasicInformation
	if err := s.get(ctx, "/applicant-info/basic", "basic information", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Experiences fetches the applicant's work experiences in display order.
func (s *HTTPSource) Experiences(ctx context.Context) ([]types.ProfileExperience, error) {
	var out []types.ProfileExperience
	if err := s.get(ctx, "/applicant-info/experiences", "experiences", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Projects fetches the applicant's projects in display order.
func (s *HTTPSource) Projects(ctx context.Context) ([]types.ProfileProject, error) {
	var out []types.ProfileProject
	if err := s.get(ctx, "/applicant-info/projects", "projects", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Skills fetches the applicant's skill list.
func (s *HTTPSource) Skills(ctx context.Context) ([]types.ProfileSkill, error) {
	var out []types.ProfileSkill
	if err := s.get(ctx, "/applicant-info/skills", "skills", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Snapshot fetches all profile slices concurrently. Any single failure fails
// the snapshot; per-slice getters remain available for partial loads.
func (s *HTTPSource) Snapshot(ctx context.Context) (*types.ProfileSnapshot, error) {
	var snapshot types.ProfileSnapshot

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		basic, err := s.BasicInformation(gCtx)
		if err != nil {
			return err
		}
		snapshot.BasicInformation = *basic
		return nil
	})
	g.Go(func() error {
		experiences, err := s.Experiences(gCtx)
		if err != nil {
			return err
		}
		snapshot.Experiences = experiences
		return nil
	})
	g.Go(func() error {
		projects, err := s.Projects(gCtx)
		if err != nil {
			return err
		}
		snapshot.Projects = projects
		return nil
	})
	g.Go(func() error {
		skills, err := s.Skills(gCtx)
		if err != nil {
			return err
		}
		snapshot.Skills = skills
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (s *HTTPSource) get(ctx context.Context, path, resource string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return &Error{Resource: resource, Message: "invalid request", Cause: err}
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return &Error{Resource: resource, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &Error{
			Resource: resource,
			Message:  fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Resource: resource, Message: "invalid response body", Cause: err}
	}
	return nil
}
