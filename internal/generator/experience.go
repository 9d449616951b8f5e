package generator

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/resume-tailor/internal/genclient"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/store"
	"github.com/jonathan/resume-tailor/internal/types"
)

// DefaultExperienceBullets is the bullet count used for a source experience
// when the caller does not request one.
const DefaultExperienceBullets = 5

// fallbackRole is substituted in skip output when a source experience has no role.
const fallbackRole = "Professional Role"

// ExperienceOptions are the step-local inputs to experience generation.
type ExperienceOptions struct {
	// Densities is one desired bullet count per source experience, in
	// source order. Missing or zero entries default to DefaultExperienceBullets.
	Densities []int
	// Instruction is free-text guidance forwarded to the backend.
	Instruction string
}

// Experience is the first pipeline step: it tailors the profile's work
// experiences to the target job.
type Experience struct {
	base
	client genclient.Client
}

// NewExperience creates the experience step generator.
func NewExperience(st *store.Store, pipe *pipeline.Controller, client genclient.Client) *Experience {
	return &Experience{base: base{store: st, pipe: pipe}, client: client}
}

// Source returns the profile experiences this step transforms.
func (g *Experience) Source() []types.ProfileExperience {
	return g.store.ApplicantInfo().Experiences
}

// Skip derives draft entries straight from the profile without calling the
// backend: one entry per source experience, with the role and date range as
// the first bullet and the profile explanation as the second. The step is
// completed and the pipeline advances immediately.
func (g *Experience) Skip() error {
	src := g.Source()
	if len(src) == 0 {
		return ErrNoSourceItems
	}

	entries := make([]types.DraftExperience, len(src))
	for i, exp := range src {
		role := exp.Role
		if role == "" {
			role = fallbackRole
		}
		entries[i] = types.DraftExperience{
			OrganizationName: exp.ExperienceName,
			BulletPoints: []string{
				fmt.Sprintf("%s (%s - %s)", role, exp.StartDate, exp.EndDate),
				exp.ExperienceExplanation,
			},
		}
	}

	if err := g.store.SetExperiences(entries); err != nil {
		return err
	}
	g.pipe.MarkRevised(pipeline.StepExperience)
	return g.pipe.CompleteStep(pipeline.StepExperience)
}

// Generate calls the experience generation backend and replaces the draft's
// experience entries with the transformed output. The verbatim response is
// retained for the skills step. On any failure the prior draft entries and
// raw response are left untouched and the step stays incomplete.
func (g *Experience) Generate(ctx context.Context, opts ExperienceOptions) error {
	if !g.begin() {
		return ErrGenerationInFlight
	}
	defer g.end()

	src := g.Source()
	if len(src) == 0 {
		return ErrNoSourceItems
	}

	req := &types.ExperienceGenerationRequest{
		JobRole:               g.pipe.JobRole(),
		JobDescription:        g.pipe.JobDescription(),
		PointsCount:           resolveDensities(opts.Densities, len(src), DefaultExperienceBullets),
		AdditionalInstruction: opts.Instruction,
	}

	resp, err := g.client.GenerateExperiences(ctx, req)
	if err != nil {
		return err
	}
	log.Printf("experience generation returned %d entries", len(resp.Output))

	entries := make([]types.DraftExperience, len(resp.Output))
	for i, item := range resp.Output {
		entries[i] = types.DraftExperience{
			OrganizationName: item.CompanyName,
			BulletPoints:     item.ResumePoints,
		}
	}
	if err := g.store.SetExperiences(entries); err != nil {
		return err
	}
	g.store.SetRawExperience(resp.Output)
	g.pipe.MarkRevised(pipeline.StepExperience)
	return g.pipe.MarkCompleted(pipeline.StepExperience)
}

// UpdateEntry writes an edited experience entry back into the draft.
func (g *Experience) UpdateEntry(index int, entry types.DraftExperience) error {
	if err := g.store.UpdateExperience(index, entry); err != nil {
		return err
	}
	g.pipe.MarkRevised(pipeline.StepExperience)
	return nil
}

// Complete advances the pipeline past the experience step. It requires
// output, generated or skipped, to exist.
func (g *Experience) Complete() error {
	if len(g.store.Draft().Experiences) == 0 {
		return ErrNoOutput
	}
	return g.pipe.CompleteStep(pipeline.StepExperience)
}
