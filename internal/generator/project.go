package generator

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/resume-tailor/internal/genclient"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/store"
	"github.com/jonathan/resume-tailor/internal/types"
)

// DefaultProjectBullets is the bullet count used for a source project when
// the caller does not request one.
const DefaultProjectBullets = 3

// ProjectOptions are the step-local inputs to project generation.
type ProjectOptions struct {
	// Densities is one desired bullet count per source project, in source
	// order. Missing or zero entries default to DefaultProjectBullets.
	Densities []int
	// Instruction is free-text guidance forwarded to the backend.
	Instruction string
}

// Project is the second pipeline step: it tailors the profile's projects to
// the target job.
type Project struct {
	base
	client genclient.Client
}

// NewProject creates the project step generator.
func NewProject(st *store.Store, pipe *pipeline.Controller, client genclient.Client) *Project {
	return &Project{base: base{store: st, pipe: pipe}, client: client}
}

// Source returns the profile projects this step transforms.
func (g *Project) Source() []types.ProfileProject {
	return g.store.ApplicantInfo().Projects
}

// Skip derives draft entries straight from the profile: each project's
// description becomes a single paragraph with its skill list appended. The
// step is completed and the pipeline advances immediately.
func (g *Project) Skip() error {
	src := g.Source()
	if len(src) == 0 {
		return ErrNoSourceItems
	}

	entries := make([]types.DraftProject, len(src))
	for i, project := range src {
		paragraph := project.ProjectInfo
		if len(project.Skills) > 0 {
			paragraph = fmt.Sprintf("%s Skills used: %s", paragraph, strings.Join(project.Skills, ", "))
		}
		entries[i] = types.DraftProject{
			ProjectName: project.ProjectName,
			Body: types.ProjectBody{
				Kind:      types.ProjectBodyParagraph,
				Paragraph: paragraph,
			},
		}
	}

	if err := g.store.SetProjects(entries); err != nil {
		return err
	}
	g.pipe.MarkRevised(pipeline.StepProject)
	return g.pipe.CompleteStep(pipeline.StepProject)
}

// Generate calls the project generation backend and replaces the draft's
// project entries with bullet-list bodies carrying the returned skill tags.
// The verbatim response is retained for the skills step. On any failure the
// prior draft entries and raw response are left untouched and the step stays
// incomplete.
func (g *Project) Generate(ctx context.Context, opts ProjectOptions) error {
	if !g.begin() {
		return ErrGenerationInFlight
	}
	defer g.end()

	src := g.Source()
	if len(src) == 0 {
		return ErrNoSourceItems
	}

	req := &types.ProjectGenerationRequest{
		JobRole:               g.pipe.JobRole(),
		JobDescription:        g.pipe.JobDescription(),
		PointsCount:           resolveDensities(opts.Densities, len(src), DefaultProjectBullets),
		AdditionalInstruction: opts.Instruction,
	}

	resp, err := g.client.GenerateProjects(ctx, req)
	if err != nil {
		return err
	}
	log.Printf("project generation returned %d entries", len(resp.Output))

	entries := make([]types.DraftProject, len(resp.Output))
	for i, item := range resp.Output {
		entries[i] = types.DraftProject{
			ProjectName: item.ProjectName,
			Body: types.ProjectBody{
				Kind:    types.ProjectBodyBullets,
				Bullets: item.ProjectPoints,
				Skills:  item.ProjectSkills,
			},
		}
	}
	if err := g.store.SetProjects(entries); err != nil {
		return err
	}
	g.store.SetRawProject(resp.Output)
	g.pipe.MarkRevised(pipeline.StepProject)
	return g.pipe.MarkCompleted(pipeline.StepProject)
}

// UpdateEntry writes an edited project entry back into the draft.
func (g *Project) UpdateEntry(index int, entry types.DraftProject) error {
	if err := g.store.UpdateProject(index, entry); err != nil {
		return err
	}
	g.pipe.MarkRevised(pipeline.StepProject)
	return nil
}

// Complete advances the pipeline past the project step. It requires output,
// generated or skipped, to exist.
func (g *Project) Complete() error {
	if len(g.store.Draft().Projects) == 0 {
		return ErrNoOutput
	}
	return g.pipe.CompleteStep(pipeline.StepProject)
}
