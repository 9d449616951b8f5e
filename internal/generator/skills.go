package generator

import (
	"context"
	"log"

	"github.com/jonathan/resume-tailor/internal/genclient"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/store"
	"github.com/jonathan/resume-tailor/internal/types"
)

// fallbackSkillCategory buckets skills whose profile entry carries no category.
const fallbackSkillCategory = "Skills"

// SkillsOptions are the step-local inputs to skills generation.
type SkillsOptions struct {
	// Instruction is free-text guidance forwarded to the backend.
	Instruction string
	// WebResearch asks the backend to supplement with web research about
	// the target role.
	WebResearch bool
}

// Skills is the third pipeline step: it organizes the profile's skills into
// job-relevant categories, informed by the verbatim output of the two prior
// generation steps.
type Skills struct {
	base
	client genclient.Client
}

// NewSkills creates the skills step generator.
func NewSkills(st *store.Store, pipe *pipeline.Controller, client genclient.Client) *Skills {
	return &Skills{base: base{store: st, pipe: pipe}, client: client}
}

// Source returns the profile skills this step transforms.
func (g *Skills) Source() []types.ProfileSkill {
	return g.store.ApplicantInfo().Skills
}

// Skip buckets the profile skills by their profile category, in first
// appearance order. Skills without a category land in a generic bucket. The
// step is completed and the pipeline advances immediately.
func (g *Skills) Skip() error {
	src := g.Source()
	if len(src) == 0 {
		return ErrNoSourceItems
	}

	var buckets types.SkillsByCategory
	for _, skill := range src {
		category := skill.Category
		if category == "" {
			category = fallbackSkillCategory
		}
		i := buckets.Index(category)
		if i < 0 {
			buckets = append(buckets, types.SkillCategory{Name: category})
			i = len(buckets) - 1
		}
		buckets[i].Skills = append(buckets[i].Skills, skill.SkillName)
	}

	if err := g.store.SetSkills(buckets); err != nil {
		return err
	}
	g.pipe.MarkRevised(pipeline.StepSkills)
	return g.pipe.CompleteStep(pipeline.StepSkills)
}

// Generate calls the skills generation backend, forwarding the raw responses
// of the experience and project steps verbatim, and replaces the draft's
// skill categories with the returned buckets in response order. On any
// failure the prior draft categories are left untouched and the step stays
// incomplete.
func (g *Skills) Generate(ctx context.Context, opts SkillsOptions) error {
	if !g.begin() {
		return ErrGenerationInFlight
	}
	defer g.end()

	src := g.Source()
	if len(src) == 0 {
		return ErrNoSourceItems
	}

	req := &types.SkillsGenerationRequest{
		JobRole:               g.pipe.JobRole(),
		JobDescription:        g.pipe.JobDescription(),
		AdditionalInstruction: opts.Instruction,
		IncludeWebResearch:    opts.WebResearch,
		ExperienceData:        g.store.RawExperience(),
		ProjectData:           g.store.RawProject(),
	}
	req.Normalize()

	resp, err := g.client.GenerateSkills(ctx, req)
	if err != nil {
		return err
	}
	log.Printf("skills generation returned %d categories", len(resp.Output))

	buckets := make(types.SkillsByCategory, len(resp.Output))
	for i, category := range resp.Output {
		buckets[i] = types.SkillCategory{
			Name:   category.SkillCategory,
			Skills: category.Skills,
		}
	}
	if err := g.store.SetSkills(buckets); err != nil {
		return err
	}
	g.pipe.MarkRevised(pipeline.StepSkills)
	return g.pipe.MarkCompleted(pipeline.StepSkills)
}

// AddCategory appends an empty named category to the draft.
func (g *Skills) AddCategory(name string) error {
	if err := g.store.AddSkillCategory(name); err != nil {
		return err
	}
	g.pipe.MarkRevised(pipeline.StepSkills)
	return nil
}

// RemoveCategory deletes the named category from the draft.
func (g *Skills) RemoveCategory(name string) error {
	if err := g.store.RemoveSkillCategory(name); err != nil {
		return err
	}
	g.pipe.MarkRevised(pipeline.StepSkills)
	return nil
}

// SetCategorySkills replaces a category's skill list, creating the category
// if needed.
func (g *Skills) SetCategorySkills(name string, skills []string) error {
	if err := g.store.SetCategorySkills(name, skills); err != nil {
		return err
	}
	g.pipe.MarkRevised(pipeline.StepSkills)
	return nil
}

// Complete advances the pipeline past the skills step. It requires output,
// generated or skipped, to exist.
func (g *Skills) Complete() error {
	if len(g.store.Draft().Skills) == 0 {
		return ErrNoOutput
	}
	return g.pipe.CompleteStep(pipeline.StepSkills)
}
