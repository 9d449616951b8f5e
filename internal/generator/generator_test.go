package generator

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/store"
	"github.com/jonathan/resume-tailor/internal/types"
)

// fakeClient scripts generation responses and records the requests it saw.
type fakeClient struct {
	mu sync.Mutex

	experienceResp *types.ExperienceGenerationResponse
	projectResp    *types.ProjectGenerationResponse
	skillsResp     *types.SkillsGenerationResponse
	err            error

	lastExperienceReq *types.ExperienceGenerationRequest
	lastProjectReq    *types.ProjectGenerationRequest
	lastSkillsReq     *types.SkillsGenerationRequest
	calls             int

	block chan struct{} // when set, calls wait until closed
}

func (f *fakeClient) GenerateExperiences(_ context.Context, req *types.ExperienceGenerationRequest) (*types.ExperienceGenerationResponse, error) {
	f.mu.Lock()
	f.lastExperienceReq = req
	f.calls++
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.experienceResp, nil
}

func (f *fakeClient) GenerateProjects(_ context.Context, req *types.ProjectGenerationRequest) (*types.ProjectGenerationResponse, error) {
	f.mu.Lock()
	f.lastProjectReq = req
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.projectResp, nil
}

func (f *fakeClient) GenerateSkills(_ context.Context, req *types.SkillsGenerationRequest) (*types.SkillsGenerationResponse, error) {
	f.mu.Lock()
	f.lastSkillsReq = req
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.skillsResp, nil
}

func newTestStore(t *testing.T, snapshot types.ProfileSnapshot) *store.Store {
	t.Helper()
	st, err := store.Open(store.NewFileStore(filepath.Join(t.TempDir(), "state.json")))
	require.NoError(t, err)
	require.NoError(t, st.SetApplicantInfo(snapshot))
	return st
}

func testSnapshot() types.ProfileSnapshot {
	return types.ProfileSnapshot{
		Experiences: []types.ProfileExperience{
			{
				ExperienceName:        "Acme",
				Role:                  "Engineer",
				StartDate:             "Jan 2022",
				EndDate:               "present",
				ExperienceExplanation: "Built things",
			},
			{
				ExperienceName:        "Initech",
				StartDate:             "2019",
				EndDate:               "2021",
				ExperienceExplanation: "Maintained systems",
			},
		},
		Projects: []types.ProfileProject{
			{
				ProjectName: "Tracker",
				ProjectInfo: "A job application tracker.",
				Skills:      []string{"Go", "Postgres"},
			},
			{
				ProjectName: "Telemetry",
				ProjectInfo: "Event pipeline.",
			},
		},
		Skills: []types.ProfileSkill{
			{SkillName: "Go", Category: "Languages"},
			{SkillName: "Python", Category: "Languages"},
			{SkillName: "Docker", Category: "Tools"},
			{SkillName: "Negotiation"},
		},
	}
}

func newPipeline(t *testing.T, at pipeline.Step) *pipeline.Controller {
	t.Helper()
	pipe := pipeline.New()
	pipe.SetSharedFields("Backend Engineer", "Build Go services")
	for _, step := range pipeline.Order {
		if step == at {
			break
		}
		require.NoError(t, pipe.CompleteStep(step))
	}
	return pipe
}

func TestExperienceSkip(t *testing.T) {
	st := newTestStore(t, testSnapshot())
	pipe := newPipeline(t, pipeline.StepExperience)
	g := NewExperience(st, pipe, &fakeClient{})

	require.NoError(t, g.Skip())

	draft := st.Draft()
	require.Len(t, draft.Experiences, 2)
	assert.Equal(t, "Acme", draft.Experiences[0].OrganizationName)
	assert.Equal(t, []string{"Engineer (Jan 2022 - present)", "Built things"}, draft.Experiences[0].BulletPoints)
	// A missing role falls back to a generic label.
	assert.Equal(t, []string{"Professional Role (2019 - 2021)", "Maintained systems"}, draft.Experiences[1].BulletPoints)

	assert.True(t, pipe.Completed(pipeline.StepExperience))
	assert.Equal(t, pipeline.StepProject, pipe.ActiveStep())
}

func TestExperienceSkipEmptySource(t *testing.T) {
	st := newTestStore(t, types.ProfileSnapshot{})
	pipe := newPipeline(t, pipeline.StepExperience)
	g := NewExperience(st, pipe, &fakeClient{})

	assert.ErrorIs(t, g.Skip(), ErrNoSourceItems)
	assert.False(t, pipe.Completed(pipeline.StepExperience))
}

func TestExperienceGenerate(t *testing.T) {
	st := newTestStore(t, testSnapshot())
	pipe := newPipeline(t, pipeline.StepExperience)
	client := &fakeClient{
		experienceResp: &types.ExperienceGenerationResponse{
			Status: types.StatusSuccess,
			Output: []types.GeneratedExperienceItem{
				{CompanyName: "Acme", ResumePoints: []string{"Shipped p1", "Shipped p2"}},
				{CompanyName: "Initech", ResumePoints: []string{"Kept lights on"}},
			},
		},
	}
	g := NewExperience(st, pipe, client)

	require.NoError(t, g.Generate(context.Background(), ExperienceOptions{
		Densities:   []int{4},
		Instruction: "emphasize Go",
	}))

	req := client.lastExperienceReq
	require.NotNil(t, req)
	assert.Equal(t, "Backend Engineer", req.JobRole)
	assert.Equal(t, "Build Go services", req.JobDescription)
	// Requested density for the first item, default for the unspecified second.
	assert.Equal(t, []int{4, DefaultExperienceBullets}, req.PointsCount)
	assert.Equal(t, "emphasize Go", req.AdditionalInstruction)

	draft := st.Draft()
	require.Len(t, draft.Experiences, 2)
	assert.Equal(t, []string{"Shipped p1", "Shipped p2"}, draft.Experiences[0].BulletPoints)

	// Raw response retained verbatim for the skills step.
	require.Len(t, st.RawExperience(), 2)
	assert.Equal(t, "Acme", st.RawExperience()[0].CompanyName)

	// The flag flips but the active step stays for review.
	assert.True(t, pipe.Completed(pipeline.StepExperience))
	assert.Equal(t, pipeline.StepExperience, pipe.ActiveStep())

	require.NoError(t, g.Complete())
	assert.Equal(t, pipeline.StepProject, pipe.ActiveStep())
}

func TestExperienceGenerateFailureKeepsPriorOutput(t *testing.T) {
	st := newTestStore(t, testSnapshot())
	pipe := newPipeline(t, pipeline.StepExperience)
	g := NewExperience(st, pipe, &fakeClient{err: errors.New("backend exploded")})

	prior := []types.DraftExperience{{OrganizationName: "Old", BulletPoints: []string{"kept"}}}
	require.NoError(t, st.SetExperiences(prior))

	err := g.Generate(context.Background(), ExperienceOptions{})
	require.Error(t, err)
	assert.Equal(t, prior, st.Draft().Experiences)
	assert.Empty(t, st.RawExperience())
	assert.False(t, pipe.Completed(pipeline.StepExperience))
}

func TestExperienceGenerateInFlightGuard(t *testing.T) {
	st := newTestStore(t, testSnapshot())
	pipe := newPipeline(t, pipeline.StepExperience)
	client := &fakeClient{
		experienceResp: &types.ExperienceGenerationResponse{Status: types.StatusSuccess},
		block:          make(chan struct{}),
	}
	g := NewExperience(st, pipe, client)

	done := make(chan error, 1)
	go func() { done <- g.Generate(context.Background(), ExperienceOptions{}) }()

	// Wait for the first call to reach the client, then race a second one.
	for {
		client.mu.Lock()
		started := client.calls > 0
		client.mu.Unlock()
		if started {
			break
		}
		time.Sleep(time.Millisecond)
	}
	assert.ErrorIs(t, g.Generate(context.Background(), ExperienceOptions{}), ErrGenerationInFlight)

	close(client.block)
	require.NoError(t, <-done)
}

func TestExperienceCompleteWithoutOutput(t *testing.T) {
	st := newTestStore(t, testSnapshot())
	g := NewExperience(st, newPipeline(t, pipeline.StepExperience), &fakeClient{})
	assert.ErrorIs(t, g.Complete(), ErrNoOutput)
}

func TestExperienceUpdateEntry(t *testing.T) {
	st := newTestStore(t, testSnapshot())
	pipe := newPipeline(t, pipeline.StepExperience)
	g := NewExperience(st, pipe, &fakeClient{})
	require.NoError(t, g.Skip())

	edited := types.DraftExperience{OrganizationName: "Acme Corp", BulletPoints: []string{"one"}}
	require.NoError(t, g.UpdateEntry(0, edited))
	assert.Equal(t, edited, st.Draft().Experiences[0])

	assert.Error(t, g.UpdateEntry(9, edited))
}

func TestProjectSkip(t *testing.T) {
	st := newTestStore(t, testSnapshot())
	pipe := newPipeline(t, pipeline.StepProject)
	g := NewProject(st, pipe, &fakeClient{})

	require.NoError(t, g.Skip())

	draft := st.Draft()
	require.Len(t, draft.Projects, 2)
	assert.Equal(t, types.ProjectBodyParagraph, draft.Projects[0].Body.Kind)
	assert.Equal(t, "A job application tracker. Skills used: Go, Postgres", draft.Projects[0].Body.Paragraph)
	// No skill suffix when the source project lists none.
	assert.Equal(t, "Event pipeline.", draft.Projects[1].Body.Paragraph)

	assert.True(t, pipe.Completed(pipeline.StepProject))
	assert.Equal(t, pipeline.StepSkills, pipe.ActiveStep())
}

func TestProjectGenerate(t *testing.T) {
	st := newTestStore(t, testSnapshot())
	pipe := newPipeline(t, pipeline.StepProject)
	client := &fakeClient{
		projectResp: &types.ProjectGenerationResponse{
			Status: types.StatusSuccess,
			Output: []types.GeneratedProjectItem{
				{
					ProjectName:   "Tracker",
					ProjectPoints: []string{"Designed schema", "Built API"},
					ProjectSkills: []string{"Go", "Postgres"},
				},
			},
		},
	}
	g := NewProject(st, pipe, client)

	require.NoError(t, g.Generate(context.Background(), ProjectOptions{}))

	req := client.lastProjectReq
	require.NotNil(t, req)
	assert.Equal(t, []int{DefaultProjectBullets, DefaultProjectBullets}, req.PointsCount)

	draft := st.Draft()
	require.Len(t, draft.Projects, 1)
	assert.Equal(t, types.ProjectBodyBullets, draft.Projects[0].Body.Kind)
	assert.Equal(t, []string{"Designed schema", "Built API"}, draft.Projects[0].Body.Bullets)
	assert.Equal(t, []string{"Go", "Postgres"}, draft.Projects[0].Body.Skills)
	require.Len(t, st.RawProject(), 1)

	assert.True(t, pipe.Completed(pipeline.StepProject))
	assert.Equal(t, pipeline.StepProject, pipe.ActiveStep())
}

func TestProjectGenerateFailureKeepsPriorOutput(t *testing.T) {
	st := newTestStore(t, testSnapshot())
	pipe := newPipeline(t, pipeline.StepProject)
	g := NewProject(st, pipe, &fakeClient{err: errors.New("boom")})

	prior := []types.DraftProject{{
		ProjectName: "Old",
		Body:        types.ProjectBody{Kind: types.ProjectBodyParagraph, Paragraph: "kept"},
	}}
	require.NoError(t, st.SetProjects(prior))

	require.Error(t, g.Generate(context.Background(), ProjectOptions{}))
	assert.Equal(t, prior, st.Draft().Projects)
	assert.False(t, pipe.Completed(pipeline.StepProject))
}

func TestSkillsSkipBucketsByProfileCategory(t *testing.T) {
	st := newTestStore(t, testSnapshot())
	pipe := newPipeline(t, pipeline.StepSkills)
	g := NewSkills(st, pipe, &fakeClient{})

	require.NoError(t, g.Skip())

	skills := st.Draft().Skills
	require.Len(t, skills, 3)
	// First appearance order of the profile categories.
	assert.Equal(t, "Languages", skills[0].Name)
	assert.Equal(t, []string{"Go", "Python"}, skills[0].Skills)
	assert.Equal(t, "Tools", skills[1].Name)
	assert.Equal(t, []string{"Docker"}, skills[1].Skills)
	// Uncategorized profile skills land in a generic bucket.
	assert.Equal(t, "Skills", skills[2].Name)
	assert.Equal(t, []string{"Negotiation"}, skills[2].Skills)

	assert.True(t, pipe.Completed(pipeline.StepSkills))
	assert.Equal(t, pipeline.StepOutput, pipe.ActiveStep())
}

func TestSkillsGenerateForwardsRawResponses(t *testing.T) {
	st := newTestStore(t, testSnapshot())
	pipe := newPipeline(t, pipeline.StepSkills)

	raw := []types.GeneratedExperienceItem{{CompanyName: "Acme", ResumePoints: []string{"p"}}}
	st.SetRawExperience(raw)

	client := &fakeClient{
		skillsResp: &types.SkillsGenerationResponse{
			Status: types.StatusSuccess,
			Output: []types.GeneratedSkillCategory{
				{SkillCategory: "Backend", Skills: []string{"Go", "Postgres"}},
				{SkillCategory: "Infra", Skills: []string{"Docker"}},
			},
		},
	}
	g := NewSkills(st, pipe, client)

	require.NoError(t, g.Generate(context.Background(), SkillsOptions{WebResearch: true}))

	req := client.lastSkillsReq
	require.NotNil(t, req)
	assert.True(t, req.IncludeWebResearch)
	assert.Equal(t, raw, req.ExperienceData)
	// No project generation ran, so the prior data is an empty non-nil slice.
	require.NotNil(t, req.ProjectData)
	assert.Empty(t, req.ProjectData)

	skills := st.Draft().Skills
	require.Len(t, skills, 2)
	assert.Equal(t, "Backend", skills[0].Name)
	assert.Equal(t, "Infra", skills[1].Name)
}

func TestSkillsEditors(t *testing.T) {
	st := newTestStore(t, testSnapshot())
	pipe := newPipeline(t, pipeline.StepSkills)
	g := NewSkills(st, pipe, &fakeClient{})
	require.NoError(t, g.Skip())

	require.NoError(t, g.AddCategory("Cloud"))
	require.NoError(t, g.SetCategorySkills("Cloud", []string{"AWS"}))
	require.NoError(t, g.RemoveCategory("Tools"))

	skills := st.Draft().Skills
	assert.Equal(t, -1, skills.Index("Tools"))
	i := skills.Index("Cloud")
	require.GreaterOrEqual(t, i, 0)
	assert.Equal(t, []string{"AWS"}, skills[i].Skills)
}

func TestCumulativeDraftAcrossSteps(t *testing.T) {
	st := newTestStore(t, testSnapshot())
	pipe := newPipeline(t, pipeline.StepExperience)
	client := &fakeClient{}

	require.NoError(t, NewExperience(st, pipe, client).Skip())
	require.NoError(t, NewProject(st, pipe, client).Skip())
	require.NoError(t, NewSkills(st, pipe, client).Skip())

	draft := st.Draft()
	assert.Len(t, draft.Experiences, 2)
	assert.Len(t, draft.Projects, 2)
	assert.Len(t, draft.Skills, 3)
	assert.Equal(t, pipeline.StepOutput, pipe.ActiveStep())
}
