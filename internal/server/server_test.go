package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/events"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/store"
	"github.com/jonathan/resume-tailor/internal/types"
)

type fakeGenClient struct {
	experienceResp *types.ExperienceGenerationResponse
	err            error
}

func (f *fakeGenClient) GenerateExperiences(context.Context, *types.ExperienceGenerationRequest) (*types.ExperienceGenerationResponse, error) {
	return f.experienceResp, f.err
}

func (f *fakeGenClient) GenerateProjects(context.Context, *types.ProjectGenerationRequest) (*types.ProjectGenerationResponse, error) {
	return nil, f.err
}

func (f *fakeGenClient) GenerateSkills(context.Context, *types.SkillsGenerationRequest) (*types.SkillsGenerationResponse, error) {
	return nil, f.err
}

type fakeProfile struct {
	snapshot types.ProfileSnapshot
	err      error
}

func (f *fakeProfile) BasicInformation(context.Context) (*types.BasicInformation, error) {
	return &f.snapshot.BasicInformation, f.err
}

func (f *fakeProfile) Experiences(context.Context) ([]types.ProfileExperience, error) {
	return f.snapshot.Experiences, f.err
}

func (f *fakeProfile) Projects(context.Context) ([]types.ProfileProject, error) {
	return f.snapshot.Projects, f.err
}

func (f *fakeProfile) Skills(context.Context) ([]types.ProfileSkill, error) {
	return f.snapshot.Skills, f.err
}

func (f *fakeProfile) Snapshot(context.Context) (*types.ProfileSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &f.snapshot, nil
}

func testSnapshot() types.ProfileSnapshot {
	return types.ProfileSnapshot{
		BasicInformation: types.BasicInformation{FullName: "Ada Example"},
		Experiences: []types.ProfileExperience{
			{ExperienceName: "Acme", Role: "Engineer", StartDate: "2022", EndDate: "present", ExperienceExplanation: "Built things"},
		},
		Projects: []types.ProfileProject{
			{ProjectName: "Tracker", ProjectInfo: "A tracker.", Skills: []string{"Go"}},
		},
		Skills: []types.ProfileSkill{{SkillName: "Go", Category: "Languages"}},
	}
}

func newTestServer(t *testing.T, cfg Config, client *fakeGenClient) (*Server, *store.Store, *pipeline.Controller) {
	t.Helper()
	st, err := store.Open(store.NewFileStore(filepath.Join(t.TempDir(), "state.json")))
	require.NoError(t, err)
	require.NoError(t, st.SetApplicantInfo(testSnapshot()))

	pipe := pipeline.New()
	pipe.SetSharedFields("Backend Engineer", "Build Go services")

	srv := New(cfg, Deps{
		Store:     st,
		Pipeline:  pipe,
		GenClient: client,
		Profile:   &fakeProfile{snapshot: testSnapshot()},
		Bus:       events.NewBus(),
	})
	return srv, st, pipe
}

func do(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t, Config{Port: 8080}, &fakeGenClient{})
	rec := do(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGetPipeline(t *testing.T) {
	srv, _, _ := newTestServer(t, Config{Port: 8080}, &fakeGenClient{})
	rec := do(t, srv, http.MethodGet, "/pipeline", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp pipelineResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, pipeline.StepExperience, resp.ActiveStep)
	assert.Equal(t, "Backend Engineer", resp.JobRole)
}

func TestNavigateForbidden(t *testing.T) {
	srv, _, pipe := newTestServer(t, Config{Port: 8080}, &fakeGenClient{})
	rec := do(t, srv, http.MethodPost, "/pipeline/navigate", map[string]string{"step": "skills"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, pipeline.StepExperience, pipe.ActiveStep())
}

func TestSkipAdvancesAndReturnsDraft(t *testing.T) {
	srv, st, pipe := newTestServer(t, Config{Port: 8080}, &fakeGenClient{})
	rec := do(t, srv, http.MethodPost, "/steps/experience/skip", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, pipeline.StepProject, pipe.ActiveStep())
	require.Len(t, st.Draft().Experiences, 1)
	assert.Contains(t, rec.Body.String(), "Engineer (2022 - present)")
}

func TestGenerateExperience(t *testing.T) {
	client := &fakeGenClient{
		experienceResp: &types.ExperienceGenerationResponse{
			Status: types.StatusSuccess,
			Output: []types.GeneratedExperienceItem{
				{CompanyName: "Acme", ResumePoints: []string{"Did it"}},
			},
		},
	}
	srv, st, pipe := newTestServer(t, Config{Port: 8080}, client)

	rec := do(t, srv, http.MethodPost, "/steps/experience/generate",
		generateRequest{Densities: []int{4}, Instruction: "focus on Go"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, st.Draft().Experiences, 1)

	// Review before advancing: flag set, step unchanged until complete.
	assert.True(t, pipe.Completed(pipeline.StepExperience))
	assert.Equal(t, pipeline.StepExperience, pipe.ActiveStep())

	rec = do(t, srv, http.MethodPost, "/steps/experience/complete", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pipeline.StepProject, pipe.ActiveStep())
}

func TestCompleteWithoutOutput(t *testing.T) {
	srv, _, _ := newTestServer(t, Config{Port: 8080}, &fakeGenClient{})
	rec := do(t, srv, http.MethodPost, "/steps/experience/complete", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUnknownStep(t *testing.T) {
	srv, _, _ := newTestServer(t, Config{Port: 8080}, &fakeGenClient{})
	rec := do(t, srv, http.MethodPost, "/steps/review/skip", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDraftEditors(t *testing.T) {
	srv, st, _ := newTestServer(t, Config{Port: 8080}, &fakeGenClient{})
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/steps/experience/skip", nil).Code)

	rec := do(t, srv, http.MethodPut, "/draft/experiences/0",
		types.DraftExperience{OrganizationName: "Acme Corp", BulletPoints: []string{"edited"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Acme Corp", st.Draft().Experiences[0].OrganizationName)

	rec = do(t, srv, http.MethodPut, "/draft/experiences/9",
		types.DraftExperience{OrganizationName: "X"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/draft/skills", map[string]string{"name": "Cloud"}).Code)
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPut, "/draft/skills/Cloud", map[string][]string{"skills": {"AWS"}}).Code)
	assert.Equal(t, []string{"AWS"}, st.Draft().Skills[st.Draft().Skills.Index("Cloud")].Skills)
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodDelete, "/draft/skills/Cloud", nil).Code)
	assert.Equal(t, -1, st.Draft().Skills.Index("Cloud"))
}

func TestApplications(t *testing.T) {
	srv, _, _ := newTestServer(t, Config{Port: 8080}, &fakeGenClient{})

	rec := do(t, srv, http.MethodGet, "/applications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	apps := []types.Application{{ID: "1", JobName: "SRE", CompanyName: "Acme", Status: types.StatusApplied}}
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPut, "/applications", apps).Code)

	rec = do(t, srv, http.MethodGet, "/applications", nil)
	var got []types.Application
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, apps, got)
}

func TestRefreshProfile(t *testing.T) {
	srv, st, _ := newTestServer(t, Config{Port: 8080}, &fakeGenClient{})
	require.NoError(t, st.SetApplicantInfo(types.ProfileSnapshot{}))

	rec := do(t, srv, http.MethodPost, "/profile/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ada Example", st.ApplicantInfo().BasicInformation.FullName)
}

func TestExportDOCX(t *testing.T) {
	srv, _, _ := newTestServer(t, Config{Port: 8080}, &fakeGenClient{})
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/steps/experience/skip", nil).Code)

	rec := do(t, srv, http.MethodGet, "/export/docx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Ada Example_Resume.docx"`, rec.Header().Get("Content-Disposition"))
	// Zip magic.
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func TestExportPDFWithDateOverrides(t *testing.T) {
	srv, _, _ := newTestServer(t, Config{Port: 8080}, &fakeGenClient{})
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/steps/experience/skip", nil).Code)

	rec := do(t, srv, http.MethodGet, "/export/pdf?date=2020+-+2024", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestPreview(t *testing.T) {
	srv, _, _ := newTestServer(t, Config{Port: 8080}, &fakeGenClient{})
	rec := do(t, srv, http.MethodGet, "/preview", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Ada Example")
}

func TestSessionMiddleware(t *testing.T) {
	srv, _, _ := newTestServer(t, Config{Port: 8080, JWTSecret: "test-secret"}, &fakeGenClient{})
	bus := srv.bus
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	// Health stays open.
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/health", nil).Code)

	// Missing token is rejected and publishes an invalidation event.
	rec := do(t, srv, http.MethodGet, "/pipeline", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	select {
	case event := <-sub.C():
		assert.Equal(t, "missing authorization header", event.Reason)
	case <-time.After(time.Second):
		t.Fatal("expected a session invalidation event")
	}

	// A valid token passes.
	token, err := srv.sessions.IssueToken()
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/pipeline", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	okRec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(okRec, req)
	assert.Equal(t, http.StatusOK, okRec.Code)

	// A garbage token is rejected.
	req = httptest.NewRequest(http.MethodGet, "/pipeline", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	badRec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(badRec, req)
	assert.Equal(t, http.StatusUnauthorized, badRec.Code)
}

func TestSessionTokenRoundTrip(t *testing.T) {
	service := NewSessionService("secret", time.Hour)
	token, err := service.IssueToken()
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.NotEqual(t, claims.SessionID.String(), "00000000-0000-0000-0000-000000000000")

	_, err = service.ValidateToken("")
	assert.Error(t, err)

	other := NewSessionService("different", time.Hour)
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}
