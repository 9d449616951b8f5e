package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/jonathan/resume-tailor/internal/export"
	"github.com/jonathan/resume-tailor/internal/export/docx"
	"github.com/jonathan/resume-tailor/internal/export/pdf"
	"github.com/jonathan/resume-tailor/internal/generator"
	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/render"
	"github.com/jonathan/resume-tailor/internal/types"
)

// pipelineResponse is the GET /pipeline payload.
type pipelineResponse struct {
	pipeline.State
	StaleSteps []pipeline.Step `json:"staleSteps,omitempty"`
}

func (s *Server) handleGetPipeline(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, pipelineResponse{
		State:      s.pipe.Snapshot(),
		StaleSteps: s.pipe.StaleSteps(),
	})
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Step pipeline.Step `json:"step"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.pipe.NavigateTo(req.Step); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, s.pipe.Snapshot())
}

func (s *Server) handleSetFields(w http.ResponseWriter, r *http.Request) {
	var req struct {
		JobRole        string `json:"jobRole"`
		JobDescription string `json:"jobDescription"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.pipe.SetSharedFields(req.JobRole, req.JobDescription)
	s.jsonResponse(w, http.StatusOK, s.pipe.Snapshot())
}

func (s *Server) handleIngestJobURL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL        string `json:"url"`
		UseBrowser bool   `json:"useBrowser"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	opts := ingestion.DefaultOptions()
	opts.UseBrowser = req.UseBrowser
	description, err := ingestion.JobDescriptionFromURL(r.Context(), req.URL, opts)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.pipe.SetSharedFields(s.pipe.JobRole(), description)
	s.jsonResponse(w, http.StatusOK, map[string]string{"jobDescription": description})
}

// generateRequest carries the step-local generation options.
type generateRequest struct {
	Densities   []int  `json:"densities"`
	Instruction string `json:"instruction"`
	WebResearch bool   `json:"webResearch"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.errorResponse(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	var err error
	switch step := pipeline.Step(r.PathValue("step")); step {
	case pipeline.StepExperience:
		err = s.experience.Generate(r.Context(), generator.ExperienceOptions{
			Densities:   req.Densities,
			Instruction: req.Instruction,
		})
	case pipeline.StepProject:
		err = s.project.Generate(r.Context(), generator.ProjectOptions{
			Densities:   req.Densities,
			Instruction: req.Instruction,
		})
	case pipeline.StepSkills:
		err = s.skills.Generate(r.Context(), generator.SkillsOptions{
			Instruction: req.Instruction,
			WebResearch: req.WebResearch,
		})
	default:
		s.errorResponse(w, http.StatusNotFound, fmt.Sprintf("unknown generation step: %s", step))
		return
	}
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, s.store.Draft())
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	var err error
	switch step := pipeline.Step(r.PathValue("step")); step {
	case pipeline.StepExperience:
		err = s.experience.Skip()
	case pipeline.StepProject:
		err = s.project.Skip()
	case pipeline.StepSkills:
		err = s.skills.Skip()
	default:
		s.errorResponse(w, http.StatusNotFound, fmt.Sprintf("unknown generation step: %s", step))
		return
	}
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, s.store.Draft())
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	var err error
	switch step := pipeline.Step(r.PathValue("step")); step {
	case pipeline.StepExperience:
		err = s.experience.Complete()
	case pipeline.StepProject:
		err = s.project.Complete()
	case pipeline.StepSkills:
		err = s.skills.Complete()
	default:
		s.errorResponse(w, http.StatusNotFound, fmt.Sprintf("unknown generation step: %s", step))
		return
	}
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, s.pipe.Snapshot())
}

func (s *Server) handleGetDraft(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.store.Draft())
}

func (s *Server) handleUpdateExperience(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid index")
		return
	}
	var entry types.DraftExperience
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.experience.UpdateEntry(index, entry); err != nil {
		s.errorResponse(w, http.StatusNotFound, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, s.store.Draft())
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid index")
		return
	}
	var entry types.DraftProject
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.project.UpdateEntry(index, entry); err != nil {
		s.errorResponse(w, http.StatusNotFound, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, s.store.Draft())
}

func (s *Server) handleAddSkillCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.skills.AddCategory(req.Name); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, s.store.Draft())
}

func (s *Server) handleSetCategorySkills(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Skills []string `json:"skills"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.skills.SetCategorySkills(r.PathValue("category"), req.Skills); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, s.store.Draft())
}

func (s *Server) handleRemoveSkillCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.skills.RemoveCategory(r.PathValue("category")); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, s.store.Draft())
}

func (s *Server) handleListApplications(w http.ResponseWriter, _ *http.Request) {
	apps := s.store.Applications()
	if apps == nil {
		apps = []types.Application{}
	}
	s.jsonResponse(w, http.StatusOK, apps)
}

func (s *Server) handleSetApplications(w http.ResponseWriter, r *http.Request) {
	var apps []types.Application
	if err := json.NewDecoder(r.Body).Decode(&apps); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.store.SetApplications(apps); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, apps)
}

func (s *Server) handleRefreshProfile(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.profile.Snapshot(r.Context())
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if err := s.store.SetApplicantInfo(*snapshot); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, snapshot)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	doc := s.buildDocument(r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc.HTML()))
}

func (s *Server) handleExportDOCX(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, &s.docxBusy, "docx",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document", docx.Write)
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, &s.pdfBusy, "pdf", "application/pdf", pdf.Write)
}

// handleExport renders the document to memory first; a failed assembly never
// sends a truncated attachment.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, busy *atomic.Bool,
	ext, contentType string, write func(*render.Document, io.Writer) error) {

	if !busy.CompareAndSwap(false, true) {
		s.errorResponse(w, HTTPStatus(ErrExportInFlight), ErrExportInFlight.Error())
		return
	}
	defer busy.Store(false)

	doc := s.buildDocument(r)

	var buf bytes.Buffer
	if err := write(doc, &buf); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	filename := export.Filename(doc.Header.FullName, ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// buildDocument renders the current state and applies any ?date= overrides,
// given in document order.
func (s *Server) buildDocument(r *http.Request) *render.Document {
	snapshot := s.store.ApplicantInfo()
	draft := s.store.Draft()
	doc := render.Build(&snapshot, &draft)
	if dates, ok := r.URL.Query()["date"]; ok {
		export.ApplyDateOverrides(doc, dates)
	}
	return doc
}
