//nolint:revive // types is a standard Go package name pattern
package types

import (
	"github.com/go-playground/validator/v10"
)

// ExperienceGenerationRequest is the wire request for experience generation.
// PointsCount is a parallel array: one desired bullet count per source experience.
type ExperienceGenerationRequest struct {
	JobRole               string `json:"job_role" validate:"required"`
	JobDescription        string `json:"job_description" validate:"required"`
	PointsCount           []int  `json:"points_count" validate:"required,min=1,dive,min=1,max=10"`
	AdditionalInstruction string `json:"additional_instruction"`
}

// Validate validates the ExperienceGenerationRequest using the validator.
func (r *ExperienceGenerationRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// GeneratedExperienceItem is one entry of the experience generator's verbatim
// output. Array order corresponds to the caller's experience list order.
type GeneratedExperienceItem struct {
	ExperienceID   int      `json:"experience_id,omitempty"`
	ExperienceRole string   `json:"experience_role,omitempty"`
	CompanyName    string   `json:"experience_company_name"`
	ResumePoints   []string `json:"resume_points"`
	StartDate      string   `json:"start_date,omitempty"`
	EndDate        string   `json:"end_date,omitempty"`
}

// ExperienceGenerationResponse is the wire response for experience generation
type ExperienceGenerationResponse struct {
	Message string                    `json:"message,omitempty"`
	Status  string                    `json:"status"`
	Output  []GeneratedExperienceItem `json:"output"`
}

// ProjectGenerationRequest is the wire request for project generation
type ProjectGenerationRequest struct {
	JobRole               string `json:"job_role" validate:"required"`
	JobDescription        string `json:"job_description" validate:"required"`
	PointsCount           []int  `json:"points_count" validate:"required,min=1,dive,min=1,max=10"`
	AdditionalInstruction string `json:"additional_instruction"`
}

// Validate validates the ProjectGenerationRequest using the validator.
func (r *ProjectGenerationRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// GeneratedProjectItem is one entry of the project generator's verbatim output
type GeneratedProjectItem struct {
	ProjectID     int      `json:"project_id,omitempty"`
	ProjectName   string   `json:"project_name"`
	ProjectPoints []string `json:"project_points"`
	ProjectSkills []string `json:"project_skills"`
}

// ProjectGenerationResponse is the wire response for project generation
type ProjectGenerationResponse struct {
	Message string                 `json:"message,omitempty"`
	Status  string                 `json:"status"`
	Output  []GeneratedProjectItem `json:"output"`
}

// SkillsGenerationRequest is the wire request for skills generation. The
// experience and project data are the verbatim prior generator responses, not
// a re-derivation from the draft; they must marshal as empty arrays (never
// null or omitted) when no prior generation ran.
type SkillsGenerationRequest struct {
	JobRole               string                    `json:"job_role" validate:"required"`
	JobDescription        string                    `json:"job_description" validate:"required"`
	AdditionalInstruction string                    `json:"additional_instruction"`
	IncludeWebResearch    bool                      `json:"include_web_research"`
	ExperienceData        []GeneratedExperienceItem `json:"experience_data"`
	ProjectData           []GeneratedProjectItem    `json:"project_data"`
}

// Validate validates the SkillsGenerationRequest using the validator.
func (r *SkillsGenerationRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Normalize replaces nil prior-response slices with empty non-nil slices so
// the JSON encoder emits [] rather than null.
func (r *SkillsGenerationRequest) Normalize() {
	if r.ExperienceData == nil {
		r.ExperienceData = []GeneratedExperienceItem{}
	}
	if r.ProjectData == nil {
		r.ProjectData = []GeneratedProjectItem{}
	}
}

// GeneratedSkillCategory is one entry of the skills generator's output
type GeneratedSkillCategory struct {
	SkillCategory string   `json:"skill_category"`
	Skills        []string `json:"skills"`
}

// SkillsGenerationResponse is the wire response for skills generation
type SkillsGenerationResponse struct {
	Message string                   `json:"message,omitempty"`
	Status  string                   `json:"status"`
	Output  []GeneratedSkillCategory `json:"output"`
}

// StatusSuccess is the status value generation responses must carry to be
// treated as successful. Anything else is a failure and the response message
// is surfaced verbatim.
const StatusSuccess = "success"
