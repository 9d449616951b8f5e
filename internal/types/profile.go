// Package types provides type definitions for structured data used throughout the resume-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// Academic represents one education entry in the applicant profile
type Academic struct {
	ID             string `json:"id,omitempty"`
	CollegeName    string `json:"collegeName"`
	Course         string `json:"course"`
	GraduationDate string `json:"graduationDate"`
	DisplayOrder   int    `json:"displayOrder,omitempty"`
}

// Achievement represents one achievement bullet in the applicant profile
type Achievement struct {
	ID               string `json:"id,omitempty"`
	AchievementPoint string `json:"achievementPoint"`
	DisplayOrder     int    `json:"displayOrder,omitempty"`
}

// BasicInformation holds the applicant's contact header data
type BasicInformation struct {
	FullName     string        `json:"fullName"`
	PhoneNumber  string        `json:"phoneNumber"`
	Email        string        `json:"email"`
	LinkedIn     string        `json:"linkedIn"`
	GitHub       string        `json:"github"`
	Address      string        `json:"address"`
	Academics    []Academic    `json:"academics"`
	Achievements []Achievement `json:"achievements"`
}

// ProfileProject represents one project in the applicant profile (pre-generation)
type ProfileProject struct {
	ID           string   `json:"id,omitempty"`
	ProjectName  string   `json:"projectName"`
	ProjectInfo  string   `json:"projectInfo"`
	Skills       []string `json:"skills"`
	DisplayOrder int      `json:"displayOrder,omitempty"`
}

// ProfileExperience represents one work experience in the applicant profile (pre-generation)
type ProfileExperience struct {
	ID                    string `json:"id,omitempty"`
	ExperienceName        string `json:"experienceName"` // organization
	Role                  string `json:"role"`
	Location              string `json:"location,omitempty"`
	StartDate             string `json:"startDate"`
	EndDate               string `json:"endDate"`
	ExperienceExplanation string `json:"experienceExplanation"`
	DisplayOrder          int    `json:"displayOrder,omitempty"`
}

// ProfileSkill represents one skill in the applicant's skill list
type ProfileSkill struct {
	ID        string `json:"id,omitempty"`
	SkillName string `json:"skillName"`
	Category  string `json:"category,omitempty"`
}

// ProfileSnapshot is the full applicant profile as fetched from the external
// backend. It is read-only input to the generation pipeline; the source of
// truth stays in the backend.
type ProfileSnapshot struct {
	BasicInformation BasicInformation    `json:"basicInformation"`
	Projects         []ProfileProject    `json:"projects"`
	Skills           []ProfileSkill      `json:"skills"`
	Experiences      []ProfileExperience `json:"experiences"`
}

// ContactLine joins the non-empty contact fields with " | " separators,
// leaving no dangling separators when fields are missing.
func (b *BasicInformation) ContactLine() string {
	parts := make([]string, 0, 3)
	for _, field := range []string{b.PhoneNumber, b.Email, b.Address} {
		if strings.TrimSpace(field) != "" {
			parts = append(parts, strings.TrimSpace(field))
		}
	}
	return strings.Join(parts, " | ")
}

// NetworkProfile returns the applicant's network-profile URL (LinkedIn first,
// then GitHub), or empty if neither is set.
func (b *BasicInformation) NetworkProfile() string {
	if strings.TrimSpace(b.LinkedIn) != "" {
		return strings.TrimSpace(b.LinkedIn)
	}
	return strings.TrimSpace(b.GitHub)
}
