//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"fmt"
	"sort"
)

// DraftExperience is one generated (or skipped) experience entry in the draft
type DraftExperience struct {
	OrganizationName string   `json:"companyName"`
	BulletPoints     []string `json:"newExperience"`
}

// ProjectBodyKind discriminates the two project-output shapes that coexist in
// persisted drafts: the legacy single free-text paragraph and the current
// bullet-point list with skill tags.
type ProjectBodyKind string

const (
	// ProjectBodyParagraph is the legacy shape: one free-text paragraph.
	ProjectBodyParagraph ProjectBodyKind = "paragraph"
	// ProjectBodyBullets is the current shape: bullet points plus skill tags.
	ProjectBodyBullets ProjectBodyKind = "bullets"
)

// ProjectBody is a tagged variant over the two project-output shapes.
// Renderers and exporters must handle both kinds exhaustively.
type ProjectBody struct {
	Kind      ProjectBodyKind
	Paragraph string   // set when Kind == ProjectBodyParagraph
	Bullets   []string // set when Kind == ProjectBodyBullets
	Skills    []string // set when Kind == ProjectBodyBullets
}

// DraftProject is one generated (or skipped) project entry in the draft
type DraftProject struct {
	ProjectName string
	Body        ProjectBody
}

// draftProjectJSON is the persisted wire shape. Both legacy fields are kept so
// drafts written by older versions still load.
type draftProjectJSON struct {
	ProjectName    string   `json:"projectName"`
	ProjectPoints  []string `json:"projectPoints,omitempty"`
	ProjectSkills  []string `json:"projectSkills,omitempty"`
	NewProjectInfo string   `json:"newProjectInfo,omitempty"`
}

// MarshalJSON writes the shape matching the body kind.
func (p DraftProject) MarshalJSON() ([]byte, error) {
	out := draftProjectJSON{ProjectName: p.ProjectName}
	switch p.Body.Kind {
	case ProjectBodyBullets:
		out.ProjectPoints = p.Body.Bullets
		out.ProjectSkills = p.Body.Skills
	case ProjectBodyParagraph:
		out.NewProjectInfo = p.Body.Paragraph
	default:
		return nil, fmt.Errorf("unknown project body kind: %q", p.Body.Kind)
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts both persisted shapes and normalizes to the tagged
// variant. A bullet list wins when both are present.
func (p *DraftProject) UnmarshalJSON(data []byte) error {
	var raw draftProjectJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.ProjectName = raw.ProjectName
	if len(raw.ProjectPoints) > 0 {
		p.Body = ProjectBody{
			Kind:    ProjectBodyBullets,
			Bullets: raw.ProjectPoints,
			Skills:  raw.ProjectSkills,
		}
		return nil
	}
	p.Body = ProjectBody{
		Kind:      ProjectBodyParagraph,
		Paragraph: raw.NewProjectInfo,
	}
	return nil
}

// SkillCategory is one named bucket of skills in the draft
type SkillCategory struct {
	Name   string   `json:"skill_category"`
	Skills []string `json:"skills"`
}

// SkillsByCategory is the ordered list of skill buckets. Order is
// user-visible (it is the render order), so a slice is used instead of a map.
type SkillsByCategory []SkillCategory

// UnmarshalJSON accepts either the ordered list shape or the legacy
// {category: [skills]} object shape. Object keys are ordered alphabetically
// on load so rehydration is deterministic.
func (s *SkillsByCategory) UnmarshalJSON(data []byte) error {
	type plain SkillsByCategory
	var list plain
	if err := json.Unmarshal(data, &list); err == nil {
		*s = SkillsByCategory(list)
		return nil
	}

	var legacy map[string][]string
	if err := json.Unmarshal(data, &legacy); err != nil {
		return fmt.Errorf("skills: neither category list nor legacy map: %w", err)
	}
	names := make([]string, 0, len(legacy))
	for name := range legacy {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make(SkillsByCategory, 0, len(names))
	for _, name := range names {
		out = append(out, SkillCategory{Name: name, Skills: legacy[name]})
	}
	*s = out
	return nil
}

// Index returns the position of the named category, or -1.
func (s SkillsByCategory) Index(name string) int {
	for i, c := range s {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// AddCategory appends an empty category if the name is not already present.
func (s *SkillsByCategory) AddCategory(name string) {
	if s.Index(name) >= 0 {
		return
	}
	*s = append(*s, SkillCategory{Name: name, Skills: []string{}})
}

// RemoveCategory deletes the named category, preserving the order of the rest.
func (s *SkillsByCategory) RemoveCategory(name string) {
	i := s.Index(name)
	if i < 0 {
		return
	}
	*s = append((*s)[:i], (*s)[i+1:]...)
}

// SetSkills replaces the skill list of the named category, creating it if needed.
func (s *SkillsByCategory) SetSkills(name string, skills []string) {
	if i := s.Index(name); i >= 0 {
		(*s)[i].Skills = skills
		return
	}
	*s = append(*s, SkillCategory{Name: name, Skills: skills})
}

// GeneratorDraft is the cumulative, user-editable output of the three
// generation steps. Completing a step populates only that step's slice;
// prior slices persist untouched.
type GeneratorDraft struct {
	Experiences []DraftExperience `json:"experiences"`
	Projects    []DraftProject    `json:"projects"`
	Skills      SkillsByCategory  `json:"skills"`
}
