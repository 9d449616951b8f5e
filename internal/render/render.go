// Package render builds the logical resume document consumed by the preview
// and the exporters. The header and education come from the applicant
// profile; experience, skills and project bodies come from the generated
// draft, correlated to profile entries by position.
package render

import (
	"fmt"
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
)

// DateField is one user-editable date in the rendered document. The preview
// exposes these for in-place editing; exporters read Value back so edits made
// after the initial render survive into the file.
type DateField struct {
	Original string
	Edited   string
}

// Value returns the edited date when one was entered, the original otherwise.
func (f *DateField) Value() string {
	if f.Edited != "" {
		return f.Edited
	}
	return f.Original
}

// SetEdited records a user edit. An empty string reverts to the original.
func (f *DateField) SetEdited(v string) { f.Edited = v }

// Header is the document's top block.
type Header struct {
	FullName string
	// ContactLine is the pipe-joined phone/email/address line, already
	// free of dangling separators.
	ContactLine string
	// NetworkProfile is the LinkedIn or GitHub URL, hyperlinked on export.
	NetworkProfile string
}

// EducationRow is one academic entry with its right-aligned graduation date.
type EducationRow struct {
	Institution string
	Course      string
	Date        *DateField
}

// Primary is the left-aligned text of the education row.
func (r EducationRow) Primary() string {
	if r.Course == "" {
		return r.Institution
	}
	return fmt.Sprintf("%s – %s", r.Institution, r.Course)
}

// ExperienceBlock is one experience entry: a header line with a
// right-aligned date range, then the generated bullets.
type ExperienceBlock struct {
	Role         string
	Organization string
	Location     string
	Date         *DateField
	Bullets      []string
}

// HeaderParts returns the non-empty role/organization/location segments of
// the block's header line, in order.
func (b ExperienceBlock) HeaderParts() []string {
	parts := make([]string, 0, 3)
	for _, p := range []string{b.Role, b.Organization, b.Location} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// HeaderLine is the pipe-joined header text without the date.
func (b ExperienceBlock) HeaderLine() string {
	return strings.Join(b.HeaderParts(), " | ")
}

// SkillLine is one skills bullet: a category and its skill list.
type SkillLine struct {
	Category string
	Skills   []string
}

// Line is the rendered bullet text for the category.
func (l SkillLine) Line() string {
	return fmt.Sprintf("%s: %s", l.Category, strings.Join(l.Skills, ", "))
}

// ProjectBlock is one project entry: its name, optional skill tags and
// bullets. Legacy single-paragraph bodies arrive as a single bullet.
type ProjectBlock struct {
	Name      string
	SkillTags []string
	Bullets   []string
}

// Title is the project heading, with inline pipe-joined skill tags when present.
func (b ProjectBlock) Title() string {
	if len(b.SkillTags) == 0 {
		return b.Name
	}
	return fmt.Sprintf("%s | %s", b.Name, strings.Join(b.SkillTags, " | "))
}

// Document is the ordered, sectioned resume. Empty sections are simply empty
// slices; consumers render a section only when it has content.
type Document struct {
	Header       Header
	Education    []EducationRow
	Experience   []ExperienceBlock
	Skills       []SkillLine
	Projects     []ProjectBlock
	Achievements []string

	dateFields []*DateField
}

// DateFields returns the document's editable date nodes in document order:
// education rows first, then experience blocks. Positions are stable, so an
// edit read back by index lands on the entry it was made against.
func (d *Document) DateFields() []*DateField {
	return d.dateFields
}

// Build assembles the document from the profile snapshot and the generated
// draft. Draft experience entries are matched to profile experiences
// positionally for role, location and dates; entries past the profile's end
// render with an empty header remainder.
func Build(snapshot *types.ProfileSnapshot, draft *types.GeneratorDraft) *Document {
	doc := &Document{
		Header: Header{
			FullName:       snapshot.BasicInformation.FullName,
			ContactLine:    snapshot.BasicInformation.ContactLine(),
			NetworkProfile: snapshot.BasicInformation.NetworkProfile(),
		},
	}

	for _, academic := range snapshot.BasicInformation.Academics {
		date := &DateField{Original: academic.GraduationDate}
		doc.dateFields = append(doc.dateFields, date)
		doc.Education = append(doc.Education, EducationRow{
			Institution: academic.CollegeName,
			Course:      academic.Course,
			Date:        date,
		})
	}

	for i, entry := range draft.Experiences {
		block := ExperienceBlock{
			Organization: entry.OrganizationName,
			Bullets:      entry.BulletPoints,
		}
		if i < len(snapshot.Experiences) {
			src := snapshot.Experiences[i]
			block.Role = src.Role
			block.Location = src.Location
			block.Date = &DateField{Original: dateRange(src.StartDate, src.EndDate)}
		} else {
			block.Date = &DateField{}
		}
		doc.dateFields = append(doc.dateFields, block.Date)
		doc.Experience = append(doc.Experience, block)
	}

	for _, category := range draft.Skills {
		doc.Skills = append(doc.Skills, SkillLine{
			Category: category.Name,
			Skills:   category.Skills,
		})
	}

	for _, project := range draft.Projects {
		block := ProjectBlock{Name: project.ProjectName}
		switch project.Body.Kind {
		case types.ProjectBodyBullets:
			block.Bullets = project.Body.Bullets
			block.SkillTags = project.Body.Skills
		case types.ProjectBodyParagraph:
			if project.Body.Paragraph != "" {
				block.Bullets = []string{project.Body.Paragraph}
			}
		}
		doc.Projects = append(doc.Projects, block)
	}

	for _, achievement := range snapshot.BasicInformation.Achievements {
		if achievement.AchievementPoint != "" {
			doc.Achievements = append(doc.Achievements, achievement.AchievementPoint)
		}
	}

	return doc
}

func dateRange(start, end string) string {
	switch {
	case start == "" && end == "":
		return ""
	case end == "":
		return start
	case start == "":
		return end
	default:
		return fmt.Sprintf("%s - %s", start, end)
	}
}
