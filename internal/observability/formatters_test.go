package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-tailor/internal/types"
)

func TestPrintJobPosting(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintJobPosting("Senior Engineer", "We are hiring.")
	output := buf.String()

	assert.Contains(t, output, "JOB POSTING")
	assert.Contains(t, output, "Senior Engineer")
	assert.Contains(t, output, "14 characters")
}

func TestPrintJobPosting_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintJobPosting("", "")

	assert.Empty(t, buf.String())
}

func TestPrintExperiences(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintExperiences([]types.DraftExperience{
		{OrganizationName: "Acme Corp", BulletPoints: []string{"Shipped the thing", "Fixed the bug"}},
		{OrganizationName: "Initech", BulletPoints: []string{"Filed reports"}},
	})
	output := buf.String()

	assert.Contains(t, output, "EXPERIENCE DRAFT")
	assert.Contains(t, output, "Acme Corp (2 bullets)")
	assert.Contains(t, output, "Shipped the thing")
	assert.Contains(t, output, "Initech (1 bullets)")
}

func TestPrintExperiences_Truncation(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	entries := make([]types.DraftExperience, 8)
	for i := range entries {
		entries[i] = types.DraftExperience{OrganizationName: "Org"}
	}
	p.PrintExperiences(entries)

	assert.Contains(t, buf.String(), "... and 3 more")
}

func TestPrintExperiences_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintExperiences(nil)

	assert.Empty(t, buf.String())
}

func TestPrintProjects(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintProjects([]types.DraftProject{
		{ProjectName: "Tracker", Body: types.ProjectBody{Kind: types.ProjectBodyBullets, Bullets: []string{"a", "b", "c"}}},
		{ProjectName: "Legacy", Body: types.ProjectBody{Kind: types.ProjectBodyParagraph, Paragraph: "Old style."}},
	})
	output := buf.String()

	assert.Contains(t, output, "PROJECT DRAFT")
	assert.Contains(t, output, "Tracker (3 bullets)")
	assert.Contains(t, output, "Legacy (paragraph)")
}

func TestPrintSkills(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSkills(types.SkillsByCategory{
		{Name: "Languages", Skills: []string{"Go", "Python"}},
		{Name: "Tools", Skills: []string{strings.Repeat("x", 60)}},
	})
	output := buf.String()

	assert.Contains(t, output, "SKILLS DRAFT")
	assert.Contains(t, output, "Languages: Go, Python")
	assert.Contains(t, output, "...")
}
