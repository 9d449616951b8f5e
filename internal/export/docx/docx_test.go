package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/render"
	"github.com/jonathan/resume-tailor/internal/types"
)

func buildTestDocument() *render.Document {
	snapshot := &types.ProfileSnapshot{
		BasicInformation: types.BasicInformation{
			FullName:    "Ada Example",
			PhoneNumber: "555-0100",
			Email:       "ada@example.com",
			LinkedIn:    "https://linkedin.com/in/ada",
			Academics: []types.Academic{
				{CollegeName: "State University", Course: "BS CS", GraduationDate: "May 2021"},
			},
			Achievements: []types.Achievement{{AchievementPoint: "Won a hackathon"}},
		},
		Experiences: []types.ProfileExperience{
			{ExperienceName: "Acme", Role: "Engineer", Location: "Chicago", StartDate: "Jan 2022", EndDate: "present"},
		},
	}
	draft := &types.GeneratorDraft{
		Experiences: []types.DraftExperience{
			{OrganizationName: "Acme", BulletPoints: []string{"Shipped <things> & more"}},
		},
		Projects: []types.DraftProject{
			{
				ProjectName: "Tracker",
				Body: types.ProjectBody{
					Kind:    types.ProjectBodyBullets,
					Bullets: []string{"Designed schema"},
					Skills:  []string{"Go"},
				},
			},
		},
		Skills: types.SkillsByCategory{{Name: "Backend", Skills: []string{"Go", "Postgres"}}},
	}
	return render.Build(snapshot, draft)
}

func extractParts(t *testing.T, data []byte) map[string]string {
	t.Helper()
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	parts := make(map[string]string)
	for _, file := range reader.File {
		rc, err := file.Open()
		require.NoError(t, err)
		var buf bytes.Buffer
		_, err = buf.ReadFrom(rc)
		require.NoError(t, rc.Close())
		require.NoError(t, err)
		parts[file.Name] = buf.String()
	}
	return parts
}

func TestWriteProducesValidPackage(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Write(buildTestDocument(), &out))

	parts := extractParts(t, out.Bytes())
	for _, name := range []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml", "word/_rels/document.xml.rels"} {
		assert.Contains(t, parts, name)
	}

	// document.xml is well-formed XML.
	decoder := xml.NewDecoder(strings.NewReader(parts["word/document.xml"]))
	for {
		_, err := decoder.Token()
		if err != nil {
			assert.Contains(t, err.Error(), "EOF")
			break
		}
	}
}

func TestDocumentLayout(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Write(buildTestDocument(), &out))
	document := extractParts(t, out.Bytes())["word/document.xml"]

	// Narrow margins and the right tab stop at the content edge.
	assert.Contains(t, document, `<w:pgMar w:top="720" w:right="720" w:bottom="720" w:left="720"/>`)
	assert.Contains(t, document, `<w:tab w:val="right" w:pos="10800"/>`)

	// Accent-colored headings followed by a bottom border rule.
	for _, heading := range []string{
		render.HeadingEducation, render.HeadingExperience,
		render.HeadingSkills, render.HeadingProjects, render.HeadingAchievements,
	} {
		assert.Contains(t, document, ">"+heading+"<")
	}
	assert.Contains(t, document, `<w:color w:val="2563eb"/>`)
	assert.Contains(t, document, `<w:bottom w:val="single"`)

	// Centered bold name, bold organization, date pushed right.
	assert.Contains(t, document, `>Ada Example<`)
	assert.Contains(t, document, `<w:jc w:val="center"/>`)
	assert.Contains(t, document, `>Jan 2022 - present<`)
	assert.Contains(t, document, `<w:b/>`)

	// Literal bullet glyphs and escaped body text.
	assert.Contains(t, document, `• Shipped &lt;things&gt; &amp; more`)
	assert.Contains(t, document, `• Backend: Go, Postgres`)
}

func TestHyperlinkRelationship(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Write(buildTestDocument(), &out))
	parts := extractParts(t, out.Bytes())

	assert.Contains(t, parts["word/document.xml"], `<w:hyperlink r:id="rIdHl1">`)
	rels := parts["word/_rels/document.xml.rels"]
	assert.Contains(t, rels, `Id="rIdHl1"`)
	assert.Contains(t, rels, `Target="https://linkedin.com/in/ada"`)
	assert.Contains(t, rels, `TargetMode="External"`)
}

func TestEmptySectionsOmitted(t *testing.T) {
	doc := render.Build(&types.ProfileSnapshot{
		BasicInformation: types.BasicInformation{FullName: "X"},
	}, &types.GeneratorDraft{})

	var out bytes.Buffer
	require.NoError(t, Write(doc, &out))
	document := extractParts(t, out.Bytes())["word/document.xml"]

	assert.NotContains(t, document, render.HeadingEducation)
	assert.NotContains(t, document, render.HeadingExperience)
	assert.NotContains(t, document, "hyperlink")
}

func TestEditedDatesWinOverOriginals(t *testing.T) {
	doc := buildTestDocument()
	doc.DateFields()[0].SetEdited("June 2021")

	var out bytes.Buffer
	require.NoError(t, Write(doc, &out))
	document := extractParts(t, out.Bytes())["word/document.xml"]

	assert.Contains(t, document, ">June 2021<")
	assert.NotContains(t, document, ">May 2021<")
}
