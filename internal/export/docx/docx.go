// Package docx writes the resume as an Office Open XML word processing
// document, assembling the package parts directly over archive/zip. The
// layout mirrors the PDF exporter: narrow margins, centered header, accent
// section headings over a rule, and right-tab-stop dates.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-tailor/internal/export"
	"github.com/jonathan/resume-tailor/internal/render"
)

// Page geometry in twips. US Letter with half-inch margins; the right tab
// stop for dates sits exactly at the content's right edge.
const (
	pageWidth    = 12240
	pageHeight   = 15840
	pageMargin   = 720
	contentWidth = pageWidth - 2*pageMargin
)

// accent matches render.AccentColor without the leading hash.
var accent = strings.TrimPrefix(render.AccentColor, "#")

// Write assembles the document and writes the finished package to w. On any
// assembly failure nothing is written, so a failed export never leaves a
// truncated file behind.
func Write(doc *render.Document, w io.Writer) error {
	var buf bytes.Buffer
	if err := writePackage(doc, &buf); err != nil {
		return &export.Error{Format: "docx", Message: "assembling document", Cause: err}
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return &export.Error{Format: "docx", Message: "writing output", Cause: err}
	}
	return nil
}

func writePackage(doc *render.Document, buf *bytes.Buffer) error {
	body := newBody()
	body.compose(doc)

	zw := zip.NewWriter(buf)
	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", packageRelsXML},
		{"word/document.xml", body.documentXML()},
		{"word/_rels/document.xml.rels", body.relsXML()},
	}
	for _, part := range parts {
		f, err := zw.Create(part.name)
		if err != nil {
			return fmt.Errorf("creating %s: %w", part.name, err)
		}
		if _, err := f.Write([]byte(part.content)); err != nil {
			return fmt.Errorf("writing %s: %w", part.name, err)
		}
	}
	return zw.Close()
}

// body accumulates document.xml paragraphs and the hyperlink relationships
// they reference.
type body struct {
	b     strings.Builder
	links []string
}

func newBody() *body {
	return &body{}
}

func (d *body) compose(doc *render.Document) {
	d.name(doc.Header.FullName)
	d.contactLine(doc.Header)

	if len(doc.Education) > 0 {
		d.heading(render.HeadingEducation)
		for _, row := range doc.Education {
			d.tabbedLine([]styledRun{{text: row.Primary()}}, row.Date.Value())
		}
	}

	if len(doc.Experience) > 0 {
		d.heading(render.HeadingExperience)
		for _, block := range doc.Experience {
			d.tabbedLine(experienceRuns(block), block.Date.Value())
			for _, bullet := range block.Bullets {
				d.bullet(bullet)
			}
		}
	}

	if len(doc.Skills) > 0 {
		d.heading(render.HeadingSkills)
		for _, line := range doc.Skills {
			d.bullet(line.Line())
		}
	}

	if len(doc.Projects) > 0 {
		d.heading(render.HeadingProjects)
		for _, block := range doc.Projects {
			d.paragraph(`<w:pPr><w:spacing w:before="80"/></w:pPr>`,
				run(`<w:b/>`, block.Title()))
			for _, bullet := range block.Bullets {
				d.bullet(bullet)
			}
		}
	}

	if len(doc.Achievements) > 0 {
		d.heading(render.HeadingAchievements)
		for _, achievement := range doc.Achievements {
			d.bullet(achievement)
		}
	}
}

// styledRun is one styled segment of a tabbed header line.
type styledRun struct {
	props string
	text  string
}

// experienceRuns styles the pipe-joined header segments: role in the accent
// color, organization bold, location plain.
func experienceRuns(block render.ExperienceBlock) []styledRun {
	var runs []styledRun
	for i, part := range block.HeaderParts() {
		if i > 0 {
			runs = append(runs, styledRun{text: " | "})
		}
		switch {
		case part == block.Role && block.Role != "":
			runs = append(runs, styledRun{props: fmt.Sprintf(`<w:color w:val="%s"/>`, accent), text: part})
		case part == block.Organization:
			runs = append(runs, styledRun{props: `<w:b/>`, text: part})
		default:
			runs = append(runs, styledRun{text: part})
		}
	}
	return runs
}

func (d *body) name(fullName string) {
	d.paragraph(`<w:pPr><w:jc w:val="center"/></w:pPr>`,
		run(`<w:b/><w:sz w:val="40"/>`, fullName))
}

func (d *body) contactLine(header render.Header) {
	if header.ContactLine == "" && header.NetworkProfile == "" {
		return
	}
	var runs []string
	if header.ContactLine != "" {
		runs = append(runs, run("", header.ContactLine))
	}
	if header.NetworkProfile != "" {
		if header.ContactLine != "" {
			runs = append(runs, run("", " | "))
		}
		runs = append(runs, d.hyperlink(header.NetworkProfile))
	}
	d.paragraph(`<w:pPr><w:jc w:val="center"/></w:pPr>`, runs...)
}

// hyperlink registers an external relationship and returns the wrapped run.
func (d *body) hyperlink(target string) string {
	d.links = append(d.links, target)
	id := fmt.Sprintf("rIdHl%d", len(d.links))
	props := fmt.Sprintf(`<w:color w:val="%s"/><w:u w:val="single"/>`, accent)
	return fmt.Sprintf(`<w:hyperlink r:id="%s">%s</w:hyperlink>`, id, run(props, target))
}

// heading writes an accent-colored bold section header over a full-width
// bottom border rule.
func (d *body) heading(text string) {
	props := `<w:pPr><w:spacing w:before="160" w:after="40"/><w:pBdr><w:bottom w:val="single" w:sz="6" w:space="1" w:color="auto"/></w:pBdr></w:pPr>`
	d.paragraph(props, run(fmt.Sprintf(`<w:b/><w:color w:val="%s"/>`, accent), text))
}

// tabbedLine writes left-aligned runs with the date pushed to the right
// margin by a right tab stop.
func (d *body) tabbedLine(left []styledRun, date string) {
	props := fmt.Sprintf(
		`<w:pPr><w:tabs><w:tab w:val="right" w:pos="%d"/></w:tabs></w:pPr>`, contentWidth)
	var runs []string
	for _, r := range left {
		runs = append(runs, run(r.props, r.text))
	}
	if date != "" {
		runs = append(runs, `<w:r><w:tab/></w:r>`, run("", date))
	}
	d.paragraph(props, runs...)
}

func (d *body) bullet(text string) {
	d.paragraph(`<w:pPr><w:ind w:left="360"/></w:pPr>`, run("", "• "+text))
}

func (d *body) paragraph(props string, runs ...string) {
	d.b.WriteString("<w:p>")
	d.b.WriteString(props)
	for _, r := range runs {
		d.b.WriteString(r)
	}
	d.b.WriteString("</w:p>")
}

func run(props, text string) string {
	if props != "" {
		props = "<w:rPr>" + props + "</w:rPr>"
	}
	return fmt.Sprintf(`<w:r>%s<w:t xml:space="preserve">%s</w:t></w:r>`, props, escape(text))
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escape(s string) string {
	return escaper.Replace(s)
}

func (d *body) documentXML() string {
	sectPr := fmt.Sprintf(
		`<w:sectPr><w:pgSz w:w="%d" w:h="%d"/><w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d"/></w:sectPr>`,
		pageWidth, pageHeight, pageMargin, pageMargin, pageMargin, pageMargin)
	return xmlDeclaration + documentOpen + d.b.String() + sectPr + documentClose
}

func (d *body) relsXML() string {
	var b strings.Builder
	b.WriteString(xmlDeclaration)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for i, target := range d.links {
		b.WriteString(fmt.Sprintf(
			`<Relationship Id="rIdHl%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="%s" TargetMode="External"/>`,
			i+1, escape(target)))
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

const (
	xmlDeclaration = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`

	documentOpen = `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><w:body>`

	documentClose = `</w:body></w:document>`

	contentTypesXML = xmlDeclaration +
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
		`</Types>`

	packageRelsXML = xmlDeclaration +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
		`</Relationships>`
)
