// Package pdf writes the resume as a PDF via explicit coordinate placement,
// mirroring the DOCX layout. A running vertical cursor drives pagination,
// and wrapped bullets are justified by distributing extra word spacing
// across every line but the last.
package pdf

import (
	"bytes"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/jonathan/resume-tailor/internal/export"
	"github.com/jonathan/resume-tailor/internal/render"
)

// Page geometry in millimeters. US Letter with half-inch margins.
const (
	pageWidth  = 215.9
	pageHeight = 279.4
	margin     = 12.7
)

// Type sizes in points and the shared line advance in millimeters.
const (
	nameSize    = 20.0
	headingSize = 12.0
	bodySize    = 10.0

	lineHeight    = 5.0
	bulletIndent  = 3.5
	headingGap    = 2.5
	sectionSpacer = 3.0
)

const fontFamily = "Helvetica"

// Accent RGB matching render.AccentColor (#2563eb).
const (
	accentR = 0x25
	accentG = 0x63
	accentB = 0xeb
)

// Write assembles the document and writes the finished PDF to w. On any
// assembly failure nothing is written.
func Write(doc *render.Document, w io.Writer) error {
	var buf bytes.Buffer
	if err := build(doc).Output(&buf); err != nil {
		return &export.Error{Format: "pdf", Message: "assembling document", Cause: err}
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return &export.Error{Format: "pdf", Message: "writing output", Cause: err}
	}
	return nil
}

func build(doc *render.Document) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	p := &page{pdf: pdf, y: margin + 5}
	p.compose(doc)
	return pdf
}

// page tracks the vertical cursor. Every write goes through ensure, which
// starts a new page and resets the cursor when the next line would leave the
// printable area.
type page struct {
	pdf *fpdf.Fpdf
	y   float64
}

func (p *page) ensure(height float64) {
	if p.y+height > pageHeight-margin {
		p.pdf.AddPage()
		p.y = margin + 5
	}
}

func (p *page) advance(height float64) {
	p.y += height
}

func (p *page) compose(doc *render.Document) {
	p.header(doc.Header)

	if len(doc.Education) > 0 {
		p.heading(render.HeadingEducation)
		for _, row := range doc.Education {
			p.tabbedLine(nil, row.Primary(), row.Date.Value())
		}
		p.advance(sectionSpacer)
	}

	if len(doc.Experience) > 0 {
		p.heading(render.HeadingExperience)
		for _, block := range doc.Experience {
			p.experienceLine(block)
			for _, bullet := range block.Bullets {
				p.bullet(bullet)
			}
			p.advance(1)
		}
		p.advance(sectionSpacer - 1)
	}

	if len(doc.Skills) > 0 {
		p.heading(render.HeadingSkills)
		for _, line := range doc.Skills {
			p.bullet(line.Line())
		}
		p.advance(sectionSpacer)
	}

	if len(doc.Projects) > 0 {
		p.heading(render.HeadingProjects)
		for _, block := range doc.Projects {
			p.ensure(lineHeight)
			p.pdf.SetFont(fontFamily, "B", bodySize)
			p.pdf.SetTextColor(0, 0, 0)
			p.pdf.Text(margin, p.y, block.Title())
			p.advance(lineHeight)
			for _, bullet := range block.Bullets {
				p.bullet(bullet)
			}
			p.advance(1)
		}
		p.advance(sectionSpacer - 1)
	}

	if len(doc.Achievements) > 0 {
		p.heading(render.HeadingAchievements)
		for _, achievement := range doc.Achievements {
			p.bullet(achievement)
		}
	}
}

func (p *page) header(h render.Header) {
	p.pdf.SetFont(fontFamily, "B", nameSize)
	p.pdf.SetTextColor(0, 0, 0)
	p.pdf.Text((pageWidth-p.pdf.GetStringWidth(h.FullName))/2, p.y, h.FullName)
	p.advance(lineHeight + 2)

	if h.ContactLine == "" && h.NetworkProfile == "" {
		return
	}
	p.pdf.SetFont(fontFamily, "", bodySize)

	contact := h.ContactLine
	link := h.NetworkProfile
	full := contact
	if link != "" {
		if full != "" {
			full += " | "
		}
		full += link
	}
	x := (pageWidth - p.pdf.GetStringWidth(full)) / 2
	if contact != "" {
		p.pdf.Text(x, p.y, contact)
		x += p.pdf.GetStringWidth(contact)
	}
	if link != "" {
		if contact != "" {
			p.pdf.Text(x, p.y, " | ")
			x += p.pdf.GetStringWidth(" | ")
		}
		p.pdf.SetTextColor(accentR, accentG, accentB)
		p.pdf.Text(x, p.y, link)
		width := p.pdf.GetStringWidth(link)
		p.pdf.LinkString(x, p.y-lineHeight+1.5, width, lineHeight, link)
		p.pdf.SetTextColor(0, 0, 0)
	}
	p.advance(lineHeight + sectionSpacer)
}

// heading draws the accent section header and the full-width rule under it.
func (p *page) heading(text string) {
	p.ensure(lineHeight + headingGap + lineHeight)
	p.pdf.SetFont(fontFamily, "B", headingSize)
	p.pdf.SetTextColor(accentR, accentG, accentB)
	p.pdf.Text(margin, p.y, text)
	p.pdf.SetDrawColor(0, 0, 0)
	p.pdf.Line(margin, p.y+1.5, pageWidth-margin, p.y+1.5)
	p.pdf.SetTextColor(0, 0, 0)
	p.advance(lineHeight + headingGap)
}

// tabbedLine draws styled left segments with the date flush against the
// right margin on the same baseline.
func (p *page) tabbedLine(segments []segment, plain, date string) {
	p.ensure(lineHeight)
	p.pdf.SetFont(fontFamily, "", bodySize)
	x := margin
	if plain != "" {
		p.pdf.Text(x, p.y, plain)
	}
	for _, s := range segments {
		p.pdf.SetFont(fontFamily, s.style, bodySize)
		if s.accent {
			p.pdf.SetTextColor(accentR, accentG, accentB)
		} else {
			p.pdf.SetTextColor(0, 0, 0)
		}
		p.pdf.Text(x, p.y, s.text)
		x += p.pdf.GetStringWidth(s.text)
	}
	if date != "" {
		p.pdf.SetFont(fontFamily, "", bodySize)
		p.pdf.SetTextColor(0, 0, 0)
		p.pdf.Text(pageWidth-margin-p.pdf.GetStringWidth(date), p.y, date)
	}
	p.advance(lineHeight)
}

// segment is one styled run of an experience header line.
type segment struct {
	text   string
	style  string
	accent bool
}

func (p *page) experienceLine(block render.ExperienceBlock) {
	var segments []segment
	for i, part := range block.HeaderParts() {
		if i > 0 {
			segments = append(segments, segment{text: " | "})
		}
		switch {
		case part == block.Role && block.Role != "":
			segments = append(segments, segment{text: part, accent: true})
		case part == block.Organization:
			segments = append(segments, segment{text: part, style: "B"})
		default:
			segments = append(segments, segment{text: part})
		}
	}
	p.tabbedLine(segments, "", block.Date.Value())
}

// bullet draws one bullet point, wrapping and justifying long text. Extra
// word spacing is spread across every wrapped line except the last, which
// stays ragged like any final line of a justified paragraph.
func (p *page) bullet(text string) {
	p.pdf.SetFont(fontFamily, "", bodySize)
	p.pdf.SetTextColor(0, 0, 0)

	x := margin + bulletIndent
	avail := pageWidth - margin - x
	glyphWidth := p.pdf.GetStringWidth("• ")
	lines := p.wrap(text, avail-glyphWidth)

	for i, line := range lines {
		p.ensure(lineHeight)
		lineX := x
		if i == 0 {
			p.pdf.Text(x, p.y, "• ")
		}
		lineX += glyphWidth
		if i < len(lines)-1 {
			if spaces := strings.Count(line, " "); spaces > 0 {
				extra := (avail - glyphWidth - p.pdf.GetStringWidth(line)) / float64(spaces)
				if extra > 0 {
					p.justifiedLine(lineX, line, extra)
					p.advance(lineHeight)
					continue
				}
			}
		}
		p.pdf.Text(lineX, p.y, line)
		p.advance(lineHeight)
	}
}

// justifiedLine places each word individually, padding the gaps by extra.
func (p *page) justifiedLine(x float64, line string, extra float64) {
	spaceWidth := p.pdf.GetStringWidth(" ")
	for _, word := range strings.Fields(line) {
		p.pdf.Text(x, p.y, word)
		x += p.pdf.GetStringWidth(word) + spaceWidth + extra
	}
}

// wrap breaks text into lines no wider than avail, by word.
func (p *page) wrap(text string, avail float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if p.pdf.GetStringWidth(candidate) > avail {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	return append(lines, current)
}
