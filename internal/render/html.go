package render

import (
	"fmt"
	"html"
	"strings"
)

// Section headings shared by the preview and both exporters.
const (
	HeadingEducation    = "EDUCATION:"
	HeadingExperience   = "WORK EXPERIENCE:"
	HeadingSkills       = "SKILLS:"
	HeadingProjects     = "PROJECTS:"
	HeadingAchievements = "ACHIEVEMENTS:"
)

// AccentColor is the hex color of section headings and experience roles.
const AccentColor = "#2563eb"

// HTML renders the editable preview markup. Date fields become
// contenteditable spans carrying a data-date-field index matching the
// position in DateFields, so edits made in the preview can be read back for
// export.
func (d *Document) HTML() string {
	var b strings.Builder
	fieldIndex := 0

	b.WriteString(fmt.Sprintf(`<h1 class="resume-name">%s</h1>`+"\n", html.EscapeString(d.Header.FullName)))
	contact := html.EscapeString(d.Header.ContactLine)
	if d.Header.NetworkProfile != "" {
		link := fmt.Sprintf(`<a href="%s">%s</a>`,
			html.EscapeString(d.Header.NetworkProfile), html.EscapeString(d.Header.NetworkProfile))
		if contact != "" {
			contact += " | " + link
		} else {
			contact = link
		}
	}
	if contact != "" {
		b.WriteString(fmt.Sprintf(`<p class="resume-contact">%s</p>`+"\n", contact))
	}

	if len(d.Education) > 0 {
		writeHeading(&b, HeadingEducation)
		for _, row := range d.Education {
			b.WriteString(`<div class="resume-row"><span>` + html.EscapeString(row.Primary()) + `</span>`)
			writeDateSpan(&b, row.Date, &fieldIndex)
			b.WriteString("</div>\n")
		}
	}

	if len(d.Experience) > 0 {
		writeHeading(&b, HeadingExperience)
		for _, block := range d.Experience {
			b.WriteString(`<div class="resume-row"><span>`)
			for i, part := range block.HeaderParts() {
				if i > 0 {
					b.WriteString(" | ")
				}
				if part == block.Role && block.Role != "" {
					b.WriteString(`<span class="resume-role">` + html.EscapeString(part) + `</span>`)
				} else if part == block.Organization {
					b.WriteString(`<strong>` + html.EscapeString(part) + `</strong>`)
				} else {
					b.WriteString(html.EscapeString(part))
				}
			}
			b.WriteString(`</span>`)
			writeDateSpan(&b, block.Date, &fieldIndex)
			b.WriteString("</div>\n")
			writeBullets(&b, block.Bullets)
		}
	}

	if len(d.Skills) > 0 {
		writeHeading(&b, HeadingSkills)
		lines := make([]string, len(d.Skills))
		for i, line := range d.Skills {
			lines[i] = line.Line()
		}
		writeBullets(&b, lines)
	}

	if len(d.Projects) > 0 {
		writeHeading(&b, HeadingProjects)
		for _, block := range d.Projects {
			b.WriteString(`<p class="resume-project"><strong>` + html.EscapeString(block.Title()) + `</strong></p>` + "\n")
			writeBullets(&b, block.Bullets)
		}
	}

	if len(d.Achievements) > 0 {
		writeHeading(&b, HeadingAchievements)
		writeBullets(&b, d.Achievements)
	}

	return b.String()
}

func writeHeading(b *strings.Builder, text string) {
	b.WriteString(fmt.Sprintf(`<h2 class="resume-heading" style="color: %s">%s</h2><hr/>`+"\n", AccentColor, text))
}

func writeDateSpan(b *strings.Builder, date *DateField, index *int) {
	b.WriteString(fmt.Sprintf(`<span class="resume-date" contenteditable="true" data-date-field="%d">%s</span>`,
		*index, html.EscapeString(date.Value())))
	*index++
}

func writeBullets(b *strings.Builder, bullets []string) {
	for _, bullet := range bullets {
		b.WriteString(`<p class="resume-bullet">• ` + html.EscapeString(bullet) + `</p>` + "\n")
	}
}
