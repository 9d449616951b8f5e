// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintJobPosting outputs the shared fields every generation call receives.
func (p *Printer) PrintJobPosting(role, description string) {
	if role == "" && description == "" {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Role: %s\n", role))
	if description != "" {
		sb.WriteString(fmt.Sprintf("Description: %d characters", len(description)))
	} else {
		sb.WriteString("Description: (none)")
	}

	p.printBox("JOB POSTING", sb.String())
}

// PrintExperiences outputs a summary of the experience draft entries.
func (p *Printer) PrintExperiences(entries []types.DraftExperience) {
	if len(entries) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(entries), maxItemsToShow)
	for i := 0; i < count; i++ {
		entry := entries[i]
		sb.WriteString(fmt.Sprintf("%s (%d bullets)\n", entry.OrganizationName, len(entry.BulletPoints)))
		if len(entry.BulletPoints) > 0 {
			sb.WriteString(fmt.Sprintf("  • %s\n", entry.BulletPoints[0]))
		}
	}
	if len(entries) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(entries)-maxItemsToShow))
	}

	p.printBox("EXPERIENCE DRAFT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintProjects outputs a summary of the project draft entries.
func (p *Printer) PrintProjects(entries []types.DraftProject) {
	if len(entries) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(entries), maxItemsToShow)
	for i := 0; i < count; i++ {
		entry := entries[i]
		switch entry.Body.Kind {
		case types.ProjectBodyBullets:
			sb.WriteString(fmt.Sprintf("%s (%d bullets)\n", entry.ProjectName, len(entry.Body.Bullets)))
		default:
			sb.WriteString(fmt.Sprintf("%s (paragraph)\n", entry.ProjectName))
		}
	}
	if len(entries) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(entries)-maxItemsToShow))
	}

	p.printBox("PROJECT DRAFT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSkills outputs the skill categories with their first few entries.
func (p *Printer) PrintSkills(categories types.SkillsByCategory) {
	if len(categories) == 0 {
		return
	}

	var sb strings.Builder
	for _, category := range categories {
		skills := strings.Join(category.Skills, ", ")
		if len(skills) > 40 {
			skills = skills[:37] + "..."
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n", category.Name, skills))
	}

	p.printBox("SKILLS DRAFT", strings.TrimSuffix(sb.String(), "\n"))
}
