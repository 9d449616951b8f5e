// Package export holds what the DOCX and PDF exporters share: the output
// filename rule, date-edit resolution, and the error type both wrap their
// assembly failures in.
package export

import (
	"fmt"

	"github.com/jonathan/resume-tailor/internal/render"
)

// fallbackName is used in the filename when the profile has no full name.
const fallbackName = "Resume"

// Filename returns the download filename for an export,
// "{fullName}_Resume.{ext}", substituting a generic name when the profile
// has none.
func Filename(fullName, ext string) string {
	if fullName == "" {
		fullName = fallbackName
	}
	return fmt.Sprintf("%s_Resume.%s", fullName, ext)
}

// ApplyDateOverrides writes user-edited date values back onto the document's
// date nodes by document-order position. Empty values and positions past the
// document's field count are ignored, leaving the original dates in place.
func ApplyDateOverrides(doc *render.Document, values []string) {
	fields := doc.DateFields()
	for i, v := range values {
		if i >= len(fields) {
			break
		}
		if v != "" {
			fields[i].SetEdited(v)
		}
	}
}

// Error wraps a document assembly failure. Exporters fail without emitting
// any partial output.
type Error struct {
	Format  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s export: %s: %v", e.Format, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s export: %s", e.Format, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
