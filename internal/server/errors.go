// Package server provides the HTTP API over the resume pipeline: navigation,
// step generation, draft editing and document export.
package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/resume-tailor/internal/export"
	"github.com/jonathan/resume-tailor/internal/genclient"
	"github.com/jonathan/resume-tailor/internal/generator"
	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/profile"
)

// ErrExportInFlight indicates an export of the same format is already running.
var ErrExportInFlight = errors.New("export already in progress")

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var navErr *pipeline.NavigationError
	var genErr *genclient.GenerationError
	var profErr *profile.Error
	var ingErr *ingestion.Error
	var expErr *export.Error

	switch {
	case errors.Is(err, generator.ErrGenerationInFlight), errors.Is(err, ErrExportInFlight):
		return http.StatusConflict
	case errors.As(err, &navErr):
		return http.StatusConflict
	case errors.Is(err, generator.ErrNoSourceItems), errors.Is(err, generator.ErrNoOutput):
		return http.StatusUnprocessableEntity
	case errors.As(err, &genErr), errors.As(err, &profErr), errors.As(err, &ingErr):
		return http.StatusBadGateway
	case errors.As(err, &expErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
