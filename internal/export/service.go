package export

import (
	"context"
	"fmt"
	"time"
)

// Exporter names this service in export metadata.
const Exporter = "curriculum-api"

// Service renders projects in every supported format.
type Service struct {
	activities ActivityNamer
	now        func() time.Time

	// Overridable so tests can run without chromium or pandoc.
	renderPDF  func(ctx context.Context, html, title string) (*Result, error)
	renderDOCX func(ctx context.Context, html, title string) (*Result, error)
}

// NewService creates a new export service
func NewService(activities ActivityNamer) *Service {
	return &Service{
		activities: activities,
		now:        time.Now,
		renderPDF:  exportPDF,
		renderDOCX: exportDOCX,
	}
}

// Export generates an export in the requested format
func (s *Service) Export(ctx context.Context, req Request) (*Result, error) {
	if req.ExportedAt.IsZero() {
		req.ExportedAt = s.now()
	}
	req.ExportedAt = req.ExportedAt.UTC()
	base := sanitizeFilename(req.Project.Title)

	switch req.Format {
	case FormatJSON:
		data, err := encodeJSON(req)
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return &Result{Data: data, Filename: base + ".json", MimeType: "application/json"}, nil
	case FormatCSV:
		data, err := encodeCSV(req, s.activities)
		if err != nil {
			return nil, fmt.Errorf("encode csv: %w", err)
		}
		return &Result{Data: data, Filename: base + ".csv", MimeType: "text/csv; charset=utf-8"}, nil
	case FormatHTML, FormatPDF, FormatDOCX:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, req.Format)
	}

	html, err := RenderSyllabusHTML(buildTemplateData(req, s.activities))
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	switch req.Format {
	case FormatPDF:
		return s.renderPDF(ctx, html, req.Project.Title)
	case FormatDOCX:
		return s.renderDOCX(ctx, html, req.Project.Title)
	default:
		return &Result{Data: []byte(html), Filename: base + ".html", MimeType: "text/html; charset=utf-8"}, nil
	}
}
