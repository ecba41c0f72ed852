// Package export serializes a curriculum project to bytes: JSON and CSV for
// data exchange, and an HTML syllabus that also feeds the PDF and DOCX
// renderers.
package export

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"curriculum/api/internal/curriculum"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// SchemaVersion is stamped into every JSON and CSV export.
const SchemaVersion = "1.0"

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(value string) (Format, bool) {
	f := Format(strings.ToLower(strings.TrimSpace(value)))
	switch f {
	case FormatJSON, FormatCSV, FormatHTML, FormatPDF, FormatDOCX:
		return f, true
	}
	return "", false
}

// Project is the export input. Callers copy it out of their own record type.
type Project struct {
	ID                string
	OrgID             string
	Title             string
	Strategy          curriculum.Strategy
	Sessions          curriculum.Tree
	SyllabusBlueprint json.RawMessage
}

type Request struct {
	Project Project
	Format  Format
	// ExportedAt defaults to the service clock.
	ExportedAt time.Time
}

// Result contains the export output
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

// ActivityNamer resolves a Scene's selected activity id for display.
type ActivityNamer interface {
	ActivityName(id string) string
}

var (
	// ErrUnsupportedFormat is returned for a format outside the Format constants.
	ErrUnsupportedFormat = errors.New("export format unsupported")
	// ErrPDFDependencyMissing indicates PDF export runtime dependencies are unavailable.
	ErrPDFDependencyMissing = errors.New("export pdf dependency missing")
	// ErrDOCXDependencyMissing indicates DOCX export runtime dependencies are unavailable.
	ErrDOCXDependencyMissing = errors.New("export docx dependency missing")
)
