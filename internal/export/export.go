// Package export serializes dialogue records into interchange formats.
//
// Export never mutates its input: the same record list and format yield
// byte-identical output, except for timestamps isolated in clearly-labeled
// metadata fields.
package export

import (
	"fmt"

	"github.com/dialogueforge/dialogueforge/internal/domain"
)

// Export serializes records into the requested format. An unknown format is
// rejected before any data is touched.
func Export(records []domain.DialogueRecord, format domain.ExportFormat) ([]byte, error) {
	switch format {
	case domain.ExportJSON:
		return exportJSON(records)
	case domain.ExportJSONL:
		return exportJSONL(records)
	case domain.ExportCSV:
		return exportCSV(records)
	case domain.ExportXLSX:
		return exportXLSX(records)
	default:
		return nil, domain.ExportFormatInvalidError(fmt.Sprintf("unsupported export format %q", format))
	}
}

// SupportedFormats returns the export format tags.
func SupportedFormats() []string {
	return []string{"json", "jsonl", "csv", "xlsx"}
}

// ContentType returns the MIME type for a supported export format.
func ContentType(format domain.ExportFormat) string {
	switch format {
	case domain.ExportJSON:
		return "application/json"
	case domain.ExportJSONL:
		return "application/x-ndjson"
	case domain.ExportCSV:
		return "text/csv"
	case domain.ExportXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// FileExtension returns the conventional file extension for a format.
func FileExtension(format domain.ExportFormat) string {
	return "." + string(format)
}
