// Package export renders tabular listings into downloadable documents.
package export

import "fmt"

// Column describes one output column. Weight sets the relative width in
// paginated formats and defaults to 1.
type Column struct {
	Key    string
	Title  string
	Weight float64
}

// Table is the format independent content of an export.
type Table struct {
	Title   string
	Columns []Column
	Rows    []map[string]string
}

// Exporter renders a table into a single document.
type Exporter interface {
	Render(t Table) ([]byte, error)
	ContentType() string
	Extension() string
}

// ForFormat resolves an exporter by its short name.
func ForFormat(format string) (Exporter, error) {
	switch format {
	case "", "csv":
		return NewCSVExporter(), nil
	case "pdf":
		return NewPDFExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

func (t Table) validate() error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("export requires at least one column")
	}
	return nil
}
