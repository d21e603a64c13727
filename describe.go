package filequery

import (
	"context"
	"path"
	"strings"
)

// TableDescription is the schema metadata of a file table.
// SourceType is the upper-case file type followed by _FILE, e.g. CSV_FILE.
type TableDescription struct {
	SourceType  string              `json:"source_type"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Columns     []ColumnDescription `json:"columns"`
}

// ColumnDescription is the metadata of one column.
// Type is one of TEXT, INT, DECIMAL or DATE.
type ColumnDescription struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// Describe reads table and reports its columns with their inferred types
func (q *Querier) Describe(ctx context.Context, table string) (*TableDescription, error) {
	src, err := q.route(table)
	if err != nil {
		return nil, err
	}
	t, err := q.read(ctx, src)
	if err != nil {
		return nil, err
	}

	kind := strings.ToUpper(src.fileType.String())
	desc := &TableDescription{
		SourceType:  kind + "_FILE",
		Name:        src.name,
		Description: kind + " file: " + path.Base(stripURL(src.location)),
		Columns:     make([]ColumnDescription, 0, len(t.ColumnInfo())),
	}
	for _, col := range t.ColumnInfo() {
		desc.Columns = append(desc.Columns, ColumnDescription{
			Name:        col.Name,
			Description: "Column " + col.Name,
			Type:        col.Type.String(),
		})
	}
	return desc, nil
}
