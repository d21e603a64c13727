package model

import "encoding/json"

// Result is the output of one query execution
type Result struct {
	// Columns is the ordered list of output columns
	Columns []string
	// Rows holds the output rows in final order
	Rows []Row
	// RowCount equals len(Rows)
	RowCount int
	// Fallback is set when the rows are a raw table prefix returned instead of a query result
	Fallback bool
	// FallbackReason describes why the fallback was taken
	FallbackReason string
}

// NewResult creates a Result from rows, taking columns from the schema
func NewResult(schema *Schema, rows []Row) *Result {
	var columns []string
	if schema != nil {
		columns = schema.Columns()
	}
	if rows == nil {
		rows = []Row{}
	}
	return &Result{
		Columns:  columns,
		Rows:     rows,
		RowCount: len(rows),
	}
}

// Maps returns the rows as plain Go maps
func (r *Result) Maps() []map[string]any {
	out := make([]map[string]any, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.Map()
	}
	return out
}

type resultJSON struct {
	Success  bool   `json:"success"`
	Results  []Row  `json:"results"`
	RowCount int    `json:"row_count"`
	Fallback bool   `json:"fallback,omitempty"`
	Reason   string `json:"fallback_reason,omitempty"`
}

// MarshalJSON encodes the result as {"success", "results", "row_count"}
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		Success:  true,
		Results:  r.Rows,
		RowCount: r.RowCount,
		Fallback: r.Fallback,
		Reason:   r.FallbackReason,
	})
}
