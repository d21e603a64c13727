package output

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/xuri/excelize/v2"

	"github.com/nao1215/filequery/domain/model"
)

// sheetName is the worksheet written by the XLSX format
const sheetName = "Sheet1"

// Write renders res to w in the given format
func Write(w io.Writer, res *model.Result, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, res)
	case FormatJSONL:
		return writeJSONL(w, res)
	case FormatCSV:
		return writeDelimited(w, res, ',')
	case FormatTSV:
		return writeDelimited(w, res, '\t')
	case FormatLTSV:
		return writeLTSV(w, res)
	case FormatTable:
		return writeTable(w, res)
	case FormatXLSX:
		return writeXLSX(w, res)
	default:
		return fmt.Errorf("%w: output format %d", model.ErrUnsupportedFormat, format)
	}
}

// cell renders a value as text. Null is the empty string.
func cell(v model.Value) string {
	switch x := v.Interface().(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	default:
		return ""
	}
}

func writeJSON(w io.Writer, res *model.Result) error {
	rows := res.Rows
	if rows == nil {
		rows = []model.Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func writeJSONL(w io.Writer, res *model.Result) error {
	enc := json.NewEncoder(w)
	for _, row := range res.Rows {
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("failed to encode JSON line: %w", err)
		}
	}
	return nil
}

func writeDelimited(w io.Writer, res *model.Result, delimiter rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delimiter

	if err := cw.Write(res.Columns); err != nil {
		return err
	}
	record := make([]string, len(res.Columns))
	for _, row := range res.Rows {
		for i := range record {
			record[i] = cell(row.At(i))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush writer: %w", err)
	}
	return nil
}

// ltsvEscaper keeps labels and values on one line
var ltsvEscaper = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

func writeLTSV(w io.Writer, res *model.Result) error {
	bw := bufio.NewWriter(w)
	for _, row := range res.Rows {
		for i, c := range res.Columns {
			if i > 0 {
				_ = bw.WriteByte('\t')
			}
			_, _ = bw.WriteString(ltsvEscaper.Replace(strings.ReplaceAll(c, ":", "_")))
			_ = bw.WriteByte(':')
			_, _ = bw.WriteString(ltsvEscaper.Replace(cell(row.At(i))))
		}
		_ = bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write LTSV: %w", err)
	}
	return nil
}

func writeTable(w io.Writer, res *model.Result) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader(res.Columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	for _, row := range res.Rows {
		record := make([]string, len(res.Columns))
		for i := range record {
			record[i] = cell(row.At(i))
		}
		table.Append(record)
	}
	table.Render()
	return nil
}

func writeXLSX(w io.Writer, res *model.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, len(res.Columns))
	for i, c := range res.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write XLSX header: %w", err)
	}

	for n, row := range res.Rows {
		values := make([]any, len(res.Columns))
		for i := range values {
			values[i] = row.At(i).Interface()
		}
		axis, err := excelize.CoordinatesToCellName(1, n+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, axis, &values); err != nil {
			return fmt.Errorf("failed to write XLSX row: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write XLSX: %w", err)
	}
	return nil
}
