// Package export writes collection contents out as spreadsheets and JSON
// backups, and restores backups into a store.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/cognicore/shiver/pkg/shiver/records"
	"github.com/cognicore/shiver/pkg/shiver/store"
)

// sheet describes one collection's worksheet.
type sheet struct {
	name    string
	columns []string // JSON field names after id, route and created
}

var sheets = map[records.Kind]sheet{
	records.KindCharacter: {"Characters", []string{"name", "description", "background", "traits", "tags", "image"}},
	records.KindLocation:  {"Locations", []string{"name", "description", "details", "features", "inhabitants", "tags", "image"}},
	records.KindChapter:   {"Chapters", []string{"title", "summary", "characters", "locations", "tags"}},
	records.KindCase:      {"Cases", []string{"title", "status", "date", "description", "suspects", "locations", "evidence"}},
	records.KindMedia:     {"Media", []string{"title", "type", "description", "url", "tags"}},
}

// Workbook writes one worksheet per collection as an .xlsx file.
func Workbook(ctx context.Context, st store.Store, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for _, kind := range records.Kinds() {
		recs, err := st.GetAll(ctx, kind)
		if err != nil {
			return fmt.Errorf("load %s: %w", kind, err)
		}
		sh := sheets[kind]
		if first {
			if err := f.SetSheetName(f.GetSheetName(0), sh.name); err != nil {
				return err
			}
			first = false
		} else if _, err := f.NewSheet(sh.name); err != nil {
			return err
		}

		header := []any{"id", "route", "created"}
		for _, c := range sh.columns {
			header = append(header, c)
		}
		if err := f.SetSheetRow(sh.name, "A1", &header); err != nil {
			return err
		}

		for i, rec := range recs {
			row, err := rowFor(rec, sh.columns)
			if err != nil {
				return err
			}
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sh.name, cell, &row); err != nil {
				return err
			}
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func rowFor(rec records.Record, columns []string) ([]any, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	m := rec.Meta()
	created := ""
	if !m.CreatedAt.IsZero() {
		created = m.CreatedAt.UTC().Format(time.RFC3339)
	}
	row := []any{m.ID, m.Route, created}
	for _, c := range columns {
		row = append(row, cellValue(fields[c]))
	}
	return row, nil
}

func cellValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, fmt.Sprint(e))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}
