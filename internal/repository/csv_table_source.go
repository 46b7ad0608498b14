package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"TopoPull/internal/domain/models"
	domrepo "TopoPull/internal/domain/repository"
	"TopoPull/pkg/util"
)

// CSVTableSource loads the input table from a CSV file. The first row is
// the header; one column may hold dates, every other column is numeric.
type CSVTableSource struct {
	path       string
	dateColumn string
}

// NewCSVTableSource creates a CSV-backed table source. dateColumn names
// the header of the date column; empty means no date column.
func NewCSVTableSource(path, dateColumn string) domrepo.TableSource {
	return &CSVTableSource{path: path, dateColumn: dateColumn}
}

func (s *CSVTableSource) Load(ctx context.Context) (*models.Table, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = false

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	dateIdx := -1
	columns := make([]string, 0, len(header))
	for i, name := range header {
		if s.dateColumn != "" && name == s.dateColumn {
			dateIdx = i
			continue
		}
		columns = append(columns, name)
	}
	if s.dateColumn != "" && dateIdx < 0 {
		return nil, fmt.Errorf("date column %q not in header", s.dateColumn)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("csv %s has no numeric columns", s.path)
	}

	table := &models.Table{Columns: columns}
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("csv line %d: %d fields, want %d", line, len(record), len(header))
		}

		row := make([]float64, 0, len(columns))
		for i, field := range record {
			if i == dateIdx {
				d, ok := util.ParseDate(field)
				if !ok {
					return nil, fmt.Errorf("csv line %d: bad date %q", line, field)
				}
				table.Dates = append(table.Dates, d)
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("csv line %d column %q: %w", line, header[i], err)
			}
			row = append(row, v)
		}
		table.Rows = append(table.Rows, row)
	}

	if dateIdx < 0 {
		// Synthesize a daily index so downstream consumers always have dates.
		base := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
		table.Dates = make([]time.Time, len(table.Rows))
		for i := range table.Dates {
			table.Dates[i] = base.AddDate(0, 0, i)
		}
	}
	return table, nil
}
