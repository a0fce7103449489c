package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"workforce-planner/errors"
	"workforce-planner/metrics"
)

// ParseMatrix reads a department-by-month matrix from CSV data.
// Each record is one department, each field one month. Lines starting with '#' are
// headers/comments. Every record must have the same number of fields as the first one.
func ParseMatrix(r io.Reader) ([][]float64, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var matrix [][]float64
	width := -1
	lineNum := 0

	for {
		record, err := reader.Read()
		lineNum++
		if err == io.EOF {
			break
		}
		if err != nil {
			metrics.ParserErrorsTotal.WithLabelValues("csv").Inc()
			return nil, fmt.Errorf("error reading CSV at line %d: %w", lineNum, err)
		}

		// Handle headers/comments
		if len(record) > 0 && strings.HasPrefix(strings.TrimSpace(record[0]), "#") {
			continue
		}

		if width >= 0 && len(record) != width {
			metrics.ParserErrorsTotal.WithLabelValues("field_count").Inc()
			return nil, &errors.ParseError{
				Line:   lineNum,
				Record: record,
				Err:    fmt.Errorf("%w: got %d, want %d", errors.ErrInvalidFieldCount, len(record), width),
			}
		}

		row := make([]float64, len(record))
		for i, field := range record {
			field = strings.TrimSpace(field)
			if field == "" {
				metrics.ParserErrorsTotal.WithLabelValues("empty").Inc()
				return nil, &errors.ParseError{
					Line:   lineNum,
					Record: record,
					Err:    fmt.Errorf("%w: field %d", errors.ErrEmptyRecord, i+1),
				}
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				metrics.ParserErrorsTotal.WithLabelValues("number").Inc()
				return nil, &errors.ParseError{
					Line:   lineNum,
					Record: record,
					Err:    fmt.Errorf("%w: %q", errors.ErrInvalidNumber, field),
				}
			}
			row[i] = v
		}

		width = len(record)
		matrix = append(matrix, row)
		metrics.ParserRecordsTotal.Inc()
	}

	return matrix, nil
}

// ParseMatrixFile opens path and parses it with ParseMatrix.
func ParseMatrixFile(path string) ([][]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	m, err := ParseMatrix(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
