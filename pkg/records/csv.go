package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/opscart/assist-advisor/pkg/models"
)

// ErrMissingColumn is returned by ReadCSV when a required header is absent
var ErrMissingColumn = errors.New("missing required column")

var requiredColumns = []string{"Customer Name", "Registration No", "Model", "Vehicle Sale Date"}

// ReadCSV imports ASSIST records written in the export layout
func ReadCSV(r io.Reader) ([]models.AssistRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	headers := make(map[string]int, len(header))
	for i, h := range header {
		// Excel prepends a BOM to UTF-8 CSVs
		h = strings.TrimPrefix(h, "\ufeff")
		headers[strings.TrimSpace(h)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := headers[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var out []models.AssistRecord
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rec, err := ParseRow(row, headers)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, rec)
	}

	return out, nil
}
