package commands

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/ADManagerLND/ADManagerAPI-sub003/pkg/engine"
	"github.com/ADManagerLND/ADManagerAPI-sub003/pkg/mapping"
)

// readRows materializes a CSV file into engine rows using the mapping's
// configured delimiter. The first record is the header.
func readRows(path string, cfg *mapping.Config) ([]engine.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	if cfg.Delimiter != "" {
		reader.Comma = []rune(cfg.Delimiter)[0]
	}
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	rows := make([]engine.Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(engine.Row, len(header))
		for i, column := range header {
			column = strings.TrimSpace(column)
			if column == "" || i >= len(record) {
				continue
			}
			row[column] = record[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}
