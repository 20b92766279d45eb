package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"discshelf/internal/collection"
	"discshelf/internal/services"
)

// Column aliases accepted in CSV headers, checked in order. Exports from
// spreadsheets tend to carry the long notes header.
var (
	titleColumns  = []string{"Title", "title"}
	formatColumns = []string{"Format", "format"}
	notesColumns  = []string{"Notes / Collection Info", "Notes", "notes"}
)

// CSVResult summarizes a CSV import.
type CSVResult struct {
	Imported int                `json:"imported"`
	Movies   []collection.Movie `json:"movies"`
}

// ImportCSV reads a header-driven CSV file and bulk-inserts its rows. Rows
// without a title are dropped; a missing format column falls back to DVD.
// The whole file lands in one bulk write.
func (im *Importer) ImportCSV(csvPath string) (CSVResult, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return CSVResult{}, services.Wrap(services.ErrValidation, "importer", "csv",
				fmt.Sprintf("csv file not found: %s", csvPath), nil)
		}
		return CSVResult{}, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	inputs, err := parseCSV(file)
	if err != nil {
		return CSVResult{}, err
	}

	var created []collection.Movie
	if len(inputs) > 0 {
		created, err = im.store.BulkCreate(inputs)
		if err != nil {
			return CSVResult{}, err
		}
	}

	im.logger.Info("csv import complete", "file", csvPath, "imported", len(created))
	return CSVResult{Imported: len(created), Movies: created}, nil
}

func parseCSV(r io.Reader) ([]collection.NewMovie, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	var inputs []collection.NewMovie
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		title := strings.TrimSpace(field(record, columns, titleColumns))
		if title == "" {
			continue
		}
		format := strings.TrimSpace(field(record, columns, formatColumns))
		if format == "" {
			format = "DVD"
		}

		inputs = append(inputs, collection.NewMovie{
			Title:  title,
			Format: format,
			Notes:  strings.TrimSpace(field(record, columns, notesColumns)),
			Source: collection.SourceCSVImport,
		})
	}
	return inputs, nil
}

// field returns the first non-empty value among the aliased columns.
func field(record []string, columns map[string]int, aliases []string) string {
	for _, alias := range aliases {
		index, ok := columns[alias]
		if !ok || index >= len(record) {
			continue
		}
		if value := record[index]; value != "" {
			return value
		}
	}
	return ""
}
