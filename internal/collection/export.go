package collection

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"
)

var csvHeader = []string{
	"Title", "Format", "Genre", "Release Date", "Actors", "Notes",
	"Want To Upgrade", "Upgrade Target", "Date Added",
}

// WriteCSV streams the full collection (title-sorted) as CSV.
func (s *Store) WriteCSV(w io.Writer) error {
	movies, err := s.GetAll(Filters{})
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, m := range movies {
		record := []string{
			m.Title,
			string(m.Format),
			m.Genre,
			m.ReleaseDate,
			m.Actors,
			m.Notes,
			strconv.FormatBool(m.WantToUpgrade),
			m.UpgradeTarget,
			m.DateAdded.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteJSON streams the full collection document as indented JSON.
func (s *Store) WriteJSON(w io.Writer) error {
	s.mu.Lock()
	doc, err := s.loadLocked()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	snapshot := *doc
	snapshot.Movies = make([]Movie, len(doc.Movies))
	copy(snapshot.Movies, doc.Movies)
	s.mu.Unlock()

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(snapshot)
}
