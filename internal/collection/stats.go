package collection

// ByFormat tallies the main format buckets. bluray_4k combo discs count
// toward Total but appear in no bucket here; consumers depend on this
// shape, so it stays.
type ByFormat struct {
	DVD    int `json:"dvd"`
	Bluray int `json:"bluray"`
	FourK  int `json:"4k"`
	Mixed  int `json:"mixed"`
}

// Stats aggregates collection counts.
type Stats struct {
	Total         int      `json:"total"`
	ByFormat      ByFormat `json:"byFormat"`
	WantToUpgrade int      `json:"wantToUpgrade"`
}

// Stats counts the current collection.
func (s *Store) Stats() (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadLocked()
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Total: len(doc.Movies)}
	for _, movie := range doc.Movies {
		switch movie.Format {
		case FormatDVD:
			stats.ByFormat.DVD++
		case FormatBluray:
			stats.ByFormat.Bluray++
		case Format4K:
			stats.ByFormat.FourK++
		case FormatMixed:
			stats.ByFormat.Mixed++
		}
		if movie.WantToUpgrade {
			stats.WantToUpgrade++
		}
	}
	return stats, nil
}
