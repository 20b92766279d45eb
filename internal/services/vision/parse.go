package vision

import (
	"encoding/json"
	"regexp"
)

var (
	jsonArray  = regexp.MustCompile(`(?s)\[.*\]`)
	jsonObject = regexp.MustCompile(`(?s)\{.*\}`)
)

// parseCandidates extracts the first JSON array from a model response and
// fills per-field defaults. Anything unparseable reads as zero detections.
func parseCandidates(text string) []Candidate {
	match := jsonArray.FindString(text)
	if match == "" {
		return nil
	}

	var raw []Candidate
	if err := json.Unmarshal([]byte(match), &raw); err != nil {
		return nil
	}

	candidates := make([]Candidate, 0, len(raw))
	for _, c := range raw {
		if c.Format == "" {
			c.Format = "DVD"
		}
		if c.Confidence == 0 {
			c.Confidence = 0.5
		}
		candidates = append(candidates, c)
	}
	return candidates
}

func parseBarcode(text string) BarcodeReading {
	match := jsonObject.FindString(text)
	if match == "" {
		return BarcodeReading{Error: "failed to parse barcode response"}
	}

	var reading BarcodeReading
	if err := json.Unmarshal([]byte(match), &reading); err != nil {
		return BarcodeReading{Error: "invalid JSON response"}
	}
	return reading
}
