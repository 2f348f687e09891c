package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/todmy/ahp/internal/global"
)

// ErrIncomplete is returned when some alternative has no global priority
var ErrIncomplete = errors.New("ratings of the alternatives are not available")

// Alternative is one rated leaf in the report
type Alternative struct {
	Name   string `json:"name"`
	Rating string `json:"rating"`
}

// Report is the exported result of a decision
type Report struct {
	Title        string        `json:"title"`
	GeneratedAt  time.Time     `json:"generated_at"`
	Alternatives []Alternative `json:"alternatives"`
}

// FormatPercent renders a priority as a percentage with two decimals
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p*100)
}

// Build creates the report for a fully resolved summary
func Build(title string, summary global.Summary) (*Report, error) {
	if !summary.Complete() {
		if msg := summary.Message(); msg != "" {
			return nil, fmt.Errorf("%w: %s", ErrIncomplete, msg)
		}
		return nil, ErrIncomplete
	}

	r := &Report{
		Title:        "AHP results for " + title,
		GeneratedAt:  time.Now().UTC(),
		Alternatives: make([]Alternative, len(summary.Results)),
	}
	for i, res := range summary.Results {
		r.Alternatives[i] = Alternative{
			Name:   res.Name,
			Rating: FormatPercent(res.Priority),
		}
	}
	return r, nil
}

// WriteJSON writes the report as indented JSON
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
