package parser

import (
	"fmt"
	"strings"
	"time"
)

// Pulse-oximeter exports are spreadsheets the service never decodes locally;
// an external conversion service extracts the rows and returns them together
// with the sheet's header row. This parser validates the headers and keeps
// the current (first) reading.

// Required column names in the Healthtree sheet.
var pulseOximeterColumns = []string{"ID", "Time", "SPO2(%)", "PR(bpm)"}

// FilteredRow is one extracted row from the conversion service response.
type FilteredRow struct {
	ID        string  `json:"id"`
	Time      string  `json:"time,omitempty"`
	SpO2      float64 `json:"spo2"`
	PulseRate float64 `json:"pulseRate"`
}

// ParsePulseOximeter validates the converted sheet and returns the current
// reading: oxygen saturation plus pulse rate from the first row.
func ParsePulseOximeter(headers []string, rows []FilteredRow) ([]Reading, error) {
	for _, required := range pulseOximeterColumns {
		if !containsHeader(headers, required) {
			return nil, fmt.Errorf("%w: missing required headers (%s)",
				ErrFormat, strings.Join(pulseOximeterColumns, ", "))
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: converted sheet has no data rows", ErrNoMeasurements)
	}

	row := rows[0]
	if row.SpO2 <= 0 || row.SpO2 > 100 || row.PulseRate <= 0 {
		return nil, fmt.Errorf("%w: current row has no valid values", ErrNoMeasurements)
	}

	return []Reading{{
		RecordedAt: parseOximeterTime(row.Time),
		SpO2:       floatPtr(row.SpO2),
		Pulse:      floatPtr(row.PulseRate),
	}}, nil
}

func containsHeader(headers []string, name string) bool {
	for _, h := range headers {
		if strings.TrimSpace(h) == name {
			return true
		}
	}
	return false
}

// parseOximeterTime tolerates the timestamp layouts seen in Healthtree
// sheets; an unparsable cell falls back to ingestion time.
func parseOximeterTime(s string) time.Time {
	s = strings.TrimSpace(s)
	layouts := []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006/01/02 15:04:05",
		"2006/01/02 15:04",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Now().UTC()
}
