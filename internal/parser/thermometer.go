package parser

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Thermometer export layout (Beurer HealthManagerPro): a multi-section file
// where sections are separated by blank lines, each section introduced by a
// title line. The temperature section carries a `Date;Time;°C;Comment;
// Medication` header followed by semicolon-delimited rows, newest first.
const (
	thermometerSectionTitle = "Temperature"
	thermometerHeaderMarker = "Date;Time;°C"
)

// ParseThermometer extracts the single most recent temperature reading from
// a HealthManagerPro export. Historical rows are intentionally discarded.
func ParseThermometer(content string) ([]Reading, error) {
	content = stripBOM(content)

	idx := strings.Index(content, thermometerSectionTitle)
	if idx == -1 {
		return nil, fmt.Errorf("%w: temperature section not found", ErrFormat)
	}

	// Skip the section title line, then find the column header row.
	lines := splitLines(content[idx:])
	if len(lines) > 0 {
		lines = lines[1:]
	}
	headerIdx := -1
	for i, line := range lines {
		if strings.Contains(line, thermometerHeaderMarker) {
			headerIdx = i
			break
		}
	}
	if headerIdx == -1 {
		return nil, fmt.Errorf("%w: temperature data headers not found", ErrFormat)
	}

	readings := make([]Reading, 0, 4)
	for _, line := range lines[headerIdx+1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			// Blank line terminates the section.
			break
		}
		parts := strings.Split(line, ";")
		if len(parts) < 3 {
			continue
		}
		recordedAt, err := parseThermometerTimestamp(parts[0], parts[1])
		if err != nil {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			continue
		}
		readings = append(readings, Reading{
			RecordedAt:  recordedAt,
			Temperature: floatPtr(value),
		})
	}

	if len(readings) == 0 {
		return nil, fmt.Errorf("%w: temperature section has no data rows", ErrNoMeasurements)
	}

	// Exports arrive newest-first, but sort anyway so a reordered export
	// still yields the latest reading.
	sort.Slice(readings, func(i, j int) bool {
		return readings[i].RecordedAt.After(readings[j].RecordedAt)
	})
	return readings[:1], nil
}

// parseThermometerTimestamp combines a MM/DD/YYYY date and a 12-hour
// H:MM AM/PM time into one timestamp.
func parseThermometerTimestamp(date, clock string) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)

	dateParts := strings.Split(date, "/")
	if len(dateParts) != 3 {
		return time.Time{}, fmt.Errorf("bad date %q", date)
	}
	month, err1 := strconv.Atoi(dateParts[0])
	day, err2 := strconv.Atoi(dateParts[1])
	year, err3 := strconv.Atoi(dateParts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, fmt.Errorf("bad date %q", date)
	}

	lower := strings.ToLower(clock)
	isPM := strings.Contains(lower, "pm")
	isAM := strings.Contains(lower, "am")
	clockDigits := strings.TrimSpace(strings.NewReplacer("am", "", "pm", "", "AM", "", "PM", "").Replace(clock))
	clockParts := strings.Split(clockDigits, ":")
	if len(clockParts) < 2 {
		return time.Time{}, fmt.Errorf("bad time %q", clock)
	}
	hour, err1 := strconv.Atoi(strings.TrimSpace(clockParts[0]))
	minute, err2 := strconv.Atoi(strings.TrimSpace(clockParts[1]))
	if err1 != nil || err2 != nil {
		return time.Time{}, fmt.Errorf("bad time %q", clock)
	}

	// 12-hour to 24-hour: 12 AM is midnight, PM adds twelve.
	if isPM && hour < 12 {
		hour += 12
	}
	if isAM && hour == 12 {
		hour = 0
	}

	if month < 1 || month > 12 || day < 1 || day > 31 || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("out-of-range timestamp %q %q", date, clock)
	}
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC), nil
}

func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}

func splitLines(s string) []string {
	return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}
