package parser

import (
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Blood-pressure export layout (Omron measurement data): comma-delimited CSV
// with a header row. The date column combines a local timestamp with a
// trailing timezone name, e.g. "2024/01/05 08:30 Taipei Standard Time".
const (
	bpHeaderDate      = "Measurement Date"
	bpHeaderSystolic  = "SYS(mmHg)"
	bpHeaderDiastolic = "DIA(mmHg)"
	bpHeaderPulse     = "Pulse(bpm)"
)

// The vendor app stamps exports with its regional zone name; anything it
// names resolves to a fixed UTC+8 offset, everything else is read as UTC.
var bpFixedZone = time.FixedZone("UTC+8", 8*60*60)

// ParseBloodPressure extracts the single most recent reading from an Omron
// export. Each reading carries systolic, diastolic and pulse values that
// belong to one physical measurement event.
func ParseBloodPressure(content string) ([]Reading, error) {
	content = stripBOM(content)

	r := csv.NewReader(strings.NewReader(content))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("%w: empty file", ErrFormat)
	}

	header := records[0]
	dateIdx := findColumn(header, bpHeaderDate)
	sysIdx := findColumn(header, bpHeaderSystolic)
	diaIdx := findColumn(header, bpHeaderDiastolic)
	pulseIdx := findColumn(header, bpHeaderPulse) // optional
	if dateIdx == -1 || sysIdx == -1 || diaIdx == -1 {
		return nil, fmt.Errorf("%w: missing required headers (%s, %s, %s)",
			ErrFormat, bpHeaderDate, bpHeaderSystolic, bpHeaderDiastolic)
	}

	readings := make([]Reading, 0, len(records)-1)
	for _, row := range records[1:] {
		if len(row) <= dateIdx || len(row) <= sysIdx || len(row) <= diaIdx {
			continue
		}
		recordedAt, err := parseBPTimestamp(row[dateIdx])
		if err != nil {
			continue
		}
		systolic, err1 := strconv.ParseFloat(strings.TrimSpace(row[sysIdx]), 64)
		diastolic, err2 := strconv.ParseFloat(strings.TrimSpace(row[diaIdx]), 64)
		if err1 != nil || err2 != nil || systolic <= 0 || diastolic <= 0 {
			continue
		}
		reading := Reading{
			RecordedAt: recordedAt,
			Systolic:   floatPtr(systolic),
			Diastolic:  floatPtr(diastolic),
		}
		if pulseIdx != -1 && len(row) > pulseIdx {
			if pulse, err := strconv.ParseFloat(strings.TrimSpace(row[pulseIdx]), 64); err == nil && pulse > 0 {
				reading.Pulse = floatPtr(pulse)
			}
		}
		readings = append(readings, reading)
	}

	if len(readings) == 0 {
		return nil, fmt.Errorf("%w: no parsable measurement records", ErrFormat)
	}

	// Records arrive in arbitrary order; keep only the newest event.
	sort.Slice(readings, func(i, j int) bool {
		return readings[i].RecordedAt.After(readings[j].RecordedAt)
	})
	return readings[:1], nil
}

// parseBPTimestamp reads "YYYY/MM/DD HH:MM" optionally followed by a
// timezone name.
func parseBPTimestamp(field string) (time.Time, error) {
	parts := strings.Fields(strings.TrimSpace(field))
	if len(parts) < 2 {
		return time.Time{}, fmt.Errorf("bad measurement date %q", field)
	}
	datePart, timePart := parts[0], parts[1]
	zoneName := strings.Join(parts[2:], " ")

	loc := time.UTC
	if zoneName != "" && strings.Contains(strings.ToLower(zoneName), "taipei") {
		loc = bpFixedZone
	}

	dateParts := strings.Split(datePart, "/")
	if len(dateParts) != 3 {
		return time.Time{}, fmt.Errorf("bad date %q", datePart)
	}
	year, err1 := strconv.Atoi(dateParts[0])
	month, err2 := strconv.Atoi(dateParts[1])
	day, err3 := strconv.Atoi(dateParts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, fmt.Errorf("bad date %q", datePart)
	}

	clockParts := strings.Split(timePart, ":")
	if len(clockParts) < 2 {
		return time.Time{}, fmt.Errorf("bad time %q", timePart)
	}
	hour, err1 := strconv.Atoi(clockParts[0])
	minute, err2 := strconv.Atoi(clockParts[1])
	if err1 != nil || err2 != nil {
		return time.Time{}, fmt.Errorf("bad time %q", timePart)
	}
	second := 0
	if len(clockParts) >= 3 {
		second, _ = strconv.Atoi(clockParts[2])
	}

	if month < 1 || month > 12 || day < 1 || day > 31 || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("out-of-range timestamp %q", field)
	}
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, loc), nil
}

// findColumn returns the index of the first header cell containing name, or
// -1. Vendor exports pad header cells with stray whitespace, so matching is
// substring-based.
func findColumn(header []string, name string) int {
	for i, cell := range header {
		if strings.Contains(cell, name) {
			return i
		}
	}
	return -1
}
