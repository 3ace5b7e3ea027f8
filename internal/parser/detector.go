package parser

import (
	"strings"

	"kiosk-data/internal/domain"
)

// detectRule pairs a predicate with the device it identifies. Rules are
// evaluated in order; the first match wins, so adding a fourth device is a
// table change, not new control flow.
type detectRule struct {
	matches func(name string, content string) bool
	device  domain.DeviceType
}

var detectRules = []detectRule{
	// Filename markers first. Matching is case-insensitive (name is
	// lowercased before the rules run).
	{
		matches: func(name, _ string) bool {
			return strings.Contains(name, "healthmanagerpro_export") && strings.HasSuffix(name, ".csv")
		},
		device: domain.DeviceThermometer,
	},
	{
		matches: func(name, _ string) bool {
			return strings.Contains(name, "[omron]") && strings.Contains(name, "measurement data")
		},
		device: domain.DeviceBloodPressureMonitor,
	},
	{
		matches: func(name, _ string) bool {
			return strings.Contains(name, "datarecord_") && hasSpreadsheetExt(name)
		},
		device: domain.DevicePulseOximeter,
	},
	// Content sniffing fallback for the CSV-bearing devices, used when the
	// export was renamed before upload.
	{
		matches: func(_, content string) bool {
			return strings.Contains(content, "Temperature") && strings.Contains(content, "Date;Time;°C")
		},
		device: domain.DeviceThermometer,
	},
	{
		matches: func(_, content string) bool {
			return strings.Contains(content, "Measurement Date") &&
				strings.Contains(content, "SYS(mmHg)") &&
				strings.Contains(content, "DIA(mmHg)")
		},
		device: domain.DeviceBloodPressureMonitor,
	},
	// Spreadsheets only ever come from the pulse oximeter.
	{
		matches: func(name, _ string) bool { return hasSpreadsheetExt(name) },
		device:  domain.DevicePulseOximeter,
	},
}

// Detect classifies an export file by filename and, failing that, by byte
// content. Returns DeviceUnknown when no rule matches; callers must treat
// that as a hard failure, not a skip.
func Detect(filename string, content []byte) domain.DeviceType {
	name := strings.ToLower(filename)

	var text string
	if looksLikeText(content) {
		text = string(content)
	}

	for _, rule := range detectRules {
		if rule.matches(name, text) {
			return rule.device
		}
	}
	return domain.DeviceUnknown
}

func hasSpreadsheetExt(name string) bool {
	return strings.HasSuffix(name, ".xls") || strings.HasSuffix(name, ".xlsx")
}

// IsSpreadsheet reports whether the buffer starts with a known spreadsheet
// magic number: ZIP (xlsx) or OLE2 compound file (legacy xls). Used instead
// of trusting the file extension.
func IsSpreadsheet(content []byte) bool {
	if len(content) >= 4 && content[0] == 'P' && content[1] == 'K' && content[2] == 0x03 && content[3] == 0x04 {
		return true
	}
	ole2 := []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	if len(content) >= len(ole2) {
		match := true
		for i, b := range ole2 {
			if content[i] != b {
				match = false
				break
			}
		}
		return match
	}
	return false
}

func looksLikeText(content []byte) bool {
	return len(content) > 0 && !IsSpreadsheet(content)
}
