package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var oximeterHeaders = []string{"ID", "Time", "SPO2(%)", "PR(bpm)"}

func TestParsePulseOximeter_FirstRowIsCurrentReading(t *testing.T) {
	rows := []FilteredRow{
		{ID: "42", Time: "2024-01-05 08:30:00", SpO2: 97, PulseRate: 71},
		{ID: "41", Time: "2024-01-05 08:25:00", SpO2: 96, PulseRate: 70},
	}
	readings, err := ParsePulseOximeter(oximeterHeaders, rows)
	require.NoError(t, err)
	require.Len(t, readings, 1)

	r := readings[0]
	require.Equal(t, 97.0, *r.SpO2)
	require.Equal(t, 71.0, *r.Pulse)
	require.Equal(t, time.Date(2024, 1, 5, 8, 30, 0, 0, time.UTC), r.RecordedAt)
}

func TestParsePulseOximeter_MissingRequiredColumn(t *testing.T) {
	headers := []string{"ID", "Time", "SPO2(%)"} // PR(bpm) absent
	_, err := ParsePulseOximeter(headers, []FilteredRow{{ID: "1", SpO2: 97, PulseRate: 71}})
	require.ErrorIs(t, err, ErrFormat)
}

func TestParsePulseOximeter_NoRows(t *testing.T) {
	_, err := ParsePulseOximeter(oximeterHeaders, nil)
	require.ErrorIs(t, err, ErrNoMeasurements)
}

func TestParsePulseOximeter_InvalidValues(t *testing.T) {
	_, err := ParsePulseOximeter(oximeterHeaders, []FilteredRow{{ID: "1", SpO2: 0, PulseRate: 0}})
	require.ErrorIs(t, err, ErrNoMeasurements)
}

func TestParsePulseOximeter_UnparsableTimeFallsBackToNow(t *testing.T) {
	rows := []FilteredRow{{ID: "1", Time: "???", SpO2: 95, PulseRate: 64}}
	readings, err := ParsePulseOximeter(oximeterHeaders, rows)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().UTC(), readings[0].RecordedAt, 5*time.Second)
}
