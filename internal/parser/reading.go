package parser

import "time"

// Reading is one physical reading extracted from a device export. Only the
// fields the originating device produces are set; the normalizer maps the
// set fields onto canonical measurement types.
type Reading struct {
	RecordedAt  time.Time
	Temperature *float64
	Systolic    *float64
	Diastolic   *float64
	Pulse       *float64
	SpO2        *float64
}

func floatPtr(v float64) *float64 { return &v }
