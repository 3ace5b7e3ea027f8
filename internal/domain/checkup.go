package domain

import "time"

// Checkup 一次临床采集事件，归组同一物理读数产生的测量值
// One clinical ingestion event. Every successfully processed export file
// creates exactly one Checkup; the measurements extracted from that file
// all reference it.
type Checkup struct {
	ID          string    `json:"id"`           // UUID
	PatientID   string    `json:"patient_id"`   // patient_data.id
	Reason      string    `json:"reason"`       // audit string describing the originating device
	CheckupDate time.Time `json:"checkup_date"` // timestamp of the physical reading
	CreatedAt   time.Time `json:"created_at"`
}
