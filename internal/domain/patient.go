package domain

import "time"

// Patient 病人基础档案（patient_data 表的读取视图）
// Read-only view of patient_data used to resolve the session patient before
// ingestion.
type Patient struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Birthday  time.Time `json:"birthday,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
