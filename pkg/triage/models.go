package triage

import (
	"time"

	"gorm.io/datatypes"
)

type TriageNote struct {
	ID            string         `json:"id" gorm:"primaryKey;column:id"`
	UserID        string         `json:"user_id" gorm:"column:user_id;index"`
	PredictionID  string         `json:"prediction_id" gorm:"column:prediction_id;index"`
	Complaint     string         `json:"complaint,omitempty" gorm:"column:complaint"`
	TriageSummary string         `json:"triage_summary" gorm:"column:triage_summary"`
	Followups     datatypes.JSON `json:"followups" gorm:"column:followups"`
	ModelName     string         `json:"model_name,omitempty" gorm:"column:model_name"`
	CreatedAt     time.Time      `json:"created_at" gorm:"column:created_at"`
}

func (TriageNote) TableName() string {
	return "triage_notes"
}
