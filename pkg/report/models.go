package report

import (
	"time"

	"gorm.io/datatypes"
)

type Report struct {
	ID            string            `json:"id" gorm:"primaryKey;column:id"`
	UserID        string            `json:"user_id" gorm:"column:user_id;index"`
	Task          string            `json:"task" gorm:"column:task"`
	RawFilename   string            `json:"raw_filename,omitempty" gorm:"column:raw_filename"`
	Extracted     datatypes.JSONMap `json:"extracted" gorm:"column:extracted"`
	MissingFields datatypes.JSON    `json:"missing_fields" gorm:"column:missing_fields"`
	Warnings      datatypes.JSON    `json:"warnings" gorm:"column:warnings"`
	ExtractedMeta datatypes.JSONMap `json:"extracted_meta" gorm:"column:extracted_meta"`
	RawText       string            `json:"raw_text,omitempty" gorm:"column:raw_text"`
	CreatedAt     time.Time         `json:"created_at" gorm:"column:created_at"`
}

func (Report) TableName() string {
	return "reports"
}
