package predict

import (
	"time"

	"github.com/atul23g/multiDiseasePred/pkg/report"
	"gorm.io/datatypes"
)

type Prediction struct {
	ID              string            `json:"id" gorm:"primaryKey;column:id"`
	UserID          string            `json:"user_id" gorm:"column:user_id;index"`
	ReportID        *string           `json:"report_id,omitempty" gorm:"column:report_id"`
	Task            string            `json:"task" gorm:"column:task"`
	Features        datatypes.JSONMap `json:"features" gorm:"column:features"`
	Label           int               `json:"label" gorm:"column:label"`
	Probability     float64           `json:"probability" gorm:"column:probability"`
	HealthScore     float64           `json:"health_score" gorm:"column:health_score"`
	TopContributors datatypes.JSON    `json:"top_contributors" gorm:"column:top_contributors"`
	Warnings        datatypes.JSON    `json:"warnings" gorm:"column:warnings"`
	CreatedAt       time.Time         `json:"created_at" gorm:"column:created_at"`

	Report *report.Report `json:"report,omitempty" gorm:"foreignKey:ReportID"`
}

func (Prediction) TableName() string {
	return "predictions"
}
