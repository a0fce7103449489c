package store

import (
	"time"

	"github.com/google/uuid"
)

// Run is one recorded planning run, successful or not.
type Run struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	ScenarioHash       string    `gorm:"size:64;index"`
	Status             string    `gorm:"size:16;index"`
	Objective          float64
	TotalHires         int
	TotalUnderemployed int
	Nodes              int
	SolveTimeMillis    int64
	Error              string `gorm:"size:1000"`
	CreatedAt          time.Time
	Rows               []RunRow `gorm:"constraint:OnDelete:CASCADE"`
}

// RunRow is one department-month line of a recorded plan.
type RunRow struct {
	ID             uint      `gorm:"primaryKey"`
	RunID          uuid.UUID `gorm:"type:uuid;index"`
	Department     int
	Month          int
	Hires          int       `gorm:"check:hires >= 0"`
	Underemployed  int       `gorm:"check:underemployed >= 0"`
	AvailableHours float64
	RequiredHours  float64
}
