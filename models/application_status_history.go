package models

import "time"

// ApplicationStatusHistory is one immutable audit record per committed
// status transition. Rows are append-only: never updated, never deleted.
type ApplicationStatusHistory struct {
	HistoryID     int       `gorm:"primaryKey;column:history_id" json:"history_id"`
	ApplicationID int       `gorm:"column:application_id" json:"application_id"`
	FromStatus    *string   `gorm:"column:from_status" json:"from_status"`
	ToStatus      string    `gorm:"column:to_status" json:"to_status"`
	ChangedBy     int       `gorm:"column:changed_by" json:"changed_by"`
	Reason        *string   `gorm:"column:reason" json:"reason"`
	Metadata      *string   `gorm:"column:metadata" json:"metadata"`
	ChangedAt     time.Time `gorm:"column:changed_at" json:"changed_at"`
}

// TableName specifies the table for ApplicationStatusHistory.
func (ApplicationStatusHistory) TableName() string {
	return "application_status_history"
}
