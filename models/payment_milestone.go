package models

import "time"

const (
	MilestoneStatusPending   = "pending"
	MilestoneStatusConfirmed = "confirmed"
	MilestoneStatusFailed    = "failed"
	MilestoneStatusRefunded  = "refunded"
	MilestoneStatusCancelled = "cancelled"
)

// PaymentMilestone is one fee obligation gating a specific status
// transition. MilestoneRef is the opaque identifier shared with the
// payment gateway and used in its confirmation callback.
type PaymentMilestone struct {
	MilestoneID   int        `gorm:"primaryKey;column:milestone_id" json:"milestone_id"`
	MilestoneRef  string     `gorm:"column:milestone_ref;unique" json:"milestone_ref"`
	ApplicationID int        `gorm:"column:application_id" json:"application_id"`
	Kind          string     `gorm:"column:kind" json:"kind"`
	Amount        float64    `gorm:"column:amount" json:"amount"`
	Status        string     `gorm:"column:status" json:"status"`
	PaidAt        *time.Time `gorm:"column:paid_at" json:"paid_at,omitempty"`
	CreateAt      time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt      time.Time  `gorm:"column:update_at" json:"update_at"`
}

// TableName specifies the table for PaymentMilestone.
func (PaymentMilestone) TableName() string {
	return "payment_milestones"
}

// IsConfirmed reports whether the fee has been settled.
func (m PaymentMilestone) IsConfirmed() bool {
	return m.Status == MilestoneStatusConfirmed
}

// IsSettled reports whether the milestone can no longer accept a
// confirmation (already confirmed, refunded or cancelled).
func (m PaymentMilestone) IsSettled() bool {
	switch m.Status {
	case MilestoneStatusConfirmed, MilestoneStatusRefunded, MilestoneStatusCancelled:
		return true
	}
	return false
}
