package domain

import "time"

// AwardReason identifies why points were granted to a member.
type AwardReason string

const (
	AwardReasonAttendance       AwardReason = "attendance"
	AwardReasonTaskCompletion   AwardReason = "task-completion"
	AwardReasonBadgeGrant       AwardReason = "badge-grant"
	AwardReasonManualAdjustment AwardReason = "manual-adjustment"
)

// IsValid checks if the reason is one of the allowed values.
func (r AwardReason) IsValid() bool {
	switch r {
	case AwardReasonAttendance, AwardReasonTaskCompletion,
		AwardReasonBadgeGrant, AwardReasonManualAdjustment:
		return true
	default:
		return false
	}
}

// PointAward is the audit record for one point delta applied to a member.
// The points ledger is the only writer of member balances; every balance
// change leaves exactly one of these rows behind.
type PointAward struct {
	ID        string
	MemberID  string
	Delta     int
	Reason    AwardReason
	SourceID  *string // registration, task, or badge that triggered the award
	Note      string
	CreatedAt time.Time
}
