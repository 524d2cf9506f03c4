package models

import "fmt"

type UserRole string
type GigStatus string
type ApprovalStatus string
type ApplicationStatus string
type ModerationStatus string
type QueueStatus string

const (
	UserRoleStudent  UserRole = "student"
	UserRoleProvider UserRole = "provider"
	UserRoleAdmin    UserRole = "admin"

	GigStatusOpen       GigStatus = "open"
	GigStatusInProgress GigStatus = "in_progress"
	GigStatusClosed     GigStatus = "closed"
	GigStatusCompleted  GigStatus = "completed"
	GigStatusCancelled  GigStatus = "cancelled"

	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"

	ApplicationStatusPending     ApplicationStatus = "pending"
	ApplicationStatusReviewing   ApplicationStatus = "reviewing"
	ApplicationStatusShortlisted ApplicationStatus = "shortlisted"
	ApplicationStatusAccepted    ApplicationStatus = "accepted"
	ApplicationStatusRejected    ApplicationStatus = "rejected"
	ApplicationStatusCompleted   ApplicationStatus = "completed"
	ApplicationStatusWithdrawn   ApplicationStatus = "withdrawn"

	ModerationStatusPending  ModerationStatus = "pending"
	ModerationStatusApproved ModerationStatus = "approved"
	ModerationStatusRejected ModerationStatus = "rejected"
	ModerationStatusFlagged  ModerationStatus = "flagged"

	QueueStatusPending QueueStatus = "pending"
	QueueStatusSent    QueueStatus = "sent"
	QueueStatusFailed  QueueStatus = "failed"
)

func ParseUserRole(s string) (UserRole, error) {
	switch r := UserRole(s); r {
	case UserRoleStudent, UserRoleProvider, UserRoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("invalid role %q", s)
}

func ParseGigStatus(s string) (GigStatus, error) {
	switch st := GigStatus(s); st {
	case GigStatusOpen, GigStatusInProgress, GigStatusClosed, GigStatusCompleted, GigStatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("invalid gig status %q", s)
}

func ParseApprovalStatus(s string) (ApprovalStatus, error) {
	switch st := ApprovalStatus(s); st {
	case ApprovalStatusPending, ApprovalStatusApproved, ApprovalStatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("invalid approval status %q", s)
}

func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	switch st := ApplicationStatus(s); st {
	case ApplicationStatusPending, ApplicationStatusReviewing, ApplicationStatusShortlisted,
		ApplicationStatusAccepted, ApplicationStatusRejected, ApplicationStatusCompleted,
		ApplicationStatusWithdrawn:
		return st, nil
	}
	return "", fmt.Errorf("invalid application status %q", s)
}

// IsTerminalForWithdrawal reports whether an application in this status can no
// longer be withdrawn by the student.
func (s ApplicationStatus) IsTerminalForWithdrawal() bool {
	return s == ApplicationStatusAccepted || s == ApplicationStatusCompleted || s == ApplicationStatusWithdrawn
}
